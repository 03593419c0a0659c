package custody_test

import (
	"context"
	"testing"
	"time"

	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/SafeMPC/custody-signer/internal/test/custodytest"
	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPollingClient 使用 MockClock，等待时直接推进时钟并记录时长
func newPollingClient(t *testing.T, srv *custodytest.Server) (*custody.Client, *[]time.Duration) {
	t.Helper()

	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	client := srv.NewClient(t, custody.WithClock(clock))

	var sleeps []time.Duration
	custody.SetSleep(client, func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		if d > 0 {
			clock.Advance(d)
		}
		return nil
	})

	return client, &sleeps
}

func submit(t *testing.T, client *custody.Client) string {
	t.Helper()

	resp, err := client.ProgramCall(context.Background(), custody.AssetSOL, "0", "AA==")
	require.NoError(t, err)
	return resp.ID
}

func TestPollCompletesOnSecondFetch(t *testing.T) {
	srv := custodytest.NewServer(t)
	client, sleeps := newPollingClient(t, srv)

	sig, err := newKey(t).Sign([]byte("payload"))
	require.NoError(t, err)
	srv.SetScript(custodytest.Sequence(sig.String(), custody.StatusSubmitted, custody.StatusCompleted))

	id := submit(t, client)

	var observed []*custody.TransactionResponse
	job, got, err := client.Poll(context.Background(), id, custody.PollConfig{
		Timeout:  15 * time.Second,
		Interval: 5 * time.Second,
		Observer: func(j *custody.TransactionResponse) { observed = append(observed, j) },
	})
	require.NoError(t, err)

	assert.Equal(t, custody.StatusCompleted, job.Status)
	require.NotNil(t, got)
	assert.Equal(t, sig, *got)
	assert.Equal(t, 2, srv.Fetches(id))
	require.Len(t, observed, 1)
	assert.Equal(t, custody.StatusSubmitted, observed[0].Status)
	assert.Equal(t, []time.Duration{5 * time.Second}, *sleeps)
}

func TestPollStopsOnFinalStatus(t *testing.T) {
	srv := custodytest.NewServer(t)
	client, sleeps := newPollingClient(t, srv)
	srv.SetScript(custodytest.Failing(custody.StatusRejected, custody.SubStatusRejectedByUser, "rejected"))

	id := submit(t, client)

	observerCalls := 0
	job, got, err := client.Poll(context.Background(), id, custody.PollConfig{
		Timeout:  time.Minute,
		Interval: time.Second,
		Observer: func(*custody.TransactionResponse) { observerCalls++ },
	})
	require.NoError(t, err)

	assert.Equal(t, custody.StatusRejected, job.Status)
	assert.Equal(t, custody.SubStatusRejectedByUser, job.SubStatus)
	assert.Nil(t, got)
	assert.Equal(t, 1, srv.Fetches(id))
	assert.Zero(t, observerCalls)
	assert.Empty(t, *sleeps)
}

func TestPollTimeoutDoesOneLastFetch(t *testing.T) {
	srv := custodytest.NewServer(t)
	client, sleeps := newPollingClient(t, srv)
	srv.SetScript(custodytest.Sequence("", custody.StatusPendingSignature))

	id := submit(t, client)

	observerCalls := 0
	job, got, err := client.Poll(context.Background(), id, custody.PollConfig{
		Timeout:  15 * time.Second,
		Interval: 5 * time.Second,
		Observer: func(*custody.TransactionResponse) { observerCalls++ },
	})
	require.NoError(t, err)

	// t=0,5,10,15 在循环中查询，超时后再查询一次
	assert.Equal(t, custody.StatusPendingSignature, job.Status)
	assert.Nil(t, got)
	assert.Equal(t, 5, srv.Fetches(id))
	assert.Equal(t, 4, observerCalls)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 0}, *sleeps)
}

func TestPollLastFetchCanBeLucky(t *testing.T) {
	srv := custodytest.NewServer(t)
	client, _ := newPollingClient(t, srv)

	sig, err := newKey(t).Sign([]byte("payload"))
	require.NoError(t, err)
	srv.SetScript(custodytest.Sequence(sig.String(), custody.StatusQueued, custody.StatusQueued, custody.StatusConfirming))

	id := submit(t, client)

	job, got, err := client.Poll(context.Background(), id, custody.PollConfig{Timeout: 3 * time.Second, Interval: 3 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, custody.StatusConfirming, job.Status)
	require.NotNil(t, got)
	assert.Equal(t, 3, srv.Fetches(id))
}

func TestPollNeverSleepsPastDeadline(t *testing.T) {
	srv := custodytest.NewServer(t)
	client, sleeps := newPollingClient(t, srv)
	srv.SetScript(custodytest.Sequence("", custody.StatusPendingAuthorization))

	id := submit(t, client)

	_, _, err := client.Poll(context.Background(), id, custody.PollConfig{Timeout: 7 * time.Second, Interval: 5 * time.Second})
	require.NoError(t, err)

	var total time.Duration
	for _, d := range *sleeps {
		assert.LessOrEqual(t, d, 5*time.Second)
		total += d
	}
	assert.Equal(t, 7*time.Second, total)
}

func TestPollPropagatesFetchError(t *testing.T) {
	srv := custodytest.NewServer(t)
	client, _ := newPollingClient(t, srv)

	_, _, err := client.Poll(context.Background(), "missing", custody.DefaultPollConfig())
	require.Error(t, err)

	code, ok := custody.IsRemoteServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 404, code)
}

func TestPollContextCancelled(t *testing.T) {
	srv := custodytest.NewServer(t)
	client := srv.NewClient(t)
	srv.SetScript(custodytest.Sequence("", custody.StatusPendingSignature))

	id := submit(t, client)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := client.Poll(ctx, id, custody.PollConfig{Timeout: time.Minute, Interval: 10 * time.Second})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
