package metrics_test

import (
	"testing"
	"time"

	"github.com/SafeMPC/custody-signer/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	m.ObserveRequest("get_transaction", 200, 10*time.Millisecond)
	m.ObserveRequest("get_transaction", 200, 20*time.Millisecond)
	m.ObserveRequest("program_call", 500, time.Millisecond)
	m.ObservePoll("SUBMITTED")
	m.ObserveSign(metrics.OutcomeSigned, time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "custody_signer_requests_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "custody_signer_poll_fetches_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "custody_signer_signatures_total"))
}

func TestMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("address", 200, time.Millisecond)
		m.ObservePoll("COMPLETED")
		m.ObserveSign(metrics.OutcomeFailed, time.Millisecond)
	})
}
