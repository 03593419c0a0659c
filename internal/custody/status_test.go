package custody_test

import (
	"testing"

	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusGroups(t *testing.T) {
	final := []custody.TransactionStatus{
		custody.StatusBlocked,
		custody.StatusCancelled,
		custody.StatusCancelling,
		custody.StatusCompleted,
		custody.StatusConfirming,
		custody.StatusFailed,
		custody.StatusRejected,
	}
	for _, s := range final {
		assert.True(t, s.IsFinal(), s)
		assert.False(t, s.IsPending(), s)
	}

	pending := []custody.TransactionStatus{
		custody.StatusSubmitted,
		custody.StatusQueued,
		custody.StatusPendingAMLScreening,
		custody.StatusPendingEnrichment,
		custody.StatusPendingAuthorization,
		custody.StatusPendingSignature,
		custody.StatusPendingThirdParty,
		custody.StatusPendingThirdPartyManualApproval,
	}
	for _, s := range pending {
		assert.False(t, s.IsFinal(), s)
		assert.True(t, s.IsPending(), s)
	}

	assert.False(t, custody.StatusBroadcasting.IsFinal())
	assert.False(t, custody.StatusBroadcasting.IsPending())
	assert.True(t, custody.StatusConfirming.IsSuccess())
	assert.True(t, custody.StatusCancelling.IsFailure())
	assert.False(t, custody.TransactionStatus("SOMETHING_NEW").IsFinal())
}

func TestSubStatusKnown(t *testing.T) {
	assert.True(t, custody.SubStatusBlockedByPolicy.IsKnown())
	assert.True(t, custody.SubStatusThirdPartyFailed.IsKnown())
	assert.False(t, custody.SubStatus("NOT_A_SUB_STATUS").IsKnown())
}

func TestParseAsset(t *testing.T) {
	a, err := custody.ParseAsset("sol")
	require.NoError(t, err)
	assert.Equal(t, custody.AssetSOL, a)
	assert.True(t, a.IsMainnet())

	a, err = custody.ParseAsset(" Sol_Test ")
	require.NoError(t, err)
	assert.Equal(t, custody.AssetSOLTest, a)
	assert.False(t, a.IsMainnet())

	_, err = custody.ParseAsset("ETH")
	require.Error(t, err)
	assert.True(t, errors.Is(err, custody.ErrUnknownAsset))

	assert.Equal(t, custody.AssetSOL, custody.AssetForNetwork(true))
	assert.Equal(t, custody.AssetSOLTest, custody.AssetForNetwork(false))
}

func TestTransactionResponseString(t *testing.T) {
	job := &custody.TransactionResponse{
		ID:               "tx-1",
		Status:           custody.StatusFailed,
		SubStatus:        custody.SubStatusInsufficientFunds,
		ErrorDescription: "not enough SOL",
	}

	assert.Equal(t, "id:tx-1 status:FAILED sub_status:INSUFFICIENT_FUNDS error:not enough SOL", job.String())
}
