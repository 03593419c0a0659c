package multisig_test

import (
	"context"
	"testing"

	"github.com/SafeMPC/custody-signer/internal/envelope"
	"github.com/SafeMPC/custody-signer/internal/multisig"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	blockhashA = solana.Hash{1}
	blockhashB = solana.Hash{2}
)

// MockCustodialSigner 模拟远程托管签名方，记录被调用时看到的交易签名
type MockCustodialSigner struct {
	mock.Mock
	key  solana.PrivateKey
	seen []solana.Signature
}

func (m *MockCustodialSigner) PublicKey() solana.PublicKey {
	return m.key.PublicKey()
}

func (m *MockCustodialSigner) Role() multisig.Role {
	return multisig.RoleRemoteCustodial
}

func (m *MockCustodialSigner) SignMessage(ctx context.Context, message []byte) (solana.Signature, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockCustodialSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	m.seen = append([]solana.Signature(nil), tx.Signatures...)
	args := m.Called(ctx, tx)
	if err := args.Error(0); err != nil {
		return solana.Signature{}, err
	}

	msg, err := envelope.MessageBytes(tx)
	if err != nil {
		return solana.Signature{}, err
	}
	return m.key.Sign(msg)
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func TestCoordinateActingSignsLastOverPartialImage(t *testing.T) {
	a := newKey(t)
	custodial := &MockCustodialSigner{key: newKey(t)}
	custodial.On("SignTransaction", mock.Anything, mock.Anything).Return(nil).Once()

	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey(), custodial.PublicKey())
	require.NoError(t, err)

	local := multisig.NewKeypair(a)
	all := []multisig.Signer{local, custodial}

	require.NoError(t, multisig.Coordinate(context.Background(), tx, all, custodial, &blockhashA))
	custodial.AssertExpectations(t)

	// 托管方签名时 a 的签名已在槽位 0
	require.Len(t, custodial.seen, 2)
	assert.Equal(t, tx.Signatures[0], custodial.seen[0])
	assert.NotEqual(t, solana.Signature{}, custodial.seen[0])
	assert.Equal(t, solana.Signature{}, custodial.seen[1])

	assert.True(t, envelope.IsComplete(tx))
	assert.NoError(t, envelope.VerifySignatures(tx))
}

func TestCoordinateOrderAndStates(t *testing.T) {
	a, b, c := newKey(t), newKey(t), newKey(t)

	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey(), b.PublicKey(), c.PublicKey())
	require.NoError(t, err)

	acting := multisig.NewKeypair(a)
	round, err := multisig.NewRound(tx, []multisig.Signer{acting, multisig.NewKeypair(c), multisig.NewKeypair(b)}, acting, &blockhashA)
	require.NoError(t, err)
	assert.Equal(t, multisig.StateNotStarted, round.State())

	remaining := round.Remaining()
	require.Len(t, remaining, 3)
	assert.Equal(t, c.PublicKey(), remaining[0].PublicKey())
	assert.Equal(t, b.PublicKey(), remaining[1].PublicKey())
	assert.Equal(t, a.PublicKey(), remaining[2].PublicKey())

	require.NoError(t, round.Step(context.Background()))
	assert.Equal(t, multisig.StateSigning, round.State())
	assert.NotEqual(t, solana.Signature{}, tx.Signatures[2])
	assert.Equal(t, solana.Signature{}, tx.Signatures[0])

	require.NoError(t, round.Step(context.Background()))
	require.NoError(t, round.Step(context.Background()))
	assert.Equal(t, multisig.StateComplete, round.State())
	assert.Empty(t, round.Remaining())

	assert.True(t, errors.Is(round.Step(context.Background()), multisig.ErrRoundComplete))
	assert.NoError(t, envelope.VerifySignatures(tx))
}

func TestCoordinateActingNotRequired(t *testing.T) {
	a, outsider := newKey(t), newKey(t)
	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey())
	require.NoError(t, err)

	err = multisig.Coordinate(context.Background(), tx, []multisig.Signer{multisig.NewKeypair(a)}, multisig.NewKeypair(outsider), &blockhashA)
	require.Error(t, err)

	var notRequired *envelope.KeyNotRequiredSignerError
	require.True(t, errors.As(err, &notRequired))
	assert.Equal(t, outsider.PublicKey(), notRequired.Key)
}

func TestCoordinateDeduplicatesByPublicKey(t *testing.T) {
	a, b := newKey(t), newKey(t)
	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey(), b.PublicKey())
	require.NoError(t, err)

	acting := multisig.NewKeypair(a)
	// 不同对象持有同一公钥视为同一方
	round, err := multisig.NewRound(tx, []multisig.Signer{multisig.NewKeypair(b), multisig.NewKeypair(b), multisig.NewKeypair(a)}, acting, &blockhashA)
	require.NoError(t, err)
	assert.Len(t, round.Remaining(), 2)
}

func TestCoordinateNewBlockhashResetsSignatures(t *testing.T) {
	a, b := newKey(t), newKey(t)
	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey(), b.PublicKey())
	require.NoError(t, err)

	all := []multisig.Signer{multisig.NewKeypair(a), multisig.NewKeypair(b)}
	require.NoError(t, multisig.Coordinate(context.Background(), tx, all, all[1], &blockhashA))
	oldA := tx.Signatures[0]

	require.NoError(t, multisig.Coordinate(context.Background(), tx, all, all[1], &blockhashB))
	assert.Equal(t, blockhashB, tx.Message.RecentBlockhash)
	assert.NotEqual(t, oldA, tx.Signatures[0])
	assert.NoError(t, envelope.VerifySignatures(tx))
}

func TestCoordinateWithoutBlockhashKeepsSignatures(t *testing.T) {
	a, b := newKey(t), newKey(t)
	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey(), b.PublicKey())
	require.NoError(t, err)

	msg, err := envelope.MessageBytes(tx)
	require.NoError(t, err)
	sigB, err := b.Sign(msg)
	require.NoError(t, err)
	require.NoError(t, envelope.Apply(tx, []solana.PublicKey{b.PublicKey()}, []solana.Signature{sigB}, nil))

	acting := multisig.NewKeypair(a)
	require.NoError(t, multisig.Coordinate(context.Background(), tx, []multisig.Signer{acting}, acting, nil))

	assert.Equal(t, blockhashA, tx.Message.RecentBlockhash)
	assert.Equal(t, sigB, tx.Signatures[1])
	assert.True(t, envelope.IsComplete(tx))
	assert.NoError(t, envelope.VerifySignatures(tx))
}

func TestCoordinatePresignedAndNull(t *testing.T) {
	a, b, c := newKey(t), newKey(t), newKey(t)
	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey(), b.PublicKey(), c.PublicKey())
	require.NoError(t, err)

	msg, err := envelope.MessageBytes(tx)
	require.NoError(t, err)
	sigB, err := b.Sign(msg)
	require.NoError(t, err)

	all := []multisig.Signer{
		multisig.NewPresigned(b.PublicKey(), sigB),
		multisig.NewNull(c.PublicKey()),
	}
	acting := multisig.NewKeypair(a)

	require.NoError(t, multisig.Coordinate(context.Background(), tx, all, acting, &blockhashA))
	assert.Equal(t, sigB, tx.Signatures[1])
	assert.Equal(t, solana.Signature{}, tx.Signatures[2])
	assert.False(t, envelope.IsComplete(tx))
	assert.NoError(t, envelope.VerifySignatures(tx))
}

func TestCoordinateSignerFailure(t *testing.T) {
	a := newKey(t)
	custodial := &MockCustodialSigner{key: newKey(t)}
	custodial.On("SignTransaction", mock.Anything, mock.Anything).Return(errors.New("rejected")).Once()

	tx, err := envelope.NewMemoTransaction("multi", blockhashA, a.PublicKey(), custodial.PublicKey())
	require.NoError(t, err)

	err = multisig.Coordinate(context.Background(), tx, []multisig.Signer{multisig.NewKeypair(a)}, custodial, &blockhashA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
	custodial.AssertExpectations(t)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "remote_custodial", multisig.RoleRemoteCustodial.String())
	assert.Equal(t, "local_keypair", multisig.RoleLocalKeypair.String())
	assert.Equal(t, "presigned", multisig.RolePresigned.String())
	assert.Equal(t, "null", multisig.RoleNull.String())
}
