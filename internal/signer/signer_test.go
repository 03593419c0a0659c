package signer_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/SafeMPC/custody-signer/internal/bridge"
	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/SafeMPC/custody-signer/internal/envelope"
	"github.com/SafeMPC/custody-signer/internal/metrics"
	"github.com/SafeMPC/custody-signer/internal/multisig"
	"github.com/SafeMPC/custody-signer/internal/signer"
	"github.com/SafeMPC/custody-signer/internal/test/custodytest"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const vault = "3"

var blockhash = solana.Hash{9, 9, 9}

func fastPoll() custody.PollConfig {
	return custody.PollConfig{Timeout: 40 * time.Millisecond, Interval: 10 * time.Millisecond}
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

// setup 启动测试托管服务并创建以 custodyKey 为金库地址的签名方
func setup(t *testing.T, opts ...signer.Option) (*custodytest.Server, *signer.RemoteSigner, solana.PrivateKey) {
	t.Helper()

	srv := custodytest.NewServer(t)
	custodyKey := newKey(t)
	srv.SetAddresses(vault, custody.AssetSOLTest, custodyKey.PublicKey().String())

	s, err := signer.New(context.Background(), srv.NewClient(t), vault, custody.AssetSOLTest,
		append([]signer.Option{signer.WithPollConfig(fastPoll())}, opts...)...)
	require.NoError(t, err)

	return srv, s, custodyKey
}

func memoTx(t *testing.T, payer solana.PublicKey, signers ...solana.PublicKey) *solana.Transaction {
	t.Helper()
	tx, err := envelope.NewMemoTransaction("custody", blockhash, payer, signers...)
	require.NoError(t, err)
	return tx
}

func TestNewResolvesVaultAddress(t *testing.T) {
	_, s, custodyKey := setup(t)

	assert.Equal(t, custodyKey.PublicKey(), s.PublicKey())
	assert.Equal(t, multisig.RoleRemoteCustodial, s.Role())
	assert.Equal(t, signer.Identity{VaultID: vault, Asset: custody.AssetSOLTest, PublicKey: custodyKey.PublicKey()}, s.Identity())
}

func TestNewWithoutAddress(t *testing.T) {
	srv := custodytest.NewServer(t)

	_, err := signer.New(context.Background(), srv.NewClient(t), vault, custody.AssetSOL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, custody.ErrNoAddress))
}

func TestNewWithPublicKeySkipsLookup(t *testing.T) {
	srv := custodytest.NewServer(t)
	pk := newKey(t).PublicKey()

	s, err := signer.New(context.Background(), srv.NewClient(t), vault, custody.AssetSOL, signer.WithPublicKey(pk))
	require.NoError(t, err)
	assert.Equal(t, pk, s.PublicKey())
	assert.Empty(t, srv.Claims())
}

func TestSignTransaction(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.SignWith(custodyKey, 1))

	tx := memoTx(t, custodyKey.PublicKey())
	sig, err := s.SignTransaction(context.Background(), tx)
	require.NoError(t, err)

	msg, err := envelope.MessageBytes(tx)
	require.NoError(t, err)
	assert.True(t, sig.Verify(custodyKey.PublicKey(), msg))

	subs := srv.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, custody.OperationProgramCall, subs[0].Operation)
	assert.Equal(t, custody.AssetSOLTest.String(), subs[0].AssetID)
	assert.Equal(t, vault, subs[0].Source.ID)
	assert.Empty(t, subs[0].ExternalTxID)
	assert.Equal(t, 2, srv.Fetches("tx-1"))

	submitted, err := custodytest.DecodeProgramCall(subs[0].ExtraParameters.ProgramCallData)
	require.NoError(t, err)
	assert.Equal(t, blockhash, submitted.Message.RecentBlockhash)
}

func TestSignMessage(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.SignWith(custodyKey, 0))

	msg, err := envelope.MessageBytes(memoTx(t, custodyKey.PublicKey()))
	require.NoError(t, err)

	sig, err := s.SignMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, sig.Verify(custodyKey.PublicKey(), msg))

	_, err = s.SignMessage(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Len(t, srv.Submissions(), 1)
}

func TestSignTransactionStillPending(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.Sequence("", custody.StatusPendingSignature))

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.Error(t, err)

	var unknown *signer.OutcomeUnknownError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "tx-1", unknown.JobID)
	assert.Equal(t, custody.StatusPendingSignature, unknown.Status)
	assert.True(t, errors.Is(err, custody.ErrTimeout))
}

func TestSignTransactionFailed(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.Failing(custody.StatusBlocked, custody.SubStatusBlockedByPolicy, "policy says no"))

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.Error(t, err)

	var failed *signer.JobFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "tx-1", failed.JobID)
	assert.Equal(t, custody.StatusBlocked, failed.Status)
	assert.Equal(t, custody.SubStatusBlockedByPolicy, failed.SubStatus)
	assert.Equal(t, "policy says no", failed.Description)
	assert.Contains(t, err.Error(), "policy says no")
	assert.False(t, errors.Is(err, custody.ErrTimeout))
}

func TestSignTransactionCompletedWithoutSignature(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.Sequence("", custody.StatusCompleted))

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	assert.True(t, errors.Is(err, signer.ErrSignatureAbsent))
}

func TestSignTransactionWrongKey(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.SignWith(newKey(t), 0))

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	assert.True(t, errors.Is(err, signer.ErrSignatureMismatch))
}

func TestSignTransactionBroadcastingUsesSignature(t *testing.T) {
	srv, s, custodyKey := setup(t)

	tx := memoTx(t, custodyKey.PublicKey())
	msg, err := envelope.MessageBytes(tx)
	require.NoError(t, err)
	want, err := custodyKey.Sign(msg)
	require.NoError(t, err)
	srv.SetScript(custodytest.Sequence(want.String(), custody.StatusBroadcasting))

	sig, err := s.SignTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, want, sig)
}

func TestSignTransactionBroadcastingWithoutSignature(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.Sequence("", custody.StatusBroadcasting))

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.Error(t, err)

	var unknown *signer.OutcomeUnknownError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, custody.StatusBroadcasting, unknown.Status)
	assert.True(t, errors.Is(err, custody.ErrTimeout))
	assert.False(t, errors.Is(err, signer.ErrSignatureAbsent))
}

func TestSignTransactionRemoteError(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.Override(http.MethodPost, "/v1/transactions", http.StatusBadRequest, `{"message":"bad"}`)

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.Error(t, err)

	code, ok := custody.IsRemoteServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestExternalTxIDsAndNote(t *testing.T) {
	srv, s, custodyKey := setup(t, signer.WithExternalTxIDs(), signer.WithNote("rebalance"))
	srv.SetScript(custodytest.SignWith(custodyKey, 0))

	for i := 0; i < 2; i++ {
		_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
		require.NoError(t, err)
	}

	subs := srv.Submissions()
	require.Len(t, subs, 2)
	for _, sub := range subs {
		_, err := uuid.Parse(sub.ExternalTxID)
		assert.NoError(t, err)
		assert.Equal(t, "rebalance", sub.Note)
	}
	assert.NotEqual(t, subs[0].ExternalTxID, subs[1].ExternalTxID)
}

func TestExternalTxIDFunc(t *testing.T) {
	srv, s, custodyKey := setup(t, signer.WithExternalTxIDFunc(func() string { return "order-42" }))
	srv.SetScript(custodytest.SignWith(custodyKey, 0))

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.NoError(t, err)
	assert.Equal(t, "order-42", srv.Submissions()[0].ExternalTxID)
}

func TestLocalKeypairShortCircuit(t *testing.T) {
	srv := custodytest.NewServer(t)
	local := newKey(t)

	s, err := signer.New(context.Background(), srv.NewClient(t), vault, custody.AssetSOL, signer.WithLocalKeypair(local))
	require.NoError(t, err)
	assert.Equal(t, local.PublicKey(), s.PublicKey())

	tx := memoTx(t, local.PublicKey())
	sig, err := s.SignTransaction(context.Background(), tx)
	require.NoError(t, err)

	msg, err := envelope.MessageBytes(tx)
	require.NoError(t, err)
	assert.True(t, sig.Verify(local.PublicKey(), msg))
	assert.Empty(t, srv.Submissions())
	assert.Empty(t, srv.Claims())
}

func TestInlineMode(t *testing.T) {
	srv, s, custodyKey := setup(t, signer.WithInline())
	srv.SetScript(custodytest.SignWith(custodyKey, 0))

	_, err := s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.NoError(t, err)
}

func TestCoordinateWithRemoteSigner(t *testing.T) {
	srv, s, custodyKey := setup(t)
	srv.SetScript(custodytest.SignWith(custodyKey, 1))

	payer := newKey(t)
	tx := memoTx(t, payer.PublicKey(), custodyKey.PublicKey())

	local := multisig.NewKeypair(payer)
	require.NoError(t, multisig.Coordinate(context.Background(), tx, []multisig.Signer{local, s}, s, &blockhash))

	assert.True(t, envelope.IsComplete(tx))
	assert.NoError(t, envelope.VerifySignatures(tx))

	// 托管服务收到的交易已带有付款方签名
	submitted, err := custodytest.DecodeProgramCall(srv.Submissions()[0].ExtraParameters.ProgramCallData)
	require.NoError(t, err)
	require.Len(t, submitted.Signatures, 2)
	assert.Equal(t, tx.Signatures[0], submitted.Signatures[0])
	assert.Equal(t, solana.Signature{}, submitted.Signatures[1])
}

func TestSignMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	srv, s, custodyKey := setup(t, signer.WithMetrics(m))
	srv.SetScript(custodytest.SignWith(custodyKey, 0))
	_, err = s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.NoError(t, err)

	srv.SetScript(custodytest.Failing(custody.StatusRejected, custody.SubStatusRejectedByUser, ""))
	_, err = s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.Error(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "custody_signer_signatures_total"))
}

// MockCustody 可控制阻塞行为的托管服务
type MockCustody struct {
	mock.Mock
}

func (m *MockCustody) Address(ctx context.Context, vault string, asset custody.Asset) (solana.PublicKey, error) {
	args := m.Called(ctx, vault, asset)
	return args.Get(0).(solana.PublicKey), args.Error(1)
}

func (m *MockCustody) ProgramCall(ctx context.Context, asset custody.Asset, vault string, base64Tx string, opts ...custody.CallOption) (*custody.CreateTransactionResponse, error) {
	args := m.Called(ctx, asset, vault, base64Tx)
	return args.Get(0).(*custody.CreateTransactionResponse), args.Error(1)
}

func (m *MockCustody) Poll(ctx context.Context, id string, cfg custody.PollConfig) (*custody.TransactionResponse, *solana.Signature, error) {
	args := m.Called(ctx, id, cfg)
	return args.Get(0).(*custody.TransactionResponse), nil, args.Error(1)
}

func TestBridgeTimeout(t *testing.T) {
	key := newKey(t)
	release := make(chan struct{})
	defer close(release)

	c := &MockCustody{}
	c.On("ProgramCall", mock.Anything, custody.AssetSOL, vault, mock.Anything).
		Return(&custody.CreateTransactionResponse{ID: "tx-9", Status: custody.StatusSubmitted}, nil)
	c.On("Poll", mock.Anything, "tx-9", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&custody.TransactionResponse{ID: "tx-9", Status: custody.StatusCompleted}, nil)

	s, err := signer.New(context.Background(), c, vault, custody.AssetSOL,
		signer.WithPublicKey(key.PublicKey()),
		signer.WithBridgeTimeout(20*time.Millisecond),
	)
	require.NoError(t, err)

	_, err = s.SignTransaction(context.Background(), memoTx(t, key.PublicKey()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, bridge.ErrTimeout))
	assert.Contains(t, err.Error(), "tx-9")
	c.AssertCalled(t, "ProgramCall", mock.Anything, custody.AssetSOL, vault, mock.Anything)
}

func TestFromConfig(t *testing.T) {
	srv := custodytest.NewServer(t)
	custodyKey := newKey(t)
	srv.SetAddresses(vault, custody.AssetSOLTest, custodyKey.PublicKey().String())
	srv.SetScript(custodytest.SignWith(custodyKey, 0))

	cfg := config.Signer{
		Vault:          vault,
		APIKey:         srv.APIKey,
		Secret:         srv.SecretPEM,
		Endpoint:       srv.URL,
		Asset:          custody.AssetSOLTest,
		PollTimeout:    time.Second,
		PollInterval:   10 * time.Millisecond,
		RequestTimeout: custody.DefaultTimeout,
		ConnectTimeout: custody.DefaultConnectTimeout,
		ExternalTxIDs:  true,
	}

	s, err := signer.FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, custodyKey.PublicKey(), s.PublicKey())

	_, err = s.SignTransaction(context.Background(), memoTx(t, custodyKey.PublicKey()))
	require.NoError(t, err)
	assert.NotEmpty(t, srv.Submissions()[0].ExternalTxID)

	cfg.PublicKey = "not-a-key"
	_, err = signer.FromConfig(context.Background(), cfg)
	assert.True(t, errors.Is(err, custody.ErrInvalidPubkey))
}
