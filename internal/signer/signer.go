// Package signer 把远程托管签名服务包装成交易签名方
package signer

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/SafeMPC/custody-signer/internal/bridge"
	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/SafeMPC/custody-signer/internal/envelope"
	"github.com/SafeMPC/custody-signer/internal/metrics"
	"github.com/SafeMPC/custody-signer/internal/multisig"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// bridgeGrace 桥接超时在轮询超时之上额外留出的时间
const bridgeGrace = 30 * time.Second

// Custody 签名方依赖的托管服务操作，*custody.Client 实现了它
type Custody interface {
	Address(ctx context.Context, vault string, asset custody.Asset) (solana.PublicKey, error)
	ProgramCall(ctx context.Context, asset custody.Asset, vault string, base64Tx string, opts ...custody.CallOption) (*custody.CreateTransactionResponse, error)
	Poll(ctx context.Context, id string, cfg custody.PollConfig) (*custody.TransactionResponse, *solana.Signature, error)
}

// Identity 签名方身份，构造后不可变
type Identity struct {
	VaultID   string
	Asset     custody.Asset
	PublicKey solana.PublicKey
}

// Option 配置 RemoteSigner
type Option func(*options)

type options struct {
	publicKey     *solana.PublicKey
	poll          custody.PollConfig
	bridgeTimeout time.Duration
	localKey      solana.PrivateKey
	externalTxID  func() string
	note          string
	metrics       *metrics.Metrics
	inline        bool
}

// WithPublicKey 使用已知公钥，跳过远程地址查询
func WithPublicKey(pk solana.PublicKey) Option {
	return func(o *options) {
		o.publicKey = &pk
	}
}

// WithPollConfig 替换轮询参数
func WithPollConfig(cfg custody.PollConfig) Option {
	return func(o *options) {
		o.poll = cfg
	}
}

// WithBridgeTimeout 每次阻塞调用的等待上限，默认轮询超时加 30s
func WithBridgeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.bridgeTimeout = d
	}
}

// WithLocalKeypair 开发环境下直接用本地私钥签名，不访问托管服务
func WithLocalKeypair(key solana.PrivateKey) Option {
	return func(o *options) {
		o.localKey = key
	}
}

// WithExternalTxIDs 每次提交生成一个 UUID 作为幂等键
func WithExternalTxIDs() Option {
	return WithExternalTxIDFunc(uuid.NewString)
}

// WithExternalTxIDFunc 由调用方提供每次提交的幂等键
func WithExternalTxIDFunc(fn func() string) Option {
	return func(o *options) {
		o.externalTxID = fn
	}
}

// WithNote 为每个签名任务附加备注
func WithNote(note string) Option {
	return func(o *options) {
		o.note = note
	}
}

// WithMetrics 记录签名结果指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithInline 在调用方 goroutine 上阻塞执行，单工作线程时自动回退到独立 goroutine
func WithInline() Option {
	return func(o *options) {
		o.inline = true
	}
}

func newOptions(opts []Option) *options {
	o := &options{poll: custody.DefaultPollConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if o.bridgeTimeout <= 0 {
		o.bridgeTimeout = o.poll.Timeout + bridgeGrace
	}
	return o
}

// RemoteSigner 远程托管签名方，可并发使用
type RemoteSigner struct {
	client   Custody
	identity Identity
	opts     *options
}

var _ multisig.TransactionSigner = (*RemoteSigner)(nil)

// New 创建远程签名方，未指定公钥时向托管服务查询金库地址
func New(ctx context.Context, client Custody, vault string, asset custody.Asset, opts ...Option) (*RemoteSigner, error) {
	return newSigner(ctx, client, vault, asset, newOptions(opts))
}

func newSigner(ctx context.Context, client Custody, vault string, asset custody.Asset, o *options) (*RemoteSigner, error) {
	s := &RemoteSigner{
		client:   client,
		identity: Identity{VaultID: vault, Asset: asset},
		opts:     o,
	}

	switch {
	case o.publicKey != nil:
		s.identity.PublicKey = *o.publicKey
	case o.localKey != nil:
		s.identity.PublicKey = o.localKey.PublicKey()
	default:
		pk, err := block(ctx, o, func() (solana.PublicKey, error) {
			return client.Address(ctx, vault, asset)
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve custody public key")
		}
		s.identity.PublicKey = pk
	}

	if o.localKey != nil {
		log.Warn().Str("pubkey", s.identity.PublicKey.String()).Msg("Using local keypair instead of custody service")
	}

	log.Info().
		Str("vault", vault).
		Str("asset", asset.String()).
		Str("pubkey", s.identity.PublicKey.String()).
		Msg("Remote signer ready")

	return s, nil
}

// FromConfig 根据环境配置创建客户端和签名方
func FromConfig(ctx context.Context, cfg config.Signer, opts ...Option) (*RemoteSigner, error) {
	base := []Option{WithPollConfig(cfg.PollConfig())}
	if cfg.ExternalTxIDs {
		base = append(base, WithExternalTxIDs())
	}
	if cfg.PublicKey != "" {
		pk, err := custody.ParsePublicKey(cfg.PublicKey)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", config.EnvPubkey)
		}
		base = append(base, WithPublicKey(pk))
	}
	o := newOptions(append(base, opts...))

	client, err := custody.NewClient(cfg.APIKey, cfg.Secret,
		custody.WithURL(cfg.Endpoint),
		custody.WithTimeout(cfg.RequestTimeout),
		custody.WithConnectTimeout(cfg.ConnectTimeout),
		custody.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}

	return newSigner(ctx, client, cfg.Vault, cfg.Asset, o)
}

// PublicKey 签名公钥
func (s *RemoteSigner) PublicKey() solana.PublicKey {
	return s.identity.PublicKey
}

// Role 远程托管
func (s *RemoteSigner) Role() multisig.Role {
	return multisig.RoleRemoteCustodial
}

// Identity 签名方身份
func (s *RemoteSigner) Identity() Identity {
	return s.identity
}

// SignMessage 把消息字节包装成未签名交易后提交
func (s *RemoteSigner) SignMessage(ctx context.Context, message []byte) (solana.Signature, error) {
	var msg solana.Message
	if err := msg.UnmarshalWithDecoder(bin.NewBinDecoder(message)); err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to decode message")
	}

	tx := &solana.Transaction{Message: msg}
	envelope.EnsureSlots(tx)

	return s.SignTransaction(ctx, tx)
}

// SignTransaction 提交交易（包含已有的部分签名）并等待托管服务签名
func (s *RemoteSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	start := time.Now()

	envelope.EnsureSlots(tx)
	msg, err := envelope.MessageBytes(tx)
	if err != nil {
		return solana.Signature{}, err
	}

	if s.opts.localKey != nil {
		sig, err := s.opts.localKey.Sign(msg)
		if err != nil {
			s.opts.metrics.ObserveSign(metrics.OutcomeFailed, time.Since(start))
			return solana.Signature{}, errors.Wrap(err, "local keypair signing failed")
		}
		s.opts.metrics.ObserveSign(metrics.OutcomeSigned, time.Since(start))
		return sig, nil
	}

	sig, err := s.sign(ctx, tx, msg)
	s.opts.metrics.ObserveSign(outcome(err), time.Since(start))
	return sig, err
}

func (s *RemoteSigner) sign(ctx context.Context, tx *solana.Transaction, msg []byte) (solana.Signature, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to serialize transaction")
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	var callOpts []custody.CallOption
	if s.opts.externalTxID != nil {
		callOpts = append(callOpts, custody.WithExternalTxID(s.opts.externalTxID()))
	}
	if s.opts.note != "" {
		callOpts = append(callOpts, custody.WithNote(s.opts.note))
	}

	created, err := block(ctx, s.opts, func() (*custody.CreateTransactionResponse, error) {
		return s.client.ProgramCall(ctx, s.identity.Asset, s.identity.VaultID, encoded, callOpts...)
	})
	if err != nil {
		return solana.Signature{}, err
	}

	log.Info().Str("txid", created.ID).Str("vault", s.identity.VaultID).Msg("Custody signing job created")

	type polled struct {
		job *custody.TransactionResponse
		sig *solana.Signature
	}
	res, err := block(ctx, s.opts, func() (polled, error) {
		job, sig, err := s.client.Poll(ctx, created.ID, s.opts.poll)
		return polled{job: job, sig: sig}, err
	})
	if err != nil {
		return solana.Signature{}, errors.Wrapf(err, "txid: %s", created.ID)
	}

	return s.interpret(created.ID, res.job, res.sig, msg)
}

// interpret 把任务最终视图转换为签名或对应类别的错误
func (s *RemoteSigner) interpret(id string, job *custody.TransactionResponse, sig *solana.Signature, msg []byte) (solana.Signature, error) {
	switch {
	case job.Status.IsPending():
		return solana.Signature{}, &OutcomeUnknownError{JobID: id, Status: job.Status, SubStatus: job.SubStatus}
	case job.Status.IsFailure():
		return solana.Signature{}, &JobFailedError{
			JobID:       id,
			Status:      job.Status,
			SubStatus:   job.SubStatus,
			Description: job.ErrorDescription,
		}
	case !job.Status.IsFinal() && sig == nil:
		return solana.Signature{}, &OutcomeUnknownError{JobID: id, Status: job.Status, SubStatus: job.SubStatus}
	case job.Status == custody.StatusBroadcasting:
		log.Warn().Str("txid", id).Msg("Custody job is broadcasting, using reported signature")
	}

	if sig == nil {
		return solana.Signature{}, errors.Wrapf(ErrSignatureAbsent, "txid: %s status %s", id, job.Status)
	}

	if !sig.Verify(s.identity.PublicKey, msg) {
		return solana.Signature{}, errors.Wrapf(ErrSignatureMismatch, "txid: %s pubkey %s", id, s.identity.PublicKey)
	}

	log.Info().Str("txid", id).Str("signature", sig.String()).Msg("Custody job signed")

	return *sig, nil
}

// block 按配置在独立 goroutine 或调用方 goroutine 上执行阻塞操作
func block[T any](ctx context.Context, o *options, fn func() (T, error)) (T, error) {
	if o.inline {
		v, err := bridge.RunInline(ctx, fn)
		if !errors.Is(err, bridge.ErrSingleWorker) {
			return v, err
		}
		log.Debug().Msg("Single scheduler worker, running blocking call on its own goroutine")
	}

	return bridge.Run(ctx, o.bridgeTimeout, fn)
}

func outcome(err error) string {
	var (
		unknown *OutcomeUnknownError
		failed  *JobFailedError
	)

	switch {
	case err == nil:
		return metrics.OutcomeSigned
	case errors.As(err, &unknown), errors.Is(err, bridge.ErrTimeout):
		return metrics.OutcomeUnknown
	case errors.As(err, &failed), errors.Is(err, ErrSignatureMismatch):
		return metrics.OutcomeFailed
	case errors.Is(err, ErrSignatureAbsent):
		return metrics.OutcomeNoSignature
	default:
		return metrics.OutcomeTransportError
	}
}
