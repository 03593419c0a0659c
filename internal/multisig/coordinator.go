package multisig

import (
	"context"

	"github.com/SafeMPC/custody-signer/internal/envelope"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// State 签名轮次状态
type State int

const (
	StateNotStarted State = iota
	StateSigning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateSigning:
		return "signing"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ErrRoundComplete 轮次已完成，不能继续 Step
var ErrRoundComplete = errors.New("signing round already complete")

// Round 一次多方签名轮次：NotStarted → Signing(remaining) → Complete
//
// 其他签名方按列表顺序先签，acting 最后签，因此 acting 看到的是已经带有其他各方签名的交易。
type Round struct {
	tx        *solana.Transaction
	blockhash *solana.Hash
	acting    Signer
	pending   []Signer
	state     State
}

// NewRound 创建签名轮次
// blockhash 为 nil 时保留消息中已有的 blockhash 和签名
// acting 或任一其他签名方不是交易的必需签名者时返回 *envelope.KeyNotRequiredSignerError
func NewRound(tx *solana.Transaction, all []Signer, acting Signer, blockhash *solana.Hash) (*Round, error) {
	if acting == nil {
		return nil, errors.New("acting signer is required")
	}

	actingKey := acting.PublicKey()
	pos, err := envelope.Position(tx, actingKey)
	if err != nil {
		return nil, err
	}
	if pos == envelope.NoPosition {
		return nil, &envelope.KeyNotRequiredSignerError{Key: actingKey}
	}

	seen := map[solana.PublicKey]struct{}{actingKey: {}}
	pending := make([]Signer, 0, len(all)+1)
	for _, s := range all {
		key := s.PublicKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		p, err := envelope.Position(tx, key)
		if err != nil {
			return nil, err
		}
		if p == envelope.NoPosition {
			return nil, &envelope.KeyNotRequiredSignerError{Key: key}
		}
		pending = append(pending, s)
	}
	pending = append(pending, acting)

	return &Round{
		tx:        tx,
		blockhash: blockhash,
		acting:    acting,
		pending:   pending,
		state:     StateNotStarted,
	}, nil
}

// State 当前状态
func (r *Round) State() State {
	return r.state
}

// Remaining 尚未签名的签名方（按签名顺序）
func (r *Round) Remaining() []Signer {
	return append([]Signer(nil), r.pending...)
}

// Step 让下一个签名方签名并写入其槽位
func (r *Round) Step(ctx context.Context) error {
	switch r.state {
	case StateComplete:
		return ErrRoundComplete
	case StateNotStarted:
		if r.blockhash == nil {
			envelope.EnsureSlots(r.tx)
		} else if envelope.Refresh(r.tx, *r.blockhash) {
			log.Debug().Str("blockhash", r.blockhash.String()).Msg("Blockhash changed, cleared existing signatures")
		}
		r.state = StateSigning
	}

	s := r.pending[0]
	sig, err := contribute(ctx, s, r.tx)
	if err != nil {
		return errors.Wrapf(err, "%s signer %s failed", s.Role(), s.PublicKey())
	}

	if err := envelope.Apply(r.tx, []solana.PublicKey{s.PublicKey()}, []solana.Signature{sig}, nil); err != nil {
		return err
	}

	log.Debug().
		Str("signer", s.PublicKey().String()).
		Str("role", s.Role().String()).
		Int("remaining", len(r.pending)-1).
		Msg("Signer contributed signature")

	r.pending = r.pending[1:]
	if len(r.pending) == 0 {
		r.state = StateComplete
	}

	return nil
}

// Coordinate 运行完整轮次，直到所有签名方都签名
// blockhash 非 nil 且与消息中的不同时，先写入新 blockhash 并清空已有签名
func Coordinate(ctx context.Context, tx *solana.Transaction, all []Signer, acting Signer, blockhash *solana.Hash) error {
	round, err := NewRound(tx, all, acting, blockhash)
	if err != nil {
		return err
	}

	for round.State() != StateComplete {
		if err := round.Step(ctx); err != nil {
			return err
		}
	}

	return nil
}

// contribute TransactionSigner 看到完整交易，其他签名方只看到消息字节
func contribute(ctx context.Context, s Signer, tx *solana.Transaction) (solana.Signature, error) {
	if ts, ok := s.(TransactionSigner); ok {
		return ts.SignTransaction(ctx, tx)
	}

	msg, err := envelope.MessageBytes(tx)
	if err != nil {
		return solana.Signature{}, err
	}

	return s.SignMessage(ctx, msg)
}
