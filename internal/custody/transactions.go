package custody

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/btcsuite/btcutil/base58"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const transactionsPath = "/v1/transactions"

const signatureLength = 64

// CallOption 调整单次提交的请求体
type CallOption func(*TransactionRequest)

// WithExternalTxID 设置幂等键，服务端据此拒绝重复提交
func WithExternalTxID(id string) CallOption {
	return func(r *TransactionRequest) {
		r.ExternalTxID = id
	}
}

// WithNote 附加备注
func WithNote(note string) CallOption {
	return func(r *TransactionRequest) {
		r.Note = note
	}
}

// WithFeeLevel 指定手续费档位
func WithFeeLevel(level FeeLevel) CallOption {
	return func(r *TransactionRequest) {
		r.FeeLevel = level
	}
}

// ProgramCall 提交签名任务，每次调用都会在服务端创建一个新任务
func (c *Client) ProgramCall(ctx context.Context, asset Asset, vault string, base64Tx string, opts ...CallOption) (*CreateTransactionResponse, error) {
	req := NewProgramCallRequest(asset, vault, base64Tx)
	for _, opt := range opts {
		opt(req)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transaction request")
	}

	var resp CreateTransactionResponse
	if err := c.doRequest(ctx, opProgramCall, http.MethodPost, transactionsPath, body, &resp); err != nil {
		return nil, err
	}

	if resp.SystemMessages != nil && resp.SystemMessages.Message != "" {
		log.Warn().
			Str("txid", resp.ID).
			Str("type", resp.SystemMessages.Type).
			Str("message", resp.SystemMessages.Message).
			Msg("Custody service returned system message")
	}

	log.Debug().Str("txid", resp.ID).Str("status", resp.Status.String()).Str("vault", vault).Msg("Submitted program call")

	return &resp, nil
}

// GetTransaction 查询任务当前状态，txHash 可解析为签名时一并返回
func (c *Client) GetTransaction(ctx context.Context, id string) (*TransactionResponse, *solana.Signature, error) {
	path := transactionsPath + "/" + url.PathEscape(id)

	var resp TransactionResponse
	if err := c.doRequest(ctx, opGetTransaction, http.MethodGet, path, nil, &resp); err != nil {
		return nil, nil, err
	}

	return &resp, SignatureFromTxHash(resp.TxHash), nil
}

// SignatureFromTxHash Solana 的交易哈希就是第一个签名，必须解码为 64 字节
func SignatureFromTxHash(txHash string) *solana.Signature {
	if txHash == "" {
		return nil
	}

	raw := base58.Decode(txHash)
	if len(raw) != signatureLength {
		return nil
	}

	var sig solana.Signature
	copy(sig[:], raw)
	return &sig
}
