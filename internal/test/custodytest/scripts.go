package custodytest

import (
	"encoding/base64"

	"github.com/SafeMPC/custody-signer/internal/custody"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Sequence 第 i 次查询返回 statuses[i]，超出后停留在最后一个状态
// 成功终态附带 txHash
func Sequence(txHash string, statuses ...custody.TransactionStatus) JobScript {
	return func(_ *custody.TransactionRequest, fetch int) custody.TransactionResponse {
		status := statuses[len(statuses)-1]
		if fetch < len(statuses) {
			status = statuses[fetch]
		}

		resp := custody.TransactionResponse{Status: status}
		if status.IsSuccess() || status == custody.StatusBroadcasting {
			resp.TxHash = txHash
		}
		return resp
	}
}

// Failing 第一次查询即返回失败终态
func Failing(status custody.TransactionStatus, sub custody.SubStatus, description string) JobScript {
	return func(_ *custody.TransactionRequest, _ int) custody.TransactionResponse {
		return custody.TransactionResponse{
			Status:           status,
			SubStatus:        sub,
			ErrorDescription: description,
		}
	}
}

// SignWith 前 pending 次查询返回 PENDING_SIGNATURE，之后用 key 对提交的交易消息签名并返回 COMPLETED
func SignWith(key solana.PrivateKey, pending int) JobScript {
	return func(req *custody.TransactionRequest, fetch int) custody.TransactionResponse {
		if fetch < pending {
			return custody.TransactionResponse{Status: custody.StatusPendingSignature}
		}

		sig, err := signProgramCall(key, req.ExtraParameters.ProgramCallData)
		if err != nil {
			return custody.TransactionResponse{
				Status:           custody.StatusFailed,
				SubStatus:        custody.SubStatusInvalidContractCallData,
				ErrorDescription: err.Error(),
			}
		}

		return custody.TransactionResponse{Status: custody.StatusCompleted, TxHash: sig.String()}
	}
}

// DecodeProgramCall 解码 programCallData 中的交易
func DecodeProgramCall(data string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	return solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
}

func signProgramCall(key solana.PrivateKey, data string) (solana.Signature, error) {
	tx, err := DecodeProgramCall(data)
	if err != nil {
		return solana.Signature{}, err
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return solana.Signature{}, err
	}

	return key.Sign(msg)
}
