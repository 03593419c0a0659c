// Package envelope 把各方签名写入交易签名数组的正确位置
//
// 签名位置由消息决定：前 NumRequiredSignatures 个静态账户公钥依次对应签名数组的各个槽位。
package envelope

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// NoPosition 公钥不是必需签名者
const NoPosition = -1

// ErrInvalidMessage 消息声明的签名者数量超过静态账户公钥数量
var ErrInvalidMessage = errors.New("invalid message: required signatures exceed static account keys")

// KeyNotRequiredSignerError 公钥不在必需签名者列表中
type KeyNotRequiredSignerError struct {
	Key solana.PublicKey
}

func (e *KeyNotRequiredSignerError) Error() string {
	return fmt.Sprintf("%s is not a required signer of the transaction", e.Key)
}

// Signers 返回消息中的必需签名者公钥（按签名槽位顺序）
func Signers(tx *solana.Transaction) ([]solana.PublicKey, error) {
	n := int(tx.Message.Header.NumRequiredSignatures)
	if n > len(tx.Message.AccountKeys) {
		return nil, errors.Wrapf(ErrInvalidMessage, "%d > %d", n, len(tx.Message.AccountKeys))
	}

	return tx.Message.AccountKeys[:n], nil
}

// SigningPositions 返回每个公钥的签名槽位，不是必需签名者时为 NoPosition
func SigningPositions(tx *solana.Transaction, keys []solana.PublicKey) ([]int, error) {
	signers, err := Signers(tx)
	if err != nil {
		return nil, err
	}

	positions := make([]int, len(keys))
	for i, key := range keys {
		positions[i] = NoPosition
		for j, signer := range signers {
			if signer.Equals(key) {
				positions[i] = j
				break
			}
		}
	}

	return positions, nil
}

// Position 返回单个公钥的签名槽位
func Position(tx *solana.Transaction, key solana.PublicKey) (int, error) {
	positions, err := SigningPositions(tx, []solana.PublicKey{key})
	if err != nil {
		return NoPosition, err
	}

	return positions[0], nil
}

// EnsureSlots 保证 len(Signatures) == NumRequiredSignatures，不足补零，多余截断
func EnsureSlots(tx *solana.Transaction) {
	n := int(tx.Message.Header.NumRequiredSignatures)
	switch {
	case len(tx.Signatures) < n:
		tx.Signatures = append(tx.Signatures, make([]solana.Signature, n-len(tx.Signatures))...)
	case len(tx.Signatures) > n:
		tx.Signatures = tx.Signatures[:n]
	}
}

// Refresh blockhash 变化时更新交易并清空所有签名槽位
// 签名绑定 blockhash，任何一个旧签名在新 blockhash 下都不再有效
func Refresh(tx *solana.Transaction, blockhash solana.Hash) bool {
	EnsureSlots(tx)

	if tx.Message.RecentBlockhash == blockhash {
		return false
	}

	tx.Message.RecentBlockhash = blockhash
	for i := range tx.Signatures {
		tx.Signatures[i] = solana.Signature{}
	}

	return true
}

// ApplyUnchecked 按给定槽位写入签名，跳过 NoPosition
// blockhash 非 nil 时先按 Refresh 规则处理
func ApplyUnchecked(tx *solana.Transaction, signatures []solana.Signature, positions []int, blockhash *solana.Hash) error {
	if len(signatures) != len(positions) {
		return errors.Errorf("got %d signatures for %d positions", len(signatures), len(positions))
	}

	if blockhash != nil {
		Refresh(tx, *blockhash)
	} else {
		EnsureSlots(tx)
	}

	for i, pos := range positions {
		if pos == NoPosition {
			continue
		}
		if pos < 0 || pos >= len(tx.Signatures) {
			return errors.Errorf("signature position %d out of range [0, %d)", pos, len(tx.Signatures))
		}
		tx.Signatures[pos] = signatures[i]
	}

	return nil
}

// Apply 查找每个公钥的槽位并写入签名，任一公钥不是必需签名者时不做任何修改
func Apply(tx *solana.Transaction, keys []solana.PublicKey, signatures []solana.Signature, blockhash *solana.Hash) error {
	if len(keys) != len(signatures) {
		return errors.Errorf("got %d signatures for %d keys", len(signatures), len(keys))
	}

	positions, err := SigningPositions(tx, keys)
	if err != nil {
		return err
	}

	for i, pos := range positions {
		if pos == NoPosition {
			return &KeyNotRequiredSignerError{Key: keys[i]}
		}
	}

	return ApplyUnchecked(tx, signatures, positions, blockhash)
}

// MessageBytes 序列化消息（legacy 或 v0），即各方签名的内容
func MessageBytes(tx *solana.Transaction) ([]byte, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize message")
	}

	return msg, nil
}

// IsComplete 所有签名槽位都已填写
func IsComplete(tx *solana.Transaction) bool {
	if len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		return false
	}

	for _, sig := range tx.Signatures {
		if sig == (solana.Signature{}) {
			return false
		}
	}

	return true
}

// VerifySignatures 校验所有非零签名，返回第一个无效签名对应的公钥
func VerifySignatures(tx *solana.Transaction) error {
	signers, err := Signers(tx)
	if err != nil {
		return err
	}

	msg, err := MessageBytes(tx)
	if err != nil {
		return err
	}

	for i, sig := range tx.Signatures {
		if i >= len(signers) || sig == (solana.Signature{}) {
			continue
		}
		if !sig.Verify(signers[i], msg) {
			return errors.Errorf("invalid signature for %s at position %d", signers[i], i)
		}
	}

	return nil
}
