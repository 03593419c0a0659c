package envelope

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// MemoProgramID SPL Memo 程序
var MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// NewMemoTransaction 构建一笔 memo 交易，payer 位于签名槽位 0，其余 signers 依次排在后面
// 返回的交易签名槽位已按必需签名者数量补零
func NewMemoTransaction(memo string, blockhash solana.Hash, payer solana.PublicKey, signers ...solana.PublicKey) (*solana.Transaction, error) {
	accounts := solana.AccountMetaSlice{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
	}
	for _, s := range signers {
		if s.Equals(payer) {
			continue
		}
		accounts = append(accounts, &solana.AccountMeta{PublicKey: s, IsSigner: true, IsWritable: false})
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(MemoProgramID, accounts, []byte(memo))},
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build memo transaction")
	}

	EnsureSlots(tx)

	return tx, nil
}
