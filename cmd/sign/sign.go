package sign

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/envelope"
	"github.com/SafeMPC/custody-signer/internal/multisig"
	"github.com/SafeMPC/custody-signer/internal/signer"
	"github.com/SafeMPC/custody-signer/internal/util/command"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	memoFlag      = "memo"
	keypairFlag   = "keypair"
	blockhashFlag = "blockhash"
	sendFlag      = "send"
	rpcFlag       = "rpc"
)

// New sign-memo 命令：托管金库付费并签名一笔 memo 交易，可附加本地签名方
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-memo",
		Short: "Build a memo transaction paid by the custody vault and sign it",
		RunE:  run,
	}

	cmd.Flags().String(memoFlag, "custody-signer", "memo text")
	cmd.Flags().StringSlice(keypairFlag, nil, "additional signer keypair files (solana-keygen JSON)")
	cmd.Flags().String(blockhashFlag, "", "recent blockhash, fetched from RPC when empty")
	cmd.Flags().Bool(sendFlag, false, "broadcast the signed transaction through RPC")
	cmd.Flags().String(rpcFlag, "", "RPC endpoint, defaults to RPC_URL")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.SignerFromEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	memo, _ := flags.GetString(memoFlag)
	keypairs, _ := flags.GetStringSlice(keypairFlag)
	hash, _ := flags.GetString(blockhashFlag)
	send, _ := flags.GetBool(sendFlag)
	if endpoint, _ := flags.GetString(rpcFlag); endpoint != "" {
		cfg.RPCURL = endpoint
	}

	extra := make([]solana.PrivateKey, 0, len(keypairs))
	for _, path := range keypairs {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read keypair %s", path)
		}
		extra = append(extra, key)
	}

	client := rpc.New(cfg.RPCURL)

	return command.WithSigner(cmd.Context(), cfg, func(ctx context.Context, s *signer.RemoteSigner) error {
		blockhash, err := ResolveBlockhash(ctx, client, hash)
		if err != nil {
			return err
		}

		tx, err := SignMemo(ctx, s, extra, memo, blockhash)
		if err != nil {
			return err
		}

		raw, err := tx.MarshalBinary()
		if err != nil {
			return errors.Wrap(err, "failed to serialize transaction")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(raw)); err != nil {
			return err
		}

		if !send {
			return nil
		}

		sig, err := client.SendTransaction(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "failed to send transaction")
		}
		log.Info().Str("signature", sig.String()).Str("rpc", cfg.RPCURL).Msg("Transaction sent")

		return nil
	})
}

// BlockhashClient 获取最新 blockhash 的 RPC 能力
type BlockhashClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

// ResolveBlockhash hash 非空时直接解析，否则向 RPC 查询 finalized blockhash
func ResolveBlockhash(ctx context.Context, client BlockhashClient, hash string) (solana.Hash, error) {
	if hash != "" {
		h, err := solana.HashFromBase58(hash)
		return h, errors.Wrap(err, "invalid blockhash")
	}

	out, err := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, errors.Wrap(err, "failed to fetch latest blockhash")
	}

	return out.Value.Blockhash, nil
}

// SignMemo payer 为付款方并最后签名，extra 中的本地私钥先签
func SignMemo(ctx context.Context, payer multisig.Signer, extra []solana.PrivateKey, memo string, blockhash solana.Hash) (*solana.Transaction, error) {
	others := make([]multisig.Signer, 0, len(extra))
	keys := make([]solana.PublicKey, 0, len(extra))
	for _, k := range extra {
		others = append(others, multisig.NewKeypair(k))
		keys = append(keys, k.PublicKey())
	}

	tx, err := envelope.NewMemoTransaction(memo, blockhash, payer.PublicKey(), keys...)
	if err != nil {
		return nil, err
	}

	if err := multisig.Coordinate(ctx, tx, others, payer, &blockhash); err != nil {
		return nil, err
	}

	if err := envelope.VerifySignatures(tx); err != nil {
		return nil, err
	}

	return tx, nil
}
