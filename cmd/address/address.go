package address

import (
	"context"
	"fmt"

	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/signer"
	"github.com/SafeMPC/custody-signer/internal/util/command"
	"github.com/spf13/cobra"
)

// New address 命令：解析并打印金库地址
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the Solana address of the configured custody vault",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.SignerFromEnv()
			if err != nil {
				return err
			}

			return command.WithSigner(cmd.Context(), cfg, func(_ context.Context, s *signer.RemoteSigner) error {
				id := s.Identity()
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", id.VaultID, id.Asset, id.PublicKey)
				return err
			})
		},
	}
}
