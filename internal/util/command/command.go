package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/signer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// SetupLogger 配置全局日志，pretty 为 true 时输出到控制台格式
func SetupLogger(verbose bool, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	}
}

// WithSigner 根据配置创建远程签名方并执行 f
func WithSigner(ctx context.Context, cfg config.Signer, f func(ctx context.Context, s *signer.RemoteSigner) error, opts ...signer.Option) error {
	s, err := signer.FromConfig(ctx, cfg, opts...)
	if err != nil {
		log.Error().Err(err).Str("vault", cfg.Vault).Msg("Failed to initialize remote signer")
		return err
	}

	start := time.Now()
	defer func() {
		log.Debug().Dur("elapsed", time.Since(start)).Msg("Signer command finished")
	}()

	return f(ctx, s)
}

// NewSubcommandGroup 创建只包含子命令的命令组
func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <subcommand>", name),
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Fatal().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}
