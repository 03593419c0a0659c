package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/metrics"
	"github.com/SafeMPC/custody-signer/internal/server"
	"github.com/SafeMPC/custody-signer/internal/signer"
	"github.com/SafeMPC/custody-signer/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	addrFlag = "addr"

	DefaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

// New serve 命令：启动签名边车服务
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health, metrics and a signing endpoint backed by the custody vault",
		RunE:  run,
	}

	cmd.Flags().String(addrFlag, util.GetEnv("SERVER_ADDR", DefaultAddr), "listen address")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString(addrFlag)

	cfg, err := config.SignerFromEnv()
	if err != nil {
		return err
	}

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New()
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start(addr)
	}()

	// 服务先启动，公钥解析完成前 readiness 返回 503
	s, err := signer.FromConfig(ctx, cfg, signer.WithMetrics(m))
	if err != nil {
		shutdown(srv)
		return err
	}
	srv.SetSigner(s)

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}

	shutdown(srv)
	return nil
}

func shutdown(srv *server.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down server gracefully")
	}
}
