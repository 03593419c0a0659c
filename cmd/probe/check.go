package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SafeMPC/custody-signer/cmd/serve"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLiveness() *cobra.Command {
	return newCheck("liveness", "/health/live", "Exit non-zero when the signer server is not alive")
}

func newReadiness() *cobra.Command {
	return newCheck("readiness", "/health/ready", "Exit non-zero when the signer server is not ready to sign")
}

func newCheck(name, path, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString(addrFlag)
			timeout, _ := cmd.Flags().GetDuration(timeoutFlag)

			return Check(cmd.Context(), http.DefaultClient, "http://"+hostPort(addr)+path, timeout)
		},
	}

	cmd.Flags().String(addrFlag, serve.DefaultAddr, "signer server address")
	cmd.Flags().Duration(timeoutFlag, 2*time.Second, "probe timeout")

	return cmd
}

// Check 请求 url，非 200 视为失败
func Check(ctx context.Context, client *http.Client, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create probe request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "probe %s failed", url)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error().Err(err).Msg("Could not close probe response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe %s returned %d", url, resp.StatusCode)
	}

	log.Debug().Str("url", url).Msg("Probe succeeded")

	return nil
}

// hostPort ":8080" 补全为 "localhost:8080"
func hostPort(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
