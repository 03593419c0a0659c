package custody

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollTimeout  = 15 * time.Second
	DefaultPollInterval = 5 * time.Second
)

// Observer 每次拿到非终态任务时调用
type Observer func(job *TransactionResponse)

// PollConfig 单次轮询的配置
type PollConfig struct {
	Timeout  time.Duration
	Interval time.Duration
	Observer Observer
}

// DefaultPollConfig 默认 15s 超时、5s 间隔，观察者打印任务状态
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Timeout:  DefaultPollTimeout,
		Interval: DefaultPollInterval,
		Observer: LogObserver,
	}
}

// LogObserver 记录任务状态的默认观察者
func LogObserver(job *TransactionResponse) {
	log.Info().
		Str("txid", job.ID).
		Str("status", job.Status.String()).
		Str("sub_status", job.SubStatus.String()).
		Msg("Waiting for custody job")
}

// Poll 轮询任务直到终态或截止时间
//
// 观察到终态后立即返回，不再请求。截止时间到达后再做最后一次查询并原样返回，
// 即使结果仍是非终态也不返回错误，由调用方决定如何解释。
func (c *Client) Poll(ctx context.Context, id string, cfg PollConfig) (*TransactionResponse, *solana.Signature, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}

	deadline := c.clock.Now().Add(cfg.Timeout)

	for {
		job, sig, err := c.GetTransaction(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		c.metrics.ObservePoll(job.Status.String())

		if job.Status.IsFinal() {
			return job, sig, nil
		}

		if cfg.Observer != nil {
			cfg.Observer(job)
		}

		now := c.clock.Now()
		remaining := deadline.Sub(now)
		wait := cfg.Interval
		if remaining < wait {
			wait = remaining
		}

		if err := c.sleep(ctx, wait); err != nil {
			return nil, nil, errors.Wrapf(err, "polling txid %s interrupted", id)
		}

		if !now.Before(deadline) {
			log.Warn().Str("txid", id).Str("status", job.Status.String()).Msg("Timeout while waiting for custody job")
			break
		}
	}

	job, sig, err := c.GetTransaction(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c.metrics.ObservePoll(job.Status.String())

	return job, sig, nil
}
