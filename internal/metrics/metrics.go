package metrics

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "custody_signer"

// 签名结果标签
const (
	OutcomeSigned         = "signed"
	OutcomeFailed         = "failed"
	OutcomeUnknown        = "unknown"
	OutcomeNoSignature    = "no_signature"
	OutcomeTransportError = "transport_error"
)

// Metrics 托管签名相关的 Prometheus 指标
// 所有方法对 nil 接收者安全，未配置指标时直接忽略
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	polls           *prometheus.CounterVec
	signs           *prometheus.CounterVec
	signDuration    prometheus.Histogram
}

// New 创建指标并注册到给定的 Registerer
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests sent to the custody API, by operation and HTTP status code.",
		}, []string{"operation", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of custody API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_fetches_total",
			Help:      "Job status fetches performed while polling, by observed status.",
		}, []string{"status"}),
		signs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signatures_total",
			Help:      "Remote signing rounds, by outcome.",
		}, []string{"outcome"}),
		signDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sign_duration_seconds",
			Help:      "Wall time of a full submit and poll cycle.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 30, 60, 120},
		}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.requestDuration, m.polls, m.signs, m.signDuration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register custody metrics")
		}
	}

	return m, nil
}

// ObserveRequest 记录一次 API 请求，code 为 0 表示未拿到 HTTP 响应
func (m *Metrics) ObserveRequest(operation string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(operation, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObservePoll 记录一次轮询获取到的任务状态
func (m *Metrics) ObservePoll(status string) {
	if m == nil {
		return
	}

	m.polls.WithLabelValues(status).Inc()
}

// ObserveSign 记录一次签名结果
func (m *Metrics) ObserveSign(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.signs.WithLabelValues(outcome).Inc()
	m.signDuration.Observe(elapsed.Seconds())
}
