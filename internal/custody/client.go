// Package custody 托管签名服务的 HTTP 客户端：地址查询、提交签名任务、查询与轮询任务状态
package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/SafeMPC/custody-signer/internal/custody/auth"
	"github.com/SafeMPC/custody-signer/internal/metrics"
	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// ProductionURL 生产环境地址
	ProductionURL = "https://api.fireblocks.io"
	// SandboxURL 沙箱环境地址
	SandboxURL = "https://sandbox-api.fireblocks.io"

	DefaultTimeout        = 15 * time.Second
	DefaultConnectTimeout = 5 * time.Second
	DefaultUserAgent      = "custody-signer/1.0"

	headerAPIKey = "X-API-KEY"
)

const (
	opAddress        = "address"
	opProgramCall    = "program_call"
	opGetTransaction = "get_transaction"
)

// HTTPClient 发送 HTTP 请求的最小接口
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option 配置 Client
type Option func(*options)

type options struct {
	url            string
	timeout        time.Duration
	connectTimeout time.Duration
	userAgent      string
	httpClient     HTTPClient
	clock          time2.Clock
	metrics        *metrics.Metrics
	authOptions    []auth.Option
}

// WithURL 指定 API 地址
func WithURL(url string) Option {
	return func(o *options) {
		o.url = url
	}
}

// WithSandbox 使用沙箱环境
func WithSandbox() Option {
	return WithURL(SandboxURL)
}

// WithTimeout 整个请求的超时时间
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithConnectTimeout 建立连接的超时时间
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = d
	}
}

// WithUserAgent 指定 User-Agent
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithHTTPClient 替换底层 HTTP 客户端，设置后超时选项不再生效
func WithHTTPClient(c HTTPClient) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithClock 注入时钟，同时作用于令牌签发和轮询截止时间
func WithClock(clock time2.Clock) Option {
	return func(o *options) {
		o.clock = clock
		o.authOptions = append(o.authOptions, auth.WithClock(clock))
	}
}

// WithMetrics 记录请求指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Client 托管服务客户端，构造后只读，可并发使用
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPClient
	auth       *auth.Authenticator
	clock      time2.Clock
	metrics    *metrics.Metrics
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient 使用 API Key 和 PEM 格式 RSA 私钥创建客户端
func NewClient(apiKey string, secret []byte, opts ...Option) (*Client, error) {
	o := &options{
		url:            ProductionURL,
		timeout:        DefaultTimeout,
		connectTimeout: DefaultConnectTimeout,
		userAgent:      DefaultUserAgent,
		clock:          time2.DefaultClock,
	}
	for _, opt := range opts {
		opt(o)
	}

	authenticator, err := auth.New(apiKey, secret, o.authOptions...)
	if err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: o.timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: o.connectTimeout}).DialContext,
				TLSHandshakeTimeout: o.connectTimeout,
			},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(o.url, "/"),
		userAgent:  o.userAgent,
		httpClient: httpClient,
		auth:       authenticator,
		clock:      o.clock,
		metrics:    o.metrics,
		sleep:      sleepContext,
	}, nil
}

// BaseURL 返回 API 地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest 发送已鉴权的请求并把 JSON 响应解析到 result
// path 同时用于拼接 URL 和令牌中的 uri 声明，body 字节与 bodyHash 完全一致
func (c *Client) doRequest(ctx context.Context, operation, method, path string, body []byte, result interface{}) error {
	token, err := c.auth.Sign(path, body)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Authorization", token)
	req.Header.Set(headerAPIKey, c.auth.APIKey())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(operation, 0, time.Since(start))
		return errors.Wrapf(err, "failed to send %s request", operation)
	}
	defer closeBody(resp)
	c.metrics.ObserveRequest(operation, resp.StatusCode, time.Since(start))

	return parseResponse(resp, result)
}

// parseResponse 非 2xx 返回 RemoteServiceError，JSON 错误返回 DecodeError
func parseResponse(resp *http.Response, result interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug().Int("status_code", resp.StatusCode).Str("body", string(raw)).Msg("Custody API returned error")
		return &RemoteServiceError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return &DecodeError{Body: string(raw), Err: err}
		}
	}

	return nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Error().Err(err).Msg("Could not close response body")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
