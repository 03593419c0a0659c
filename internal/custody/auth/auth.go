// Package auth 为托管签名 API 的每个请求生成短期 RS256 Bearer 令牌
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenTTL 令牌有效期（exp = iat + TokenTTL）
const TokenTTL = 55 * time.Second

// BearerPrefix Authorization 头前缀
const BearerPrefix = "Bearer "

// ErrAuth 鉴权配置或令牌生成失败，不可重试
var ErrAuth = errors.New("custody auth error")

// Claims 请求令牌声明
// uri 与 bodyHash 把令牌绑定到具体路径和请求体
type Claims struct {
	jwt.RegisteredClaims
	URI      string `json:"uri"`
	Nonce    uint64 `json:"nonce"`
	BodyHash string `json:"bodyHash"`
}

// Option 配置 Authenticator
type Option func(*Authenticator)

// WithClock 注入时钟（测试使用 time2.MockClock）
func WithClock(clock time2.Clock) Option {
	return func(a *Authenticator) {
		a.clock = clock
	}
}

// Authenticator 请求签名器，构造后只读，可在多个 goroutine 间共享
type Authenticator struct {
	apiKey string
	key    *rsa.PrivateKey
	clock  time2.Clock
}

// New 使用 API Key 和 PEM 格式的 RSA 私钥创建 Authenticator
func New(apiKey string, pemKey []byte, opts ...Option) (*Authenticator, error) {
	if apiKey == "" {
		return nil, errors.Wrap(ErrAuth, "api key is required")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, errors.Wrapf(ErrAuth, "failed to parse RSA private key: %v", err)
	}

	return NewWithKey(apiKey, key, opts...), nil
}

// NewWithKey 使用已解析的 RSA 私钥创建 Authenticator
func NewWithKey(apiKey string, key *rsa.PrivateKey, opts ...Option) *Authenticator {
	a := &Authenticator{
		apiKey: apiKey,
		key:    key,
		clock:  time2.DefaultClock,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// APIKey 返回 X-API-KEY 头使用的 API Key
func (a *Authenticator) APIKey() string {
	return a.apiKey
}

// Claims 构造一次请求的声明，每次调用都会生成新的随机 nonce
func (a *Authenticator) Claims(path string, body []byte) (*Claims, error) {
	nonce, err := randomNonce()
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	if now.IsZero() {
		return nil, errors.Wrap(ErrAuth, "clock returned zero time")
	}

	sum := sha256.Sum256(body)

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.apiKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		URI:      path,
		Nonce:    nonce,
		BodyHash: hex.EncodeToString(sum[:]),
	}, nil
}

// Sign 为 path 和 body 生成 "Bearer <jwt>"
func (a *Authenticator) Sign(path string, body []byte) (string, error) {
	claims, err := a.Claims(path, body)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", errors.Wrapf(ErrAuth, "failed to sign token: %v", err)
	}

	return BearerPrefix + signed, nil
}

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, errors.Wrapf(ErrAuth, "failed to read random nonce: %v", err)
	}

	return binary.BigEndian.Uint64(buf[:]), nil
}
