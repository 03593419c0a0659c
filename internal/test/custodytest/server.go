// Package custodytest 提供测试用的托管签名服务：校验请求令牌并按脚本返回任务状态
package custodytest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/SafeMPC/custody-signer/internal/custody/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const APIKey = "test-api-key"

// JobScript 根据提交的请求和第几次查询（从 0 开始）生成任务视图
type JobScript func(req *custody.TransactionRequest, fetch int) custody.TransactionResponse

type override struct {
	code int
	body string
}

type job struct {
	req     *custody.TransactionRequest
	fetches int
}

// Server 测试用托管服务
type Server struct {
	URL        string
	APIKey     string
	PrivateKey *rsa.PrivateKey
	SecretPEM  []byte

	echo *echo.Echo
	http *httptest.Server

	mu          sync.Mutex
	addresses   map[string][]string
	script      JobScript
	jobs        map[string]*job
	order       []string
	overrides   map[string]override
	claims      []*auth.Claims
	authFailure int
}

// NewServer 启动测试服务，测试结束时自动关闭
func NewServer(t *testing.T) *Server {
	t.Helper()

	key, secret := GenerateRSAKey(t)

	s := &Server{
		APIKey:     APIKey,
		PrivateKey: key,
		SecretPEM:  secret,
		addresses:  make(map[string][]string),
		jobs:       make(map[string]*job),
		overrides:  make(map[string]override),
		script:     Sequence("", custody.StatusCompleted),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.overrideMiddleware, s.authMiddleware)

	e.GET("/v1/vault/accounts/:vault/:asset/addresses_paginated", s.getAddresses)
	e.POST("/v1/transactions", s.postTransaction)
	e.GET("/v1/transactions/:id", s.getTransaction)

	s.echo = e
	s.http = httptest.NewServer(e)
	s.URL = s.http.URL
	t.Cleanup(s.http.Close)

	return s
}

// NewClient 创建指向测试服务的客户端
func (s *Server) NewClient(t *testing.T, opts ...custody.Option) *custody.Client {
	t.Helper()

	client, err := custody.NewClient(s.APIKey, s.SecretPEM, append([]custody.Option{custody.WithURL(s.URL)}, opts...)...)
	require.NoError(t, err)

	return client
}

// GenerateRSAKey 生成 2048 位 RSA 私钥及其 PKCS#1 PEM
func GenerateRSAKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	secret := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return key, secret
}

// SetAddresses 设置金库地址
func (s *Server) SetAddresses(vault string, asset custody.Asset, addresses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[vault+"/"+asset.String()] = addresses
}

// SetScript 设置之后所有任务的状态脚本
func (s *Server) SetScript(script JobScript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
}

// Override 让 method+path 直接返回给定状态码和原始响应体
func (s *Server) Override(method, path string, code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{code: code, body: body}
}

// Submissions 返回按顺序提交的请求
func (s *Server) Submissions() []*custody.TransactionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*custody.TransactionRequest, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id].req)
	}
	return out
}

// Fetches 返回任务被查询的次数
func (s *Server) Fetches(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[id]; ok {
		return j.fetches
	}
	return 0
}

// Claims 返回所有通过校验的令牌声明
func (s *Server) Claims() []*auth.Claims {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*auth.Claims(nil), s.claims...)
}

// AuthFailures 返回令牌校验失败的次数
func (s *Server) AuthFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authFailure
}

func (s *Server) overrideMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		o, ok := s.overrides[c.Request().Method+" "+c.Request().URL.Path]
		s.mu.Unlock()

		if ok {
			return c.Blob(o.code, echo.MIMEApplicationJSON, []byte(o.body))
		}
		return next(c)
	}
}

func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		body, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		claims, err := s.verify(req, body)
		if err != nil {
			s.mu.Lock()
			s.authFailure++
			s.mu.Unlock()
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{"message": err.Error(), "code": -1})
		}

		s.mu.Lock()
		s.claims = append(s.claims, claims)
		s.mu.Unlock()

		return next(c)
	}
}

func (s *Server) verify(req *http.Request, body []byte) (*auth.Claims, error) {
	if req.Header.Get("X-API-KEY") != s.APIKey {
		return nil, fmt.Errorf("unknown api key")
	}

	header := req.Header.Get("Authorization")
	if !strings.HasPrefix(header, auth.BearerPrefix) {
		return nil, fmt.Errorf("missing bearer token")
	}

	claims := &auth.Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, auth.BearerPrefix), claims, func(token *jwt.Token) (interface{}, error) {
		return &s.PrivateKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject != s.APIKey {
		return nil, fmt.Errorf("subject mismatch")
	}

	if claims.URI != req.URL.RequestURI() {
		return nil, fmt.Errorf("uri mismatch: %s != %s", claims.URI, req.URL.RequestURI())
	}

	sum := sha256.Sum256(body)
	if claims.BodyHash != hex.EncodeToString(sum[:]) {
		return nil, fmt.Errorf("body hash mismatch")
	}

	return claims, nil
}

func (s *Server) getAddresses(c echo.Context) error {
	s.mu.Lock()
	addresses := s.addresses[c.Param("vault")+"/"+c.Param("asset")]
	s.mu.Unlock()

	resp := custody.AddressesResponse{Addresses: make([]custody.VaultAddress, 0, len(addresses))}
	for _, a := range addresses {
		resp.Addresses = append(resp.Addresses, custody.VaultAddress{AssetID: c.Param("asset"), Address: a})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) postTransaction(c echo.Context) error {
	var req custody.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": err.Error()})
	}

	s.mu.Lock()
	id := fmt.Sprintf("tx-%d", len(s.order)+1)
	s.jobs[id] = &job{req: &req}
	s.order = append(s.order, id)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, custody.CreateTransactionResponse{ID: id, Status: custody.StatusSubmitted})
}

func (s *Server) getTransaction(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	j, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return c.JSON(http.StatusNotFound, map[string]interface{}{"message": "transaction not found"})
	}
	fetch := j.fetches
	j.fetches++
	script := s.script
	s.mu.Unlock()

	resp := script(j.req, fetch)
	resp.ID = id
	if resp.AssetID == "" {
		resp.AssetID = j.req.AssetID
	}

	return c.JSON(http.StatusOK, resp)
}
