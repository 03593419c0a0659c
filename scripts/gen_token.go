package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/SafeMPC/custody-signer/internal/config"
	"github.com/SafeMPC/custody-signer/internal/custody/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// 打印一次请求用的 Bearer 令牌，便于用 curl 调试托管接口
// go run scripts/gen_token.go -path /v1/vault/accounts/0/SOL/addresses_paginated
func main() {
	path := flag.String("path", "/v1/transactions", "request path including query string")
	body := flag.String("body", "", "exact request body")
	decode := flag.Bool("decode", false, "also print the token claims")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load .env")
	}

	apiKey := os.Getenv(config.EnvAPIKey)
	secret, err := config.LoadSecret(os.Getenv(config.EnvSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load secret")
	}

	a, err := auth.New(apiKey, secret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create authenticator")
	}

	var payload []byte
	if *body != "" {
		payload = []byte(*body)
	}

	token, err := a.Sign(*path, payload)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}
	fmt.Println(token)

	if *decode {
		claims := &auth.Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token[len(auth.BearerPrefix):], claims); err != nil {
			log.Fatal().Err(err).Msg("Failed to decode token")
		}
		fmt.Printf("sub=%s uri=%s nonce=%d bodyHash=%s iat=%s exp=%s\n",
			claims.Subject, claims.URI, claims.Nonce, claims.BodyHash, claims.IssuedAt.Time, claims.ExpiresAt.Time)
	}
}
