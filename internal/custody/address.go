package custody

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/btcsuite/btcutil/base58"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const publicKeyLength = 32

// Address 查询金库在该资产下的地址，取第一个地址作为公钥
func (c *Client) Address(ctx context.Context, vault string, asset Asset) (solana.PublicKey, error) {
	path := fmt.Sprintf("/v1/vault/accounts/%s/%s/addresses_paginated", url.PathEscape(vault), url.PathEscape(asset.String()))

	var resp AddressesResponse
	if err := c.doRequest(ctx, opAddress, http.MethodGet, path, nil, &resp); err != nil {
		return solana.PublicKey{}, err
	}

	if len(resp.Addresses) == 0 {
		return solana.PublicKey{}, errors.Wrapf(ErrNoAddress, "vault %s asset %s", vault, asset)
	}

	pk, err := ParsePublicKey(resp.Addresses[0].Address)
	if err != nil {
		return solana.PublicKey{}, err
	}

	log.Debug().Str("vault", vault).Str("asset", asset.String()).Str("address", pk.String()).Msg("Resolved vault address")

	return pk, nil
}

// ParsePublicKey 解析 Base58 编码的 32 字节 Ed25519 公钥
func ParsePublicKey(s string) (solana.PublicKey, error) {
	raw := base58.Decode(s)
	if len(raw) != publicKeyLength {
		return solana.PublicKey{}, errors.Wrapf(ErrInvalidPubkey, "%q: expected %d bytes, got %d", s, publicKeyLength, len(raw))
	}

	var pk solana.PublicKey
	copy(pk[:], raw)
	return pk, nil
}
