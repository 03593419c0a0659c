package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/SafeMPC/custody-signer/internal/envelope"
	"github.com/SafeMPC/custody-signer/internal/util"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
)

// SignRequest POST /v1/sign 请求体
type SignRequest struct {
	// Transaction base64 编码的交易，可以已带有其他签名方的签名
	Transaction string `json:"transaction"`
}

// SignResponse POST /v1/sign 响应体
type SignResponse struct {
	Signature   string `json:"signature"`
	Transaction string `json:"transaction"`
	Complete    bool   `json:"complete"`
}

// postSign 用托管签名方签名并把签名写入对应槽位
func (s *Server) postSign(c echo.Context) error {
	ctx := c.Request().Context()
	log := util.LogFromContext(ctx)

	sg := s.currentSigner()
	if sg == nil {
		return ErrNotReady
	}

	var body SignRequest
	if err := c.Bind(&body); err != nil {
		return ErrMissingPayload
	}
	if strings.TrimSpace(body.Transaction) == "" {
		return ErrMissingPayload
	}

	raw, err := base64.StdEncoding.DecodeString(body.Transaction)
	if err != nil {
		return ErrInvalidEncoding
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		e := NewHTTPError(http.StatusBadRequest, ErrorTypeBadRequest, "transaction could not be decoded")
		e.Detail = err.Error()
		return e
	}

	key := sg.PublicKey()
	pos, err := envelope.Position(tx, key)
	if err != nil {
		return signError(err)
	}
	if pos == envelope.NoPosition {
		return signError(&envelope.KeyNotRequiredSignerError{Key: key})
	}

	sig, err := sg.SignTransaction(ctx, tx)
	if err != nil {
		log.Warn().Err(err).Str("signer", key.String()).Msg("Signing request failed")
		return signError(err)
	}

	if err := envelope.Apply(tx, []solana.PublicKey{key}, []solana.Signature{sig}, nil); err != nil {
		return signError(err)
	}

	signed, err := tx.MarshalBinary()
	if err != nil {
		return signError(err)
	}

	log.Info().Str("signature", sig.String()).Int("slot", pos).Msg("Transaction signed")

	return c.JSON(http.StatusOK, SignResponse{
		Signature:   sig.String(),
		Transaction: base64.StdEncoding.EncodeToString(signed),
		Complete:    envelope.IsComplete(tx),
	})
}
