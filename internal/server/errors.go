package server

import (
	"net/http"

	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/SafeMPC/custody-signer/internal/envelope"
	"github.com/SafeMPC/custody-signer/internal/signer"
	"github.com/SafeMPC/custody-signer/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// 公开的错误类型
const (
	ErrorTypeGeneric        = "generic"
	ErrorTypeBadRequest     = "bad_request"
	ErrorTypeNotReady       = "not_ready"
	ErrorTypeOutcomeUnknown = "outcome_unknown"
	ErrorTypeJobFailed      = "job_failed"
	ErrorTypeUpstream       = "upstream"
)

// HTTPError 返回给调用方的错误
type HTTPError struct {
	Code   int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	JobID  string `json:"jobId,omitempty"`
}

// NewHTTPError 创建 HTTPError
func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{Code: code, Type: errorType, Title: title}
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Title + ": " + e.Detail
	}
	return e.Title
}

var (
	ErrNotReady        = NewHTTPError(http.StatusServiceUnavailable, ErrorTypeNotReady, "Signer is not ready")
	ErrMissingPayload  = NewHTTPError(http.StatusBadRequest, ErrorTypeBadRequest, "transaction is required")
	ErrInvalidEncoding = NewHTTPError(http.StatusBadRequest, ErrorTypeBadRequest, "transaction must be base64 encoded")
)

// signError 把签名错误映射为 HTTP 错误
func signError(err error) *HTTPError {
	var (
		unknown   *signer.OutcomeUnknownError
		failed    *signer.JobFailedError
		notSigner *envelope.KeyNotRequiredSignerError
		httpErr   *HTTPError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &notSigner):
		e := NewHTTPError(http.StatusBadRequest, ErrorTypeBadRequest, "Signer is not a required signer of the transaction")
		e.Detail = notSigner.Error()
		return e
	case errors.As(err, &unknown):
		e := NewHTTPError(http.StatusGatewayTimeout, ErrorTypeOutcomeUnknown, "Custody job did not finish in time")
		e.JobID = unknown.JobID
		e.Detail = string(unknown.Status)
		return e
	case errors.As(err, &failed):
		e := NewHTTPError(http.StatusUnprocessableEntity, ErrorTypeJobFailed, "Custody job failed")
		e.JobID = failed.JobID
		e.Detail = failed.Error()
		return e
	case errors.Is(err, signer.ErrSignatureAbsent), errors.Is(err, signer.ErrSignatureMismatch):
		e := NewHTTPError(http.StatusBadGateway, ErrorTypeUpstream, "Custody service returned an unusable signature")
		e.Detail = err.Error()
		return e
	}

	if code, ok := custody.IsRemoteServiceError(err); ok {
		e := NewHTTPError(http.StatusBadGateway, ErrorTypeUpstream, "Custody service rejected the request")
		e.Detail = http.StatusText(code)
		return e
	}

	return NewHTTPError(http.StatusInternalServerError, ErrorTypeGeneric, "Signing failed")
}

// errorHandler 统一输出 HTTPError，其他错误交给 echo 默认处理
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		if c.Response().Committed {
			return
		}

		if httpErr.Code >= http.StatusInternalServerError {
			util.LogFromContext(c.Request().Context()).Error().Err(err).Int("status", httpErr.Code).Msg("Request failed")
		}

		if err := c.JSON(httpErr.Code, httpErr); err != nil {
			util.LogFromContext(c.Request().Context()).Error().Err(err).Msg("Failed to write error response")
		}
	}
}
