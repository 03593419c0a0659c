package custody

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoAddress 金库/资产下没有地址，属于配置错误
	ErrNoAddress = errors.New("no address found for vault and asset")
	// ErrInvalidPubkey 托管服务返回的地址不是合法公钥
	ErrInvalidPubkey = errors.New("invalid public key")
	// ErrTimeout 等待任务超时，任务的真实结果未知
	ErrTimeout = errors.New("timed out waiting for custody job")
)

// RemoteServiceError 托管服务返回非 2xx 状态码
type RemoteServiceError struct {
	StatusCode int
	Body       string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("custody server error: HTTP %d: %s", e.StatusCode, e.Body)
}

// DecodeError 响应体不是预期的 JSON
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode custody response: %v: %s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsRemoteServiceError 判断是否为托管服务错误，并返回状态码
func IsRemoteServiceError(err error) (int, bool) {
	var rse *RemoteServiceError
	if errors.As(err, &rse) {
		return rse.StatusCode, true
	}
	return 0, false
}
