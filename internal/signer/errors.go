package signer

import (
	"fmt"

	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/pkg/errors"
)

var (
	// ErrSignatureAbsent 任务处于成功终态却没有可解析的签名，远程响应不一致
	ErrSignatureAbsent = errors.New("custody job finished without a signature")
	// ErrSignatureMismatch 返回的签名与签名公钥和消息不匹配
	ErrSignatureMismatch = errors.New("custody signature does not verify against the signing key")
)

// OutcomeUnknownError 轮询结束时任务仍未到达终态，任务可能稍后完成
// errors.Is(err, custody.ErrTimeout) 为 true，JobID 可用于之后重新轮询
type OutcomeUnknownError struct {
	JobID     string
	Status    custody.TransactionStatus
	SubStatus custody.SubStatus
}

func (e *OutcomeUnknownError) Error() string {
	return fmt.Sprintf("txid: %s is still pending with status %s (%q), outcome unknown", e.JobID, e.Status, e.SubStatus)
}

func (e *OutcomeUnknownError) Unwrap() error {
	return custody.ErrTimeout
}

// JobFailedError 任务进入失败终态
type JobFailedError struct {
	JobID       string
	Status      custody.TransactionStatus
	SubStatus   custody.SubStatus
	Description string
}

func (e *JobFailedError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = "unknown error"
	}
	return fmt.Sprintf("txid: %s failed with status %s substatus: %q error: %s", e.JobID, e.Status, e.SubStatus, desc)
}
