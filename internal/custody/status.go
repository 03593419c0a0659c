package custody

// TransactionStatus 托管任务状态
type TransactionStatus string

// 任务生命周期：SUBMITTED → 各类等待状态 → BROADCASTING → 成功组 | 失败组
const (
	StatusSubmitted                       TransactionStatus = "SUBMITTED"
	StatusPendingAMLScreening             TransactionStatus = "PENDING_AML_SCREENING"
	StatusPendingEnrichment               TransactionStatus = "PENDING_ENRICHMENT"
	StatusPendingAuthorization            TransactionStatus = "PENDING_AUTHORIZATION"
	StatusQueued                          TransactionStatus = "QUEUED"
	StatusPendingSignature                TransactionStatus = "PENDING_SIGNATURE"
	StatusPendingThirdPartyManualApproval TransactionStatus = "PENDING_3RD_PARTY_MANUAL_APPROVAL"
	StatusPendingThirdParty               TransactionStatus = "PENDING_3RD_PARTY"
	StatusBroadcasting                    TransactionStatus = "BROADCASTING"
	StatusCompleted                       TransactionStatus = "COMPLETED"
	StatusConfirming                      TransactionStatus = "CONFIRMING"
	StatusCancelling                      TransactionStatus = "CANCELLING"
	StatusCancelled                       TransactionStatus = "CANCELLED"
	StatusBlocked                         TransactionStatus = "BLOCKED"
	StatusRejected                        TransactionStatus = "REJECTED"
	StatusFailed                          TransactionStatus = "FAILED"
)

// IsFinal 终态之后不会再发生状态迁移，轮询必须停止
func (s TransactionStatus) IsFinal() bool {
	return s.IsSuccess() || s.IsFailure()
}

// IsSuccess 成功终态
func (s TransactionStatus) IsSuccess() bool {
	switch s {
	case StatusCompleted, StatusConfirming:
		return true
	default:
		return false
	}
}

// IsFailure 失败终态
func (s TransactionStatus) IsFailure() bool {
	switch s {
	case StatusFailed, StatusRejected, StatusBlocked, StatusCancelled, StatusCancelling:
		return true
	default:
		return false
	}
}

// IsPending 仍在等待处理（不含 BROADCASTING）
func (s TransactionStatus) IsPending() bool {
	switch s {
	case StatusSubmitted,
		StatusQueued,
		StatusPendingThirdParty,
		StatusPendingSignature,
		StatusPendingAuthorization,
		StatusPendingThirdPartyManualApproval,
		StatusPendingEnrichment,
		StatusPendingAMLScreening:
		return true
	default:
		return false
	}
}

func (s TransactionStatus) String() string {
	return string(s)
}
