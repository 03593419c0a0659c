package custody

import (
	"fmt"
	"strings"
)

// OperationProgramCall 程序调用类交易（提交待签名的完整交易）
const OperationProgramCall = "PROGRAM_CALL"

// PeerTypeVaultAccount 金库账户来源
const PeerTypeVaultAccount = "VAULT_ACCOUNT"

// FeeLevel 手续费档位
type FeeLevel string

const (
	FeeLevelLow    FeeLevel = "LOW"
	FeeLevelMedium FeeLevel = "MEDIUM"
	FeeLevelHigh   FeeLevel = "HIGH"
)

// VaultAddress 金库地址
type VaultAddress struct {
	AssetID     string `json:"assetId"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
	Tag         string `json:"tag,omitempty"`
	Type        string `json:"type,omitempty"`
}

// AddressesResponse addresses_paginated 响应
type AddressesResponse struct {
	Addresses []VaultAddress `json:"addresses"`
}

// TransferPeerPath 交易来源
type TransferPeerPath struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ExtraParameters 附加参数
type ExtraParameters struct {
	ProgramCallData string `json:"programCallData"`
}

// TransactionRequest POST /v1/transactions 请求体
type TransactionRequest struct {
	Operation       string           `json:"operation"`
	ExternalTxID    string           `json:"externalTxId,omitempty"`
	Note            string           `json:"note,omitempty"`
	AssetID         string           `json:"assetId"`
	Source          TransferPeerPath `json:"source"`
	FeeLevel        FeeLevel         `json:"feeLevel"`
	FailOnLowFee    bool             `json:"failOnLowFee"`
	ExtraParameters ExtraParameters  `json:"extraParameters"`
	CustomerRefID   string           `json:"customerRefId,omitempty"`
}

// NewProgramCallRequest 创建程序调用请求
func NewProgramCallRequest(asset Asset, vault string, base64Tx string) *TransactionRequest {
	return &TransactionRequest{
		Operation: OperationProgramCall,
		AssetID:   asset.String(),
		Source: TransferPeerPath{
			Type: PeerTypeVaultAccount,
			ID:   vault,
		},
		FeeLevel:     FeeLevelLow,
		FailOnLowFee: false,
		ExtraParameters: ExtraParameters{
			ProgramCallData: base64Tx,
		},
	}
}

// SystemMessageInfo 系统提示信息（WARN 或 BLOCK）
type SystemMessageInfo struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreateTransactionResponse 提交交易的响应
type CreateTransactionResponse struct {
	ID             string             `json:"id"`
	Status         TransactionStatus  `json:"status"`
	SystemMessages *SystemMessageInfo `json:"systemMessages,omitempty"`
}

// TransactionResponse 签名任务的当前视图，只由托管服务修改
type TransactionResponse struct {
	ID                 string             `json:"id"`
	ExternalTxID       string             `json:"externalTxId,omitempty"`
	Status             TransactionStatus  `json:"status"`
	SubStatus          SubStatus          `json:"subStatus,omitempty"`
	TxHash             string             `json:"txHash,omitempty"`
	Operation          string             `json:"operation,omitempty"`
	Note               string             `json:"note,omitempty"`
	AssetID            string             `json:"assetId"`
	SourceAddress      string             `json:"sourceAddress,omitempty"`
	Tag                string             `json:"tag,omitempty"`
	CreatedAt          uint64             `json:"createdAt,omitempty"`
	LastUpdated        uint64             `json:"lastUpdated,omitempty"`
	CreatedBy          string             `json:"createdBy,omitempty"`
	SignedBy           []string           `json:"signedBy,omitempty"`
	RejectedBy         string             `json:"rejectedBy,omitempty"`
	CustomerRefID      string             `json:"customerRefId,omitempty"`
	NumOfConfirmations *int32             `json:"numOfConfirmations,omitempty"`
	SystemMessages     *SystemMessageInfo `json:"systemMessages,omitempty"`
	ErrorDescription   string             `json:"errorDescription,omitempty"`
}

func (t *TransactionResponse) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "id:%s status:%s", t.ID, t.Status)
	if t.SubStatus != "" {
		fmt.Fprintf(&b, " sub_status:%s", t.SubStatus)
	}
	if t.TxHash != "" {
		fmt.Fprintf(&b, " tx_hash:%s", t.TxHash)
	}
	if t.ErrorDescription != "" {
		fmt.Fprintf(&b, " error:%s", t.ErrorDescription)
	}
	return b.String()
}
