package custody

// SubStatus 交易子状态，给出失败或等待的具体原因
// 未收录的取值按原样保留
type SubStatus string

// 托管服务定义的子状态
const (
	SubStatusThirdPartyProcessing                   SubStatus = "3RD_PARTY_PROCESSING"
	SubStatusThirdPartyPendingServiceManualApproval SubStatus = "3RD_PARTY_PENDING_SERVICE_MANUAL_APPROVAL"
	SubStatusPendingThirdPartyManualApproval        SubStatus = "PENDING_3RD_PARTY_MANUAL_APPROVAL"
	SubStatusThirdPartyConfirming                   SubStatus = "3RD_PARTY_CONFIRMING"
	SubStatusPendingBlockchainConfirmations         SubStatus = "PENDING_BLOCKCHAIN_CONFIRMATIONS"
	SubStatusThirdPartyCompleted                    SubStatus = "3RD_PARTY_COMPLETED"
	SubStatusCompletedButThirdPartyFailed           SubStatus = "COMPLETED_BUT_3RD_PARTY_FAILED"
	SubStatusCompletedButThirdPartyRejected         SubStatus = "COMPLETED_BUT_3RD_PARTY_REJECTED"
	SubStatusConfirmed                              SubStatus = "CONFIRMED"
	SubStatusBlockedByPolicy                        SubStatus = "BLOCKED_BY_POLICY"
	SubStatusThirdPartyCancelled                    SubStatus = "3RD_PARTY_CANCELLED"
	SubStatusThirdPartyRejected                     SubStatus = "3RD_PARTY_REJECTED"
	SubStatusCancelledByUser                        SubStatus = "CANCELLED_BY_USER"
	SubStatusCancelledByUserRequest                 SubStatus = "CANCELLED_BY_USER_REQUEST"
	SubStatusRejectedByUser                         SubStatus = "REJECTED_BY_USER"
	SubStatusAutoFreeze                             SubStatus = "AUTO_FREEZE"
	SubStatusFrozenManually                         SubStatus = "FROZEN_MANUALLY"
	SubStatusRejectedAMLScreening                   SubStatus = "REJECTED_AML_SCREENING"
	SubStatusActualFeeTooHigh                       SubStatus = "ACTUAL_FEE_TOO_HIGH"
	SubStatusAddressWhitelistingSuspended           SubStatus = "ADDRESS_WHITELISTING_SUSPENDED"
	SubStatusAmountTooSmall                         SubStatus = "AMOUNT_TOO_SMALL"
	SubStatusAuthorizationFailed                    SubStatus = "AUTHORIZATION_FAILED"
	SubStatusAuthorizerNotFound                     SubStatus = "AUTHORIZER_NOT_FOUND"
	SubStatusEnvUnsupportedAsset                    SubStatus = "ENV_UNSUPPORTED_ASSET"
	SubStatusErrorUnsupportedTransactionType        SubStatus = "ERROR_UNSUPPORTED_TRANSACTION_TYPE"
	SubStatusFailOnLowFee                           SubStatus = "FAIL_ON_LOW_FEE"
	SubStatusGasLimitTooLow                         SubStatus = "GAS_LIMIT_TOO_LOW"
	SubStatusGasPriceTooLowForRBF                   SubStatus = "GAS_PRICE_TOO_LOW_FOR_RBF"
	SubStatusIncompleteUserSetup                    SubStatus = "INCOMPLETE_USER_SETUP"
	SubStatusInsufficientFunds                      SubStatus = "INSUFFICIENT_FUNDS"
	SubStatusInsufficientFundsForFee                SubStatus = "INSUFFICIENT_FUNDS_FOR_FEE"
	SubStatusIntegrationSuspended                   SubStatus = "INTEGRATION_SUSPENDED"
	SubStatusInvalidAddress                         SubStatus = "INVALID_ADDRESS"
	SubStatusInvalidContractCallData                SubStatus = "INVALID_CONTRACT_CALL_DATA"
	SubStatusInvalidFeeParams                       SubStatus = "INVALID_FEE_PARAMS"
	SubStatusInvalidNonceForRBF                     SubStatus = "INVALID_NONCE_FOR_RBF"
	SubStatusInvalidTagOrMemo                       SubStatus = "INVALID_TAG_OR_MEMO"
	SubStatusInvalidUnmanagedWallet                 SubStatus = "INVALID_UNMANAGED_WALLET"
	SubStatusMaxFeeExceeded                         SubStatus = "MAX_FEE_EXCEEDED"
	SubStatusMissingTagOrMemo                       SubStatus = "MISSING_TAG_OR_MEMO"
	SubStatusNeedMoreToCreateDestination            SubStatus = "NEED_MORE_TO_CREATE_DESTINATION"
	SubStatusNoMorePreprocessedIndexes              SubStatus = "NO_MORE_PREPROCESSED_INDEXES"
	SubStatusNonExistingAccountName                 SubStatus = "NON_EXISTING_ACCOUNT_NAME"
	SubStatusRawMsgEmptyOrInvalid                   SubStatus = "RAW_MSG_EMPTY_OR_INVALID"
	SubStatusRawMsgLenInvalid                       SubStatus = "RAW_MSG_LEN_INVALID"
	SubStatusTooManyInputs                          SubStatus = "TOO_MANY_INPUTS"
	SubStatusTxSizeExceededMax                      SubStatus = "TX_SIZE_EXCEEDED_MAX"
	SubStatusUnauthorisedDevice                     SubStatus = "UNAUTHORISED_DEVICE"
	SubStatusUnauthorisedUser                       SubStatus = "UNAUTHORISED_USER"
	SubStatusUnallowedRawParamCombination           SubStatus = "UNALLOWED_RAW_PARAM_COMBINATION"
	SubStatusUnsupportedOperation                   SubStatus = "UNSUPPORTED_OPERATION"
	SubStatusUnsupportedTransactionType             SubStatus = "UNSUPPORTED_TRANSACTION_TYPE"
	SubStatusZeroBalanceInPermanentAddress          SubStatus = "ZERO_BALANCE_IN_PERMANENT_ADDRESS"
	SubStatusOutOfDateSigningKeys                   SubStatus = "OUT_OF_DATE_SIGNING_KEYS"
	SubStatusConnectivityError                      SubStatus = "CONNECTIVITY_ERROR"
	SubStatusErrorAsyncTxInFlight                   SubStatus = "ERROR_ASYNC_TX_IN_FLIGHT"
	SubStatusInternalError                          SubStatus = "INTERNAL_ERROR"
	SubStatusInvalidNonceTooHigh                    SubStatus = "INVALID_NONCE_TOO_HIGH"
	SubStatusInvalidNonceTooLow                     SubStatus = "INVALID_NONCE_TOO_LOW"
	SubStatusInvalidRoutingDestination              SubStatus = "INVALID_ROUTING_DESTINATION"
	SubStatusLockingNonceAccountTimeout             SubStatus = "LOCKING_NONCE_ACCOUNT_TIMEOUT"
	SubStatusNetworkRoutingMismatch                 SubStatus = "NETWORK_ROUTING_MISMATCH"
	SubStatusNonceAllocationFailed                  SubStatus = "NONCE_ALLOCATION_FAILED"
	SubStatusResourceAlreadyExists                  SubStatus = "RESOURCE_ALREADY_EXISTS"
	SubStatusSignerNotFound                         SubStatus = "SIGNER_NOT_FOUND"
	SubStatusSigningError                           SubStatus = "SIGNING_ERROR"
	SubStatusTimeout                                SubStatus = "TIMEOUT"
	SubStatusTxOutdated                             SubStatus = "TX_OUTDATED"
	SubStatusUnknownError                           SubStatus = "UNKNOWN_ERROR"
	SubStatusVaultWalletNotReady                    SubStatus = "VAULT_WALLET_NOT_READY"
	SubStatusUnsupportedMediaType                   SubStatus = "UNSUPPORTED_MEDIA_TYPE"
	SubStatusAddressNotWhitelisted                  SubStatus = "ADDRESS_NOT_WHITELISTED"
	SubStatusAPIKeyMismatch                         SubStatus = "API_KEY_MISMATCH"
	SubStatusAssetNotEnabledOnDestination           SubStatus = "ASSET_NOT_ENABLED_ON_DESTINATION"
	SubStatusDestTypeNotSupported                   SubStatus = "DEST_TYPE_NOT_SUPPORTED"
	SubStatusExceededDecimalPrecision               SubStatus = "EXCEEDED_DECIMAL_PRECISION"
	SubStatusExchangeConfigurationMismatch          SubStatus = "EXCHANGE_CONFIGURATION_MISMATCH"
	SubStatusExchangeVersionIncompatible            SubStatus = "EXCHANGE_VERSION_INCOMPATIBLE"
	SubStatusInvalidExchangeAccount                 SubStatus = "INVALID_EXCHANGE_ACCOUNT"
	SubStatusMethodNotAllowed                       SubStatus = "METHOD_NOT_ALLOWED"
	SubStatusNonExistentAutoAccount                 SubStatus = "NON_EXISTENT_AUTO_ACCOUNT"
	SubStatusOnPremiseConnectivityError             SubStatus = "ON_PREMISE_CONNECTIVITY_ERROR"
	SubStatusPeerAccountDoesNotExist                SubStatus = "PEER_ACCOUNT_DOES_NOT_EXIST"
	SubStatusThirdPartyMissingAccount               SubStatus = "THIRD_PARTY_MISSING_ACCOUNT"
	SubStatusUnauthorisedIPWhitelisting             SubStatus = "UNAUTHORISED_IP_WHITELISTING"
	SubStatusUnauthorisedMissingCredentials         SubStatus = "UNAUTHORISED_MISSING_CREDENTIALS"
	SubStatusUnauthorisedMissingPermission          SubStatus = "UNAUTHORISED_MISSING_PERMISSION"
	SubStatusUnauthorisedOTPFailed                  SubStatus = "UNAUTHORISED_OTP_FAILED"
	SubStatusWithdrawLimit                          SubStatus = "WITHDRAW_LIMIT"
	SubStatusThirdPartyFailed                       SubStatus = "3RD_PARTY_FAILED"
	SubStatusAPICallLimit                           SubStatus = "API_CALL_LIMIT"
	SubStatusAPIInvalidSignature                    SubStatus = "API_INVALID_SIGNATURE"
	SubStatusCancelledExternally                    SubStatus = "CANCELLED_EXTERNALLY"
	SubStatusFailedAMLScreening                     SubStatus = "FAILED_AML_SCREENING"
	SubStatusInvalidFee                             SubStatus = "INVALID_FEE"
	SubStatusInvalidThirdPartyResponse              SubStatus = "INVALID_THIRD_PARTY_RESPONSE"
	SubStatusManualDepositAddressRequired           SubStatus = "MANUAL_DEPOSIT_ADDRESS_REQUIRED"
	SubStatusMissingDepositAddress                  SubStatus = "MISSING_DEPOSIT_ADDRESS"
	SubStatusNoDepositAddress                       SubStatus = "NO_DEPOSIT_ADDRESS"
	SubStatusSubAccountsNotSupported                SubStatus = "SUB_ACCOUNTS_NOT_SUPPORTED"
	SubStatusSpendCoinbaseTooEarly                  SubStatus = "SPEND_COINBASE_TOO_EARLY"
	SubStatusThirdPartyInternalError                SubStatus = "THIRD_PARTY_INTERNAL_ERROR"
	SubStatusTxIDNotAcceptedByThirdParty            SubStatus = "TX_ID_NOT_ACCEPTED_BY_THIRD_PARTY"
	SubStatusUnsupportedAsset                       SubStatus = "UNSUPPORTED_ASSET"
	SubStatusDoubleSpending                         SubStatus = "DOUBLE_SPENDING"
	SubStatusDroppedByBlockchain                    SubStatus = "DROPPED_BY_BLOCKCHAIN"
	SubStatusInsufficientReservedFunding            SubStatus = "INSUFFICIENT_RESERVED_FUNDING"
	SubStatusInvalidSignature                       SubStatus = "INVALID_SIGNATURE"
	SubStatusPartiallyFailed                        SubStatus = "PARTIALLY_FAILED"
	SubStatusPowerupSuggestionFailure               SubStatus = "POWERUP_SUGGESTION_FAILURE"
	SubStatusReachedMempoolLimitForAccount          SubStatus = "REACHED_MEMPOOL_LIMIT_FOR_ACCOUNT"
	SubStatusRejectedByBlockchain                   SubStatus = "REJECTED_BY_BLOCKCHAIN"
	SubStatusSmartContractExecutionFailed           SubStatus = "SMART_CONTRACT_EXECUTION_FAILED"
	SubStatusTooLongMempoolChain                    SubStatus = "TOO_LONG_MEMPOOL_CHAIN"
)

var knownSubStatuses = map[SubStatus]struct{}{
	SubStatusThirdPartyProcessing:                   {},
	SubStatusThirdPartyPendingServiceManualApproval: {},
	SubStatusPendingThirdPartyManualApproval:        {},
	SubStatusThirdPartyConfirming:                   {},
	SubStatusPendingBlockchainConfirmations:         {},
	SubStatusThirdPartyCompleted:                    {},
	SubStatusCompletedButThirdPartyFailed:           {},
	SubStatusCompletedButThirdPartyRejected:         {},
	SubStatusConfirmed:                              {},
	SubStatusBlockedByPolicy:                        {},
	SubStatusThirdPartyCancelled:                    {},
	SubStatusThirdPartyRejected:                     {},
	SubStatusCancelledByUser:                        {},
	SubStatusCancelledByUserRequest:                 {},
	SubStatusRejectedByUser:                         {},
	SubStatusAutoFreeze:                             {},
	SubStatusFrozenManually:                         {},
	SubStatusRejectedAMLScreening:                   {},
	SubStatusActualFeeTooHigh:                       {},
	SubStatusAddressWhitelistingSuspended:           {},
	SubStatusAmountTooSmall:                         {},
	SubStatusAuthorizationFailed:                    {},
	SubStatusAuthorizerNotFound:                     {},
	SubStatusEnvUnsupportedAsset:                    {},
	SubStatusErrorUnsupportedTransactionType:        {},
	SubStatusFailOnLowFee:                           {},
	SubStatusGasLimitTooLow:                         {},
	SubStatusGasPriceTooLowForRBF:                   {},
	SubStatusIncompleteUserSetup:                    {},
	SubStatusInsufficientFunds:                      {},
	SubStatusInsufficientFundsForFee:                {},
	SubStatusIntegrationSuspended:                   {},
	SubStatusInvalidAddress:                         {},
	SubStatusInvalidContractCallData:                {},
	SubStatusInvalidFeeParams:                       {},
	SubStatusInvalidNonceForRBF:                     {},
	SubStatusInvalidTagOrMemo:                       {},
	SubStatusInvalidUnmanagedWallet:                 {},
	SubStatusMaxFeeExceeded:                         {},
	SubStatusMissingTagOrMemo:                       {},
	SubStatusNeedMoreToCreateDestination:            {},
	SubStatusNoMorePreprocessedIndexes:              {},
	SubStatusNonExistingAccountName:                 {},
	SubStatusRawMsgEmptyOrInvalid:                   {},
	SubStatusRawMsgLenInvalid:                       {},
	SubStatusTooManyInputs:                          {},
	SubStatusTxSizeExceededMax:                      {},
	SubStatusUnauthorisedDevice:                     {},
	SubStatusUnauthorisedUser:                       {},
	SubStatusUnallowedRawParamCombination:           {},
	SubStatusUnsupportedOperation:                   {},
	SubStatusUnsupportedTransactionType:             {},
	SubStatusZeroBalanceInPermanentAddress:          {},
	SubStatusOutOfDateSigningKeys:                   {},
	SubStatusConnectivityError:                      {},
	SubStatusErrorAsyncTxInFlight:                   {},
	SubStatusInternalError:                          {},
	SubStatusInvalidNonceTooHigh:                    {},
	SubStatusInvalidNonceTooLow:                     {},
	SubStatusInvalidRoutingDestination:              {},
	SubStatusLockingNonceAccountTimeout:             {},
	SubStatusNetworkRoutingMismatch:                 {},
	SubStatusNonceAllocationFailed:                  {},
	SubStatusResourceAlreadyExists:                  {},
	SubStatusSignerNotFound:                         {},
	SubStatusSigningError:                           {},
	SubStatusTimeout:                                {},
	SubStatusTxOutdated:                             {},
	SubStatusUnknownError:                           {},
	SubStatusVaultWalletNotReady:                    {},
	SubStatusUnsupportedMediaType:                   {},
	SubStatusAddressNotWhitelisted:                  {},
	SubStatusAPIKeyMismatch:                         {},
	SubStatusAssetNotEnabledOnDestination:           {},
	SubStatusDestTypeNotSupported:                   {},
	SubStatusExceededDecimalPrecision:               {},
	SubStatusExchangeConfigurationMismatch:          {},
	SubStatusExchangeVersionIncompatible:            {},
	SubStatusInvalidExchangeAccount:                 {},
	SubStatusMethodNotAllowed:                       {},
	SubStatusNonExistentAutoAccount:                 {},
	SubStatusOnPremiseConnectivityError:             {},
	SubStatusPeerAccountDoesNotExist:                {},
	SubStatusThirdPartyMissingAccount:               {},
	SubStatusUnauthorisedIPWhitelisting:             {},
	SubStatusUnauthorisedMissingCredentials:         {},
	SubStatusUnauthorisedMissingPermission:          {},
	SubStatusUnauthorisedOTPFailed:                  {},
	SubStatusWithdrawLimit:                          {},
	SubStatusThirdPartyFailed:                       {},
	SubStatusAPICallLimit:                           {},
	SubStatusAPIInvalidSignature:                    {},
	SubStatusCancelledExternally:                    {},
	SubStatusFailedAMLScreening:                     {},
	SubStatusInvalidFee:                             {},
	SubStatusInvalidThirdPartyResponse:              {},
	SubStatusManualDepositAddressRequired:           {},
	SubStatusMissingDepositAddress:                  {},
	SubStatusNoDepositAddress:                       {},
	SubStatusSubAccountsNotSupported:                {},
	SubStatusSpendCoinbaseTooEarly:                  {},
	SubStatusThirdPartyInternalError:                {},
	SubStatusTxIDNotAcceptedByThirdParty:            {},
	SubStatusUnsupportedAsset:                       {},
	SubStatusDoubleSpending:                         {},
	SubStatusDroppedByBlockchain:                    {},
	SubStatusInsufficientReservedFunding:            {},
	SubStatusInvalidSignature:                       {},
	SubStatusPartiallyFailed:                        {},
	SubStatusPowerupSuggestionFailure:               {},
	SubStatusReachedMempoolLimitForAccount:          {},
	SubStatusRejectedByBlockchain:                   {},
	SubStatusSmartContractExecutionFailed:           {},
	SubStatusTooLongMempoolChain:                    {},
}

// IsKnown 是否为已收录的子状态
func (s SubStatus) IsKnown() bool {
	_, ok := knownSubStatuses[s]
	return ok
}

func (s SubStatus) String() string {
	return string(s)
}
