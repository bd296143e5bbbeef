package domain

import "time"

// Operation 设备支持的操作类型
type Operation string

const (
	OperationOpen         Operation = "OPEN"
	OperationClose        Operation = "CLOSE"
	OperationStatus       Operation = "STATUS"
	OperationGenerateCode Operation = "GENERATE_CODE"
	OperationRevokeCode   Operation = "REVOKE_CODE"
)

// Error codes surfaced in CommandResult.Error. Vendor/network failures are
// recovered inside the adapters and classified here; they never escape as Go
// errors to the orchestrator.
const (
	ErrCodeProviderNotSupported = "PROVIDER_NOT_SUPPORTED"
	ErrCodeProviderDisabled     = "PROVIDER_DISABLED"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeVendorError          = "VENDOR_ERROR"
	ErrCodeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	ErrCodeDeviceInactive       = "DEVICE_INACTIVE"
)

// CommandResult 单次设备指令的结果（不落库，仅汇总进 AccessLogEntry）
type CommandResult struct {
	Success   bool           `json:"success"`
	Operation Operation      `json:"operation"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Error     string         `json:"error,omitempty"`
	Retries   int            `json:"retries"`
}

// NewSuccessResult builds a successful result stamped with the current time.
func NewSuccessResult(op Operation, message string, metadata map[string]any) CommandResult {
	return CommandResult{
		Success:   true,
		Operation: op,
		Message:   message,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewFailureResult builds a failed result with a classified error code.
func NewFailureResult(op Operation, message, errCode string) CommandResult {
	return CommandResult{
		Success:   false,
		Operation: op,
		Message:   message,
		Timestamp: time.Now(),
		Error:     errCode,
	}
}
