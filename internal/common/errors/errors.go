// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnknownSelector        ErrorCode = "UNKNOWN_SELECTOR"
	ErrCodeUpstreamHTTPError      ErrorCode = "UPSTREAM_HTTP_ERROR"
	ErrCodeOptionLoadFailed       ErrorCode = "OPTION_LOAD_FAILED"
	ErrCodeWebhookLifecycleFailed ErrorCode = "WEBHOOK_LIFECYCLE_FAILED"

	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"

	ErrCodeStaticDataFailed       ErrorCode = "STATIC_DATA_FAILED"
	ErrCodeProcessStartFailed     ErrorCode = "PROCESS_START_FAILED"
	ErrCodeDatabaseConnectionFail ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewUnknownSelectorError reports an unrecognised resource, operation or
// searchBy value. The message is what ends up in a continueOnFail item.
func NewUnknownSelectorError(kind, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSelector,
		Message:   fmt.Sprintf("Unknown %s: %s", kind, value),
		Details:   fmt.Sprintf("%s: %q", kind, value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamHTTPError wraps a non-2xx vendor response. Vendor failures are
// never retried: a job may already have generated documents for earlier
// items, and re-running it would generate them again.
func NewUpstreamHTTPError(statusCode int, vendorMessage string) *StandardError {
	msg := fmt.Sprintf("Request failed with status code %d", statusCode)
	if vendorMessage != "" {
		msg = fmt.Sprintf("%s: %s", msg, vendorMessage)
	}
	return &StandardError{
		Code:      ErrCodeUpstreamHTTPError,
		Message:   msg,
		Details:   fmt.Sprintf("statusCode: %d", statusCode),
		Retryable: false,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTransportError wraps a network-level failure talking to the vendor.
func NewUpstreamTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamHTTPError,
		Message:   err.Error(),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOptionLoadFailedError is logged by option loaders and never surfaced.
func NewOptionLoadFailedError(method string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOptionLoadFailed,
		Message:   fmt.Sprintf("Failed to load options for %s", method),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookLifecycleFailedError creates a non-retryable webhook lifecycle error.
func NewWebhookLifecycleFailedError(step string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookLifecycleFailed,
		Message:   fmt.Sprintf("Webhook %s failed", step),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStaticDataFailedError creates a retryable static data store error.
func NewStaticDataFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStaticDataFailed,
		Message:   fmt.Sprintf("Static data %s failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProcessStartFailedError creates a retryable process instance creation error.
func NewProcessStartFailedError(bpmnProcessID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProcessStartFailed,
		Message:   "Failed to start process instance",
		Details:   fmt.Sprintf("bpmnProcessId: %s, error: %s", bpmnProcessID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFail,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeUnknownSelector:        "UNKNOWN_SELECTOR",
	ErrCodeUpstreamHTTPError:      "UPSTREAM_HTTP_ERROR",
	ErrCodeOptionLoadFailed:       "OPTION_LOAD_FAILED",
	ErrCodeWebhookLifecycleFailed: "WEBHOOK_LIFECYCLE_FAILED",
	ErrCodeInputParsingFailed:     "INPUT_PARSING_FAILED",
	ErrCodeValidationFailed:       "VALIDATION_FAILED",
	ErrCodeStaticDataFailed:       "STATIC_DATA_FAILED",
	ErrCodeProcessStartFailed:     "PROCESS_START_FAILED",
	ErrCodeDatabaseConnectionFail: "DATABASE_CONNECTION_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStaticDataFailed,
		ErrCodeDatabaseConnectionFail:
		return 3

	case ErrCodeProcessStartFailed:
		return 2

	default:
		return 0 // Business and upstream errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError returns err as a *StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   err.Error(),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "UPSTREAM"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "WEBHOOK") || strings.Contains(codeStr, "OPTION"):
		return "LIFECYCLE"
	case strings.Contains(codeStr, "STATIC_DATA") || strings.Contains(codeStr, "DATABASE"):
		return "STORAGE"
	case strings.Contains(codeStr, "PROCESS"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "SELECTOR") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
