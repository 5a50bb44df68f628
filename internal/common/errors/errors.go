// Package errors provides the error taxonomy of the answer resolution pipeline.
package errors

import (
	"errors"
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
	// Raised by the query builder before any network attempt.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// Raised by the transport client.
	ErrCodeTransport      ErrorCode = "TRANSPORT_ERROR"
	ErrCodeUpstreamStatus ErrorCode = "UPSTREAM_STATUS_ERROR"
	ErrCodeParse          ErrorCode = "PARSE_ERROR"

	// Raised around the pipeline by the bot and worker surfaces.
	ErrCodeInvalidActivity     ErrorCode = "INVALID_ACTIVITY"
	ErrCodeInvalidJobVariables ErrorCode = "INVALID_JOB_VARIABLES"
	ErrCodeReplySendFailed     ErrorCode = "REPLY_SEND_FAILED"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"

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

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying failure so errors.Is works against
// context.Canceled, net errors and json syntax errors.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Workflow Error Integration
// ==========================

// BPMNError represents an error reported back to the Zeebe workflow engine.
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

// ToErrorVariables returns a map suitable for setting Zeebe job fail variables.
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

// NewConfigurationError reports a missing or invalid mandatory setting.
func NewConfigurationError(setting string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Missing required configuration",
		Details:   fmt.Sprintf("setting: %s", setting),
		Retryable: false,
		Metadata:  map[string]interface{}{"setting": setting},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsupportedStrategyError reports a strategy the builder cannot serve.
func NewUnsupportedStrategyError(strategy string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Unsupported resolution strategy",
		Details:   fmt.Sprintf("strategy: %s", strategy),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError wraps a network-level failure (refused, DNS, reset,
// cancellation). The caller may retry.
func NewTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransport,
		Message:   "Language service request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUpstreamStatusError reports a non-2xx reply from the language service.
// Throttling and server errors are retryable, client errors are not.
func NewUpstreamStatusError(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamStatus,
		Message:   "Language service returned an error status",
		Details:   fmt.Sprintf("status: %d, body: %s", status, truncate(body, 512)),
		Retryable: status == 429 || status >= 500,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError wraps a JSON decode failure of the response body.
func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParse,
		Message:   "Malformed response body",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidActivityError reports an inbound activity that failed validation.
func NewInvalidActivityError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidActivity,
		Message:   "Invalid activity payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidJobVariablesError reports job variables that could not be decoded.
func NewInvalidJobVariablesError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobVariables,
		Message:   "Invalid job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewReplySendFailedError wraps a failure to deliver a reply activity.
func NewReplySendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReplySendFailed,
		Message:   "Failed to send reply",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCacheUnavailableError wraps an answer cache failure.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Answer cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Classification
// ==========================

// GetRetryCount returns the recommended caller-side retry count. The pipeline
// itself never retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTransport, ErrCodeReplySendFailed:
		return 3
	case ErrCodeUpstreamStatus, ErrCodeCacheUnavailable:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Zeebe.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// Stage names the pipeline stage an error code belongs to.
func Stage(code ErrorCode) string {
	switch code {
	case ErrCodeConfiguration:
		return "configuration"
	case ErrCodeTransport, ErrCodeUpstreamStatus:
		return "transport"
	case ErrCodeParse:
		return "parse"
	default:
		return "internal"
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "TRANSPORT") || strings.Contains(codeStr, "UPSTREAM"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "PARSE"):
		return "PARSE"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "REPLY") || strings.Contains(codeStr, "CACHE"):
		return "DELIVERY"
	default:
		return "OTHER"
	}
}

// AsStandardError extracts a *StandardError from err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
