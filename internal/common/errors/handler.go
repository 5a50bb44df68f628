// internal/common/errors/handler.go
package errors

import (
	"fmt"
	"time"
)

// ErrorHandler turns pipeline failures into log records and user-facing text.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleResolutionError logs err and returns the diagnostic answer to send
// in place of a resolved answer. The result is never empty.
func (h *ErrorHandler) HandleResolutionError(err error, strategy, utterance string) string {
	stdErr := h.Normalize(err)

	h.logger.Error("answer resolution failed", map[string]interface{}{
		"strategy":      strategy,
		"stage":         Stage(stdErr.Code),
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	return DiagnosticAnswer(Stage(stdErr.Code), utterance)
}

// Normalize ensures we always have a StandardError.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	if err == nil {
		err = fmt.Errorf("unknown failure")
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// DiagnosticAnswer is the reply sent when a stage of the pipeline fails. It
// names the stage and quotes the utterance so operators can match it to logs.
func DiagnosticAnswer(stage, utterance string) string {
	return fmt.Sprintf("Error querying the language service (%s stage failed) for message %q.", stage, utterance)
}
