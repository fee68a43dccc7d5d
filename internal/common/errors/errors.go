// Package errors provides standardized error handling for the generation
// workers and their BPMN integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request errors are the only fatal class; everything else degrades.
	ErrCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidCombination ErrorCode = "INVALID_COMBINATION"

	// Provider errors, classified per attempt.
	ErrCodeProviderAuth      ErrorCode = "PROVIDER_AUTH_ERROR"
	ErrCodeProviderRateLimit ErrorCode = "PROVIDER_RATE_LIMITED"
	ErrCodeProviderTimeout   ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderTransport ErrorCode = "PROVIDER_TRANSPORT_ERROR"
	ErrCodeValidationReject  ErrorCode = "VALIDATION_REJECTED"
	ErrCodeAllProvidersFail  ErrorCode = "ALL_PROVIDERS_FAILED"

	// Infrastructure errors.
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeHistoryWrite     ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeSearchIndex      ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
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

// BPMNError represents an error that can be thrown to the workflow engine.
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

// ToErrorVariables returns a map suitable for setting job fail variables.
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

// ConvertToBPMNError maps a StandardError to its BPMN representation.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
	}
}

// GetRetryCount returns how many engine-level retries a code deserves.
// Provider-level retry/backoff happens inside the chain; at the job level
// only infrastructure hiccups are worth reissuing.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCacheUnavailable, ErrCodeInternal:
		return 2
	default:
		return 0
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeInvalidCombination:
		return "request"
	case ErrCodeProviderAuth, ErrCodeProviderRateLimit, ErrCodeProviderTimeout,
		ErrCodeProviderTransport, ErrCodeValidationReject, ErrCodeAllProvidersFail:
		return "provider"
	case ErrCodeCacheUnavailable, ErrCodeHistoryWrite, ErrCodeSearchIndex:
		return "infrastructure"
	default:
		return "internal"
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidRequestError creates the fatal request error: missing or empty
// category fields.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request fields are missing or malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCombinationError flags a triple outside the compatibility table.
func NewInvalidCombinationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCombination,
		Message:   "Unsupported organization/transaction/artifact combination",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAllProvidersFailedError records a per-task chain exhaustion. It is
// retryable=false because the caller degrades to the template fallback
// instead of failing the job.
func NewAllProvidersFailedError(taskID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAllProvidersFail,
		Message:   "Every provider attempt failed for task " + taskID,
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"taskId": taskID},
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError wraps a cache backend outage.
func NewCacheUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache backend unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected internal error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
