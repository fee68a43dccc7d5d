// internal/generation/provider/provider.go
package provider

import (
	"context"
	"errors"
	"time"
)

// OutcomeKind classifies one provider attempt.
type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeEmptyResult OutcomeKind = "empty_result"
	OutcomeRateLimited OutcomeKind = "rate_limited"
	OutcomeAuthError   OutcomeKind = "auth_error"
	OutcomeTimeout     OutcomeKind = "timeout"
	OutcomeTransport   OutcomeKind = "transport_error"
)

// Retryable reports whether the same provider is worth another attempt.
// Auth failures are configuration errors; an empty result from the same
// model is unlikely to improve by reissuing the identical prompt.
func (k OutcomeKind) Retryable() bool {
	switch k {
	case OutcomeRateLimited, OutcomeTimeout, OutcomeTransport:
		return true
	default:
		return false
	}
}

// Outcome is the classified result of one provider call.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// Attempt is the ephemeral per-call record kept for logs and metrics only.
type Attempt struct {
	ProviderID string
	StartedAt  time.Time
	DurationMs int64
	Kind       OutcomeKind
	RetryCount int
}

// Request carries one persona task's instructions to a provider.
type Request struct {
	InstructionPrefix string
	PromptBody        string
	MaxTokens         int
}

// Client is the capability one hosted chat-completion endpoint exposes.
type Client interface {
	ID() string
	Invoke(ctx context.Context, req Request) Outcome
}

// ErrAllProvidersFailed is returned once every provider in the chain has been
// exhausted for a task.
var ErrAllProvidersFailed = errors.New("all providers failed")
