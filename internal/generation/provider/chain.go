// internal/generation/provider/chain.go
package provider

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/common/metrics"
)

// RetryPolicy bounds per-provider retries inside the chain.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy: 2 retries, exponential backoff from 1s doubled,
// capped at 8s.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 2,
	BaseDelay:  1 * time.Second,
	MaxDelay:   8 * time.Second,
}

// ValidateFunc lets the caller plug task-specific content validation into the
// chain. A nil error accepts the text; a non-nil error advances the chain to
// the next provider without retrying the current one.
type ValidateFunc func(text string) error

// Chain drives sequential attempts over a priority-ordered list of clients.
// Providers are mutually exclusive fallback steps, never parallel races: one
// provider's retry budget must exhaust before the next is tried.
type Chain struct {
	clients []Client
	policy  RetryPolicy
	logger  logger.Logger
}

func NewChain(clients []Client, policy RetryPolicy, log logger.Logger) *Chain {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = DefaultRetryPolicy.MaxDelay
	}
	return &Chain{clients: clients, policy: policy, logger: log}
}

// Generate runs one persona task through the chain and returns the first
// validated text. The returned attempts record every call made, in order.
func (c *Chain) Generate(ctx context.Context, req Request, validate ValidateFunc) (string, []Attempt, error) {
	var attempts []Attempt

	for _, client := range c.clients {
		text, providerAttempts, ok := c.tryProvider(ctx, client, req, validate)
		attempts = append(attempts, providerAttempts...)
		if ok {
			return text, attempts, nil
		}
		if ctx.Err() != nil {
			return "", attempts, fmt.Errorf("%w: %v", ErrAllProvidersFailed, ctx.Err())
		}
	}

	return "", attempts, ErrAllProvidersFailed
}

// tryProvider spends at most the retry budget on a single provider. The
// bool result reports whether validated content was produced.
func (c *Chain) tryProvider(ctx context.Context, client Client, req Request, validate ValidateFunc) (string, []Attempt, bool) {
	var attempts []Attempt

	for retry := 0; ; retry++ {
		started := time.Now()
		outcome := client.Invoke(ctx, req)
		kind := outcome.Kind

		if kind == OutcomeSuccess && validate != nil {
			if err := validate(outcome.Text); err != nil {
				// A different model is more likely to help than reissuing
				// the same prompt, so a reject advances the chain.
				c.logger.Warn("content rejected by validator", map[string]interface{}{
					"provider": client.ID(),
					"reason":   err.Error(),
				})
				kind = OutcomeEmptyResult
				outcome = Outcome{Kind: kind, Err: err}
			}
		}

		attempt := Attempt{
			ProviderID: client.ID(),
			StartedAt:  started,
			DurationMs: time.Since(started).Milliseconds(),
			Kind:       kind,
			RetryCount: retry,
		}
		attempts = append(attempts, attempt)
		metrics.ProviderAttempts.WithLabelValues(client.ID(), string(kind)).Inc()
		metrics.ProviderAttemptDuration.WithLabelValues(client.ID()).Observe(time.Since(started).Seconds())

		if kind == OutcomeSuccess {
			return outcome.Text, attempts, true
		}

		c.logger.Warn("provider attempt failed", map[string]interface{}{
			"provider": client.ID(),
			"outcome":  string(kind),
			"retry":    retry,
			"error":    errString(outcome.Err),
		})

		// Auth and content-level failures are not transient: skip the rest
		// of this provider's budget and move on.
		if !kind.Retryable() || retry >= c.policy.MaxRetries {
			return "", attempts, false
		}

		select {
		case <-time.After(c.backoff(retry)):
		case <-ctx.Done():
			return "", attempts, false
		}
	}
}

// backoff doubles from the base delay, capped, with 20% jitter.
func (c *Chain) backoff(retry int) time.Duration {
	d := c.policy.BaseDelay << uint(retry)
	if d > c.policy.MaxDelay {
		d = c.policy.MaxDelay
	}
	jitter := time.Duration(rand.Float64() * 0.2 * float64(d))
	return d + jitter
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
