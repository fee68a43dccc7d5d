// internal/generation/provider/chain_test.go
package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"contractgen-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns its outcomes in order, repeating the last one.
type scriptedClient struct {
	id       string
	outcomes []Outcome
	calls    int
}

func (s *scriptedClient) ID() string { return s.id }

func (s *scriptedClient) Invoke(ctx context.Context, req Request) Outcome {
	idx := s.calls
	if idx >= len(s.outcomes) {
		idx = len(s.outcomes) - 1
	}
	s.calls++
	return s.outcomes[idx]
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestChain_AuthErrorSkipsProviderWithoutRetry(t *testing.T) {
	a := &scriptedClient{id: "a", outcomes: []Outcome{{Kind: OutcomeAuthError, Err: errors.New("401")}}}
	b := &scriptedClient{id: "b", outcomes: []Outcome{{Kind: OutcomeSuccess, Text: "from-b"}}}

	chain := NewChain([]Client{a, b}, fastPolicy(), logger.NewNoOpLogger())
	text, attempts, err := chain.Generate(context.Background(), Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, "from-b", text)
	// Exactly zero retries spent on the misconfigured provider.
	assert.Equal(t, 1, a.calls)
	require.Len(t, attempts, 2)
	assert.Equal(t, OutcomeAuthError, attempts[0].Kind)
	assert.Equal(t, 0, attempts[0].RetryCount)
	assert.Equal(t, "b", attempts[1].ProviderID)
}

func TestChain_RetriesTransientFailuresWithBudget(t *testing.T) {
	a := &scriptedClient{id: "a", outcomes: []Outcome{
		{Kind: OutcomeRateLimited, Err: errors.New("429")},
		{Kind: OutcomeTimeout, Err: errors.New("deadline")},
		{Kind: OutcomeSuccess, Text: "third time lucky"},
	}}

	chain := NewChain([]Client{a}, fastPolicy(), logger.NewNoOpLogger())
	text, attempts, err := chain.Generate(context.Background(), Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, "third time lucky", text)
	require.Len(t, attempts, 3)
	assert.Equal(t, 2, attempts[2].RetryCount)
}

func TestChain_RetryBudgetExhaustionAdvancesProvider(t *testing.T) {
	a := &scriptedClient{id: "a", outcomes: []Outcome{{Kind: OutcomeTransport, Err: errors.New("conn refused")}}}
	b := &scriptedClient{id: "b", outcomes: []Outcome{{Kind: OutcomeSuccess, Text: "fallback"}}}

	chain := NewChain([]Client{a, b}, fastPolicy(), logger.NewNoOpLogger())
	text, _, err := chain.Generate(context.Background(), Request{}, nil)

	require.NoError(t, err)
	assert.Equal(t, "fallback", text)
	// Initial attempt plus the full retry budget.
	assert.Equal(t, 3, a.calls)
}

func TestChain_ValidationRejectAdvancesWithoutRetry(t *testing.T) {
	a := &scriptedClient{id: "a", outcomes: []Outcome{{Kind: OutcomeSuccess, Text: "// TODO: implement"}}}
	b := &scriptedClient{id: "b", outcomes: []Outcome{{Kind: OutcomeSuccess, Text: "complete artifact"}}}

	validate := func(text string) error {
		if text == "complete artifact" {
			return nil
		}
		return errors.New("placeholder marker found")
	}

	chain := NewChain([]Client{a, b}, fastPolicy(), logger.NewNoOpLogger())
	text, attempts, err := chain.Generate(context.Background(), Request{}, validate)

	require.NoError(t, err)
	assert.Equal(t, "complete artifact", text)
	assert.Equal(t, 1, a.calls, "validation failure must not retry the same provider")
	assert.Equal(t, OutcomeEmptyResult, attempts[0].Kind)
}

func TestChain_AllProvidersExhausted(t *testing.T) {
	a := &scriptedClient{id: "a", outcomes: []Outcome{{Kind: OutcomeAuthError, Err: errors.New("401")}}}
	b := &scriptedClient{id: "b", outcomes: []Outcome{{Kind: OutcomeEmptyResult, Err: errors.New("empty")}}}

	chain := NewChain([]Client{a, b}, fastPolicy(), logger.NewNoOpLogger())
	text, attempts, err := chain.Generate(context.Background(), Request{}, nil)

	require.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Empty(t, text)
	assert.Len(t, attempts, 2)
}

func TestChain_ContextCancellationStopsChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &scriptedClient{id: "a", outcomes: []Outcome{{Kind: OutcomeRateLimited, Err: errors.New("429")}}}
	b := &scriptedClient{id: "b", outcomes: []Outcome{{Kind: OutcomeSuccess, Text: "never reached"}}}

	cancel()
	chain := NewChain([]Client{a, b}, fastPolicy(), logger.NewNoOpLogger())
	_, _, err := chain.Generate(ctx, Request{}, nil)

	require.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, 0, b.calls)
}
