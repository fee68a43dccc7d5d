// internal/generation/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "contractgen-workers/internal/common/errors"
	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/generation/cache"
	"contractgen-workers/internal/generation/persona"
	"contractgen-workers/internal/generation/provider"
	"contractgen-workers/internal/generation/request"
	"contractgen-workers/internal/models"
)

const generatedArtifact = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

contract ProfitSharingLlpAgreement {
    address public owner;

    constructor() {
        owner = msg.sender;
    }

    function distributeProfit() external {
        require(msg.sender == owner, "caller is not the owner");
    }
}
`

const riskReviewText = "CRITICAL: Reentrancy possible in function distributeProfit.\n" +
	"Recommend using the checks-effects-interactions pattern."

const analysisText = "The agreement registers designated partners and distributes deposited " +
	"profit pro rata according to recorded shares. Only the owner may trigger a distribution."

// countingGenerator answers every persona task and counts invocations.
type countingGenerator struct {
	calls    int64
	failAll  bool
	failSynt bool
}

func (g *countingGenerator) Generate(ctx context.Context, req provider.Request, validate provider.ValidateFunc) (string, []provider.Attempt, error) {
	atomic.AddInt64(&g.calls, 1)
	if g.failAll {
		return "", nil, provider.ErrAllProvidersFailed
	}

	var text string
	switch {
	case strings.Contains(req.InstructionPrefix, "Solidity engineer"):
		if g.failSynt {
			return "", nil, provider.ErrAllProvidersFailed
		}
		text = generatedArtifact
	case strings.Contains(req.InstructionPrefix, "security auditor"):
		text = riskReviewText
	default:
		text = analysisText
	}
	return text, []provider.Attempt{{ProviderID: "primary", Kind: provider.OutcomeSuccess}}, nil
}

// collectingSink records dispatched results and signals arrival.
type collectingSink struct {
	mu      sync.Mutex
	results []*models.GenerationResult
	arrived chan struct{}
}

func newCollectingSink() *collectingSink {
	return &collectingSink{arrived: make(chan struct{}, 8)}
}

func (s *collectingSink) Record(ctx context.Context, req *request.GenerationRequest, result *models.GenerationResult) {
	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()
	s.arrived <- struct{}{}
}

func (s *collectingSink) waitOne(t *testing.T) *models.GenerationResult {
	t.Helper()
	select {
	case <-s.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("sink was not notified")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[len(s.results)-1]
}

func newTestOrchestrator(t *testing.T, gen persona.Generator, sinks ...Sink) *Orchestrator {
	log := logger.NewTestLogger(t)
	rc := cache.NewResultCache(cache.NewMemoryStore(16), cache.StaticVersions{"template-set": "v3"}, 7*24*time.Hour, log)
	pipeline := persona.NewPipeline(gen, 5*time.Second, persona.Budgets{Analysis: 1000, Synthesis: 3000, RiskReview: 1200}, log)
	return New(rc, pipeline, nil, sinks, log)
}

func validInput() Input {
	return Input{
		OrganizationType:   "Limited Liability Partnership",
		TransactionPattern: "B2B",
		ArtifactCategory:   "Profit Sharing Agreement",
		Customizations:     map[string]interface{}{"platformFee": 2.5},
	}
}

func TestGenerate_FullRunProducesReport(t *testing.T) {
	gen := &countingGenerator{}
	o := newTestOrchestrator(t, gen)

	result, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, generatedArtifact, result.ArtifactText)
	assert.Contains(t, result.AnalysisText, "pro rata")
	assert.False(t, result.FromCache)

	require.NotEmpty(t, result.Findings)
	assert.Equal(t, "distributeprofit", result.Findings[0].Location)
	require.NotEmpty(t, result.Recommendations)

	require.NotEmpty(t, result.GasEstimates)
	assert.Equal(t, "distributeProfit", result.GasEstimates[0].FunctionName)

	assert.False(t, result.Degraded[string(persona.TaskSynthesis)])
	assert.Equal(t, "primary", result.ProviderIDs[string(persona.TaskSynthesis)])
}

func TestGenerate_CacheHitSkipsProviders(t *testing.T) {
	gen := &countingGenerator{}
	o := newTestOrchestrator(t, gen)

	_, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err)
	callsAfterFirst := atomic.LoadInt64(&gen.calls)
	require.Equal(t, int64(3), callsAfterFirst)

	result, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err)

	assert.True(t, result.FromCache)
	assert.Equal(t, generatedArtifact, result.ArtifactText)
	assert.Equal(t, callsAfterFirst, atomic.LoadInt64(&gen.calls), "a cache hit must not touch providers")
}

func TestGenerate_TotalProviderFailureStillYieldsArtifact(t *testing.T) {
	gen := &countingGenerator{failAll: true}
	o := newTestOrchestrator(t, gen)

	result, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err, "provider failure is never fatal")

	assert.True(t, result.Degraded[string(persona.TaskSynthesis)])
	assert.Contains(t, result.ArtifactText, "contract ProfitSharingLlpAgreement", "template fallback artifact is served")
	assert.Contains(t, result.ArtifactText, "SPDX-License-Identifier")
	assert.Empty(t, result.Findings)
	require.NotEmpty(t, result.Recommendations)
	assert.Contains(t, result.Recommendations[0], "reviewed manually")
}

func TestGenerate_DegradedSynthesisIsNotCached(t *testing.T) {
	gen := &countingGenerator{failSynt: true}
	o := newTestOrchestrator(t, gen)

	_, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err)
	callsAfterFirst := atomic.LoadInt64(&gen.calls)

	result, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Greater(t, atomic.LoadInt64(&gen.calls), callsAfterFirst, "degraded result must not be served from cache")
}

func TestGenerate_InvalidRequestIsFatal(t *testing.T) {
	gen := &countingGenerator{}
	o := newTestOrchestrator(t, gen)

	_, err := o.Generate(context.Background(), Input{OrganizationType: "llp"})
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeInvalidRequest, stdErr.Code)
	assert.Zero(t, atomic.LoadInt64(&gen.calls), "rejected requests never reach providers")
}

func TestGenerate_UnsupportedCombinationIsFatal(t *testing.T) {
	o := newTestOrchestrator(t, &countingGenerator{})

	_, err := o.Generate(context.Background(), Input{
		OrganizationType:   "sole-proprietorship",
		TransactionPattern: "b2b",
		ArtifactCategory:   "profit-sharing",
	})
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeInvalidCombination, stdErr.Code)
}

func TestGenerate_SinksReceiveResult(t *testing.T) {
	sink := newCollectingSink()
	o := newTestOrchestrator(t, &countingGenerator{}, sink)

	result, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err)

	recorded := sink.waitOne(t)
	assert.Equal(t, result.ArtifactText, recorded.ArtifactText)
}

// End to end through the real chain: the first provider is misconfigured and
// must be skipped without retries, the second serves every task.
func TestGenerate_AuthFailingProviderIsSkipped(t *testing.T) {
	var primaryCalls, fallbackCalls int64

	primary := clientFunc{id: "primary", fn: func(ctx context.Context, req provider.Request) provider.Outcome {
		atomic.AddInt64(&primaryCalls, 1)
		return provider.Outcome{Kind: provider.OutcomeAuthError}
	}}
	fallback := clientFunc{id: "fallback", fn: func(ctx context.Context, req provider.Request) provider.Outcome {
		atomic.AddInt64(&fallbackCalls, 1)
		switch {
		case strings.Contains(req.InstructionPrefix, "Solidity engineer"):
			return provider.Outcome{Kind: provider.OutcomeSuccess, Text: generatedArtifact}
		case strings.Contains(req.InstructionPrefix, "security auditor"):
			return provider.Outcome{Kind: provider.OutcomeSuccess, Text: riskReviewText}
		default:
			return provider.Outcome{Kind: provider.OutcomeSuccess, Text: analysisText}
		}
	}}

	log := logger.NewTestLogger(t)
	chain := provider.NewChain([]provider.Client{primary, fallback}, provider.DefaultRetryPolicy, log)
	rc := cache.NewResultCache(cache.NewMemoryStore(16), cache.StaticVersions{}, time.Hour, log)
	pipeline := persona.NewPipeline(chain, 5*time.Second, persona.Budgets{Analysis: 1000, Synthesis: 3000, RiskReview: 1200}, log)
	o := New(rc, pipeline, nil, nil, log)

	result, err := o.Generate(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(3), atomic.LoadInt64(&primaryCalls), "auth errors get exactly one attempt per task")
	assert.Equal(t, int64(3), atomic.LoadInt64(&fallbackCalls))
	assert.Equal(t, generatedArtifact, result.ArtifactText)
	assert.Equal(t, "fallback", result.ProviderIDs[string(persona.TaskSynthesis)])
	assert.False(t, result.Degraded[string(persona.TaskSynthesis)])
}

type clientFunc struct {
	id string
	fn func(ctx context.Context, req provider.Request) provider.Outcome
}

func (c clientFunc) ID() string { return c.id }

func (c clientFunc) Invoke(ctx context.Context, req provider.Request) provider.Outcome {
	return c.fn(ctx, req)
}
