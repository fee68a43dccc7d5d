// test/e2e/e2e_test.go
//
// Wires the whole generation path together with real components: HTTP
// provider clients against fake chat-completion servers, the provider chain,
// the persona pipeline, and a Redis-backed result cache on miniredis. Only
// Camunda stays out of the loop.
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractgen-workers/internal/common/config"
	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/generation/cache"
	"contractgen-workers/internal/generation/orchestrator"
	"contractgen-workers/internal/generation/persona"
	"contractgen-workers/internal/generation/provider"
)

const synthesizedContract = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

contract ProfitSharingLlpAgreement {
    address public owner;
    uint256 public totalDeposited;
    mapping(address => uint256) public shares;

    constructor() {
        owner = msg.sender;
    }

    function deposit() external payable {
        totalDeposited += msg.value;
    }

    function distributeProfit(address payable member, uint256 amount) external {
        require(msg.sender == owner, "only owner");
        (bool ok, ) = member.call{value: amount}("");
        require(ok, "transfer failed");
    }
}
`

const analysisText = "This profit sharing agreement lets a limited liability partnership collect " +
	"member deposits and lets the managing partner distribute profit to members. Funds move from " +
	"member wallets into the contract and leave it only when the owner authorizes a distribution."

const riskReviewText = `HIGH risk: unchecked external call in distributeProfit allows reentrancy before balances update
LOW risk: floating pragma permits compilation with untested compiler releases
Recommend adding a nonReentrant guard to distributeProfit
Recommend pinning the pragma to a single compiler version`

type chatCall struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens int `json:"max_tokens"`
}

// newProviderServer fakes a chat-completions endpoint that answers each
// persona task with task-appropriate content.
func newProviderServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var call chatCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		require.NotEmpty(t, call.Messages)

		system := call.Messages[0].Content
		var content string
		switch {
		case strings.Contains(system, "Solidity engineer"):
			content = synthesizedContract
		case strings.Contains(system, "security auditor"):
			content = riskReviewText
		default:
			content = analysisText
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// newAuthFailingServer fakes a provider with a revoked key.
func newAuthFailingServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)
	return server
}

func newEngine(t *testing.T, providers ...config.ProviderConfig) *orchestrator.Orchestrator {
	t.Helper()
	log := logger.NewTestLogger(t)

	mr := miniredis.RunT(t)
	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	resultCache := cache.NewResultCache(store, cache.StaticVersions{"template-set": "v3"}, 7*24*time.Hour, log)

	clients := make([]provider.Client, 0, len(providers))
	for _, pc := range providers {
		clients = append(clients, provider.NewHTTPClient(pc, log))
	}
	chain := provider.NewChain(clients, provider.DefaultRetryPolicy, log)
	pipeline := persona.NewPipeline(chain, 10*time.Second, persona.Budgets{
		Analysis:   1000,
		Synthesis:  3000,
		RiskReview: 1200,
	}, log)

	return orchestrator.New(resultCache, pipeline, nil, nil, log)
}

func generationInput() orchestrator.Input {
	return orchestrator.Input{
		OrganizationType:   "Limited Liability Partnership",
		TransactionPattern: "B2B",
		ArtifactCategory:   "Profit Sharing Agreement",
		Customizations:     map[string]interface{}{"platformFee": 2.5},
	}
}

func TestEndToEnd_GenerationAndCacheHit(t *testing.T) {
	var calls atomic.Int64
	server := newProviderServer(t, &calls)

	engine := newEngine(t, config.ProviderConfig{
		ID: "stub", BaseURL: server.URL, APIKey: "test-key", Model: "stub-model", Timeout: 5000,
	})

	result, err := engine.Generate(context.Background(), generationInput())
	require.NoError(t, err)

	assert.Equal(t, synthesizedContract, result.ArtifactText)
	assert.Equal(t, analysisText, result.AnalysisText)
	assert.False(t, result.FromCache)
	for task, degraded := range result.Degraded {
		assert.False(t, degraded, "task %s unexpectedly degraded", task)
	}
	assert.Equal(t, "stub", result.ProviderIDs["synthesis"])

	require.Len(t, result.Findings, 2)
	assert.Contains(t, result.Findings[0].Description, "distributeProfit")
	require.Len(t, result.Recommendations, 2)

	// The heuristic analyzer runs over the synthesized source.
	require.NotEmpty(t, result.GasEstimates)

	// One call per persona task.
	assert.EqualValues(t, 3, calls.Load())

	// An identical request is served from Redis without touching providers.
	cached, err := engine.Generate(context.Background(), generationInput())
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, synthesizedContract, cached.ArtifactText)
	assert.EqualValues(t, 3, calls.Load())
}

func TestEndToEnd_AuthFailureFallsThroughChain(t *testing.T) {
	var primaryCalls, fallbackCalls atomic.Int64
	primary := newAuthFailingServer(t, &primaryCalls)
	fallback := newProviderServer(t, &fallbackCalls)

	engine := newEngine(t,
		config.ProviderConfig{ID: "primary", BaseURL: primary.URL, APIKey: "revoked", Model: "stub-model", Timeout: 5000},
		config.ProviderConfig{ID: "fallback", BaseURL: fallback.URL, APIKey: "test-key", Model: "stub-model", Timeout: 5000},
	)

	result, err := engine.Generate(context.Background(), generationInput())
	require.NoError(t, err)

	// Auth failures burn exactly one attempt per task, never the retry budget.
	assert.EqualValues(t, 3, primaryCalls.Load())
	assert.EqualValues(t, 3, fallbackCalls.Load())

	assert.Equal(t, synthesizedContract, result.ArtifactText)
	assert.Equal(t, "fallback", result.ProviderIDs["synthesis"])
	for task, degraded := range result.Degraded {
		assert.False(t, degraded, "task %s unexpectedly degraded", task)
	}
}

func TestEndToEnd_NoProvidersServesTemplateFallback(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Generate(context.Background(), generationInput())
	require.NoError(t, err)

	assert.True(t, result.Degraded["synthesis"])
	assert.Contains(t, result.ArtifactText, "contract ProfitSharingLlpAgreement")
	assert.Contains(t, result.Recommendations[len(result.Recommendations)-1], "reviewed manually")

	// Degraded synthesis results stay out of the cache.
	second, err := engine.Generate(context.Background(), generationInput())
	require.NoError(t, err)
	assert.False(t, second.FromCache)
}
