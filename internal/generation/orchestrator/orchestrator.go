// internal/generation/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"time"

	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/common/metrics"
	"contractgen-workers/internal/generation/analysis"
	"contractgen-workers/internal/generation/cache"
	"contractgen-workers/internal/generation/contract"
	"contractgen-workers/internal/generation/persona"
	"contractgen-workers/internal/generation/request"
	"contractgen-workers/internal/models"
)

// State names one phase of a generation run, for logs and debugging only;
// transitions are linear and encoded in Generate itself.
type State string

const (
	StateNormalizing State = "normalizing"
	StateCacheCheck  State = "cache_check"
	StateGenerating  State = "generating"
	StateAnalyzing   State = "analyzing"
	StateCaching     State = "caching"
	StateDone        State = "done"
)

// Input is the raw, pre-normalization request.
type Input struct {
	OrganizationType   string                 `json:"organizationType"`
	TransactionPattern string                 `json:"transactionPattern"`
	ArtifactCategory   string                 `json:"artifactCategory"`
	Customizations     map[string]interface{} `json:"customizations,omitempty"`
}

// Pipeline is the persona fan-out the orchestrator drives. *persona.Pipeline
// satisfies it.
type Pipeline interface {
	Run(ctx context.Context, asm contract.Assembly) persona.Result
}

// Sink receives completed results out of band: history, search indexing,
// degraded-result alerts. Sinks must tolerate being called concurrently and
// must never fail a generation.
type Sink interface {
	Record(ctx context.Context, req *request.GenerationRequest, result *models.GenerationResult)
}

// Orchestrator walks one request through normalization, cache check, persona
// generation, static analysis and caching. Only normalization can fail the
// run; every later stage degrades toward the template fallback.
type Orchestrator struct {
	cache    *cache.ResultCache
	pipeline Pipeline
	analyzer analysis.Analyzer
	sinks    []Sink
	log      logger.Logger
	now      func() time.Time

	// sinkTimeout bounds each out-of-band recording.
	sinkTimeout time.Duration
}

func New(resultCache *cache.ResultCache, pipeline Pipeline, analyzer analysis.Analyzer, sinks []Sink, log logger.Logger) *Orchestrator {
	if analyzer == nil {
		analyzer = analysis.NewHeuristicAnalyzer()
	}
	return &Orchestrator{
		cache:       resultCache,
		pipeline:    pipeline,
		analyzer:    analyzer,
		sinks:       sinks,
		log:         log,
		now:         time.Now,
		sinkTimeout: 10 * time.Second,
	}
}

// Generate produces the artifact and report for one raw request. The only
// error it returns is a request error from normalization; once the request is
// accepted a result always comes back, degraded at worst.
func (o *Orchestrator) Generate(ctx context.Context, input Input) (*models.GenerationResult, error) {
	started := o.now()

	req, err := request.Normalize(input.OrganizationType, input.TransactionPattern, input.ArtifactCategory, input.Customizations)
	if err != nil {
		return nil, err
	}

	fingerprint := request.Fingerprint(req, contract.SchemaVersion)
	log := o.log.With(map[string]interface{}{
		"fingerprint":        fingerprint,
		"organizationType":   req.OrganizationType,
		"transactionPattern": req.TransactionPattern,
		"artifactCategory":   req.ArtifactCategory,
	})

	if cached, ok := o.cache.Lookup(ctx, fingerprint); ok {
		log.Info("serving cached result", map[string]interface{}{"state": string(StateDone)})
		cached.ProcessingTimeMs = o.now().Sub(started).Milliseconds()
		metrics.GenerationDuration.WithLabelValues("true").Observe(float64(cached.ProcessingTimeMs) / 1000)
		o.dispatch(req, cached)
		return cached, nil
	}

	log.Debug("cache miss, generating", map[string]interface{}{"state": string(StateGenerating)})
	asm := contract.Assemble(req)
	personaResult := o.pipeline.Run(ctx, asm)

	result := o.buildResult(personaResult)
	result.ProcessingTimeMs = o.now().Sub(started).Milliseconds()
	metrics.GenerationDuration.WithLabelValues("false").Observe(float64(result.ProcessingTimeMs) / 1000)

	// A degraded synthesis is served but never cached: the next identical
	// request should get a fresh shot at the providers.
	if !personaResult.Synthesis.Degraded {
		o.cache.Save(ctx, fingerprint, *result)
	} else {
		log.Warn("synthesis degraded, skipping cache write", nil)
	}

	o.dispatch(req, result)
	log.Info("generation complete", map[string]interface{}{
		"state":            string(StateDone),
		"degraded":         result.Degraded,
		"processingTimeMs": result.ProcessingTimeMs,
	})
	return result, nil
}

// buildResult assembles the final report from the persona outputs and the
// static analyzer.
func (o *Orchestrator) buildResult(pr persona.Result) *models.GenerationResult {
	result := &models.GenerationResult{
		AnalysisText: pr.Analysis.Text,
		ArtifactText: pr.Synthesis.Text,
		Degraded: map[string]bool{
			string(persona.TaskAnalysis):   pr.Analysis.Degraded,
			string(persona.TaskSynthesis):  pr.Synthesis.Degraded,
			string(persona.TaskRiskReview): pr.RiskReview.Degraded,
		},
		ProviderIDs: providerIDs(pr),
	}

	if !pr.RiskReview.Degraded {
		result.Findings, result.Recommendations = analysis.ClassifyRiskReview(pr.RiskReview.Text)
	} else {
		result.Recommendations = append(result.Recommendations,
			"Automated security review was unavailable; have the agreement reviewed manually before deployment.")
	}

	result.GasEstimates = o.analyzer.Analyze(result.ArtifactText)
	return result
}

func providerIDs(pr persona.Result) map[string]string {
	ids := map[string]string{}
	for task, out := range map[persona.Task]models.PersonaOutput{
		persona.TaskAnalysis:   pr.Analysis,
		persona.TaskSynthesis:  pr.Synthesis,
		persona.TaskRiskReview: pr.RiskReview,
	} {
		if out.ProviderID != "" {
			ids[string(task)] = out.ProviderID
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// dispatch hands the result to every sink on its own goroutine, detached from
// the request context so a completed generation is recorded even if the
// caller has already gone away.
func (o *Orchestrator) dispatch(req *request.GenerationRequest, result *models.GenerationResult) {
	for _, sink := range o.sinks {
		go func(s Sink) {
			ctx, cancel := context.WithTimeout(context.Background(), o.sinkTimeout)
			defer cancel()
			s.Record(ctx, req, result)
		}(sink)
	}
}
