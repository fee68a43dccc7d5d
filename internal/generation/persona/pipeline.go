// internal/generation/persona/pipeline.go
package persona

import (
	"context"
	"sync"
	"time"

	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/common/metrics"
	"contractgen-workers/internal/generation/contract"
	"contractgen-workers/internal/generation/provider"
	"contractgen-workers/internal/generation/validator"
	"contractgen-workers/internal/models"
)

// Generator is the provider-chain capability the pipeline depends on.
// *provider.Chain satisfies it.
type Generator interface {
	Generate(ctx context.Context, req provider.Request, validate provider.ValidateFunc) (string, []provider.Attempt, error)
}

// Budgets carries the per-task max-token limits.
type Budgets struct {
	Analysis   int
	Synthesis  int
	RiskReview int
}

// Result is the combined outcome of the three persona tasks. Synthesis always
// carries an artifact: the provider's when one validated, the template
// fallback otherwise.
type Result struct {
	Analysis   models.PersonaOutput
	Synthesis  models.PersonaOutput
	RiskReview models.PersonaOutput
}

// Pipeline fans the three persona tasks out concurrently, each with its own
// deadline, and degrades per task instead of failing the run.
type Pipeline struct {
	gen      Generator
	deadline time.Duration
	budgets  Budgets
	log      logger.Logger
}

func NewPipeline(gen Generator, deadline time.Duration, budgets Budgets, log logger.Logger) *Pipeline {
	if deadline <= 0 {
		deadline = 90 * time.Second
	}
	return &Pipeline{gen: gen, deadline: deadline, budgets: budgets, log: log}
}

// Run executes all three tasks against the assembled templates. It never
// returns an error: a task that cannot produce validated provider content is
// marked degraded and filled from the deterministic assembly.
func (p *Pipeline) Run(ctx context.Context, asm contract.Assembly) Result {
	outputs := make([]models.PersonaOutput, len(definitions))

	var wg sync.WaitGroup
	for i, def := range definitions {
		wg.Add(1)
		go func(i int, def definition) {
			defer wg.Done()
			outputs[i] = p.runTask(ctx, def, asm)
		}(i, def)
	}
	wg.Wait()

	var result Result
	for i, def := range definitions {
		switch def.task {
		case TaskAnalysis:
			result.Analysis = outputs[i]
		case TaskSynthesis:
			result.Synthesis = outputs[i]
		case TaskRiskReview:
			result.RiskReview = outputs[i]
		}
	}
	return result
}

func (p *Pipeline) runTask(ctx context.Context, def definition, asm contract.Assembly) models.PersonaOutput {
	taskCtx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	req := provider.Request{
		InstructionPrefix: def.instructionPrefix,
		PromptBody:        def.prompt(asm),
		MaxTokens:         p.budget(def.task),
	}

	text, attempts, err := p.gen.Generate(taskCtx, req, validator.For(def.kind))
	if err != nil {
		p.log.WithError(err).Warn("persona task degraded", map[string]interface{}{
			"task":     string(def.task),
			"attempts": len(attempts),
		})
		metrics.DegradedTasks.WithLabelValues(string(def.task)).Inc()
		return p.fallback(def.task, asm)
	}

	out := models.PersonaOutput{Text: text}
	if n := len(attempts); n > 0 {
		out.ProviderID = attempts[n-1].ProviderID
	}
	return out
}

func (p *Pipeline) budget(task Task) int {
	switch task {
	case TaskSynthesis:
		return p.budgets.Synthesis
	case TaskRiskReview:
		return p.budgets.RiskReview
	default:
		return p.budgets.Analysis
	}
}

// fallback supplies the degraded output per task. Only synthesis has real
// content to fall back on; analysis gets the template context so the caller
// still has something to show, and risk review stays empty so no fabricated
// findings reach the report.
func (p *Pipeline) fallback(task Task, asm contract.Assembly) models.PersonaOutput {
	out := models.PersonaOutput{Degraded: true}
	switch task {
	case TaskSynthesis:
		out.Text = asm.FallbackArtifact
	case TaskAnalysis:
		out.Text = "Automated analysis was unavailable. The agreement was assembled from vetted templates:\n" + asm.GroundingContext
	}
	return out
}
