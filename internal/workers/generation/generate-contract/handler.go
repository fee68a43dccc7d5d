// internal/workers/generation/generate-contract/handler.go
package generatecontract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "contractgen-workers/internal/common/errors"
	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/common/metrics"
	"contractgen-workers/internal/common/observability"
	"contractgen-workers/internal/generation/orchestrator"
	"contractgen-workers/internal/models"
)

const TaskType = "generate-contract"

// Engine is the orchestration capability the worker drives.
// *orchestrator.Orchestrator satisfies it.
type Engine interface {
	Generate(ctx context.Context, input orchestrator.Input) (*models.GenerationResult, error)
}

type Handler struct {
	config       *Config
	engine       Engine
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
	obs          *observability.Observability
}

func NewHandler(config *Config, engine Engine, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		logger:       scoped,
		errorHandler: commonerrors.NewErrorHandler(scoped),
	}
}

// WithObservability attaches the otel job recorders. Optional; a handler
// without them only reports through the promauto vectors.
func (h *Handler) WithObservability(obs *observability.Observability) *Handler {
	h.obs = obs
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := ValidateInput(job.Variables); err != nil {
		h.failJob(ctx, client, job, commonerrors.NewInvalidRequestError(err.Error()))
		h.recordJob(ctx, started, "failed")
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, commonerrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		h.recordJob(ctx, started, "failed")
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		h.recordJob(ctx, started, "failed")
		return
	}

	h.completeJob(ctx, client, job, output)
	h.recordJob(ctx, started, "completed")
}

func (h *Handler) recordJob(ctx context.Context, started time.Time, status string) {
	if h.obs == nil {
		return
	}
	h.obs.RecordJobProcessed(ctx, status)
	h.obs.RecordJobDuration(ctx, time.Since(started), status)
}

// Execute runs the generation and shapes the job output. Split from Handle so
// tests and tools can call it without a broker.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.engine.Generate(ctx, orchestrator.Input{
		OrganizationType:   input.OrganizationType,
		TransactionPattern: input.TransactionPattern,
		ArtifactCategory:   input.ArtifactCategory,
		Customizations:     input.Customizations,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		CorrelationID:    input.CorrelationID,
		Artifact:         result.ArtifactText,
		Analysis:         result.AnalysisText,
		Findings:         result.Findings,
		GasEstimates:     result.GasEstimates,
		Recommendations:  result.Recommendations,
		Degraded:         result.Degraded,
		FromCache:        result.FromCache,
		ProcessingTimeMs: result.ProcessingTimeMs,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.WithError(err).Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
		})
		return
	}

	if _, err = cmd.Send(ctx); err != nil {
		h.logger.WithError(err).Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":    job.Key,
		"fromCache": output.FromCache,
		"degraded":  output.Degraded,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := commonerrors.ErrCodeInternal
	var stdErr *commonerrors.StandardError
	if e, ok := err.(*commonerrors.StandardError); ok {
		stdErr = e
		code = e.Code
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()

	if stdErr != nil {
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
