// internal/workers/generation/audit-contract/handler.go
package auditcontract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "contractgen-workers/internal/common/errors"
	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/common/metrics"
	"contractgen-workers/internal/generation/analysis"
	"contractgen-workers/internal/generation/validator"
)

const TaskType = "audit-contract"

// Handler runs the structural validator and the heuristic gas analyzer over
// an already-produced artifact, for workflows that audit contracts generated
// elsewhere.
type Handler struct {
	config       *Config
	analyzer     analysis.Analyzer
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, analyzer analysis.Analyzer, log logger.Logger) *Handler {
	if analyzer == nil {
		analyzer = analysis.NewHeuristicAnalyzer()
	}
	scoped := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		analyzer:     analyzer,
		logger:       scoped,
		errorHandler: commonerrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := ValidateInput(job.Variables); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(commonerrors.ErrCodeInvalidRequest)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, commonerrors.NewInvalidRequestError(err.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(commonerrors.ErrCodeInvalidRequest)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, commonerrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output := h.Execute(ctx, &input)
	h.completeJob(ctx, client, job, output)
}

// Execute audits one artifact. A structural reject is a finding, not a job
// failure: the verdict goes back to the workflow either way.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	output := &Output{
		CorrelationID: input.CorrelationID,
		WellFormed:    true,
	}

	if err := validator.Validate(validator.TaskSynthesis, input.Artifact); err != nil {
		output.WellFormed = false
		var reject *validator.RejectError
		if errors.As(err, &reject) {
			output.Issues = append(output.Issues, reject.Reason)
		} else {
			output.Issues = append(output.Issues, err.Error())
		}
	}

	output.GasEstimates = h.analyzer.Analyze(input.Artifact)
	for _, estimate := range output.GasEstimates {
		output.Recommendations = append(output.Recommendations, estimate.Recommendations...)
	}
	return output
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
		"jobKey":     job.Key,
		"wellFormed": output.WellFormed,
		"functions":  len(output.GasEstimates),
	})
}
