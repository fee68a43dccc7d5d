// internal/workers/generation/audit-contract/models.go
package auditcontract

import (
	"contractgen-workers/internal/generation/analysis"
)

type Input struct {
	Artifact      string `json:"artifact"`
	CorrelationID string `json:"correlationId,omitempty"`
}

type Output struct {
	CorrelationID   string                 `json:"correlationId,omitempty"`
	WellFormed      bool                   `json:"wellFormed"`
	Issues          []string               `json:"issues,omitempty"`
	GasEstimates    []analysis.GasEstimate `json:"gasEstimates"`
	Recommendations []string               `json:"recommendations,omitempty"`
}
