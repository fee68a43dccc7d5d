// internal/workers/generation/generate-contract/models.go
package generatecontract

import (
	"contractgen-workers/internal/generation/analysis"
)

type Input struct {
	OrganizationType   string                 `json:"organizationType"`
	TransactionPattern string                 `json:"transactionPattern"`
	ArtifactCategory   string                 `json:"artifactCategory"`
	Customizations     map[string]interface{} `json:"customizations,omitempty"`
	CorrelationID      string                 `json:"correlationId,omitempty"`
}

type Output struct {
	CorrelationID    string                 `json:"correlationId,omitempty"`
	Artifact         string                 `json:"artifact"`
	Analysis         string                 `json:"analysis"`
	Findings         []analysis.Finding     `json:"findings"`
	GasEstimates     []analysis.GasEstimate `json:"gasEstimates"`
	Recommendations  []string               `json:"recommendations"`
	Degraded         map[string]bool        `json:"degraded"`
	FromCache        bool                   `json:"fromCache"`
	ProcessingTimeMs int64                  `json:"processingTimeMs"`
}
