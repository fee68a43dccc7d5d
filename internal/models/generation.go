// internal/models/generation.go
package models

import (
	"contractgen-workers/internal/generation/analysis"
)

// PersonaOutput is the outcome of one persona task: provider-sourced text or
// the degraded template contribution.
type PersonaOutput struct {
	Text       string `json:"text"`
	ProviderID string `json:"providerId,omitempty"`
	Degraded   bool   `json:"degraded"`
}

// GenerationResult is the assembled output of one generation request. It is
// stored whole in the result cache and exposed as job output variables.
type GenerationResult struct {
	AnalysisText     string                 `json:"analysisText"`
	ArtifactText     string                 `json:"artifactText"`
	Findings         []analysis.Finding     `json:"findings"`
	GasEstimates     []analysis.GasEstimate `json:"gasEstimates"`
	Recommendations  []string               `json:"recommendations"`
	Degraded         map[string]bool        `json:"degraded"`
	ProviderIDs      map[string]string      `json:"providerIds,omitempty"`
	FromCache        bool                   `json:"fromCache"`
	ProcessingTimeMs int64                  `json:"processingTimeMs"`
}

// FullyDegraded reports whether every persona task fell back, meaning no
// provider contributed anything to this result.
func (r *GenerationResult) FullyDegraded() bool {
	if len(r.Degraded) == 0 {
		return false
	}
	for _, degraded := range r.Degraded {
		if !degraded {
			return false
		}
	}
	return true
}
