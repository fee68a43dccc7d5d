// internal/generation/analysis/gas.go
package analysis

import (
	"regexp"
	"strings"
)

// GasEstimate reports the heuristic cost of one callable unit.
type GasEstimate struct {
	FunctionName    string   `json:"functionName"`
	EstimatedGas    int      `json:"estimatedGas"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Analyzer is the pluggable gas/vulnerability analysis step invoked by the
// orchestrator. Input is the generated text; the internals are deliberately
// replaceable.
type Analyzer interface {
	Analyze(artifact string) []GasEstimate
}

// HeuristicAnalyzer estimates gas from static source patterns. The numbers
// are indicative, not a simulation.
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

var functionDecl = regexp.MustCompile(`function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

const (
	baseCallCost     = 21000
	storageWriteCost = 20000
	externalCallCost = 9000
	eventCost        = 1500
	loopPenalty      = 15000
)

func (a *HeuristicAnalyzer) Analyze(artifact string) []GasEstimate {
	bodies := splitFunctionBodies(artifact)
	estimates := make([]GasEstimate, 0, len(bodies))

	for _, fb := range bodies {
		gas := baseCallCost
		var recs []string

		// View/pure functions cost nothing when called off-chain.
		if strings.Contains(fb.signature, " view ") || strings.Contains(fb.signature, " pure ") {
			estimates = append(estimates, GasEstimate{FunctionName: fb.name, EstimatedGas: 0})
			continue
		}

		gas += storageWriteCost * countStorageWrites(fb.body)
		if strings.Contains(fb.body, ".call{") || strings.Contains(fb.body, ".transfer(") {
			gas += externalCallCost
		}
		gas += eventCost * strings.Count(fb.body, "emit ")

		if strings.Contains(fb.body, "for (") || strings.Contains(fb.body, "for(") {
			gas += loopPenalty
			recs = append(recs, "loop cost grows with array size; bound the iteration count")
		}
		if strings.Count(fb.body, "require(") > 3 {
			recs = append(recs, "consolidate require checks to reduce bytecode size")
		}
		if strings.Contains(fb.signature, "string memory") {
			recs = append(recs, "use calldata instead of memory for read-only string parameters")
		}

		estimates = append(estimates, GasEstimate{
			FunctionName:    fb.name,
			EstimatedGas:    gas,
			Recommendations: recs,
		})
	}

	return estimates
}

type functionBody struct {
	name      string
	signature string
	body      string
}

// splitFunctionBodies walks the artifact and slices out each function's body
// by brace balance. Malformed input degrades to fewer matches, never panics.
func splitFunctionBodies(artifact string) []functionBody {
	var out []functionBody
	matches := functionDecl.FindAllStringSubmatchIndex(artifact, -1)
	for _, m := range matches {
		name := artifact[m[2]:m[3]]
		open := strings.Index(artifact[m[0]:], "{")
		if open < 0 {
			continue
		}
		start := m[0] + open
		depth := 0
		end := -1
		for i := start; i < len(artifact); i++ {
			switch artifact[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			continue
		}
		out = append(out, functionBody{
			name:      name,
			signature: artifact[m[0]:start],
			body:      artifact[start : end+1],
		})
	}
	return out
}

// countStorageWrites approximates SSTOREs: assignment or compound assignment
// lines that are not local declarations or comparisons.
func countStorageWrites(body string) int {
	count := 0
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "require(") {
			continue
		}
		if strings.HasPrefix(trimmed, "uint") || strings.HasPrefix(trimmed, "address ") ||
			strings.HasPrefix(trimmed, "bool ") || strings.HasPrefix(trimmed, "bytes") {
			// Local declaration, memory not storage.
			continue
		}
		if strings.Contains(trimmed, "+=") || strings.Contains(trimmed, "-=") {
			count++
			continue
		}
		if idx := strings.Index(trimmed, " = "); idx > 0 && !strings.Contains(trimmed, "==") {
			count++
		}
	}
	return count
}
