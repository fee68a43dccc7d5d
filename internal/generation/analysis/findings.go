// internal/generation/analysis/findings.go
package analysis

import (
	"strings"
)

// Severity tags a security finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is one classified security observation.
type Finding struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
}

// severityMarkers map the tags risk-review prose uses to a severity. Checked
// in order so "critical" wins over a stray "high" later in the same line.
var severityMarkers = []struct {
	marker   string
	severity Severity
}{
	{"critical", SeverityCritical},
	{"high", SeverityHigh},
	{"medium", SeverityMedium},
	{"moderate", SeverityMedium},
	{"low", SeverityLow},
	{"informational", SeverityLow},
}

// vulnerabilityKeywords promote untagged lines that clearly describe a known
// weakness class.
var vulnerabilityKeywords = map[string]Severity{
	"reentrancy":         SeverityCritical,
	"unchecked call":     SeverityHigh,
	"overflow":           SeverityHigh,
	"underflow":          SeverityHigh,
	"access control":     SeverityHigh,
	"front-running":      SeverityMedium,
	"timestamp":          SeverityMedium,
	"denial of service":  SeverityMedium,
	"gas limit":          SeverityMedium,
	"floating pragma":    SeverityLow,
	"missing validation": SeverityMedium,
}

var recommendationPrefixes = []string{
	"recommend",
	"consider",
	"should",
	"suggest",
	"use ",
	"add ",
	"avoid ",
}

// ClassifyRiskReview turns free-form risk-review text into structured
// findings and recommendation strings. Pure function over line-tokenized
// input; no network or state involved.
func ClassifyRiskReview(text string) ([]Finding, []string) {
	var findings []Finding
	var recommendations []string

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rawLine), "-*•0123456789. "))
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if severity, ok := classifySeverity(lower); ok {
			findings = append(findings, Finding{
				Severity:    severity,
				Description: line,
				Location:    extractLocation(lower),
			})
			continue
		}

		for _, prefix := range recommendationPrefixes {
			if strings.HasPrefix(lower, prefix) {
				recommendations = append(recommendations, line)
				break
			}
		}
	}

	return findings, recommendations
}

func classifySeverity(lower string) (Severity, bool) {
	// Explicit tags first: "[HIGH] ..." or "high: ...".
	for _, m := range severityMarkers {
		if strings.HasPrefix(lower, m.marker+":") ||
			strings.HasPrefix(lower, "["+m.marker+"]") ||
			strings.HasPrefix(lower, m.marker+" severity") ||
			strings.HasPrefix(lower, m.marker+" risk") {
			return m.severity, true
		}
	}
	for keyword, severity := range vulnerabilityKeywords {
		if strings.Contains(lower, keyword) {
			return severity, true
		}
	}
	return "", false
}

// extractLocation pulls a "in functionName" or "function functionName"
// reference out of a finding line when present.
func extractLocation(lower string) string {
	for _, prefix := range []string{"in function ", "function "} {
		idx := strings.Index(lower, prefix)
		if idx < 0 {
			continue
		}
		rest := lower[idx+len(prefix):]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return !(r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
		})
		if end < 0 {
			end = len(rest)
		}
		if end > 0 {
			return rest[:end]
		}
	}
	return ""
}
