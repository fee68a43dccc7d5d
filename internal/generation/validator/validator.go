// internal/generation/validator/validator.go
package validator

import (
	"fmt"
	"strings"
)

// TaskKind selects which rule set applies. Structural markers only make
// sense for generated source; prose tasks get the length and placeholder
// checks.
type TaskKind string

const (
	TaskSynthesis  TaskKind = "synthesis"
	TaskAnalysis   TaskKind = "analysis"
	TaskRiskReview TaskKind = "risk-review"
)

const (
	// MinSynthesisLength is the floor for generated source; anything shorter
	// cannot be a complete contract.
	MinSynthesisLength = 200
	// MinProseLength is the floor for analysis and risk-review text.
	MinProseLength = 80
)

// placeholderMarkers are the fragments a model emits when it truncates or
// stubs out work instead of finishing it.
var placeholderMarkers = []string{
	"...",
	"…",
	"rest of the code",
	"rest of code",
	"todo",
	"implementation here",
	"implement this",
	"fill in",
}

// structuralMarkers are required in synthesis output for the Solidity
// artifact type.
var structuralMarkers = []struct {
	marker string
	reason string
}{
	{"spdx-license-identifier", "missing license header"},
	{"pragma solidity", "missing pragma directive"},
	{"contract ", "missing top-level contract declaration"},
	{"function ", "missing callable unit"},
}

// RejectError reports why content was refused. Validation is a pure
// classification; it never mutates or truncates the input.
type RejectError struct {
	Kind   TaskKind
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("content rejected for %s task: %s", e.Kind, e.Reason)
}

// Validate classifies generated text as acceptable or not for the given task.
func Validate(kind TaskKind, text string) error {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	minLen := MinProseLength
	if kind == TaskSynthesis {
		minLen = MinSynthesisLength
	}
	if len(trimmed) < minLen {
		return &RejectError{Kind: kind, Reason: fmt.Sprintf("content length %d below minimum %d", len(trimmed), minLen)}
	}

	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return &RejectError{Kind: kind, Reason: fmt.Sprintf("placeholder marker %q present", marker)}
		}
	}

	if kind == TaskSynthesis {
		for _, s := range structuralMarkers {
			if !strings.Contains(lower, s.marker) {
				return &RejectError{Kind: kind, Reason: s.reason}
			}
		}
	}

	return nil
}

// For binds a task kind into the chain's validation hook.
func For(kind TaskKind) func(text string) error {
	return func(text string) error {
		return Validate(kind, text)
	}
}
