// internal/generation/persona/persona.go
package persona

import (
	"fmt"

	"contractgen-workers/internal/generation/contract"
	"contractgen-workers/internal/generation/validator"
)

// Task names one persona step of the pipeline. The three tasks are
// independent: each gets its own provider-chain walk and its own deadline.
type Task string

const (
	TaskAnalysis   Task = "analysis"
	TaskSynthesis  Task = "synthesis"
	TaskRiskReview Task = "risk-review"
)

// definition binds a task to its persona instructions and validation kind.
type definition struct {
	task              Task
	instructionPrefix string
	kind              validator.TaskKind
	prompt            func(asm contract.Assembly) string
}

var definitions = []definition{
	{
		task: TaskAnalysis,
		instructionPrefix: "You are a commercial-contracts analyst. Explain, in plain language " +
			"for a non-technical business owner, what the described agreement does, " +
			"the obligations of each party, and how funds move. Do not include code.",
		kind: validator.TaskAnalysis,
		prompt: func(asm contract.Assembly) string {
			return asm.GroundingContext
		},
	},
	{
		task: TaskSynthesis,
		instructionPrefix: "You are a senior Solidity engineer. Produce one complete, deployable " +
			"Solidity contract implementing the described agreement. Start from the " +
			"reference implementation and improve it; keep every function body " +
			"complete. Output only Solidity source, no commentary.",
		kind: validator.TaskSynthesis,
		prompt: func(asm contract.Assembly) string {
			return fmt.Sprintf("%s\nReference implementation:\n```solidity\n%s\n```", asm.GroundingContext, asm.FallbackArtifact)
		},
	},
	{
		task: TaskRiskReview,
		instructionPrefix: "You are a smart-contract security auditor. Review the contract below " +
			"and list security findings one per line, each prefixed with its severity " +
			"(CRITICAL, HIGH, MEDIUM or LOW) and naming the affected function. After " +
			"the findings, list concrete recommendations starting with 'Recommend'.",
		kind: validator.TaskRiskReview,
		prompt: func(asm contract.Assembly) string {
			return fmt.Sprintf("%s\nContract under review:\n```solidity\n%s\n```", asm.GroundingContext, asm.FallbackArtifact)
		},
	},
}
