// internal/workers/generation/audit-contract/validation.go
package auditcontract

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const inputSchema = `{
	"type": "object",
	"properties": {
		"artifact":      {"type": "string", "minLength": 1},
		"correlationId": {"type": "string"}
	},
	"required": ["artifact"],
	"additionalProperties": true
}`

var compiledInputSchema = gojsonschema.NewStringLoader(inputSchema)

// ValidateInput checks the raw job variables against the input schema.
func ValidateInput(variables string) error {
	result, err := gojsonschema.Validate(compiledInputSchema, gojsonschema.NewStringLoader(variables))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	return fmt.Errorf("invalid input: %s", strings.Join(messages, "; "))
}
