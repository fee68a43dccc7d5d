// internal/workers/generation/generate-contract/validation.go
package generatecontract

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// inputSchema rejects structurally broken payloads before normalization runs;
// the compatibility table still decides whether the triple itself is allowed.
const inputSchema = `{
	"type": "object",
	"properties": {
		"organizationType":   {"type": "string", "minLength": 1},
		"transactionPattern": {"type": "string", "minLength": 1},
		"artifactCategory":   {"type": "string", "minLength": 1},
		"customizations":     {"type": "object"},
		"correlationId":      {"type": "string"}
	},
	"required": ["organizationType", "transactionPattern", "artifactCategory"],
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
