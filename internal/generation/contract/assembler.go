// internal/generation/contract/assembler.go
package contract

import (
	"fmt"
	"sort"
	"strings"

	"contractgen-workers/internal/generation/request"
)

// Assembly is the deterministic output of template composition: the fallback
// artifact usable with no provider call, and the grounding context block that
// anchors provider prompts to the selected templates.
type Assembly struct {
	FallbackArtifact string
	GroundingContext string
}

// Assemble composes the base skeleton with the organization, transaction and
// category fragments, then applies customization substitutions. Composition
// order is fixed. A fragment lookup miss contributes an empty fragment; the
// assembler always produces a well-formed artifact.
func Assemble(req *request.GenerationRequest) Assembly {
	org := orgFragments[req.OrganizationType]
	txn := txnFragments[req.TransactionPattern]
	category := categoryFragments[req.ArtifactCategory]

	name := contractName(req)

	vars := map[string]string{
		"contractName":       name,
		"organizationType":   req.OrganizationType,
		"transactionPattern": req.TransactionPattern,
		"artifactCategory":   req.ArtifactCategory,
		"orgState":           joinSections(org.State, txn.State),
		"categoryState":      category.State,
		"categoryEvents":     category.Events,
		"txnModifiers":       txn.Modifiers,
		"constructorParams":  joinParams(org.ConstructorParams, txn.ConstructorParams, category.ConstructorParams),
		"constructorBody":    joinSections(org.ConstructorBody, txn.ConstructorBody, category.ConstructorBody),
		"orgFunctions":       joinSections(org.Functions, txn.Functions),
		"categoryFunctions":  category.Functions,
	}

	artifact := baseSkeleton
	for key, value := range vars {
		artifact = strings.ReplaceAll(artifact, "{{"+key+"}}", value)
	}
	artifact = applyCustomizations(artifact, req.Customizations)
	artifact = collapseBlankRuns(artifact)

	return Assembly{
		FallbackArtifact: artifact,
		GroundingContext: groundingContext(req, org, txn, category, name),
	}
}

// contractName derives a PascalCase identifier from the category and
// organization, e.g. ProfitSharingLlpAgreement.
func contractName(req *request.GenerationRequest) string {
	return pascal(req.ArtifactCategory) + pascal(req.OrganizationType) + "Agreement"
}

func pascal(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

// applyCustomizations substitutes {{key}} placeholders for scalar
// customization values. Unknown placeholders are left alone; non-scalar
// values are surfaced through the grounding context instead.
func applyCustomizations(artifact string, customizations map[string]interface{}) string {
	for key, value := range customizations {
		switch v := value.(type) {
		case string:
			artifact = strings.ReplaceAll(artifact, "{{"+key+"}}", v)
		case float64:
			artifact = strings.ReplaceAll(artifact, "{{"+key+"}}", strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), "."))
		case int:
			artifact = strings.ReplaceAll(artifact, "{{"+key+"}}", fmt.Sprintf("%d", v))
		case bool:
			artifact = strings.ReplaceAll(artifact, "{{"+key+"}}", fmt.Sprintf("%t", v))
		}
	}
	return artifact
}

func groundingContext(req *request.GenerationRequest, org, txn, category fragment, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target contract: %s (Solidity ^0.8.19)\n", name)
	fmt.Fprintf(&b, "Organization type: %s\n", req.OrganizationType)
	fmt.Fprintf(&b, "Transaction pattern: %s\n", req.TransactionPattern)
	fmt.Fprintf(&b, "Agreement category: %s\n", req.ArtifactCategory)

	for _, note := range []string{org.ContextNote, txn.ContextNote, category.ContextNote} {
		if note != "" {
			b.WriteString("- ")
			b.WriteString(note)
			b.WriteString("\n")
		}
	}

	if len(req.Customizations) > 0 {
		b.WriteString("Customizations requested by the user:\n")
		keys := make([]string, 0, len(req.Customizations))
		for k := range req.Customizations {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, req.Customizations[k])
		}
	}

	b.WriteString("The contract must carry an SPDX license identifier, a pragma directive, ")
	b.WriteString("and complete function bodies with no placeholders.\n")
	return b.String()
}

func joinSections(sections ...string) string {
	var nonEmpty []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func joinParams(params ...string) string {
	var nonEmpty []string
	for _, p := range params {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// collapseBlankRuns squeezes the blank lines left behind by empty fragments.
func collapseBlankRuns(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
