// cmd/tools/template-preview/main.go
//
// Prints the deterministic template output for a request triple without
// touching any provider. Useful when editing fragments: run it, eyeball the
// assembled Solidity, and diff the grounding context.
//
// Usage:
//
//	template-preview -org llp -pattern b2b -category profit-sharing \
//	    -customizations '{"platformFee":2.5}'
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"contractgen-workers/internal/generation/contract"
	"contractgen-workers/internal/generation/request"
)

func main() {
	org := flag.String("org", "", "Organization type (e.g., llp, private-limited)")
	pattern := flag.String("pattern", "", "Transaction pattern (b2b, b2c, p2p)")
	category := flag.String("category", "", "Artifact category (e.g., profit-sharing, escrow)")
	customizationsJSON := flag.String("customizations", "", "Customizations as a JSON object")
	contextOnly := flag.Bool("context-only", false, "Print only the grounding context")
	flag.Parse()

	if *org == "" || *pattern == "" || *category == "" {
		fmt.Fprintln(os.Stderr, "Error: -org, -pattern, and -category are required.")
		flag.Usage()
		os.Exit(1)
	}

	var customizations map[string]interface{}
	if *customizationsJSON != "" {
		if err := json.Unmarshal([]byte(*customizationsJSON), &customizations); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid customizations JSON: %v\n", err)
			os.Exit(1)
		}
	}

	req, err := request.Normalize(*org, *pattern, *category, customizations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	assembly := contract.Assemble(req)

	fmt.Printf("Fingerprint: %s\n", request.Fingerprint(req, contract.SchemaVersion))
	fmt.Printf("Normalized: %s / %s / %s\n\n", req.OrganizationType, req.TransactionPattern, req.ArtifactCategory)

	fmt.Println("=== Grounding context ===")
	fmt.Println(assembly.GroundingContext)

	if !*contextOnly {
		fmt.Println("=== Fallback artifact ===")
		fmt.Println(assembly.FallbackArtifact)
	}
}
