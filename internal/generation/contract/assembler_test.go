// internal/generation/contract/assembler_test.go
package contract

import (
	"strings"
	"testing"

	"contractgen-workers/internal/generation/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, org, pattern, category string, customizations map[string]interface{}) *request.GenerationRequest {
	t.Helper()
	req, err := request.Normalize(org, pattern, category, customizations)
	require.NoError(t, err)
	return req
}

func TestAssemble_FallbackIsStructurallyComplete(t *testing.T) {
	tests := []struct {
		name     string
		org      string
		pattern  string
		category string
		wantFns  []string
	}{
		{
			name:     "llp profit sharing",
			org:      "llp",
			pattern:  "b2b",
			category: "profit-sharing",
			wantFns:  []string{"registerPartner", "depositProfit", "distributeProfit", "registerEntity"},
		},
		{
			name:     "private limited vesting",
			org:      "private-limited",
			pattern:  "p2p",
			category: "vesting",
			wantFns:  []string{"allocateShares", "grant", "claim", "consentTo"},
		},
		{
			name:     "sole proprietorship escrow",
			org:      "sole-proprietorship",
			pattern:  "b2c",
			category: "escrow",
			wantFns:  []string{"fund", "release", "refund", "enrollConsumer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := Assemble(mustNormalize(t, tt.org, tt.pattern, tt.category, nil))

			assert.Contains(t, asm.FallbackArtifact, "SPDX-License-Identifier")
			assert.Contains(t, asm.FallbackArtifact, "pragma solidity")
			assert.Contains(t, asm.FallbackArtifact, "contract ")
			for _, fn := range tt.wantFns {
				assert.Contains(t, asm.FallbackArtifact, "function "+fn, "missing %s", fn)
			}
			// No unresolved skeleton placeholders may survive assembly.
			assert.NotContains(t, asm.FallbackArtifact, "{{contractName}}")
			assert.NotContains(t, asm.FallbackArtifact, "{{orgState}}")
		})
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	req := mustNormalize(t, "llp", "b2b", "profit-sharing", map[string]interface{}{"split": 60})
	first := Assemble(req)
	second := Assemble(req)
	assert.Equal(t, first.FallbackArtifact, second.FallbackArtifact)
	assert.Equal(t, first.GroundingContext, second.GroundingContext)
}

func TestAssemble_UnknownFragmentYieldsEmptyNotError(t *testing.T) {
	// A request canonicalized to a slug with no registered fragment must
	// still produce a well-formed artifact from the remaining pieces.
	req := &request.GenerationRequest{
		OrganizationType:   "cooperative",
		TransactionPattern: "b2b",
		ArtifactCategory:   "escrow",
	}
	asm := Assemble(req)
	assert.Contains(t, asm.FallbackArtifact, "SPDX-License-Identifier")
	assert.Contains(t, asm.FallbackArtifact, "function release")
	assert.Contains(t, asm.FallbackArtifact, "contract EscrowCooperativeAgreement")
}

func TestAssemble_GroundingContextCarriesCustomizations(t *testing.T) {
	req := mustNormalize(t, "llp", "b2b", "profit-sharing", map[string]interface{}{
		"partyA": "Acme LLP",
		"split":  60,
	})
	asm := Assemble(req)

	assert.Contains(t, asm.GroundingContext, "profit-sharing")
	assert.Contains(t, asm.GroundingContext, "partyA: Acme LLP")
	assert.Contains(t, asm.GroundingContext, "split: 60")
	// Sorted customization keys keep the prompt deterministic.
	assert.Less(t,
		strings.Index(asm.GroundingContext, "partyA"),
		strings.Index(asm.GroundingContext, "split"),
	)
}

func TestContractNamePascalCase(t *testing.T) {
	req := mustNormalize(t, "private-limited", "b2b", "revenue-sharing", nil)
	asm := Assemble(req)
	assert.Contains(t, asm.FallbackArtifact, "contract RevenueSharingPrivateLimitedAgreement")
}
