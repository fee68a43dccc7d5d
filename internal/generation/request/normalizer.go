// internal/generation/request/normalizer.go
package request

import (
	"fmt"
	"strings"

	commonerrors "contractgen-workers/internal/common/errors"
)

// aliases maps the display names the UI historically sent to canonical slugs.
var aliases = map[string]string{
	"sole proprietorship":           OrgSoleProprietorship,
	"partnership firm":              OrgPartnership,
	"limited liability partnership": OrgLLP,
	"private limited":               OrgPrivateLimited,
	"pvt ltd":                       OrgPrivateLimited,
	"public limited":                OrgPublicLimited,
	"profit sharing agreement":      CategoryProfitSharing,
	"revenue sharing agreement":     CategoryRevenueSharing,
	"escrow agreement":              CategoryEscrow,
	"token vesting":                 CategoryVesting,
	"vesting agreement":             CategoryVesting,
	"supply agreement":              CategorySupplyAgreement,
	"business to business":          PatternB2B,
	"business to consumer":          PatternB2C,
	"peer to peer":                  PatternP2P,
}

// Normalize validates the raw fields against the compatibility table and
// returns the canonical request. It has no side effects; the returned value
// is the sole input to fingerprinting and template assembly.
func Normalize(organizationType, transactionPattern, artifactCategory string, customizations map[string]interface{}) (*GenerationRequest, error) {
	org := canonicalize(organizationType)
	pattern := canonicalize(transactionPattern)
	category := canonicalize(artifactCategory)

	if org == "" || pattern == "" || category == "" {
		return nil, commonerrors.NewInvalidRequestError(fmt.Sprintf(
			"organizationType=%q transactionPattern=%q artifactCategory=%q",
			organizationType, transactionPattern, artifactCategory,
		))
	}

	if !SupportedCombination(org, pattern, category) {
		return nil, commonerrors.NewInvalidCombinationError(fmt.Sprintf(
			"%s/%s/%s", org, pattern, category,
		))
	}

	return &GenerationRequest{
		OrganizationType:   org,
		TransactionPattern: pattern,
		ArtifactCategory:   category,
		Customizations:     copyCustomizations(customizations),
	}, nil
}

// canonicalize lower-cases, trims and resolves display-name aliases.
func canonicalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if slug, ok := aliases[s]; ok {
		return slug
	}
	// "Profit Sharing" and "profit-sharing" are the same thing.
	collapsed := strings.ReplaceAll(s, " ", "-")
	if slug, ok := aliases[strings.ReplaceAll(s, "-", " ")]; ok {
		return slug
	}
	return collapsed
}

func copyCustomizations(in map[string]interface{}) map[string]interface{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[strings.TrimSpace(k)] = v
	}
	return out
}
