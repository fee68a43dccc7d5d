// internal/generation/request/request.go
package request

// GenerationRequest is the canonical, validated request for one contract
// generation. Immutable once produced by Normalize.
type GenerationRequest struct {
	OrganizationType   string                 `json:"organizationType"`
	TransactionPattern string                 `json:"transactionPattern"`
	ArtifactCategory   string                 `json:"artifactCategory"`
	Customizations     map[string]interface{} `json:"customizations,omitempty"`
}

// Canonical category slugs. The compatibility table below is the closed set
// of triples the engine accepts; anything else is INVALID_COMBINATION.
const (
	OrgSoleProprietorship = "sole-proprietorship"
	OrgPartnership        = "partnership"
	OrgLLP                = "llp"
	OrgPrivateLimited     = "private-limited"
	OrgPublicLimited      = "public-limited"

	PatternB2B = "b2b"
	PatternB2C = "b2c"
	PatternP2P = "p2p"

	CategoryProfitSharing   = "profit-sharing"
	CategoryRevenueSharing  = "revenue-sharing"
	CategoryEscrow          = "escrow"
	CategoryVesting         = "vesting"
	CategorySupplyAgreement = "supply-agreement"
)

// compatibility maps organization -> category -> allowed transaction patterns.
var compatibility = map[string]map[string][]string{
	OrgSoleProprietorship: {
		CategoryEscrow:          {PatternB2B, PatternB2C, PatternP2P},
		CategorySupplyAgreement: {PatternB2B, PatternB2C},
	},
	OrgPartnership: {
		CategoryProfitSharing:   {PatternB2B, PatternP2P},
		CategoryRevenueSharing:  {PatternB2B, PatternB2C},
		CategoryEscrow:          {PatternB2B, PatternB2C, PatternP2P},
		CategorySupplyAgreement: {PatternB2B},
	},
	OrgLLP: {
		CategoryProfitSharing:   {PatternB2B, PatternP2P},
		CategoryRevenueSharing:  {PatternB2B, PatternB2C},
		CategoryEscrow:          {PatternB2B, PatternB2C, PatternP2P},
		CategorySupplyAgreement: {PatternB2B},
	},
	OrgPrivateLimited: {
		CategoryRevenueSharing:  {PatternB2B, PatternB2C},
		CategoryEscrow:          {PatternB2B, PatternB2C, PatternP2P},
		CategoryVesting:         {PatternB2B, PatternP2P},
		CategorySupplyAgreement: {PatternB2B, PatternB2C},
	},
	OrgPublicLimited: {
		CategoryRevenueSharing:  {PatternB2B, PatternB2C},
		CategoryEscrow:          {PatternB2B, PatternB2C},
		CategoryVesting:         {PatternB2B},
		CategorySupplyAgreement: {PatternB2B, PatternB2C},
	},
}

// SupportedCombination reports whether the canonical triple is allowed.
func SupportedCombination(org, pattern, category string) bool {
	categories, ok := compatibility[org]
	if !ok {
		return false
	}
	patterns, ok := categories[category]
	if !ok {
		return false
	}
	for _, p := range patterns {
		if p == pattern {
			return true
		}
	}
	return false
}
