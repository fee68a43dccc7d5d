// internal/generation/request/normalizer_test.go
package request

import (
	"errors"
	"testing"

	commonerrors "contractgen-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CanonicalizesDisplayNames(t *testing.T) {
	tests := []struct {
		name     string
		org      string
		pattern  string
		category string
		wantOrg  string
		wantCat  string
	}{
		{
			name:     "display names with spaces and case",
			org:      "LLP",
			pattern:  "B2B",
			category: "Profit Sharing Agreement",
			wantOrg:  OrgLLP,
			wantCat:  CategoryProfitSharing,
		},
		{
			name:     "already canonical slugs",
			org:      "private-limited",
			pattern:  "b2b",
			category: "vesting",
			wantOrg:  OrgPrivateLimited,
			wantCat:  CategoryVesting,
		},
		{
			name:     "alias with surrounding whitespace",
			org:      "  Pvt Ltd ",
			pattern:  "b2c",
			category: "Revenue Sharing Agreement",
			wantOrg:  OrgPrivateLimited,
			wantCat:  CategoryRevenueSharing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Normalize(tt.org, tt.pattern, tt.category, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrg, req.OrganizationType)
			assert.Equal(t, tt.wantCat, req.ArtifactCategory)
		})
	}
}

func TestNormalize_RejectsEmptyFields(t *testing.T) {
	_, err := Normalize("", "b2b", "escrow", nil)
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeInvalidRequest, stdErr.Code)
}

func TestNormalize_RejectsUnknownCombination(t *testing.T) {
	// Sole proprietorships have no partners to share profit with.
	_, err := Normalize("sole-proprietorship", "b2b", "profit-sharing", nil)
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeInvalidCombination, stdErr.Code)
}

func TestNormalize_DoesNotAliasRequestCustomizations(t *testing.T) {
	in := map[string]interface{}{"partyA": "Acme LLP"}
	req, err := Normalize("llp", "b2b", "profit-sharing", in)
	require.NoError(t, err)

	in["partyA"] = "mutated"
	assert.Equal(t, "Acme LLP", req.Customizations["partyA"])
}

func TestFingerprint_Deterministic(t *testing.T) {
	a, err := Normalize("LLP", "B2B", "Profit Sharing Agreement", map[string]interface{}{
		"partyA": "Acme",
		"split":  60,
		"terms":  map[string]interface{}{"lockIn": true, "duration": "12m"},
	})
	require.NoError(t, err)

	b, err := Normalize("llp", "b2b", "profit-sharing", map[string]interface{}{
		"terms":  map[string]interface{}{"duration": "12m", "lockIn": true},
		"split":  60,
		"partyA": "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(a, "v3"), Fingerprint(b, "v3"))
}

func TestFingerprint_SensitiveToEveryField(t *testing.T) {
	base, err := Normalize("llp", "b2b", "profit-sharing", map[string]interface{}{"split": 60})
	require.NoError(t, err)
	ref := Fingerprint(base, "v3")

	otherPattern, err := Normalize("llp", "p2p", "profit-sharing", map[string]interface{}{"split": 60})
	require.NoError(t, err)
	assert.NotEqual(t, ref, Fingerprint(otherPattern, "v3"))

	otherCustom, err := Normalize("llp", "b2b", "profit-sharing", map[string]interface{}{"split": 70})
	require.NoError(t, err)
	assert.NotEqual(t, ref, Fingerprint(otherCustom, "v3"))

	// Bumping the template schema version must invalidate old keys.
	assert.NotEqual(t, ref, Fingerprint(base, "v4"))
}
