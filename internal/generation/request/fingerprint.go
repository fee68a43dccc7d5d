// internal/generation/request/fingerprint.go
package request

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives the deterministic cache key for a normalized request.
// The template schema version is part of the key so a template change can
// never serve a stale cached artifact. Customization keys are serialized in
// sorted order; insertion order must not matter.
func Fingerprint(req *GenerationRequest, schemaVersion string) string {
	var b strings.Builder
	b.WriteString("v=")
	b.WriteString(schemaVersion)
	b.WriteString("|org=")
	b.WriteString(req.OrganizationType)
	b.WriteString("|txn=")
	b.WriteString(req.TransactionPattern)
	b.WriteString("|cat=")
	b.WriteString(req.ArtifactCategory)

	keys := make([]string, 0, len(req.Customizations))
	for k := range req.Customizations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("|c:")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(stableValue(req.Customizations[k]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// stableValue renders a customization value deterministically. json.Marshal
// sorts map keys, which covers nested objects.
func stableValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
