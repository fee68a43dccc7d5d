// internal/generation/validator/validator_test.go
package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validContract = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

contract ProfitSharingLlpAgreement {
    address public owner;

    constructor() {
        owner = msg.sender;
    }

    function distributeProfit() external {
        require(msg.sender == owner, "caller is not the owner");
    }
}
`

func TestValidate_AcceptsCompleteContract(t *testing.T) {
	assert.NoError(t, Validate(TaskSynthesis, validContract))
}

func TestValidate_SynthesisRejections(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantReason string
	}{
		{
			name:       "too short",
			text:       "contract X {}",
			wantReason: "below minimum",
		},
		{
			name:       "todo placeholder",
			text:       strings.Replace(validContract, `require(msg.sender == owner, "caller is not the owner");`, "// TODO: add checks", 1),
			wantReason: "placeholder marker",
		},
		{
			name:       "ellipsis placeholder",
			text:       validContract + "\n// ... remaining functions\n",
			wantReason: "placeholder marker",
		},
		{
			name:       "rest-of-code placeholder",
			text:       validContract + "\n// rest of the code unchanged\n",
			wantReason: "placeholder marker",
		},
		{
			name:       "missing license header",
			text:       strings.Replace(validContract, "// SPDX-License-Identifier: MIT\n", "", 1) + strings.Repeat("// padding line\n", 10),
			wantReason: "missing license header",
		},
		{
			name:       "missing contract declaration",
			text:       "// SPDX-License-Identifier: MIT\npragma solidity ^0.8.19;\n" + strings.Repeat("// a library of helpers only\n", 10),
			wantReason: "missing top-level contract declaration",
		},
		{
			name:       "missing callable unit",
			text:       "// SPDX-License-Identifier: MIT\npragma solidity ^0.8.19;\ncontract Empty {\n    uint256 public x;\n}\n" + strings.Repeat("// padding line\n", 8),
			wantReason: "missing callable unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(TaskSynthesis, tt.text)
			require.Error(t, err)

			var reject *RejectError
			require.ErrorAs(t, err, &reject)
			assert.Contains(t, reject.Reason, tt.wantReason)
		})
	}
}

func TestValidate_ProseTasksSkipStructuralMarkers(t *testing.T) {
	prose := strings.Repeat("The agreement distributes profit pro rata to registered partner shares. ", 3)
	assert.NoError(t, Validate(TaskAnalysis, prose))
	assert.NoError(t, Validate(TaskRiskReview, prose))

	// But placeholders still reject prose.
	err := Validate(TaskRiskReview, prose+" TODO: check reentrancy.")
	require.Error(t, err)

	// And short prose rejects.
	err = Validate(TaskAnalysis, "Looks fine.")
	require.Error(t, err)
}

func TestFor_BindsTaskKind(t *testing.T) {
	validate := For(TaskSynthesis)
	assert.NoError(t, validate(validContract))
	assert.Error(t, validate("too short"))
}
