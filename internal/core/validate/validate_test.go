package validate

import (
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid id", "u-lead", false},
		{"valid email", "dana@example.com", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"inner space", "u lead", true},
		{"tab", "u\tlead", true},
		{"too long", strings.Repeat("a", maxIdentifierLen+1), true},
		{"max length", strings.Repeat("a", maxIdentifierLen), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Identifier(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Identifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestIdentifierField(t *testing.T) {
	assert.NoError(t, IdentifierField("actor.user_id", "u-lead"))

	err := IdentifierField("actor.user_id", "")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "actor.user_id", fieldErrs[0].Field)
}

func TestEnvVarName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"GEMINI_API_KEY", false},
		{"_PRIVATE", false},
		{"key2", false},
		{"", true},
		{"2KEY", true},
		{"API-KEY", true},
		{"API KEY", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := EnvVarName(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "EnvVarName(%q) error = %v", tt.input, err)
		})
	}
}
