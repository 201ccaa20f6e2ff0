package questionnaire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTicker(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "five symbols", input: "$ABCDE", want: "$ABCDE"},
		{name: "short", input: "$AB", want: "$AB"},
		{name: "six symbols rejected", input: "$ABCDEF", wantErr: true},
		{name: "missing prefix", input: "ABCDE", wantErr: true},
		{name: "missing prefix short", input: "AB", wantErr: true},
		{name: "bare dollar", input: "$", wantErr: true},
		// Uppercase is asked for but not enforced.
		{name: "lowercase accepted", input: "$abc", want: "$abc"},
		{name: "surrounding whitespace trimmed", input: "  $ACME ", want: "$ACME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTicker(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateDescription(t *testing.T) {
	exactly80 := strings.Repeat("a", 80)
	got, err := ValidateDescription(exactly80)
	require.NoError(t, err)
	assert.Equal(t, exactly80, got)

	_, err = ValidateDescription(strings.Repeat("a", 81))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "81", "error should report the offending length")

	_, err = ValidateDescription("   ")
	require.Error(t, err)
}

func TestValidateLink(t *testing.T) {
	got, err := ValidateLink("https://borgpad.com")
	require.NoError(t, err)
	assert.Equal(t, "https://borgpad.com", got)

	_, err = ValidateLink("borgpad.com")
	require.Error(t, err)

	_, err = ValidateLink("")
	require.Error(t, err)
}

func TestValidationIsDeterministic(t *testing.T) {
	first, err1 := ValidateTicker("$TOOLONG")
	second, err2 := ValidateTicker("$TOOLONG")

	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())
	assert.Equal(t, first, second)
}

func TestFDVMillions(t *testing.T) {
	assert.Equal(t, 5, fdvMillions("$5M"))
	assert.Equal(t, 100, fdvMillions("$100M"))
	assert.Equal(t, -1, fdvMillions(""))
	assert.Equal(t, -1, fdvMillions("Solana"))
}
