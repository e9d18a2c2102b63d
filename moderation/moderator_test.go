package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g. "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Leet speak and internal punctuation",
			input:    "Look at B.4.d.g.3r",
			expected: "Look at **********",
			words:    []string{"badger"},
		},
		{
			name:     "Uppercase and noise",
			input:    "S-N-A-K-E alert",
			expected: "********* alert",
			words:    []string{"snake"},
		},
		{
			name:     "Clean text untouched",
			input:    "nothing to see",
			expected: "nothing to see",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			censored, found := mod.Censor(tt.input)
			require.Equal(t, tt.expected, censored)
			require.Equal(t, tt.words, found)
		})
	}
}

func TestModerator_Empty_Input(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger"}, replacementChar)
	req.NoError(err)

	censored, found := mod.Censor("")
	req.Equal("", censored)
	req.Nil(found)
}
