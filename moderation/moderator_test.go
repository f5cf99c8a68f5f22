package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "chat-core/errors"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		hit      bool
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			hit:      true,
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			hit:      true,
		},
		{
			name: "Leet speak and internal punctuation",
			// B (index 9) . 4 . d . g . € r (index 20) -> 10 characters
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at ********** !",
			hit:      true,
		},
		{
			name:     "Uppercase and extreme noise",
			input:    "S-N-A-K-E is a B.A.D.G.E.R",
			expected: "********* is a ***********",
			hit:      true,
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
			hit:      true,
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love ******!",
			hit:      true,
		},
		{
			name:     "Nothing to censor",
			input:    "Chat-Core is amazing",
			expected: "Chat-Core is amazing",
			hit:      false,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			hit:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, hit := mod.Censor(tt.input)
			req.Equal(tt.expected, content, "test=%s,", tt.name)
			req.Equal(tt.hit, hit)
		})
	}
}

func TestModerator_EmptyDictionary(t *testing.T) {
	req := require.New(t)

	_, err := NewModerator(nil, replacementChar)
	req.ErrorIs(err, apperrors.ErrEmptyWords)

	// Noise-only entries normalize away entirely
	_, err = NewModerator([]string{"...", ",,,", ""}, replacementChar)
	req.ErrorIs(err, apperrors.ErrEmptyWords)
}

func TestModerator_NoiseEntriesAreIgnored(t *testing.T) {
	req := require.New(t)

	// Given real noise entries mixed with an actual word
	mod, err := NewModerator([]string{"...", ",,,", "", "badger"}, replacementChar)
	req.NoError(err)

	// Then only the word is censored
	content, hit := mod.Censor("The badger is safe")
	req.True(hit)
	req.Equal("The ****** is safe", content)
}
