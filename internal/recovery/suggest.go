package recovery

import (
	"fmt"
	"strings"

	"github.com/sethvargo/go-diceware/diceware"
)

const (
	// DefaultSuggestionWords gives about 77 bits with the EFF large list.
	DefaultSuggestionWords = 6
	MinSuggestionWords     = 4
	MaxSuggestionWords     = 16
)

// GeneratePassphraseSuggestion returns a diceware passphrase of the given
// number of words joined with spaces. It is offered at enrollment as an
// example of a strong secret; nothing is stored.
func GeneratePassphraseSuggestion(words int) (string, error) {
	if words < MinSuggestionWords || words > MaxSuggestionWords {
		return "", fmt.Errorf("%w: %d", ErrInvalidWordCount, words)
	}
	list, err := diceware.Generate(words)
	if err != nil {
		return "", fmt.Errorf("generate passphrase: %w", err)
	}
	return strings.Join(list, " "), nil
}
