package recovery

import (
	"strings"

	"github.com/awnumar/memguard"
	"github.com/tyler-smith/go-bip39"
)

const (
	// PhraseWords is the length of a recovery phrase.
	PhraseWords = 12
	// EntropyBits is the entropy behind a phrase: 12 words from a
	// 2048-word list minus the 4-bit BIP-39 checksum.
	EntropyBits = 128
)

// NormalizePhrase lowercases the phrase and collapses any run of whitespace
// into a single space, so "Abandon  ability\n..." and "abandon ability ..."
// are the same phrase.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// ValidatePhrase checks the word count, that every word is on the list and
// the embedded checksum. It does not tell whether the phrase is the right
// one for a record.
func ValidatePhrase(phrase string) error {
	normalized := NormalizePhrase(phrase)
	if len(strings.Fields(normalized)) != PhraseWords {
		return ErrRecoveryFailure
	}
	entropy, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		return ErrRecoveryFailure
	}
	memguard.WipeBytes(entropy)
	return nil
}

// newPhrase mints a fresh 12-word phrase from entropySource.
func newPhrase(entropySource func(bits int) ([]byte, error)) (string, error) {
	entropy, err := entropySource(EntropyBits)
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(entropy)

	return bip39.NewMnemonic(entropy)
}
