package envelope

import (
	"encoding/json"

	"github.com/MKhiriev/go-journal-vault/models"
)

// header is the authenticated, unencrypted part of an envelope.
type header struct {
	Version     int              `json:"version"`
	AlgorithmID string           `json:"algorithmId"`
	KDF         models.KDFParams `json:"kdf"`
	Salt        []byte           `json:"salt"`
}

// AssociatedData returns the canonical header bytes that are bound into the
// AEAD as associated data. Changing the version, algorithm, KDF parameters
// or salt of a sealed envelope makes authentication fail.
//
// The encoding is deterministic: fixed field order, no whitespace.
func AssociatedData(env models.Envelope) []byte {
	b, err := json.Marshal(header{
		Version:     env.Version,
		AlgorithmID: env.AlgorithmID,
		KDF:         env.KDF,
		Salt:        env.Salt,
	})
	if err != nil {
		// unreachable: header has only plain fields
		panic(err)
	}
	return b
}

// New builds a version-1 AES-256-GCM envelope header for kc. The caller
// fills IV, Ciphertext and AuthTag after sealing with [AssociatedData] of
// the returned value.
func New(kc models.KeyContext) models.Envelope {
	return models.Envelope{
		Version:     models.EnvelopeVersion,
		AlgorithmID: models.AlgorithmAES256GCM,
		KDF:         kc.KDF,
		Salt:        append([]byte(nil), kc.Salt...),
	}
}
