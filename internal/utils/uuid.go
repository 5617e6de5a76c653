package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered (v7) identifiers for envelopes and
// trace ids. It falls back to a random v4 id if v7 generation fails.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// envelopeNamespace scopes content-derived envelope ids.
var envelopeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("journal-vault:envelope"))

// ContentID returns a name-based (v5) id for a serialized envelope. The
// same payload always gets the same id, so re-importing a backup does not
// duplicate entries.
func ContentID(payload []byte) string {
	return uuid.NewSHA1(envelopeNamespace, payload).String()
}
