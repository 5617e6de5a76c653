package models

import (
	"encoding/json"
	"time"
)

// StoredEnvelope is an envelope as kept by a storage collaborator: an opaque
// id, the journal it belongs to and the serialized envelope bytes.
type StoredEnvelope struct {
	ID        string    `json:"id"`
	JournalID string    `json:"journalId"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntrySummary is what a listing shows without decrypting anything.
type EntrySummary struct {
	ID        string
	CreatedAt time.Time
	Size      int
}

// EnvelopeRecord is the transport form of a stored envelope exchanged with
// the envelope server. Envelope holds the serialized envelope verbatim.
type EnvelopeRecord struct {
	ID        string          `json:"id,omitempty"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`
	Envelope  json.RawMessage `json:"envelope,omitempty"`
}

// ImportReport summarizes importing a bundle into storage.
type ImportReport struct {
	// Imported is the number of envelopes written.
	Imported int
	// Duplicates is the number of envelopes that were already stored.
	Duplicates int
	// Skipped lists bundle entries rejected by structural validation.
	Skipped []ImportIssue
}

// ServerInfo is the body of the envelope server's version endpoint.
type ServerInfo struct {
	Version string `json:"version"`
}
