package models

import (
	"encoding/json"
	"time"
)

const (
	// BundleFormat tags export files so that other JSON is rejected early.
	BundleFormat = "journal-export"
	// BundleVersion is the export layout version.
	BundleVersion = 1
)

// Bundle is a portable backup of a set of envelopes. Entries keep the exact
// serialized bytes of every envelope; MAC authenticates the ordered list,
// the count and the key context, so a truncated, reordered or modified
// backup is detected before any entry is decrypted.
type Bundle struct {
	Format     string            `json:"format"`
	Version    int               `json:"version"`
	CreatedAt  time.Time         `json:"createdAt"`
	Count      int               `json:"count"`
	KeyContext KeyContext        `json:"keyContext"`
	Recovery   *RecoveryRecord   `json:"recovery,omitempty"`
	Entries    []json.RawMessage `json:"entries"`
	MAC        []byte            `json:"mac"`
}

// ImportIssue describes one bundle entry that was skipped during import.
type ImportIssue struct {
	Index int
	Err   error
}

// ImportResult is the outcome of importing a verified bundle: the accepted
// envelopes in bundle order and the entries that failed structural checks.
type ImportResult struct {
	Envelopes []Envelope
	Skipped   []ImportIssue
}
