package store

import (
	"context"

	"github.com/MKhiriev/go-journal-vault/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// EnvelopeRepository keeps serialized envelopes. It is the untrusted storage
// collaborator: it only ever receives ciphertext and non-secret metadata and
// never interprets the payload.
type EnvelopeRepository interface {
	// Store saves env and returns its opaque id. An empty env.ID is replaced
	// by a generated one; an existing id yields [ErrEnvelopeAlreadyExists].
	Store(ctx context.Context, env models.StoredEnvelope) (string, error)

	// Fetch returns one envelope or [ErrEnvelopeNotFound].
	Fetch(ctx context.Context, journalID, id string) (models.StoredEnvelope, error)

	// List returns every envelope of the journal ordered by creation time.
	List(ctx context.Context, journalID string) ([]models.StoredEnvelope, error)

	// Delete removes an envelope or returns [ErrEnvelopeNotFound].
	Delete(ctx context.Context, journalID, id string) error
}

// ProfileRepository keeps the non-secret key profile of each journal.
type ProfileRepository interface {
	// SaveProfile inserts or replaces the profile of profile.JournalID.
	SaveProfile(ctx context.Context, profile models.KeyProfile) error

	// GetProfile returns the profile or [ErrProfileNotFound].
	GetProfile(ctx context.Context, journalID string) (models.KeyProfile, error)
}

// BundleFileStorage reads and writes export bundles as local files.
type BundleFileStorage interface {
	// SaveBundle writes data to path with owner-only permissions. The file
	// is replaced atomically.
	SaveBundle(ctx context.Context, path string, data []byte) error

	// LoadBundle reads a bundle file, refusing files larger than the
	// configured limit.
	LoadBundle(ctx context.Context, path string) ([]byte, error)
}

// ErrorClassificator decides how a driver error should be handled.
type ErrorClassificator interface {
	// Classify reports whether the failed operation may be retried.
	Classify(err error) ErrorClassification

	// IsUniqueViolation reports whether err is a primary key or unique
	// constraint conflict.
	IsUniqueViolation(err error) bool
}
