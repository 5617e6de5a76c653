package service

import (
	"context"

	"github.com/MKhiriev/go-journal-vault/models"
)

// EnvelopeService is the envelope server's view of a journal. It stores
// ciphertext it cannot read: envelopes are checked for structure only.
type EnvelopeService interface {
	// Upload validates rec.Envelope with the envelope codec and stores it.
	// The returned record carries the assigned id and creation time.
	Upload(ctx context.Context, journalID string, rec models.EnvelopeRecord) (models.EnvelopeRecord, error)

	Get(ctx context.Context, journalID, id string) (models.EnvelopeRecord, error)
	List(ctx context.Context, journalID string) ([]models.EnvelopeRecord, error)
	Delete(ctx context.Context, journalID, id string) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
