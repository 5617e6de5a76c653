package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-journal-vault/internal/config"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/store"
	"github.com/MKhiriev/go-journal-vault/internal/validators"
	"github.com/MKhiriev/go-journal-vault/models"
)

type envelopeService struct {
	envelopeRepository store.EnvelopeRepository
	validator          validators.Validator

	logger *logger.Logger
}

func NewEnvelopeService(envelopeRepository store.EnvelopeRepository, cfg config.ServerHTTP, logger *logger.Logger) EnvelopeService {
	return &envelopeService{
		envelopeRepository: envelopeRepository,
		validator:          validators.NewEnvelopeValidator(cfg.MaxEnvelopeSize),
		logger:             logger,
	}
}

func (e *envelopeService) Upload(ctx context.Context, journalID string, rec models.EnvelopeRecord) (models.EnvelopeRecord, error) {
	stored := models.StoredEnvelope{
		ID:        rec.ID,
		JournalID: journalID,
		Payload:   rec.Envelope,
		CreatedAt: rec.CreatedAt,
	}
	// Structure only: the server never holds a key.
	if err := e.validator.Validate(ctx, stored); err != nil {
		return models.EnvelopeRecord{}, fmt.Errorf("envelope validation: %w", err)
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	id, err := e.envelopeRepository.Store(ctx, stored)
	if err != nil {
		return models.EnvelopeRecord{}, fmt.Errorf("store envelope: %w", err)
	}
	return models.EnvelopeRecord{ID: id, CreatedAt: stored.CreatedAt}, nil
}

func (e *envelopeService) Get(ctx context.Context, journalID, id string) (models.EnvelopeRecord, error) {
	stored, err := e.envelopeRepository.Fetch(ctx, journalID, id)
	if err != nil {
		return models.EnvelopeRecord{}, err
	}
	return toRecord(stored), nil
}

func (e *envelopeService) List(ctx context.Context, journalID string) ([]models.EnvelopeRecord, error) {
	stored, err := e.envelopeRepository.List(ctx, journalID)
	if err != nil {
		return nil, err
	}
	records := make([]models.EnvelopeRecord, 0, len(stored))
	for _, s := range stored {
		records = append(records, toRecord(s))
	}
	return records, nil
}

func (e *envelopeService) Delete(ctx context.Context, journalID, id string) error {
	return e.envelopeRepository.Delete(ctx, journalID, id)
}

func toRecord(s models.StoredEnvelope) models.EnvelopeRecord {
	return models.EnvelopeRecord{ID: s.ID, CreatedAt: s.CreatedAt, Envelope: s.Payload}
}
