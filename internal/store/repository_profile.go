package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/models"
)

// profileRepository is the SQL implementation of [ProfileRepository]. The
// profile is kept as one JSON document per journal; it contains no secret.
type profileRepository struct {
	*DB
	logger *logger.Logger
}

// NewProfileRepository constructs a [ProfileRepository] on db.
func NewProfileRepository(db *DB, logger *logger.Logger) ProfileRepository {
	return &profileRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveProfile implements [ProfileRepository].
func (r *profileRepository) SaveProfile(ctx context.Context, profile models.KeyProfile) error {
	log := logger.FromContext(ctx)

	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingProfile, err)
	}

	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	query, args, err := buildUpsertProfileQuery(r.builder, profile.JournalID, doc, updatedAt)
	if err != nil {
		log.Err(err).Str("func", "profileRepository.SaveProfile").Msg("failed to build query")
		return err
	}

	err = r.withRetry(ctx, func() error {
		_, err := r.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "profileRepository.SaveProfile").
			Str("journal_id", profile.JournalID).
			Msg("failed to upsert key profile")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// GetProfile implements [ProfileRepository].
func (r *profileRepository) GetProfile(ctx context.Context, journalID string) (models.KeyProfile, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectProfileQuery(r.builder, journalID)
	if err != nil {
		log.Err(err).Str("func", "profileRepository.GetProfile").Msg("failed to build query")
		return models.KeyProfile{}, err
	}

	var doc string
	err = r.withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, query, args...).Scan(&doc)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.KeyProfile{}, ErrProfileNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "profileRepository.GetProfile").
			Str("journal_id", journalID).
			Msg("failed to query key profile")
		return models.KeyProfile{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	var profile models.KeyProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		log.Err(err).
			Str("func", "profileRepository.GetProfile").
			Str("journal_id", journalID).
			Msg("stored key profile is not valid JSON")
		return models.KeyProfile{}, fmt.Errorf("%w: %w", ErrDecodingProfile, err)
	}
	return profile, nil
}
