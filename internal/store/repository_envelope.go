package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/models"
)

// idGenerator produces opaque ids for new envelopes.
type idGenerator interface {
	Generate() string
}

// envelopeRepository is the SQL implementation of [EnvelopeRepository].
// The payload column holds the serialized envelope exactly as received.
type envelopeRepository struct {
	*DB
	ids    idGenerator
	logger *logger.Logger
}

// NewEnvelopeRepository constructs an [EnvelopeRepository] on db. ids
// supplies identifiers for envelopes stored without one.
func NewEnvelopeRepository(db *DB, ids idGenerator, logger *logger.Logger) EnvelopeRepository {
	return &envelopeRepository{
		DB:     db,
		ids:    ids,
		logger: logger,
	}
}

// Store implements [EnvelopeRepository].
func (r *envelopeRepository) Store(ctx context.Context, env models.StoredEnvelope) (string, error) {
	log := logger.FromContext(ctx)

	if env.ID == "" {
		env.ID = r.ids.Generate()
	}
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now()
	}

	query, args, err := buildInsertEnvelopeQuery(r.builder, env)
	if err != nil {
		log.Err(err).Str("func", "envelopeRepository.Store").Msg("failed to build query")
		return "", err
	}

	var res sql.Result
	err = r.withRetry(ctx, func() error {
		res, err = r.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		if r.errorClassificator.IsUniqueViolation(err) {
			return "", ErrEnvelopeAlreadyExists
		}
		log.Err(err).
			Str("func", "envelopeRepository.Store").
			Str("journal_id", env.JournalID).
			Str("id", env.ID).
			Msg("failed to insert envelope")
		return "", fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", ErrEnvelopeNotSaved
	}

	log.Debug().
		Str("func", "envelopeRepository.Store").
		Str("journal_id", env.JournalID).
		Str("id", env.ID).
		Int("size", len(env.Payload)).
		Msg("envelope stored")
	return env.ID, nil
}

// Fetch implements [EnvelopeRepository].
func (r *envelopeRepository) Fetch(ctx context.Context, journalID, id string) (models.StoredEnvelope, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectEnvelopeQuery(r.builder, journalID, id)
	if err != nil {
		log.Err(err).Str("func", "envelopeRepository.Fetch").Msg("failed to build query")
		return models.StoredEnvelope{}, err
	}

	var env models.StoredEnvelope
	var payload string
	err = r.withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, query, args...).
			Scan(&env.ID, &env.JournalID, &payload, &env.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredEnvelope{}, ErrEnvelopeNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "envelopeRepository.Fetch").
			Str("journal_id", journalID).
			Str("id", id).
			Msg("failed to fetch envelope")
		return models.StoredEnvelope{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	env.Payload = []byte(payload)
	return env, nil
}

// List implements [EnvelopeRepository].
func (r *envelopeRepository) List(ctx context.Context, journalID string) ([]models.StoredEnvelope, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListEnvelopesQuery(r.builder, journalID)
	if err != nil {
		log.Err(err).Str("func", "envelopeRepository.List").Msg("failed to build query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "envelopeRepository.List").
			Str("journal_id", journalID).
			Msg("failed to execute query for listing envelopes")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	envelopes := make([]models.StoredEnvelope, 0)
	for rows.Next() {
		var env models.StoredEnvelope
		var payload string
		if err := rows.Scan(&env.ID, &env.JournalID, &payload, &env.CreatedAt); err != nil {
			log.Err(err).
				Str("func", "envelopeRepository.List").
				Str("journal_id", journalID).
				Msg("failed to scan envelope row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		env.Payload = []byte(payload)
		envelopes = append(envelopes, env)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).
			Str("func", "envelopeRepository.List").
			Str("journal_id", journalID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return envelopes, nil
}

// Delete implements [EnvelopeRepository].
func (r *envelopeRepository) Delete(ctx context.Context, journalID, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteEnvelopeQuery(r.builder, journalID, id)
	if err != nil {
		log.Err(err).Str("func", "envelopeRepository.Delete").Msg("failed to build query")
		return err
	}

	var res sql.Result
	err = r.withRetry(ctx, func() error {
		res, err = r.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "envelopeRepository.Delete").
			Str("journal_id", journalID).
			Str("id", id).
			Msg("failed to delete envelope")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return ErrEnvelopeNotFound
	}
	return nil
}
