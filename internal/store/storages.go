package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-journal-vault/internal/config"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
)

// ClientStorages groups the client-side storage collaborators. Envelopes is
// nil when the client is configured for a remote backend; the caller then
// plugs in the HTTP adapter instead.
type ClientStorages struct {
	Envelopes EnvelopeRepository
	Profiles  ProfileRepository
	Bundles   BundleFileStorage

	db *DB
}

// NewClientStorages opens the local SQLite database, runs migrations and
// wires the repositories.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Debug().Msg("creating client storages...")

	db, err := NewConnect(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	s := &ClientStorages{
		Profiles: NewProfileRepository(db, log),
		Bundles:  NewBundleFileStorage(cfg.Files.BackupDir, cfg.Files.MaxBundleSize, log),
		db:       db,
	}
	if cfg.Backend != config.BackendRemote {
		s.Envelopes = NewEnvelopeRepository(db, utils.NewUUIDGenerator(), log)
	}
	return s, nil
}

// Close releases the database handle.
func (s *ClientStorages) Close() error {
	return s.db.Close()
}

// ServerStorages groups the server-side repositories.
type ServerStorages struct {
	Envelopes EnvelopeRepository

	db *DB
}

// NewServerStorages connects to the server database (PostgreSQL in
// production), runs migrations and wires the envelope repository.
func NewServerStorages(ctx context.Context, cfg config.ServerStorage, log *logger.Logger) (*ServerStorages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnect(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ServerStorages{
		Envelopes: NewEnvelopeRepository(db, utils.NewUUIDGenerator(), log),
		db:        db,
	}, nil
}

// Close releases the database handle.
func (s *ServerStorages) Close() error {
	return s.db.Close()
}
