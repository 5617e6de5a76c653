package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/store"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
	"github.com/MKhiriev/go-journal-vault/models"
)

type journalService struct {
	journalID string

	crypto    JournalCryptoService
	envelopes store.EnvelopeRepository
	profiles  store.ProfileRepository
	bundles   store.BundleFileStorage

	// pendingVerifier is set while the stored profile has no verifier.
	pendingVerifier atomic.Bool

	now    func() time.Time
	logger *logger.Logger
}

// NewJournalService binds crypto to the storage of journal journalID.
// envelopes is either the local SQL repository or the remote adapter.
func NewJournalService(
	journalID string,
	crypto JournalCryptoService,
	envelopes store.EnvelopeRepository,
	profiles store.ProfileRepository,
	bundles store.BundleFileStorage,
	logger *logger.Logger,
) JournalService {
	return &journalService{
		journalID: journalID,
		crypto:    crypto,
		envelopes: envelopes,
		profiles:  profiles,
		bundles:   bundles,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *journalService) Enroll(ctx context.Context, secret string) (models.KeyProfile, error) {
	if err := s.ensureNoProfile(ctx); err != nil {
		return models.KeyProfile{}, err
	}

	profile, err := s.crypto.Enroll(ctx, secret)
	if err != nil {
		return models.KeyProfile{}, fmt.Errorf("enroll journal: %w", err)
	}
	if err = s.saveProfile(ctx, profile); err != nil {
		s.crypto.Lock()
		return models.KeyProfile{}, err
	}
	s.pendingVerifier.Store(false)
	profile.JournalID = s.journalID
	return profile, nil
}

func (s *journalService) EnrollRecovery(ctx context.Context) (models.RecoveryEnrollment, error) {
	enrollment, err := s.crypto.EnrollRecovery(ctx)
	if err != nil {
		return models.RecoveryEnrollment{}, err
	}
	// The phrase is useless unless its record is persisted.
	if err = s.SaveProfile(ctx); err != nil {
		return models.RecoveryEnrollment{}, err
	}
	return enrollment, nil
}

func (s *journalService) LoadProfile(ctx context.Context) (models.KeyProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, s.journalID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return models.KeyProfile{}, ErrNoProfile
	}
	if err != nil {
		return models.KeyProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if err = s.crypto.LoadProfile(profile); err != nil {
		return models.KeyProfile{}, fmt.Errorf("load profile: %w", err)
	}
	s.pendingVerifier.Store(profile.Verifier == nil)
	return profile, nil
}

func (s *journalService) SaveProfile(ctx context.Context) error {
	profile, err := s.crypto.Profile()
	if err != nil {
		return err
	}
	return s.saveProfile(ctx, profile)
}

func (s *journalService) Write(ctx context.Context, text string) (string, error) {
	env, err := s.crypto.EncryptEntry(ctx, text)
	if err != nil {
		return "", err
	}
	payload, err := envelope.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	id, err := s.envelopes.Store(ctx, models.StoredEnvelope{
		ID:        utils.ContentID(payload),
		JournalID: s.journalID,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("store envelope: %w", err)
	}
	return id, nil
}

func (s *journalService) Read(ctx context.Context, id string) (string, error) {
	if s.crypto.State() != StateUnlocked {
		return "", ErrNotUnlocked
	}
	stored, err := s.envelopes.Fetch(ctx, s.journalID, id)
	if err != nil {
		return "", fmt.Errorf("fetch envelope: %w", err)
	}
	env, err := envelope.Parse(stored.Payload)
	if err != nil {
		return "", fmt.Errorf("envelope %s: %w", id, err)
	}
	text, err := s.crypto.DecryptEntry(ctx, env)
	if err != nil {
		return "", err
	}
	s.persistVerifier(ctx)
	return text, nil
}

func (s *journalService) List(ctx context.Context) ([]models.EntrySummary, error) {
	stored, err := s.envelopes.List(ctx, s.journalID)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}

	summaries := make([]models.EntrySummary, 0, len(stored))
	for _, e := range stored {
		summaries = append(summaries, models.EntrySummary{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			Size:      len(e.Payload),
		})
	}
	return summaries, nil
}

func (s *journalService) Delete(ctx context.Context, id string) error {
	if err := s.envelopes.Delete(ctx, s.journalID, id); err != nil {
		return fmt.Errorf("delete envelope: %w", err)
	}
	return nil
}

func (s *journalService) ExportToFile(ctx context.Context, path string) (int, error) {
	_, envs, err := s.loadAll(ctx)
	if err != nil {
		return 0, err
	}

	bundle, err := s.crypto.ExportAll(ctx, envs)
	if err != nil {
		return 0, fmt.Errorf("export entries: %w", err)
	}
	data, err := envelope.MarshalBundle(bundle)
	if err != nil {
		return 0, fmt.Errorf("marshal bundle: %w", err)
	}
	if err = s.bundles.SaveBundle(ctx, path, data); err != nil {
		return 0, fmt.Errorf("save bundle: %w", err)
	}

	s.logger.Info().Str("journal_id", s.journalID).Int("count", bundle.Count).Msg("journal exported")
	return bundle.Count, nil
}

func (s *journalService) ImportFromFile(ctx context.Context, path string) (models.ImportReport, error) {
	bundle, err := s.loadBundle(ctx, path)
	if err != nil {
		return models.ImportReport{}, err
	}

	result, err := s.crypto.ImportAll(ctx, bundle)
	if err != nil {
		return models.ImportReport{}, fmt.Errorf("import bundle: %w", err)
	}
	s.persistVerifier(ctx)

	report := models.ImportReport{Skipped: result.Skipped}
	now := s.now().UTC()
	for _, env := range result.Envelopes {
		payload, err := envelope.Marshal(env)
		if err != nil {
			return report, fmt.Errorf("marshal envelope: %w", err)
		}
		_, err = s.envelopes.Store(ctx, models.StoredEnvelope{
			ID:        utils.ContentID(payload),
			JournalID: s.journalID,
			Payload:   payload,
			CreatedAt: now,
		})
		if errors.Is(err, store.ErrEnvelopeAlreadyExists) {
			report.Duplicates++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("store envelope: %w", err)
		}
		report.Imported++
	}

	s.logger.Info().
		Str("journal_id", s.journalID).
		Int("imported", report.Imported).
		Int("duplicates", report.Duplicates).
		Int("skipped", len(report.Skipped)).
		Msg("journal imported")
	return report, nil
}

func (s *journalService) RestoreProfileFromBundle(ctx context.Context, path string) (models.KeyProfile, error) {
	if err := s.ensureNoProfile(ctx); err != nil {
		return models.KeyProfile{}, err
	}
	bundle, err := s.loadBundle(ctx, path)
	if err != nil {
		return models.KeyProfile{}, err
	}

	// No verifier: a wrong secret shows up on the first decrypt.
	now := s.now().UTC()
	profile := models.KeyProfile{
		JournalID:  s.journalID,
		KeyContext: bundle.KeyContext,
		Recovery:   bundle.Recovery,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = s.crypto.LoadProfile(profile); err != nil {
		return models.KeyProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if err = s.saveProfile(ctx, profile); err != nil {
		return models.KeyProfile{}, err
	}
	s.pendingVerifier.Store(true)
	return profile, nil
}

// ChangeSecret writes a backup, stores the re-encrypted entries, saves the
// new profile and only then removes the old entries. An interruption leaves
// either the old entries or the backup usable with the old secret.
func (s *journalService) ChangeSecret(ctx context.Context, newSecret, backupPath string) error {
	if _, err := s.ExportToFile(ctx, backupPath); err != nil {
		return fmt.Errorf("backup before secret change: %w", err)
	}

	stored, envs, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	profile, resealed, err := s.crypto.ChangeSecret(ctx, newSecret, envs)
	if err != nil {
		return fmt.Errorf("change secret: %w", err)
	}

	for i, env := range resealed {
		payload, err := envelope.Marshal(env)
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}
		_, err = s.envelopes.Store(ctx, models.StoredEnvelope{
			ID:        utils.ContentID(payload),
			JournalID: s.journalID,
			Payload:   payload,
			CreatedAt: stored[i].CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("store re-encrypted envelope: %w", err)
		}
	}

	if err = s.saveProfile(ctx, profile); err != nil {
		return err
	}
	s.pendingVerifier.Store(false)

	for _, old := range stored {
		if err = s.envelopes.Delete(ctx, s.journalID, old.ID); err != nil && !errors.Is(err, store.ErrEnvelopeNotFound) {
			return fmt.Errorf("delete old envelope: %w", err)
		}
	}

	s.logger.Info().Str("journal_id", s.journalID).Int("count", len(resealed)).Msg("journal re-encrypted")
	return nil
}

func (s *journalService) ensureNoProfile(ctx context.Context) error {
	_, err := s.profiles.GetProfile(ctx, s.journalID)
	if err == nil {
		return ErrProfileExists
	}
	if !errors.Is(err, store.ErrProfileNotFound) {
		return fmt.Errorf("get profile: %w", err)
	}
	return nil
}

func (s *journalService) saveProfile(ctx context.Context, profile models.KeyProfile) error {
	profile.JournalID = s.journalID
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// persistVerifier saves the profile once the crypto session has sealed a
// verifier into it. A failed save is retried on the next verified read.
func (s *journalService) persistVerifier(ctx context.Context) {
	if !s.pendingVerifier.Load() {
		return
	}
	profile, err := s.crypto.Profile()
	if err != nil || profile.Verifier == nil {
		return
	}
	if err = s.saveProfile(ctx, profile); err != nil {
		s.logger.Warn().Err(err).Str("journal_id", s.journalID).Msg("persist profile verifier")
		return
	}
	s.pendingVerifier.Store(false)
	s.logger.Info().Str("journal_id", s.journalID).Msg("profile verifier persisted")
}

// loadAll returns the stored envelopes of the journal together with their
// parsed form, in the same order.
func (s *journalService) loadAll(ctx context.Context) ([]models.StoredEnvelope, []models.Envelope, error) {
	stored, err := s.envelopes.List(ctx, s.journalID)
	if err != nil {
		return nil, nil, fmt.Errorf("list envelopes: %w", err)
	}

	envs := make([]models.Envelope, 0, len(stored))
	for _, e := range stored {
		env, err := envelope.Parse(e.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("envelope %s: %w", e.ID, err)
		}
		envs = append(envs, env)
	}
	return stored, envs, nil
}

func (s *journalService) loadBundle(ctx context.Context, path string) (models.Bundle, error) {
	data, err := s.bundles.LoadBundle(ctx, path)
	if err != nil {
		return models.Bundle{}, fmt.Errorf("load bundle: %w", err)
	}
	bundle, err := envelope.ParseBundle(data)
	if err != nil {
		return models.Bundle{}, fmt.Errorf("%w: %w", ErrBundleIntegrity, err)
	}
	return bundle, nil
}
