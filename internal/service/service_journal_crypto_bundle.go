package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/models"
)

func (s *journalCryptoService) ExportAll(ctx context.Context, envelopes []models.Envelope) (models.Bundle, error) {
	if s.State() != StateUnlocked {
		return models.Bundle{}, ErrNotUnlocked
	}

	entries := make([]json.RawMessage, 0, len(envelopes))
	for i, env := range envelopes {
		if err := ctx.Err(); err != nil {
			return models.Bundle{}, err
		}
		raw, err := envelope.Marshal(env)
		if err != nil {
			return models.Bundle{}, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, raw)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key, err := s.primaryKeyLocked()
	if err != nil {
		return models.Bundle{}, err
	}

	b := models.Bundle{
		Format:     models.BundleFormat,
		Version:    models.BundleVersion,
		CreatedAt:  s.now().UTC(),
		Count:      len(entries),
		KeyContext: key.Context(),
		Entries:    entries,
	}
	if s.profile != nil && s.profile.Recovery != nil {
		b.Recovery = s.profile.Clone().Recovery
	}

	parts, err := envelope.BundleMACInput(b)
	if err != nil {
		return models.Bundle{}, fmt.Errorf("bundle mac input: %w", err)
	}
	if b.MAC, err = s.keyChain.MAC(key, envelope.BundleMACPurpose, parts...); err != nil {
		return models.Bundle{}, fmt.Errorf("bundle mac: %w", err)
	}

	s.touch()
	s.logger.Info().Int("count", b.Count).Msg("bundle exported")
	return b, nil
}

func (s *journalCryptoService) ImportAll(ctx context.Context, b models.Bundle) (models.ImportResult, error) {
	if s.State() != StateUnlocked {
		return models.ImportResult{}, ErrNotUnlocked
	}
	if b.Format != models.BundleFormat || b.Version != models.BundleVersion || b.Count != len(b.Entries) {
		return models.ImportResult{}, ErrBundleIntegrity
	}
	if err := crypto.ValidateKeyContext(b.KeyContext); err != nil {
		return models.ImportResult{}, fmt.Errorf("%w: %w", ErrBundleIntegrity, err)
	}
	parts, err := envelope.BundleMACInput(b)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("%w: %w", ErrBundleIntegrity, err)
	}

	var unverified, newlyVerified bool
	var gen uint64
	err = s.withKey(ctx, b.KeyContext, func(key *crypto.DerivedKey, primary bool, g uint64) error {
		gen = g
		if !s.keyChain.VerifyMAC(key, envelope.BundleMACPurpose, b.MAC, parts...) {
			unverified = primary && !s.verified.Load()
			return ErrBundleIntegrity
		}
		if primary && !s.verified.Swap(true) {
			newlyVerified = true
		}
		return nil
	})
	if errors.Is(err, crypto.ErrAuthenticationFailure) {
		// no key for the bundle context in this session
		err = ErrBundleIntegrity
	}
	// A MAC mismatch under an unverified key means the secret was wrong.
	if unverified && s.lockIfUnverified(gen) {
		return models.ImportResult{}, fmt.Errorf("%w: %w", ErrUnlockFailure, ErrBundleIntegrity)
	}
	if newlyVerified {
		s.ensureVerifier(gen)
	}
	if err != nil {
		if errors.Is(err, ErrBundleIntegrity) {
			s.logger.Warn().Int("count", b.Count).Msg("bundle rejected")
		}
		return models.ImportResult{}, err
	}

	res := models.ImportResult{Envelopes: make([]models.Envelope, 0, len(b.Entries))}
	for i, raw := range b.Entries {
		env, err := envelope.Parse(raw)
		if err != nil {
			res.Skipped = append(res.Skipped, models.ImportIssue{Index: i, Err: err})
			continue
		}
		res.Envelopes = append(res.Envelopes, env)
	}

	s.touch()
	s.logger.Info().
		Int("imported", len(res.Envelopes)).
		Int("skipped", len(res.Skipped)).
		Msg("bundle verified")
	return res, nil
}
