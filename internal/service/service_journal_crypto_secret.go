package service

import (
	"context"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/internal/recovery"
	"github.com/MKhiriev/go-journal-vault/models"
)

func (s *journalCryptoService) UnlockWithRecovery(ctx context.Context, phrase string) error {
	gen, unlockCtx, profile, err := s.beginUnlock(ctx, true)
	if err != nil {
		return err
	}
	if profile.Recovery == nil {
		s.abortUnlock(gen)
		return ErrRecoveryNotEnrolled
	}

	key, err := s.recovery.Recover(unlockCtx, phrase, *profile.Recovery)
	if err != nil {
		s.abortUnlock(gen)
		s.logger.Warn().Msg("recovery rejected")
		return s.unlockError(ctx, err)
	}

	if !key.Context().Equal(profile.KeyContext) {
		key.Destroy()
		s.abortUnlock(gen)
		return recovery.ErrRecoveryFailure
	}
	if profile.Verifier != nil {
		if err := s.checkVerifier(key, *profile.Verifier); err != nil {
			key.Destroy()
			s.abortUnlock(gen)
			return recovery.ErrRecoveryFailure
		}
	}

	// The recovered key authenticated the wrapped record, so it is verified
	// even without a verifier envelope.
	if err := s.finishUnlock(gen, key, nil, true, nil); err != nil {
		return err
	}
	s.logger.Info().Msg("session unlocked with recovery phrase")
	return nil
}

func (s *journalCryptoService) EnrollRecovery(ctx context.Context) (models.RecoveryEnrollment, error) {
	s.mu.RLock()
	key, err := s.primaryKeyLocked()
	if err != nil {
		s.mu.RUnlock()
		return models.RecoveryEnrollment{}, err
	}
	gen := s.generation
	enrollment, err := s.recovery.Enroll(ctx, key)
	s.mu.RUnlock()
	if err != nil {
		return models.RecoveryEnrollment{}, fmt.Errorf("enroll recovery: %w", err)
	}

	s.mu.Lock()
	if s.generation != gen || s.state != StateUnlocked || s.profile == nil {
		s.mu.Unlock()
		return models.RecoveryEnrollment{}, ErrNotUnlocked
	}
	record := enrollment.Record
	s.profile.Recovery = &record
	s.profile.UpdatedAt = s.now().UTC()
	s.mu.Unlock()

	s.touch()
	s.logger.Info().Msg("recovery phrase enrolled")
	return enrollment, nil
}

func (s *journalCryptoService) ChangeSecret(ctx context.Context, newSecret string, envelopes []models.Envelope) (models.KeyProfile, []models.Envelope, error) {
	if s.State() != StateUnlocked {
		return models.KeyProfile{}, nil, ErrNotUnlocked
	}
	sec, err := crypto.NewSecret(newSecret)
	if err != nil {
		return models.KeyProfile{}, nil, err
	}
	salt, err := s.keyChain.GenerateSalt()
	if err != nil {
		sec.Destroy()
		return models.KeyProfile{}, nil, fmt.Errorf("generate salt: %w", err)
	}
	kc := models.KeyContext{Salt: salt, KDF: s.params}

	newKey, err := s.deriver.DeriveContext(ctx, sec, kc)
	if err != nil {
		sec.Destroy()
		return models.KeyProfile{}, nil, err
	}
	fail := func(err error) (models.KeyProfile, []models.Envelope, error) {
		newKey.Destroy()
		sec.Destroy()
		return models.KeyProfile{}, nil, err
	}

	resealed := make([]models.Envelope, 0, len(envelopes))
	for i, env := range envelopes {
		if err := envelope.Validate(env); err != nil {
			return fail(fmt.Errorf("entry %d: %w", i, err))
		}
		var out models.Envelope
		err := s.withKey(ctx, env.KeyContext(), func(key *crypto.DerivedKey, _ bool, _ uint64) error {
			pt, err := s.open(key, env)
			if err != nil {
				return err
			}
			defer memguard.WipeBytes(pt)
			out, err = s.seal(newKey, pt)
			return err
		})
		if err != nil {
			return fail(fmt.Errorf("entry %d: %w", i, err))
		}
		resealed = append(resealed, out)
	}

	verifier, err := s.seal(newKey, []byte(verifierPlaintext))
	if err != nil {
		return fail(fmt.Errorf("seal verifier: %w", err))
	}

	s.mu.Lock()
	if s.state != StateUnlocked || s.profile == nil {
		s.mu.Unlock()
		return fail(ErrNotUnlocked)
	}
	profile := models.KeyProfile{
		JournalID:  s.profile.JournalID,
		KeyContext: kc.Clone(),
		Verifier:   &verifier,
		CreatedAt:  s.profile.CreatedAt,
		UpdatedAt:  s.now().UTC(),
	}
	s.wipeLocked()
	id := contextID(kc)
	s.profile = &profile
	s.keys[id] = newKey
	s.primary = id
	s.secret = sec
	s.verified.Store(true)
	s.state = StateUnlocked
	s.touch()
	s.mu.Unlock()

	s.logger.Info().Int("count", len(resealed)).Msg("secret changed")
	return profile.Clone(), resealed, nil
}

