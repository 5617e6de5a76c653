// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/recovery"
	"github.com/MKhiriev/go-journal-vault/models"
)

// verifierPlaintext is sealed into the verifier envelope of every profile.
const verifierPlaintext = "journal-vault/verifier/v1"

// journalCryptoService is the private implementation of JournalCryptoService.
//
// mu guards the session. Entry operations hold the read lock for the whole
// AEAD call, so Lock (write lock) waits for them and no operation ever sees
// a destroyed key. generation is bumped on every lock so that work started
// under one session cannot be installed into another.
type journalCryptoService struct {
	deriver  crypto.KeyDeriver
	engine   crypto.Engine
	keyChain crypto.KeyChain
	recovery recovery.Manager
	params   models.KDFParams
	logger   *logger.Logger
	now      func() time.Time

	mu           sync.RWMutex
	state        State
	generation   uint64
	cancelUnlock context.CancelFunc
	profile      *models.KeyProfile
	// secret is kept while unlocked to derive keys for envelopes sealed
	// under another context. Nil after a recovery unlock.
	secret  *crypto.Secret
	keys    map[string]*crypto.DerivedKey
	primary string

	verified     atomic.Bool
	lastActivity atomic.Int64
}

// NewJournalCryptoService constructs a Locked JournalCryptoService. New
// profiles are derived with params.
func NewJournalCryptoService(
	deriver crypto.KeyDeriver,
	engine crypto.Engine,
	keyChain crypto.KeyChain,
	recoveryManager recovery.Manager,
	params models.KDFParams,
	logger *logger.Logger,
) JournalCryptoService {
	return &journalCryptoService{
		deriver:  deriver,
		engine:   engine,
		keyChain: keyChain,
		recovery: recoveryManager,
		params:   params,
		logger:   logger,
		now:      time.Now,
		keys:     make(map[string]*crypto.DerivedKey),
	}
}

func (s *journalCryptoService) Enroll(ctx context.Context, secret string) (models.KeyProfile, error) {
	if err := crypto.ValidateKDFParams(s.params); err != nil {
		return models.KeyProfile{}, err
	}
	sec, err := crypto.NewSecret(secret)
	if err != nil {
		return models.KeyProfile{}, err
	}

	gen, unlockCtx, _, err := s.beginUnlock(ctx, false)
	if err != nil {
		sec.Destroy()
		return models.KeyProfile{}, err
	}

	salt, err := s.keyChain.GenerateSalt()
	if err != nil {
		sec.Destroy()
		s.abortUnlock(gen)
		return models.KeyProfile{}, fmt.Errorf("generate salt: %w", err)
	}
	kc := models.KeyContext{Salt: salt, KDF: s.params}

	key, err := s.deriver.DeriveContext(unlockCtx, sec, kc)
	if err != nil {
		sec.Destroy()
		s.abortUnlock(gen)
		return models.KeyProfile{}, s.unlockError(ctx, err)
	}

	verifier, err := s.seal(key, []byte(verifierPlaintext))
	if err != nil {
		key.Destroy()
		sec.Destroy()
		s.abortUnlock(gen)
		return models.KeyProfile{}, fmt.Errorf("seal verifier: %w", err)
	}

	now := s.now().UTC()
	profile := models.KeyProfile{
		KeyContext: kc.Clone(),
		Verifier:   &verifier,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.finishUnlock(gen, key, sec, true, &profile); err != nil {
		return models.KeyProfile{}, err
	}

	s.logger.Info().Str("kdf", kc.KDF.Name).Msg("journal enrolled")
	return profile.Clone(), nil
}

func (s *journalCryptoService) LoadProfile(profile models.KeyProfile) error {
	if err := crypto.ValidateKeyContext(profile.KeyContext); err != nil {
		return fmt.Errorf("profile key context: %w", err)
	}
	if profile.Verifier != nil {
		if err := envelope.Validate(*profile.Verifier); err != nil {
			return fmt.Errorf("profile verifier: %w", err)
		}
	}
	if profile.Recovery != nil {
		if err := envelope.ValidateRecoveryRecord(*profile.Recovery); err != nil {
			return fmt.Errorf("profile recovery record: %w", err)
		}
	}

	p := profile.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLocked {
		return ErrSessionBusy
	}
	s.profile = &p
	return nil
}

func (s *journalCryptoService) Profile() (models.KeyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return models.KeyProfile{}, ErrNoProfile
	}
	return s.profile.Clone(), nil
}

func (s *journalCryptoService) Unlock(ctx context.Context, secret string) error {
	sec, err := crypto.NewSecret(secret)
	if err != nil {
		return err
	}

	gen, unlockCtx, profile, err := s.beginUnlock(ctx, true)
	if err != nil {
		sec.Destroy()
		return err
	}

	key, err := s.deriver.DeriveContext(unlockCtx, sec, profile.KeyContext)
	if err != nil {
		sec.Destroy()
		s.abortUnlock(gen)
		return s.unlockError(ctx, err)
	}

	verified := false
	if profile.Verifier != nil {
		if err := s.checkVerifier(key, *profile.Verifier); err != nil {
			key.Destroy()
			sec.Destroy()
			s.abortUnlock(gen)
			s.logger.Warn().Msg("unlock rejected by verifier")
			return ErrUnlockFailure
		}
		verified = true
	}

	if err := s.finishUnlock(gen, key, sec, verified, nil); err != nil {
		return err
	}
	s.logger.Info().Bool("verified", verified).Msg("session unlocked")
	return nil
}

func (s *journalCryptoService) Lock() {
	s.mu.Lock()
	prev := s.state
	s.wipeLocked()
	s.mu.Unlock()

	if prev != StateLocked {
		s.logger.Info().Str("from", prev.String()).Msg("session locked")
	}
}

func (s *journalCryptoService) LockIfIdle(timeout time.Duration) bool {
	if timeout <= 0 || s.State() != StateUnlocked {
		return false
	}
	if !s.idleFor(timeout) {
		return false
	}

	s.mu.Lock()
	if s.state != StateUnlocked || !s.idleFor(timeout) {
		s.mu.Unlock()
		return false
	}
	s.wipeLocked()
	s.mu.Unlock()

	s.logger.Info().Dur("timeout", timeout).Msg("idle session locked")
	return true
}

func (s *journalCryptoService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *journalCryptoService) EncryptEntry(ctx context.Context, plaintext string) (models.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return models.Envelope{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key, err := s.primaryKeyLocked()
	if err != nil {
		return models.Envelope{}, err
	}

	pt := []byte(plaintext)
	defer memguard.WipeBytes(pt)

	env, err := s.seal(key, pt)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("encrypt entry: %w", err)
	}
	s.touch()
	return env, nil
}

func (s *journalCryptoService) DecryptEntry(ctx context.Context, env models.Envelope) (string, error) {
	if s.State() != StateUnlocked {
		return "", ErrNotUnlocked
	}
	if err := envelope.Validate(env); err != nil {
		return "", err
	}

	var (
		plaintext     string
		unverified    bool
		newlyVerified bool
		gen           uint64
	)
	err := s.withKey(ctx, env.KeyContext(), func(key *crypto.DerivedKey, primary bool, g uint64) error {
		gen = g
		pt, err := s.open(key, env)
		if err != nil {
			unverified = primary && !s.verified.Load()
			return err
		}
		plaintext = string(pt)
		memguard.WipeBytes(pt)
		if primary && !s.verified.Swap(true) {
			newlyVerified = true
		}
		return nil
	})

	if unverified && s.lockIfUnverified(gen) {
		return "", fmt.Errorf("%w: %w", ErrUnlockFailure, crypto.ErrAuthenticationFailure)
	}
	if err != nil {
		return "", err
	}
	if newlyVerified {
		s.ensureVerifier(gen)
	}
	s.touch()
	return plaintext, nil
}

// beginUnlock moves a Locked session to Unlocking. The returned context is
// cancelled by Lock. With needProfile the installed profile is required and
// a copy of it is returned.
func (s *journalCryptoService) beginUnlock(ctx context.Context, needProfile bool) (uint64, context.Context, *models.KeyProfile, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLocked {
		return 0, nil, nil, ErrSessionBusy
	}

	var profile *models.KeyProfile
	if needProfile {
		if s.profile == nil {
			return 0, nil, nil, ErrNoProfile
		}
		p := s.profile.Clone()
		profile = &p
	}

	unlockCtx, cancel := context.WithCancel(ctx)
	s.state = StateUnlocking
	s.generation++
	s.cancelUnlock = cancel
	return s.generation, unlockCtx, profile, nil
}

// abortUnlock returns an Unlocking session of generation gen to Locked.
func (s *journalCryptoService) abortUnlock(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen && s.state == StateUnlocking {
		s.wipeLocked()
	}
}

// finishUnlock installs key as the primary key of session gen. If the
// session was locked in the meantime key and secret are destroyed instead.
// A non-nil profile replaces the installed one.
func (s *journalCryptoService) finishUnlock(gen uint64, key *crypto.DerivedKey, secret *crypto.Secret, verified bool, profile *models.KeyProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.state != StateUnlocking {
		key.Destroy()
		if secret != nil {
			secret.Destroy()
		}
		return fmt.Errorf("unlock interrupted by lock: %w", ErrNotUnlocked)
	}

	if s.cancelUnlock != nil {
		s.cancelUnlock()
		s.cancelUnlock = nil
	}
	if profile != nil {
		p := profile.Clone()
		s.profile = &p
	}

	id := contextID(key.Context())
	s.keys[id] = key
	s.primary = id
	s.secret = secret
	s.verified.Store(verified)
	s.state = StateUnlocked
	s.touch()
	return nil
}

// unlockError maps a derivation error. A derivation cancelled by Lock
// rather than by the caller reports ErrNotUnlocked.
func (s *journalCryptoService) unlockError(ctx context.Context, err error) error {
	if ctx.Err() == nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("unlock interrupted by lock: %w", ErrNotUnlocked)
	}
	return err
}

// wipeLocked destroys every key and the secret and leaves the session
// Locked. The caller holds mu for writing.
func (s *journalCryptoService) wipeLocked() {
	if s.cancelUnlock != nil {
		s.cancelUnlock()
		s.cancelUnlock = nil
	}
	for id, key := range s.keys {
		key.Destroy()
		delete(s.keys, id)
	}
	s.primary = ""
	if s.secret != nil {
		s.secret.Destroy()
		s.secret = nil
	}
	s.verified.Store(false)
	s.state = StateLocked
	s.generation++
}

// lockIfUnverified locks session gen unless its key has been verified by a
// concurrent operation, and reports whether it locked.
func (s *journalCryptoService) lockIfUnverified(gen uint64) bool {
	s.mu.Lock()
	if s.generation != gen || s.state != StateUnlocked || s.verified.Load() {
		s.mu.Unlock()
		return false
	}
	s.wipeLocked()
	s.mu.Unlock()

	s.logger.Warn().Msg("unverified key failed authentication, session locked")
	return true
}

// ensureVerifier seals a verifier into a profile that has none once the
// primary key of session gen has authenticated data. It reports whether the
// profile changed.
func (s *journalCryptoService) ensureVerifier(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.profile == nil || s.profile.Verifier != nil {
		return false
	}
	key, err := s.primaryKeyLocked()
	if err != nil || !key.Context().Equal(s.profile.KeyContext) {
		return false
	}
	verifier, err := s.seal(key, []byte(verifierPlaintext))
	if err != nil {
		s.logger.Err(err).Msg("seal verifier")
		return false
	}
	s.profile.Verifier = &verifier
	s.profile.UpdatedAt = s.now().UTC()
	s.logger.Info().Msg("verifier added to profile")
	return true
}

// primaryKeyLocked returns the key new data is sealed under. The caller
// holds mu.
func (s *journalCryptoService) primaryKeyLocked() (*crypto.DerivedKey, error) {
	if s.state != StateUnlocked {
		return nil, ErrNotUnlocked
	}
	key, ok := s.keys[s.primary]
	if !ok {
		return nil, ErrNotUnlocked
	}
	return key, nil
}

// withKey runs fn with the key for kc under the read lock. A missing key is
// derived from the session secret outside the lock and cached. Without a
// secret an unknown context fails with crypto.ErrAuthenticationFailure.
func (s *journalCryptoService) withKey(ctx context.Context, kc models.KeyContext, fn func(key *crypto.DerivedKey, primary bool, gen uint64) error) error {
	id := contextID(kc)

	for attempt := 0; attempt < 2; attempt++ {
		s.mu.RLock()
		if s.state != StateUnlocked {
			s.mu.RUnlock()
			return ErrNotUnlocked
		}
		if key, ok := s.keys[id]; ok {
			err := fn(key, id == s.primary, s.generation)
			s.mu.RUnlock()
			return err
		}
		if s.secret == nil || attempt > 0 {
			s.mu.RUnlock()
			return crypto.ErrAuthenticationFailure
		}
		gen := s.generation
		secret, err := s.secret.Clone()
		s.mu.RUnlock()
		if err != nil {
			return fmt.Errorf("clone secret: %w", err)
		}

		key, err := s.deriver.DeriveContext(ctx, secret, kc)
		secret.Destroy()
		if err != nil {
			return err
		}
		s.installKey(gen, id, key)
	}
	return crypto.ErrAuthenticationFailure
}

// installKey caches a secondary key derived during session gen.
func (s *journalCryptoService) installKey(gen uint64, id string, key *crypto.DerivedKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateUnlocked {
		key.Destroy()
		return
	}
	if _, ok := s.keys[id]; ok {
		key.Destroy()
		return
	}
	s.keys[id] = key
}

// checkVerifier opens the profile verifier with key.
func (s *journalCryptoService) checkVerifier(key *crypto.DerivedKey, verifier models.Envelope) error {
	if !verifier.KeyContext().Equal(key.Context()) {
		return ErrUnlockFailure
	}
	pt, err := s.open(key, verifier)
	if err != nil {
		return ErrUnlockFailure
	}
	defer memguard.WipeBytes(pt)
	if subtle.ConstantTimeCompare(pt, []byte(verifierPlaintext)) != 1 {
		return ErrUnlockFailure
	}
	return nil
}

func (s *journalCryptoService) seal(key *crypto.DerivedKey, plaintext []byte) (models.Envelope, error) {
	env := envelope.New(key.Context())
	sealed, err := s.engine.Encrypt(key, plaintext, envelope.AssociatedData(env))
	if err != nil {
		return models.Envelope{}, err
	}
	env.IV = sealed.IV
	env.Ciphertext = sealed.Ciphertext
	env.AuthTag = sealed.Tag
	return env, nil
}

func (s *journalCryptoService) open(key *crypto.DerivedKey, env models.Envelope) ([]byte, error) {
	return s.engine.Decrypt(key, crypto.Sealed{
		IV:         env.IV,
		Ciphertext: env.Ciphertext,
		Tag:        env.AuthTag,
	}, envelope.AssociatedData(env))
}

func (s *journalCryptoService) touch() {
	s.lastActivity.Store(s.now().UnixNano())
}

func (s *journalCryptoService) idleFor(timeout time.Duration) bool {
	last := time.Unix(0, s.lastActivity.Load())
	return s.now().Sub(last) >= timeout
}

// contextID is the keyring index of a key context.
func contextID(kc models.KeyContext) string {
	p := kc.KDF
	return p.Name + "|" + p.Hash + "|" +
		strconv.FormatUint(uint64(p.Iterations), 10) + "|" +
		strconv.FormatUint(uint64(p.Memory), 10) + "|" +
		strconv.FormatUint(uint64(p.Threads), 10) + "|" +
		hex.EncodeToString(kc.Salt)
}
