// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package recovery issues recovery phrases and regenerates the journal key
// from one.
//
// A phrase does not derive the journal key directly. Instead the journal key
// is wrapped under a key derived from the phrase, and the wrapped copy is
// kept as a [models.RecoveryRecord] next to the profile. Either the secret or
// the phrase alone is then enough to obtain the same key, and enabling
// recovery never re-encrypts existing entries.
package recovery

import (
	"context"
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/models"
)

// Manager enrolls and uses recovery phrases.
type Manager interface {
	// Enroll mints a 12-word phrase and wraps key under it. The phrase in
	// the returned enrollment is the only copy; the manager keeps nothing.
	Enroll(ctx context.Context, key *crypto.DerivedKey) (models.RecoveryEnrollment, error)

	// Recover regenerates the key wrapped in record. Every failure is
	// [ErrRecoveryFailure], except cancellation which returns ctx.Err().
	Recover(ctx context.Context, phrase string, record models.RecoveryRecord) (*crypto.DerivedKey, error)
}

// manager is the private implementation of [Manager].
type manager struct {
	deriver  crypto.KeyDeriver
	engine   crypto.Engine
	keyChain crypto.KeyChain

	// params is the KDF cost for new wrapping keys. Existing records carry
	// their own.
	params  models.KDFParams
	entropy func(bits int) ([]byte, error)
}

// NewManager constructs a [Manager] that derives wrapping keys with params.
func NewManager(deriver crypto.KeyDeriver, engine crypto.Engine, keyChain crypto.KeyChain, params models.KDFParams) Manager {
	return &manager{
		deriver:  deriver,
		engine:   engine,
		keyChain: keyChain,
		params:   params,
		entropy:  bip39.NewEntropy,
	}
}

// Enroll implements [Manager].
func (m *manager) Enroll(ctx context.Context, key *crypto.DerivedKey) (models.RecoveryEnrollment, error) {
	if !key.Alive() {
		return models.RecoveryEnrollment{}, crypto.ErrInvalidKey
	}

	phrase, err := newPhrase(m.entropy)
	if err != nil {
		return models.RecoveryEnrollment{}, fmt.Errorf("generate recovery phrase: %w", err)
	}
	secret, err := crypto.NewSecret(phrase)
	if err != nil {
		return models.RecoveryEnrollment{}, err
	}
	defer secret.Destroy()

	salt, err := m.keyChain.GenerateSalt()
	if err != nil {
		return models.RecoveryEnrollment{}, fmt.Errorf("generate recovery salt: %w", err)
	}
	wrapCtx := models.KeyContext{Salt: salt, KDF: m.params}

	wrapKey, err := m.deriver.DeriveContext(ctx, secret, wrapCtx)
	if err != nil {
		return models.RecoveryEnrollment{}, err
	}
	defer wrapKey.Destroy()

	record := models.RecoveryRecord{
		Version:    models.RecoveryRecordVersion,
		KeyContext: key.Context(),
		Wrapped:    envelope.New(wrapCtx),
	}
	sealed, err := m.engine.Encrypt(wrapKey, key.Bytes(), envelope.RecordAssociatedData(record))
	if err != nil {
		return models.RecoveryEnrollment{}, fmt.Errorf("wrap key: %w", err)
	}
	record.Wrapped.IV = sealed.IV
	record.Wrapped.Ciphertext = sealed.Ciphertext
	record.Wrapped.AuthTag = sealed.Tag

	return models.RecoveryEnrollment{Phrase: phrase, Record: record}, nil
}

// Recover implements [Manager].
func (m *manager) Recover(ctx context.Context, phrase string, record models.RecoveryRecord) (*crypto.DerivedKey, error) {
	if err := ValidatePhrase(phrase); err != nil {
		return nil, err
	}
	if err := envelope.ValidateRecoveryRecord(record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecoveryFailure, err)
	}

	secret, err := crypto.NewSecret(NormalizePhrase(phrase))
	if err != nil {
		return nil, ErrRecoveryFailure
	}
	defer secret.Destroy()

	wrapKey, err := m.deriver.DeriveContext(ctx, secret, record.Wrapped.KeyContext())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrRecoveryFailure
	}
	defer wrapKey.Destroy()

	raw, err := m.engine.Decrypt(wrapKey, crypto.Sealed{
		IV:         record.Wrapped.IV,
		Ciphertext: record.Wrapped.Ciphertext,
		Tag:        record.Wrapped.AuthTag,
	}, envelope.RecordAssociatedData(record))
	if err != nil {
		return nil, ErrRecoveryFailure
	}

	key, err := crypto.NewDerivedKey(raw, record.KeyContext)
	if err != nil {
		return nil, ErrRecoveryFailure
	}
	return key, nil
}
