// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"context"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/MKhiriev/go-journal-vault/models"
)

const (
	// DefaultPBKDF2Iterations is the PBKDF2-HMAC-SHA256 cost written into
	// new key contexts. It follows the OWASP 2023 recommendation.
	DefaultPBKDF2Iterations = 600_000
	// MinPBKDF2Iterations is the lowest cost accepted for derivation or
	// when reading an envelope.
	MinPBKDF2Iterations = 100_000
	// MaxPBKDF2Iterations caps the cost accepted from envelopes, bundles
	// and profiles.
	MaxPBKDF2Iterations = 10_000_000

	// Argon2id defaults (OWASP): 1 pass, 64 MiB, 4 lanes.
	DefaultArgon2Time    = 1
	DefaultArgon2Memory  = 64 * 1024
	DefaultArgon2Threads = 4
	// MinArgon2Memory is 19 MiB, the lowest OWASP-listed Argon2id memory cost.
	MinArgon2Memory = 19 * 1024
	// Upper Argon2id bounds. MaxArgon2Memory is 1 GiB.
	MaxArgon2Time    = 16
	MaxArgon2Memory  = 1024 * 1024
	MaxArgon2Threads = 64

	// SaltSize is the length of salts generated by [KeyChain.GenerateSalt].
	SaltSize = 16
	// MinSaltSize and MaxSaltSize bound salts accepted from envelopes.
	MinSaltSize = 16
	MaxSaltSize = 64
)

// PBKDF2Params returns PBKDF2-HMAC-SHA256 parameters with the given cost.
func PBKDF2Params(iterations uint32) models.KDFParams {
	return models.KDFParams{Name: models.KDFPBKDF2, Hash: models.HashSHA256, Iterations: iterations}
}

// Argon2idParams returns Argon2id parameters. memory is in KiB.
func Argon2idParams(time, memory uint32, threads uint8) models.KDFParams {
	return models.KDFParams{Name: models.KDFArgon2id, Iterations: time, Memory: memory, Threads: threads}
}

// ValidateKDFParams checks the KDF name, hash and cost bounds. Every
// failure wraps [ErrInvalidKDFParams].
func ValidateKDFParams(p models.KDFParams) error {
	switch p.Name {
	case models.KDFPBKDF2:
		if p.Hash != models.HashSHA256 {
			return fmt.Errorf("%w: unsupported hash %q", ErrInvalidKDFParams, p.Hash)
		}
		if p.Iterations < MinPBKDF2Iterations {
			return fmt.Errorf("%w: %d iterations is below the minimum of %d",
				ErrInvalidKDFParams, p.Iterations, MinPBKDF2Iterations)
		}
		if p.Iterations > MaxPBKDF2Iterations {
			return fmt.Errorf("%w: %d iterations exceeds the maximum of %d",
				ErrInvalidKDFParams, p.Iterations, MaxPBKDF2Iterations)
		}
		if p.Memory != 0 || p.Threads != 0 {
			return fmt.Errorf("%w: memory and threads are not used by %s", ErrInvalidKDFParams, p.Name)
		}
	case models.KDFArgon2id:
		if p.Hash != "" {
			return fmt.Errorf("%w: hash is not used by %s", ErrInvalidKDFParams, p.Name)
		}
		if p.Iterations < 1 || p.Threads < 1 {
			return fmt.Errorf("%w: time and threads must be positive", ErrInvalidKDFParams)
		}
		if p.Memory < MinArgon2Memory {
			return fmt.Errorf("%w: %d KiB is below the minimum of %d KiB",
				ErrInvalidKDFParams, p.Memory, MinArgon2Memory)
		}
		if p.Iterations > MaxArgon2Time || p.Memory > MaxArgon2Memory || p.Threads > MaxArgon2Threads {
			return fmt.Errorf("%w: argon2id cost exceeds the maximum of t=%d m=%d KiB p=%d",
				ErrInvalidKDFParams, MaxArgon2Time, MaxArgon2Memory, MaxArgon2Threads)
		}
	default:
		return fmt.Errorf("%w: unknown kdf %q", ErrInvalidKDFParams, p.Name)
	}
	return nil
}

// ValidateKeyContext checks the salt length and the KDF parameters.
func ValidateKeyContext(kc models.KeyContext) error {
	if len(kc.Salt) < MinSaltSize || len(kc.Salt) > MaxSaltSize {
		return fmt.Errorf("%w: got %d bytes, want %d..%d", ErrInvalidSalt, len(kc.Salt), MinSaltSize, MaxSaltSize)
	}
	return ValidateKDFParams(kc.KDF)
}

// keyDeriver is the private implementation of [KeyDeriver]. It has no
// state: every parameter comes from the key context of the call.
type keyDeriver struct{}

// NewKeyDeriver constructs a [KeyDeriver] supporting PBKDF2-HMAC-SHA256 and
// Argon2id.
func NewKeyDeriver() KeyDeriver {
	return &keyDeriver{}
}

// Derive implements [KeyDeriver].
func (d *keyDeriver) Derive(secret *Secret, kc models.KeyContext) (*DerivedKey, error) {
	if !secret.Alive() {
		return nil, ErrWeakSecret
	}
	if err := ValidateKeyContext(kc); err != nil {
		return nil, err
	}

	var raw []byte
	switch kc.KDF.Name {
	case models.KDFPBKDF2:
		raw = pbkdf2.Key(secret.Bytes(), kc.Salt, int(kc.KDF.Iterations), KeySize, sha256.New)
	case models.KDFArgon2id:
		raw = argon2.IDKey(secret.Bytes(), kc.Salt, kc.KDF.Iterations, kc.KDF.Memory, kc.KDF.Threads, KeySize)
	}
	return NewDerivedKey(raw, kc)
}

// DeriveContext implements [KeyDeriver]. The derivation itself is not
// interruptible, so it runs on a private copy of the secret in a separate
// goroutine; the caller may destroy its own secret as soon as this returns.
func (d *keyDeriver) DeriveContext(ctx context.Context, secret *Secret, kc models.KeyContext) (*DerivedKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	own, err := secret.Clone()
	if err != nil {
		return nil, err
	}

	type result struct {
		key *DerivedKey
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer own.Destroy()
		key, err := d.Derive(own, kc)
		done <- result{key: key, err: err}
	}()

	select {
	case r := <-done:
		return r.key, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.key != nil {
				r.key.Destroy()
			}
		}()
		return nil, ctx.Err()
	}
}
