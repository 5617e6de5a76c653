// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

// Sentinel errors of the crypto layer. Callers match them with [errors.Is].
var (
	// ErrWeakSecret is returned when a secret is empty or consists only of
	// whitespace after normalization. The caller should re-prompt.
	ErrWeakSecret = errors.New("secret is empty or degenerate")

	// ErrInvalidKDFParams is returned for an unknown KDF, an unsupported hash
	// or a cost below the accepted minimum.
	ErrInvalidKDFParams = errors.New("invalid key derivation parameters")

	// ErrInvalidSalt is returned when a salt is shorter than [MinSaltSize]
	// or longer than [MaxSaltSize].
	ErrInvalidSalt = errors.New("invalid salt length")

	// ErrAuthenticationFailure is the single failure of [Engine.Decrypt].
	// Wrong key, tampered IV, ciphertext or tag all produce exactly this
	// value with no wrapped cause.
	ErrAuthenticationFailure = errors.New("authentication failed")

	// ErrInvalidKey is returned by encryption when the key is missing,
	// destroyed or has the wrong length.
	ErrInvalidKey = errors.New("invalid or destroyed key")
)
