// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
)

const (
	// IVSize is the AES-GCM nonce length.
	IVSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
)

// Sealed is the output of [Engine.Encrypt]: the IV, the ciphertext (same
// length as the plaintext) and the detached authentication tag.
type Sealed struct {
	IV         []byte
	Ciphertext []byte
	Tag        []byte
}

// aesGCMEngine is the private implementation of [Engine].
type aesGCMEngine struct {
	random io.Reader
}

// NewEngine constructs an AES-256-GCM [Engine] that draws IVs from the OS
// CSPRNG.
func NewEngine() Engine {
	return &aesGCMEngine{random: rand.Reader}
}

// Encrypt implements [Engine]. A new 12-byte IV is read for every call and
// is never derived from the plaintext or a counter.
func (e *aesGCMEngine) Encrypt(key *DerivedKey, plaintext, aad []byte) (Sealed, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return Sealed{}, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(e.random, iv); err != nil {
		return Sealed{}, err
	}

	out := gcm.Seal(nil, iv, plaintext, aad)
	split := len(out) - TagSize
	return Sealed{
		IV:         iv,
		Ciphertext: out[:split:split],
		Tag:        out[split:],
	}, nil
}

// Decrypt implements [Engine]. It never returns partial plaintext: any
// mismatch in key, IV, ciphertext, tag or aad is [ErrAuthenticationFailure].
func (e *aesGCMEngine) Decrypt(key *DerivedKey, sealed Sealed, aad []byte) ([]byte, error) {
	if len(sealed.IV) != IVSize || len(sealed.Tag) != TagSize {
		return nil, ErrAuthenticationFailure
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}

	combined := make([]byte, 0, len(sealed.Ciphertext)+TagSize)
	combined = append(combined, sealed.Ciphertext...)
	combined = append(combined, sealed.Tag...)

	plaintext, err := gcm.Open(nil, sealed.IV, combined, aad)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return plaintext, nil
}

func newGCM(key *DerivedKey) (cipher.AEAD, error) {
	raw := key.Bytes()
	if len(raw) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return cipher.NewGCM(block)
}
