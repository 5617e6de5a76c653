// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfoPrefix domain-separates MAC subkeys from the encryption key.
const hkdfInfoPrefix = "journal-vault/mac/"

// keyChain is the private implementation of [KeyChain].
type keyChain struct {
	random io.Reader
}

// NewKeyChain constructs a [KeyChain] backed by the OS CSPRNG.
func NewKeyChain() KeyChain {
	return &keyChain{random: rand.Reader}
}

// GenerateSalt implements [KeyChain]. It reads [SaltSize] random bytes and
// returns an error if the random read fails.
func (k *keyChain) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(k.random, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// MAC implements [KeyChain]. The subkey is HKDF-SHA256(key, salt=nil,
// info=prefix‖purpose), so a bundle MAC never reuses the AES key directly.
// Each part is prefixed with its 8-byte big-endian length, which keeps
// ("ab","c") and ("a","bc") distinct.
func (k *keyChain) MAC(key *DerivedKey, purpose string, parts ...[]byte) ([]byte, error) {
	sub, err := subKey(key, purpose)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(sub)

	h := hmac.New(sha256.New, sub)
	var lenBuf [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}
	return h.Sum(nil), nil
}

// VerifyMAC implements [KeyChain].
func (k *keyChain) VerifyMAC(key *DerivedKey, purpose string, mac []byte, parts ...[]byte) bool {
	expected, err := k.MAC(key, purpose, parts...)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, mac)
}

func subKey(key *DerivedKey, purpose string) ([]byte, error) {
	raw := key.Bytes()
	if len(raw) != KeySize {
		return nil, ErrInvalidKey
	}
	sub := make([]byte, KeySize)
	r := hkdf.New(sha256.New, raw, nil, []byte(hkdfInfoPrefix+purpose))
	if _, err := io.ReadFull(r, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
