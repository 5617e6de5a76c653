// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "bytes"

const (
	// EnvelopeVersion is the only envelope layout this build writes and reads.
	EnvelopeVersion = 1

	// AlgorithmAES256GCM identifies AES-256 in Galois/Counter Mode with a
	// 12-byte IV and a 16-byte authentication tag.
	AlgorithmAES256GCM = "AES-256-GCM"

	// KDFPBKDF2 is PBKDF2 (RFC 8018). The only supported hash is SHA-256.
	KDFPBKDF2 = "PBKDF2"
	// KDFArgon2id is Argon2id (RFC 9106).
	KDFArgon2id = "Argon2id"

	// HashSHA256 is the PRF hash used with PBKDF2.
	HashSHA256 = "SHA-256"
)

// KDFParams pins the key-derivation function and its cost parameters.
// They are stored inside every envelope so that raising the default cost
// never changes the key needed for data that already exists.
type KDFParams struct {
	// Name is the KDF identifier: [KDFPBKDF2] or [KDFArgon2id].
	Name string `json:"name"`

	// Hash is the PRF hash for PBKDF2. Empty for Argon2id.
	Hash string `json:"hash,omitempty"`

	// Iterations is the PBKDF2 iteration count or the Argon2id time cost.
	Iterations uint32 `json:"iterations"`

	// Memory is the Argon2id memory cost in KiB. Zero for PBKDF2.
	Memory uint32 `json:"memory,omitempty"`

	// Threads is the Argon2id parallelism. Zero for PBKDF2.
	Threads uint8 `json:"threads,omitempty"`
}

// KeyContext identifies a derived key without containing it: the salt and
// the pinned KDF parameters. Two keys derived from the same secret are equal
// exactly when their contexts are equal.
type KeyContext struct {
	Salt []byte    `json:"salt"`
	KDF  KDFParams `json:"kdf"`
}

// Equal reports whether both contexts describe the same derivation.
func (k KeyContext) Equal(other KeyContext) bool {
	return k.KDF == other.KDF && bytes.Equal(k.Salt, other.Salt)
}

// Clone returns a copy that shares no memory with k.
func (k KeyContext) Clone() KeyContext {
	k.Salt = append([]byte(nil), k.Salt...)
	return k
}

// Envelope is the durable, immutable unit of encrypted journal content.
// It is self-describing: Version and AlgorithmID select the decrypt path,
// KDF and Salt describe how to re-derive the key from the user's secret.
//
// Nothing in an Envelope is secret. The storage backend may hold it freely.
type Envelope struct {
	Version     int       `json:"version"`
	AlgorithmID string    `json:"algorithmId"`
	KDF         KDFParams `json:"kdf"`
	Salt        []byte    `json:"salt"`
	IV          []byte    `json:"iv"`
	Ciphertext  []byte    `json:"ciphertext"`
	AuthTag     []byte    `json:"authTag"`
}

// KeyContext returns the context of the key that opens this envelope.
func (e Envelope) KeyContext() KeyContext {
	return KeyContext{Salt: e.Salt, KDF: e.KDF}
}

// Clone returns a copy that shares no memory with e.
func (e Envelope) Clone() Envelope {
	e.Salt = append([]byte(nil), e.Salt...)
	e.IV = append([]byte(nil), e.IV...)
	e.Ciphertext = append([]byte(nil), e.Ciphertext...)
	e.AuthTag = append([]byte(nil), e.AuthTag...)
	return e
}
