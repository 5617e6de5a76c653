// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package envelope is the wire codec for encrypted journal records. It turns
// [models.Envelope] values into self-describing JSON and back, and validates
// every structural property before a caller hands the result to the crypto
// engine. The codec never sees keys or plaintext.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/models"
)

var b64 = base64.StdEncoding.Strict()

// wireKDF and wireEnvelope mirror the JSON layout with pointer fields so
// that a missing field can be told apart from a zero value.
type wireKDF struct {
	Name       *string `json:"name"`
	Hash       *string `json:"hash,omitempty"`
	Iterations *uint32 `json:"iterations"`
	Memory     *uint32 `json:"memory,omitempty"`
	Threads    *uint8  `json:"threads,omitempty"`
}

type wireEnvelope struct {
	Version     *int     `json:"version"`
	AlgorithmID *string  `json:"algorithmId"`
	KDF         *wireKDF `json:"kdf"`
	Salt        *string  `json:"salt"`
	IV          *string  `json:"iv"`
	Ciphertext  *string  `json:"ciphertext"`
	AuthTag     *string  `json:"authTag"`
}

// Marshal validates env and serializes it. Binary fields are standard
// base64 with padding.
func Marshal(env models.Envelope) ([]byte, error) {
	if err := Validate(env); err != nil {
		return nil, err
	}
	return json.Marshal(toWire(env))
}

// Parse decodes and validates a serialized envelope. Every failure wraps
// [ErrMalformedEnvelope]; an unknown version or algorithm additionally
// wraps [ErrUnsupportedVersion] or [ErrUnsupportedAlgorithm].
func Parse(data []byte) (models.Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Envelope{}, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	// Version first: a future layout may change every other field.
	if w.Version == nil {
		return models.Envelope{}, missing("version")
	}
	if *w.Version != models.EnvelopeVersion {
		return models.Envelope{}, fmt.Errorf("%w: %w: %d", ErrMalformedEnvelope, ErrUnsupportedVersion, *w.Version)
	}

	env, err := fromWire(w)
	if err != nil {
		return models.Envelope{}, err
	}
	if err := Validate(env); err != nil {
		return models.Envelope{}, err
	}
	return env, nil
}

// Validate checks an in-memory envelope: version, algorithm, KDF
// parameters, salt bounds, IV and tag lengths.
func Validate(env models.Envelope) error {
	if env.Version != models.EnvelopeVersion {
		return fmt.Errorf("%w: %w: %d", ErrMalformedEnvelope, ErrUnsupportedVersion, env.Version)
	}
	if env.AlgorithmID != models.AlgorithmAES256GCM {
		return fmt.Errorf("%w: %w: %q", ErrMalformedEnvelope, ErrUnsupportedAlgorithm, env.AlgorithmID)
	}
	if err := crypto.ValidateKeyContext(env.KeyContext()); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if len(env.IV) != crypto.IVSize {
		return fmt.Errorf("%w: iv is %d bytes, want %d", ErrMalformedEnvelope, len(env.IV), crypto.IVSize)
	}
	if len(env.AuthTag) != crypto.TagSize {
		return fmt.Errorf("%w: authTag is %d bytes, want %d", ErrMalformedEnvelope, len(env.AuthTag), crypto.TagSize)
	}
	return nil
}

func toWire(env models.Envelope) wireEnvelope {
	kdf := &wireKDF{
		Name:       &env.KDF.Name,
		Iterations: &env.KDF.Iterations,
	}
	if env.KDF.Hash != "" {
		kdf.Hash = &env.KDF.Hash
	}
	if env.KDF.Memory != 0 {
		kdf.Memory = &env.KDF.Memory
	}
	if env.KDF.Threads != 0 {
		kdf.Threads = &env.KDF.Threads
	}

	salt := b64.EncodeToString(env.Salt)
	iv := b64.EncodeToString(env.IV)
	ct := b64.EncodeToString(env.Ciphertext)
	tag := b64.EncodeToString(env.AuthTag)
	return wireEnvelope{
		Version:     &env.Version,
		AlgorithmID: &env.AlgorithmID,
		KDF:         kdf,
		Salt:        &salt,
		IV:          &iv,
		Ciphertext:  &ct,
		AuthTag:     &tag,
	}
}

func fromWire(w wireEnvelope) (models.Envelope, error) {
	env := models.Envelope{Version: *w.Version}

	if w.AlgorithmID == nil {
		return env, missing("algorithmId")
	}
	env.AlgorithmID = *w.AlgorithmID

	if w.KDF == nil {
		return env, missing("kdf")
	}
	if w.KDF.Name == nil {
		return env, missing("kdf.name")
	}
	if w.KDF.Iterations == nil {
		return env, missing("kdf.iterations")
	}
	env.KDF = models.KDFParams{Name: *w.KDF.Name, Iterations: *w.KDF.Iterations}
	if w.KDF.Hash != nil {
		env.KDF.Hash = *w.KDF.Hash
	}
	if w.KDF.Memory != nil {
		env.KDF.Memory = *w.KDF.Memory
	}
	if w.KDF.Threads != nil {
		env.KDF.Threads = *w.KDF.Threads
	}

	var err error
	if env.Salt, err = decodeField("salt", w.Salt); err != nil {
		return env, err
	}
	if env.IV, err = decodeField("iv", w.IV); err != nil {
		return env, err
	}
	if env.Ciphertext, err = decodeField("ciphertext", w.Ciphertext); err != nil {
		return env, err
	}
	if env.AuthTag, err = decodeField("authTag", w.AuthTag); err != nil {
		return env, err
	}
	return env, nil
}

func decodeField(name string, v *string) ([]byte, error) {
	if v == nil {
		return nil, missing(name)
	}
	b, err := b64.DecodeString(*v)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q is not valid base64", ErrMalformedEnvelope, name)
	}
	return b, nil
}

func missing(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrMalformedEnvelope, name)
}
