// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validPayload(t *testing.T) json.RawMessage {
	t.Helper()
	env := envelope.New(models.KeyContext{
		Salt: bytes.Repeat([]byte{1}, crypto.SaltSize),
		KDF:  crypto.PBKDF2Params(crypto.MinPBKDF2Iterations),
	})
	env.IV = bytes.Repeat([]byte{2}, crypto.IVSize)
	env.Ciphertext = []byte("ciphertext")
	env.AuthTag = bytes.Repeat([]byte{3}, crypto.TagSize)

	payload, err := envelope.Marshal(env)
	require.NoError(t, err)
	return payload
}

func validStoredEnvelope(t *testing.T) models.StoredEnvelope {
	return models.StoredEnvelope{
		ID:        "0192f0c4-7d1e-7000-8000-000000000001",
		JournalID: "personal",
		Payload:   validPayload(t),
	}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestNewEnvelopeValidator(t *testing.T) {
	require.NotNil(t, NewEnvelopeValidator(0))
}

func TestEnvelopeValidator_Validate_Dispatch(t *testing.T) {
	v := NewEnvelopeValidator(0)
	ctx := context.Background()
	env := validStoredEnvelope(t)

	assert.NoError(t, v.Validate(ctx, env))
	assert.NoError(t, v.Validate(ctx, &env))
	assert.ErrorIs(t, v.Validate(ctx, (*models.StoredEnvelope)(nil)), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(ctx, "not an envelope"), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(ctx, env, "unknown"), ErrUnknownField)
}

// ---------------------------------------------------------------------------
// Fields
// ---------------------------------------------------------------------------

func TestEnvelopeValidator_StoredEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int64
		mutate  func(e *models.StoredEnvelope)
		fields  []string
		wantErr error
	}{
		{name: "valid", mutate: func(*models.StoredEnvelope) {}},
		{name: "empty id is assigned later", mutate: func(e *models.StoredEnvelope) { e.ID = "" }},
		{name: "empty journal", mutate: func(e *models.StoredEnvelope) { e.JournalID = "" }, wantErr: ErrInvalidJournalID},
		{name: "journal with slash", mutate: func(e *models.StoredEnvelope) { e.JournalID = "a/b" }, wantErr: ErrInvalidJournalID},
		{name: "id with space", mutate: func(e *models.StoredEnvelope) { e.ID = "a b" }, wantErr: ErrInvalidEnvelopeID},
		{name: "no payload", mutate: func(e *models.StoredEnvelope) { e.Payload = nil }, wantErr: ErrEmptyEnvelope},
		{name: "too large", maxSize: 32, mutate: func(*models.StoredEnvelope) {}, wantErr: ErrEnvelopeTooLarge},
		{name: "not an envelope", mutate: func(e *models.StoredEnvelope) { e.Payload = json.RawMessage(`{"hello":1}`) }, wantErr: envelope.ErrMalformedEnvelope},
		{
			name:   "only journal checked",
			mutate: func(e *models.StoredEnvelope) { e.Payload = nil },
			fields: []string{FieldJournalID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validStoredEnvelope(t)
			tt.mutate(&env)

			err := NewEnvelopeValidator(tt.maxSize).Validate(context.Background(), env, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
