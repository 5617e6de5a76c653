// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter talks to the envelope server.
//
// [ServerAdapter] is a remote [store.EnvelopeRepository]: the journal service
// uses it in place of the local database when the storage backend is
// "remote". Only serialized envelopes and their ids cross the wire.
//
// HTTP statuses are mapped by mapHTTPError to the store sentinels where one
// exists (404 to [store.ErrEnvelopeNotFound], 409 to
// [store.ErrEnvelopeAlreadyExists]) and to the errors in errors.go otherwise.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-journal-vault/internal/store"
)

// ServerAdapter is the envelope server seen as envelope storage.
type ServerAdapter interface {
	store.EnvelopeRepository

	// ServerVersion returns the version reported by GET /api/version.
	ServerVersion(ctx context.Context) (string, error)
}
