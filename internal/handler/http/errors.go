// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the request-scoping middleware. Callers can match
// against them with [errors.Is].
var (
	// ErrInvalidJournalID is returned when the {journalID} path segment is
	// empty, too long or contains characters outside [A-Za-z0-9._-].
	ErrInvalidJournalID = errors.New("invalid journal id")

	// ErrInvalidJSON is returned when a request body is not a valid
	// envelope record.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrContentHashMismatch is returned when the X-Content-SHA256 header
	// does not match the uploaded envelope bytes.
	ErrContentHashMismatch = errors.New("integrity check failed")
)
