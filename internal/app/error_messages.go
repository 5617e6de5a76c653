// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app holds the user-facing wording of the journal vault CLI.
//
// All Msg* constants are shown on the terminal in place of raw error text,
// so they never carry entry content, secrets or key material. MessageFor
// picks the message for an error returned by the service layer.
package app

import (
	"errors"

	"github.com/MKhiriev/go-journal-vault/internal/adapter"
	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/internal/recovery"
	"github.com/MKhiriev/go-journal-vault/internal/service"
	"github.com/MKhiriev/go-journal-vault/internal/store"
)

const (
	// MsgWrongSecret is shown when the secret does not open the journal.
	MsgWrongSecret = "wrong secret"

	// MsgWeakSecret is shown for an empty or whitespace-only secret.
	MsgWeakSecret = "secret must not be empty"

	// MsgSecretsDoNotMatch is shown when the confirmation differs.
	MsgSecretsDoNotMatch = "secrets do not match"

	// MsgNotEnrolled is shown before `init` has been run for the journal.
	MsgNotEnrolled = "journal is not set up yet, run `journal init` first"

	// MsgAlreadyEnrolled is shown when `init` runs on an enrolled journal.
	MsgAlreadyEnrolled = "journal is already set up"

	// MsgSessionBusy is shown when unlocking a session that is not locked.
	MsgSessionBusy = "journal is already unlocked"

	// MsgLocked is shown when an operation needs an unlocked session.
	MsgLocked = "journal is locked"

	// MsgEntryCorrupted is shown when an entry fails authentication. It
	// does not distinguish a modified entry from one sealed with another key.
	MsgEntryCorrupted = "entry could not be decrypted: it was modified or belongs to another key"

	// MsgEntryMalformed is shown when stored bytes are not an envelope.
	MsgEntryMalformed = "entry is not a valid encrypted envelope"

	// MsgEntryNotFound is shown for an unknown entry id.
	MsgEntryNotFound = "entry not found"

	// MsgBundleCorrupted is shown when a backup file fails its integrity
	// check. Nothing from it has been imported.
	MsgBundleCorrupted = "backup file is damaged or was modified; nothing was imported"

	// MsgRecoveryFailed is shown for a wrong or ill-formed recovery phrase.
	MsgRecoveryFailed = "recovery phrase is not valid for this journal"

	// MsgRecoveryNotEnrolled is shown when `recover` is used on a journal
	// without a recovery phrase.
	MsgRecoveryNotEnrolled = "no recovery phrase was set up for this journal"

	// MsgServerUnavailable is shown when the envelope server fails.
	MsgServerUnavailable = "envelope server is unavailable, try again later"

	// MsgServerRejected is shown when the envelope server refuses a request.
	MsgServerRejected = "envelope server rejected the request"

	// MsgInternalError is shown for anything not listed above. Details go to
	// the client log.
	MsgInternalError = "unexpected error, see the client log for details"
)

// ErrSecretsDoNotMatch is returned by the CLI when a confirmation prompt
// differs from the first answer.
var ErrSecretsDoNotMatch = errors.New(MsgSecretsDoNotMatch)

// messages is checked in order: wrapped sentinels must follow the ones that
// wrap them.
var messages = []struct {
	target error
	msg    string
}{
	{service.ErrUnlockFailure, MsgWrongSecret},
	{service.ErrNotUnlocked, MsgLocked},
	{service.ErrSessionBusy, MsgSessionBusy},
	{service.ErrNoProfile, MsgNotEnrolled},
	{service.ErrProfileExists, MsgAlreadyEnrolled},
	{service.ErrBundleIntegrity, MsgBundleCorrupted},
	{service.ErrRecoveryNotEnrolled, MsgRecoveryNotEnrolled},
	{recovery.ErrRecoveryFailure, MsgRecoveryFailed},
	{crypto.ErrWeakSecret, MsgWeakSecret},
	{crypto.ErrAuthenticationFailure, MsgEntryCorrupted},
	{envelope.ErrMalformedEnvelope, MsgEntryMalformed},
	{store.ErrEnvelopeNotFound, MsgEntryNotFound},
	{ErrSecretsDoNotMatch, MsgSecretsDoNotMatch},
	{adapter.ErrBadRequest, MsgServerRejected},
	{adapter.ErrPayloadTooLarge, MsgServerRejected},
	{adapter.ErrInternalServerError, MsgServerUnavailable},
	{adapter.ErrBadGateway, MsgServerUnavailable},
}

// MessageFor returns the terminal message for err.
func MessageFor(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	return MsgInternalError
}
