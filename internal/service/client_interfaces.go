package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-journal-vault/models"
)

// JournalCryptoService is the only holder of key material on the client.
//
// A session moves Locked → Unlocking → Unlocked → Locked. Every entry
// operation requires Unlocked and fails with [ErrNotUnlocked] otherwise. Keys
// are destroyed on Lock, on idle timeout and when the secret changes.
type JournalCryptoService interface {
	// Enroll creates a new key profile for secret: a fresh salt, the
	// configured KDF parameters and a verifier envelope. The session is left
	// Unlocked with the new key.
	Enroll(ctx context.Context, secret string) (models.KeyProfile, error)

	// LoadProfile installs an existing profile. The session must be Locked.
	LoadProfile(profile models.KeyProfile) error

	// Profile returns the installed profile or [ErrNoProfile]. A profile
	// loaded without a verifier gains one after the session key first
	// authenticates an entry or a bundle.
	Profile() (models.KeyProfile, error)

	// Unlock derives the journal key from secret. With a verifier in the
	// profile a wrong secret fails here with [ErrUnlockFailure]; without one
	// the first failed decrypt re-locks the session. Cancelling ctx aborts
	// the derivation and leaves the session Locked.
	Unlock(ctx context.Context, secret string) error

	// UnlockWithRecovery regenerates the journal key from a recovery phrase.
	UnlockWithRecovery(ctx context.Context, phrase string) error

	// Lock destroys all keys. It waits for in-flight entry operations and
	// interrupts a running unlock.
	Lock()

	// LockIfIdle locks an Unlocked session that has not been used for
	// timeout and reports whether it did.
	LockIfIdle(timeout time.Duration) bool

	State() State

	EncryptEntry(ctx context.Context, plaintext string) (models.Envelope, error)
	DecryptEntry(ctx context.Context, env models.Envelope) (string, error)

	// ExportAll packs envelopes into a bundle authenticated with the
	// journal key.
	ExportAll(ctx context.Context, envelopes []models.Envelope) (models.Bundle, error)

	// ImportAll verifies the bundle MAC before looking at any entry and
	// returns [ErrBundleIntegrity] on mismatch. Entries that fail structural
	// validation are skipped and reported. When the session key has not yet
	// been verified a MAC mismatch locks the session and the error also
	// wraps [ErrUnlockFailure].
	ImportAll(ctx context.Context, bundle models.Bundle) (models.ImportResult, error)

	// EnrollRecovery mints a recovery phrase for the current key and stores
	// the record in the profile. The phrase is returned once.
	EnrollRecovery(ctx context.Context) (models.RecoveryEnrollment, error)

	// ChangeSecret re-encrypts envelopes under a key derived from newSecret
	// with a fresh salt. The new profile has no recovery record.
	ChangeSecret(ctx context.Context, newSecret string, envelopes []models.Envelope) (models.KeyProfile, []models.Envelope, error)
}

// JournalService ties the crypto session to storage for one journal.
type JournalService interface {
	// Enroll creates and persists the profile of a journal that has none.
	Enroll(ctx context.Context, secret string) (models.KeyProfile, error)
	// EnrollRecovery enrolls a recovery phrase and persists the profile.
	EnrollRecovery(ctx context.Context) (models.RecoveryEnrollment, error)
	// LoadProfile reads the persisted profile into the crypto session.
	LoadProfile(ctx context.Context) (models.KeyProfile, error)
	// SaveProfile persists the crypto session's current profile.
	SaveProfile(ctx context.Context) error

	Write(ctx context.Context, text string) (string, error)
	Read(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]models.EntrySummary, error)
	Delete(ctx context.Context, id string) error

	// ExportToFile writes every entry of the journal to a bundle file and
	// returns the number of entries exported.
	ExportToFile(ctx context.Context, path string) (int, error)
	// ImportFromFile stores the entries of a verified bundle file. Entries
	// already present are counted as duplicates.
	ImportFromFile(ctx context.Context, path string) (models.ImportReport, error)
	// RestoreProfileFromBundle creates the journal profile from a bundle on
	// a device that has none.
	RestoreProfileFromBundle(ctx context.Context, path string) (models.KeyProfile, error)

	// ChangeSecret re-encrypts every entry under newSecret. A bundle of the
	// old entries is written to backupPath first.
	ChangeSecret(ctx context.Context, newSecret, backupPath string) error
}

// SessionWatcher locks an idle session in the background.
type SessionWatcher interface {
	// Start checks the session periodically and locks it once it has been
	// idle for timeout. A previously running watcher is stopped first.
	Start(ctx context.Context, timeout time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}
