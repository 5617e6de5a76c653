package crypto

import (
	"context"

	"github.com/MKhiriev/go-journal-vault/models"
)

// KeyDeriver turns a user secret into a [DerivedKey].
//
// Derivation is a pure function of (secret, salt, KDF name, cost parameters):
// the same inputs always give the same key. Parameters come from the
// [models.KeyContext] the caller passes in, never from global configuration,
// so keys of existing envelopes stay stable when defaults change.
type KeyDeriver interface {
	// Derive computes the key synchronously. It returns [ErrWeakSecret] for a
	// destroyed or empty secret, [ErrInvalidSalt] or [ErrInvalidKDFParams]
	// for an unusable context.
	Derive(secret *Secret, kc models.KeyContext) (*DerivedKey, error)

	// DeriveContext is Derive that can be abandoned through ctx. On
	// cancellation it returns ctx.Err(); the key computed in the background
	// is destroyed as soon as it is ready and is never reachable.
	DeriveContext(ctx context.Context, secret *Secret, kc models.KeyContext) (*DerivedKey, error)
}

// Engine performs authenticated encryption with a [DerivedKey].
type Engine interface {
	// Encrypt seals plaintext with a fresh random IV. aad is authenticated
	// but not encrypted and may be nil.
	Encrypt(key *DerivedKey, plaintext, aad []byte) (Sealed, error)

	// Decrypt opens a sealed value. Every failure is [ErrAuthenticationFailure].
	Decrypt(key *DerivedKey, sealed Sealed, aad []byte) ([]byte, error)
}

// KeyChain generates non-secret random material and keyed integrity values.
type KeyChain interface {
	// GenerateSalt returns [SaltSize] random bytes from the OS CSPRNG.
	GenerateSalt() ([]byte, error)

	// MAC computes HMAC-SHA256 over the length-prefixed parts with a subkey
	// derived from key for the given purpose.
	MAC(key *DerivedKey, purpose string, parts ...[]byte) ([]byte, error)

	// VerifyMAC recomputes the MAC and compares it in constant time.
	VerifyMAC(key *DerivedKey, purpose string, mac []byte, parts ...[]byte) bool
}
