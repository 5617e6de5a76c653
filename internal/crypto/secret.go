package crypto

import (
	"unicode"
	"unicode/utf8"

	"github.com/awnumar/memguard"
	"golang.org/x/text/unicode/norm"
)

// Secret holds a user passphrase or recovery phrase in locked, non-swappable
// memory. The text is NFC-normalized on construction so that visually equal
// input typed on different keyboards derives the same key.
//
// A Secret must be destroyed by its owner. Destroy is idempotent.
type Secret struct {
	buf *memguard.LockedBuffer
}

// NewSecret normalizes s and moves it into locked memory. It returns
// [ErrWeakSecret] when nothing but whitespace remains.
//
// Go strings are immutable, so the caller's copy of s cannot be wiped here.
// Callers that read from a terminal should prefer [NewSecretFromBytes].
func NewSecret(s string) (*Secret, error) {
	return NewSecretFromBytes([]byte(s))
}

// NewSecretFromBytes is [NewSecret] for a byte slice. The slice is wiped
// before returning, whether or not construction succeeds.
func NewSecretFromBytes(b []byte) (*Secret, error) {
	defer memguard.WipeBytes(b)

	if isBlank(b) {
		return nil, ErrWeakSecret
	}
	normalized := norm.NFC.Bytes(b)
	// NewBufferFromBytes wipes normalized.
	return &Secret{buf: memguard.NewBufferFromBytes(normalized)}, nil
}

// Bytes returns the normalized secret. The slice points into locked memory
// and becomes invalid after Destroy, so it must not be retained.
func (s *Secret) Bytes() []byte {
	if !s.Alive() {
		return nil
	}
	return s.buf.Bytes()
}

// Alive reports whether the secret still holds data.
func (s *Secret) Alive() bool {
	return s != nil && s.buf != nil && s.buf.IsAlive()
}

// Clone copies the secret into a new locked buffer with its own lifetime.
func (s *Secret) Clone() (*Secret, error) {
	if !s.Alive() {
		return nil, ErrWeakSecret
	}
	dup := memguard.NewBuffer(s.buf.Size())
	dup.Copy(s.buf.Bytes())
	dup.Freeze()
	return &Secret{buf: dup}, nil
}

// Destroy wipes the secret.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
}

// isBlank decodes b in place so the secret is never copied to the heap.
func isBlank(b []byte) bool {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if !unicode.IsSpace(r) {
			return false
		}
		i += size
	}
	return true
}
