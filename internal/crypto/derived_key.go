package crypto

import (
	"sync"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-journal-vault/models"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// DerivedKey is a 256-bit symmetric key together with the [models.KeyContext]
// it was derived under. The key bytes live in a memguard enclave-backed
// buffer and never appear in logs, errors or serialized output.
//
// Destroy zeroizes the key. It is safe to call more than once and from
// several goroutines; callers that use Bytes concurrently with Destroy must
// serialize the two themselves.
type DerivedKey struct {
	once sync.Once
	buf  *memguard.LockedBuffer
	kc   models.KeyContext
}

// NewDerivedKey takes ownership of raw, moving it into locked memory and
// wiping the source slice. It returns [ErrInvalidKey] for a wrong length.
func NewDerivedKey(raw []byte, kc models.KeyContext) (*DerivedKey, error) {
	if len(raw) != KeySize {
		memguard.WipeBytes(raw)
		return nil, ErrInvalidKey
	}
	return &DerivedKey{
		buf: memguard.NewBufferFromBytes(raw),
		kc:  cloneContext(kc),
	}, nil
}

// Bytes exposes the key for a single cryptographic call. The slice becomes
// invalid after Destroy and must not be stored.
func (k *DerivedKey) Bytes() []byte {
	if !k.Alive() {
		return nil
	}
	return k.buf.Bytes()
}

// Context returns a copy of the salt and KDF parameters behind this key.
func (k *DerivedKey) Context() models.KeyContext {
	if k == nil {
		return models.KeyContext{}
	}
	return cloneContext(k.kc)
}

// Alive reports whether the key has not been destroyed.
func (k *DerivedKey) Alive() bool {
	return k != nil && k.buf != nil && k.buf.IsAlive()
}

// Destroy wipes the key material.
func (k *DerivedKey) Destroy() {
	if k == nil || k.buf == nil {
		return
	}
	k.once.Do(k.buf.Destroy)
}

func cloneContext(kc models.KeyContext) models.KeyContext {
	out := kc
	out.Salt = append([]byte(nil), kc.Salt...)
	return out
}
