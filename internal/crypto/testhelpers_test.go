package crypto

import (
	"bytes"
	"testing"

	"github.com/MKhiriev/go-journal-vault/models"
)

func testContext(fill byte) models.KeyContext {
	return models.KeyContext{
		Salt: bytes.Repeat([]byte{fill}, SaltSize),
		KDF:  PBKDF2Params(MinPBKDF2Iterations),
	}
}

func mustSecret(t *testing.T, s string) *Secret {
	t.Helper()
	sec, err := NewSecret(s)
	if err != nil {
		t.Fatalf("NewSecret(%q) error: %v", s, err)
	}
	t.Cleanup(sec.Destroy)
	return sec
}

func mustDerive(t *testing.T, s string, kc models.KeyContext) *DerivedKey {
	t.Helper()
	key, err := NewKeyDeriver().Derive(mustSecret(t, s), kc)
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}
	t.Cleanup(key.Destroy)
	return key
}
