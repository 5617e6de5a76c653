package crypto

import (
	"bytes"
	"errors"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestEngine_RoundTrip(t *testing.T) {
	key := mustDerive(t, "correct-horse-battery", testContext(0xAA))
	engine := NewEngine()
	plaintext := []byte("Today I felt proud of finishing the draft.")
	aad := []byte("header")

	sealed, err := engine.Encrypt(key, plaintext, aad)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if len(sealed.IV) != IVSize {
		t.Fatalf("IV length = %d, want %d", len(sealed.IV), IVSize)
	}
	if len(sealed.Tag) != TagSize {
		t.Fatalf("tag length = %d, want %d", len(sealed.Tag), TagSize)
	}
	if len(sealed.Ciphertext) != len(plaintext) {
		t.Fatalf("ciphertext length = %d, want %d", len(sealed.Ciphertext), len(plaintext))
	}
	if bytes.Contains(sealed.Ciphertext, []byte("proud")) {
		t.Fatalf("ciphertext leaks plaintext")
	}

	got, err := engine.Decrypt(key, sealed, aad)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("plaintext mismatch: got %q", got)
	}
}

func TestEngine_EmptyPlaintext(t *testing.T) {
	key := mustDerive(t, "pw", testContext(1))
	engine := NewEngine()

	sealed, err := engine.Encrypt(key, nil, nil)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if len(sealed.Ciphertext) != 0 || len(sealed.Tag) != TagSize {
		t.Fatalf("unexpected sealed layout: ct=%d tag=%d", len(sealed.Ciphertext), len(sealed.Tag))
	}
	got, err := engine.Decrypt(key, sealed, nil)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty plaintext, got %d bytes", len(got))
	}
}

func TestEngine_FreshIVPerCall(t *testing.T) {
	key := mustDerive(t, "pw", testContext(2))
	engine := NewEngine()
	plaintext := []byte("same entry")

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		sealed, err := engine.Encrypt(key, plaintext, nil)
		if err != nil {
			t.Fatalf("Encrypt error: %v", err)
		}
		if _, dup := seen[string(sealed.IV)]; dup {
			t.Fatalf("IV repeated after %d encryptions", i)
		}
		seen[string(sealed.IV)] = struct{}{}
	}
}

func TestEngine_TamperDetection(t *testing.T) {
	key := mustDerive(t, "pw", testContext(3))
	engine := NewEngine()
	aad := []byte("aad")

	sealed, err := engine.Encrypt(key, []byte("secret diary entry"), aad)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	flip := func(b []byte, i int) []byte {
		out := append([]byte(nil), b...)
		out[i] ^= 0x01
		return out
	}

	cases := map[string]struct {
		sealed Sealed
		aad    []byte
	}{
		"iv":         {Sealed{IV: flip(sealed.IV, 0), Ciphertext: sealed.Ciphertext, Tag: sealed.Tag}, aad},
		"ciphertext": {Sealed{IV: sealed.IV, Ciphertext: flip(sealed.Ciphertext, 5), Tag: sealed.Tag}, aad},
		"tag":        {Sealed{IV: sealed.IV, Ciphertext: sealed.Ciphertext, Tag: flip(sealed.Tag, 15)}, aad},
		"aad":        {sealed, []byte("aae")},
		"short iv":   {Sealed{IV: sealed.IV[:8], Ciphertext: sealed.Ciphertext, Tag: sealed.Tag}, aad},
		"short tag":  {Sealed{IV: sealed.IV, Ciphertext: sealed.Ciphertext, Tag: sealed.Tag[:12]}, aad},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := engine.Decrypt(key, tc.sealed, tc.aad)
			if err != ErrAuthenticationFailure {
				t.Fatalf("error = %v, want exactly ErrAuthenticationFailure", err)
			}
			if got != nil {
				t.Fatalf("partial plaintext returned")
			}
		})
	}
}

func TestEngine_WrongKey(t *testing.T) {
	kc := testContext(4)
	right := mustDerive(t, "correct-horse-battery", kc)
	wrong := mustDerive(t, "wrong-horse", kc)
	engine := NewEngine()

	sealed, err := engine.Encrypt(right, []byte("entry"), nil)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if _, err := engine.Decrypt(wrong, sealed, nil); err != ErrAuthenticationFailure {
		t.Fatalf("error = %v, want ErrAuthenticationFailure", err)
	}
}

func TestEngine_DestroyedKey(t *testing.T) {
	key := mustDerive(t, "pw", testContext(6))
	engine := NewEngine()
	sealed, err := engine.Encrypt(key, []byte("entry"), nil)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	key.Destroy()

	if _, err := engine.Encrypt(key, []byte("entry"), nil); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Encrypt error = %v, want ErrInvalidKey", err)
	}
	if _, err := engine.Decrypt(key, sealed, nil); err != ErrAuthenticationFailure {
		t.Fatalf("Decrypt error = %v, want ErrAuthenticationFailure", err)
	}
}

func TestEngine_RandomFailure(t *testing.T) {
	key := mustDerive(t, "pw", testContext(7))
	engine := &aesGCMEngine{random: failingReader{}}

	if _, err := engine.Encrypt(key, []byte("entry"), nil); err == nil {
		t.Fatalf("expected error when the random source fails")
	}
}
