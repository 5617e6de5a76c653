package crypto

import (
	"bytes"
	"testing"
)

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	kc := NewKeyChain()

	s1, err := kc.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	s2, err := kc.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}

	if len(s1) != SaltSize || len(s2) != SaltSize {
		t.Fatalf("salt lengths = %d, %d, want %d", len(s1), len(s2), SaltSize)
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestGenerateSalt_RandomFailure(t *testing.T) {
	kc := &keyChain{random: failingReader{}}
	if _, err := kc.GenerateSalt(); err == nil {
		t.Fatalf("expected error when the random source fails")
	}
}

func TestMAC_VerifyRoundTrip(t *testing.T) {
	key := mustDerive(t, "pw", testContext(0x10))
	kc := NewKeyChain()

	mac, err := kc.MAC(key, "bundle", []byte("a"), []byte("bc"))
	if err != nil {
		t.Fatalf("MAC error: %v", err)
	}
	if len(mac) != 32 {
		t.Fatalf("MAC length = %d, want 32", len(mac))
	}
	if !kc.VerifyMAC(key, "bundle", mac, []byte("a"), []byte("bc")) {
		t.Fatalf("VerifyMAC rejected a valid MAC")
	}
}

func TestMAC_PartsAreFramed(t *testing.T) {
	key := mustDerive(t, "pw", testContext(0x11))
	kc := NewKeyChain()

	mac, err := kc.MAC(key, "bundle", []byte("ab"), []byte("c"))
	if err != nil {
		t.Fatalf("MAC error: %v", err)
	}
	if kc.VerifyMAC(key, "bundle", mac, []byte("a"), []byte("bc")) {
		t.Fatalf("MAC does not separate part boundaries")
	}
}

func TestMAC_PurposeAndKeySeparation(t *testing.T) {
	key := mustDerive(t, "pw", testContext(0x12))
	other := mustDerive(t, "other", testContext(0x12))
	kc := NewKeyChain()

	mac, err := kc.MAC(key, "bundle", []byte("data"))
	if err != nil {
		t.Fatalf("MAC error: %v", err)
	}
	if kc.VerifyMAC(key, "verifier", mac, []byte("data")) {
		t.Fatalf("MAC valid under a different purpose")
	}
	if kc.VerifyMAC(other, "bundle", mac, []byte("data")) {
		t.Fatalf("MAC valid under a different key")
	}
	if kc.VerifyMAC(key, "bundle", mac, []byte("datb")) {
		t.Fatalf("MAC valid for different data")
	}
}

func TestMAC_DestroyedKey(t *testing.T) {
	key := mustDerive(t, "pw", testContext(0x13))
	key.Destroy()

	if _, err := NewKeyChain().MAC(key, "bundle", []byte("x")); err != ErrInvalidKey {
		t.Fatalf("error = %v, want ErrInvalidKey", err)
	}
}
