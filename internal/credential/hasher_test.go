package credential

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, secret := range []string{"secret1", "1234"} {
		hash, err := h.Hash(secret)
		if err != nil {
			t.Fatalf("hash %q: %v", secret, err)
		}
		if !h.Compare(secret, hash) {
			t.Fatalf("expected %q to match its own hash", secret)
		}
		if h.Compare(secret+"x", hash) {
			t.Fatalf("expected altered candidate to fail")
		}
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("expected distinct hashes for the same secret")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	h := NewHasher(1000)
	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash with clamped cost: %v", err)
	}
	if !h.Compare("secret1", hash) {
		t.Fatalf("expected match after cost fallback")
	}
}
