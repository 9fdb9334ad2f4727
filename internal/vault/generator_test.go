package vault

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateSecretEmptyCharset(t *testing.T) {
	_, err := GenerateSecret(GenerateOptions{Length: 16})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty character set, got %v", err)
	}
}

func TestGenerateSecretDefaultLength(t *testing.T) {
	got, err := GenerateSecret(GenerateOptions{Upper: true, Lower: true, Digits: true, Symbols: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != defaultGeneratedLength {
		t.Fatalf("expected default length %d, got %d", defaultGeneratedLength, len(got))
	}
}

func TestGenerateSecretCharsetMembership(t *testing.T) {
	got, err := GenerateSecret(GenerateOptions{Length: 64, Digits: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 64 {
		t.Fatalf("expected length 64, got %d", len(got))
	}
	for _, r := range got {
		if !strings.ContainsRune(digitChars, r) {
			t.Fatalf("character %q outside the selected classes", r)
		}
	}
}

func TestGenerateSecretDistinct(t *testing.T) {
	opts := GenerateOptions{Length: 32, Upper: true, Lower: true, Digits: true}
	first, err := GenerateSecret(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := GenerateSecret(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct generated secrets")
	}
}
