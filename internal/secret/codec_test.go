package secret

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-master-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, plaintext := range []string{"p@ss", "", "a much longer secret with spaces and ünïcode"} {
		envelope, err := codec.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("encrypt %q: %v", plaintext, err)
		}
		got, err := codec.Decrypt(envelope)
		if err != nil {
			t.Fatalf("decrypt %q: %v", plaintext, err)
		}
		if got != plaintext {
			t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}
}

func TestEncryptFreshNonce(t *testing.T) {
	codec, err := NewCodec("test-master-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	first, err := codec.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := codec.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("expected distinct envelopes for repeated encryption")
	}
}

func TestDecryptMalformedEnvelope(t *testing.T) {
	codec, err := NewCodec("test-master-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, envelope := range [][]byte{nil, {}, {0x01, 0x02, 0x03}} {
		if _, err := codec.Decrypt(envelope); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("expected ErrDecrypt for %v, got %v", envelope, err)
		}
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	codec, err := NewCodec("test-master-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	envelope, err := codec.Encrypt("p@ss")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	envelope[len(envelope)-1] ^= 0xff

	if _, err := codec.Decrypt(envelope); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt for tampered envelope, got %v", err)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	codec, err := NewCodec("one-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	other, err := NewCodec("another-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	envelope, err := codec.Encrypt("p@ss")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := other.Decrypt(envelope); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt with wrong key, got %v", err)
	}
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec(""); err == nil {
		t.Fatalf("expected error for empty master secret")
	}
}
