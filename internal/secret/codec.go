package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// keySize matches AES-256.
	keySize = 32
	// hkdfInfo binds derived keys to this usage so the same master secret
	// could serve other purposes without key reuse.
	hkdfInfo = "keyhaven:vault-entry:v1"
)

// ErrDecrypt indicates a malformed envelope or a failed authentication tag.
// Callers must treat it as a data integrity fault for the affected entry.
var ErrDecrypt = errors.New("decryption failed")

// Codec encrypts and decrypts vault entry secrets with AES-256-GCM. The key
// is derived once from the configured master secret and held only in memory.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives the symmetric key from masterSecret via HKDF-SHA256 and
// prepares the AEAD cipher.
func NewCodec(masterSecret string) (*Codec, error) {
	if masterSecret == "" {
		return nil, errors.New("encryption secret is required")
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, []byte(masterSecret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Encrypt seals plaintext into a self-describing envelope of the form
// nonce || ciphertext. A fresh random nonce is drawn per call, so equal
// plaintexts never produce equal envelopes.
func (c *Codec) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens an envelope produced by Encrypt. It fails with ErrDecrypt
// when the envelope is truncated or the authentication tag does not verify.
func (c *Codec) Decrypt(envelope []byte) (string, error) {
	minLen := c.aead.NonceSize() + c.aead.Overhead()
	if len(envelope) < minLen {
		return "", fmt.Errorf("%w: envelope too short", ErrDecrypt)
	}

	nonce, ciphertext := envelope[:c.aead.NonceSize()], envelope[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}
