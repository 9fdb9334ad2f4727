package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	// ErrNotFound occurs when no code is outstanding for the identity,
	// either because none was issued or because it was already consumed,
	// expired, or swept.
	ErrNotFound = errors.New("code not found")

	// ErrExpired occurs when the outstanding code is past its expiry.
	// The record is deleted as a side effect.
	ErrExpired = errors.New("code expired")

	// ErrAttemptsExhausted occurs when the maximum number of failed
	// verifications has been reached. The record is deleted as a side effect.
	ErrAttemptsExhausted = errors.New("too many failed attempts")

	// ErrCodeMismatch occurs when the candidate does not match the stored
	// code. The record is retained for the remaining attempts.
	ErrCodeMismatch = errors.New("invalid code")
)

const (
	// CodeLength is the number of decimal digits in an issued code.
	CodeLength = 6
	// MaxAttempts is the number of failed verifications allowed per code.
	MaxAttempts = 5
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 10 * time.Minute
)

// Ledger issues and verifies one-time codes keyed by identity. At most one
// code is active per identity; issuing replaces any prior record, and a
// successful verification consumes the record.
type Ledger interface {
	Issue(ctx context.Context, identityKey string) (string, error)
	Verify(ctx context.Context, identityKey, candidate string) error
}

var codeSpace = big.NewInt(1_000_000)

// generateCode draws a uniform 6-digit code from crypto/rand, zero padded
// so every code has fixed length.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
