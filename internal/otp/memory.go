package otp

import (
	"context"
	"sync"
	"time"
)

type record struct {
	code      string
	expiresAt time.Time
	attempts  int
}

type memoryLedger struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]*record
	now     func() time.Time
}

// NewMemory creates a process-local ledger backed by a mutex-protected map.
// Suitable for single-instance deployments and tests; per-identity mutations
// serialize under the lock.
func NewMemory(ttl time.Duration) Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryLedger{
		ttl:     ttl,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Issue generates a fresh code for the identity, replacing any outstanding
// record. Expired records for other identities are swept opportunistically
// to bound memory.
func (l *memoryLedger) Issue(_ context.Context, identityKey string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, rec := range l.records {
		if now.After(rec.expiresAt) {
			delete(l.records, key)
		}
	}

	l.records[identityKey] = &record{
		code:      code,
		expiresAt: now.Add(l.ttl),
	}
	return code, nil
}

// Verify checks candidate against the outstanding record. Codes are single
// use: a match deletes the record, as do expiry and attempt exhaustion.
func (l *memoryLedger) Verify(_ context.Context, identityKey, candidate string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[identityKey]
	if !ok {
		return ErrNotFound
	}

	if l.now().After(rec.expiresAt) {
		delete(l.records, identityKey)
		return ErrExpired
	}

	if rec.attempts >= MaxAttempts {
		delete(l.records, identityKey)
		return ErrAttemptsExhausted
	}

	if rec.code != candidate {
		rec.attempts++
		return ErrCodeMismatch
	}

	delete(l.records, identityKey)
	return nil
}
