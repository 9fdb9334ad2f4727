package otp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "otp:v1:"
	// expiredGrace keeps a record addressable briefly past its expiry so a
	// late Verify can report ErrExpired instead of ErrNotFound. After the
	// grace window the Redis TTL reclaims the key.
	expiredGrace = time.Hour
)

// verifyScript performs the whole check-and-consume sequence inside Redis so
// concurrent verifications against the same identity cannot lose an attempt
// increment or double-consume a code.
var verifyScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
  return 'not_found'
end
local exp = tonumber(redis.call('HGET', KEYS[1], 'expires_at'))
if exp and tonumber(ARGV[2]) > exp then
  redis.call('DEL', KEYS[1])
  return 'expired'
end
local attempts = tonumber(redis.call('HGET', KEYS[1], 'attempts') or '0')
if attempts >= tonumber(ARGV[3]) then
  redis.call('DEL', KEYS[1])
  return 'exhausted'
end
if code ~= ARGV[1] then
  redis.call('HINCRBY', KEYS[1], 'attempts', 1)
  return 'mismatch'
end
redis.call('DEL', KEYS[1])
return 'ok'
`)

type redisLedger struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedis creates a ledger backed by Redis, letting multiple instances share
// one code store. Key TTLs bound the memory held by abandoned login attempts.
func NewRedis(client *redis.Client, ttl time.Duration) Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisLedger{client: client, ttl: ttl, now: time.Now}
}

func redisKey(identityKey string) string {
	return redisKeyPrefix + identityKey
}

// Issue writes a fresh record for the identity, replacing any prior one.
func (l *redisLedger) Issue(ctx context.Context, identityKey string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	key := redisKey(identityKey)
	expiresAt := l.now().Add(l.ttl).Unix()

	pipe := l.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "code", code, "attempts", 0, "expires_at", expiresAt)
	pipe.Expire(ctx, key, l.ttl+expiredGrace)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Verify runs the atomic check-and-consume script and maps its outcome to
// the ledger's error taxonomy.
func (l *redisLedger) Verify(ctx context.Context, identityKey, candidate string) error {
	res, err := verifyScript.Run(ctx, l.client,
		[]string{redisKey(identityKey)},
		candidate,
		strconv.FormatInt(l.now().Unix(), 10),
		strconv.Itoa(MaxAttempts),
	).Text()
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}

	switch res {
	case "ok":
		return nil
	case "not_found":
		return ErrNotFound
	case "expired":
		return ErrExpired
	case "exhausted":
		return ErrAttemptsExhausted
	case "mismatch":
		return ErrCodeMismatch
	default:
		return fmt.Errorf("verify code: unexpected result %q", res)
	}
}
