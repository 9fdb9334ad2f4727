package vault

import "time"

// DefaultCategory is assigned when an entry is created without one.
const DefaultCategory = "General"

// Entry is a stored credential. SecretEnvelope holds the nonce-prefixed
// ciphertext produced by the codec and is never serialized outward.
type Entry struct {
	ID             string
	OwnerID        string
	Title          string
	Username       string
	SecretEnvelope []byte
	URL            string
	Notes          string
	Category       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// View is the decrypted representation returned to callers. The plaintext
// secret exists only in this transient form.
type View struct {
	ID        string
	Title     string
	Username  string
	Secret    string
	URL       string
	Notes     string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
