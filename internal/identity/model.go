package identity

import "time"

// User represents a registered vault owner. Email is the identity key,
// stored lower-cased and trimmed. Password and PIN hashes are independent
// bcrypt digests; the plaintext factors are never persisted.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	PINHash      []byte
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Credentials carries the two knowledge factors presented at registration
// and at the first login step.
type Credentials struct {
	Email    string
	Password string
	PIN      string
}

// Session is the outcome of a completed authentication: the user plus a
// signed session token.
type Session struct {
	User  User
	Token string
}
