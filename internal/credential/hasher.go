package credential

import "golang.org/x/crypto/bcrypt"

// Hasher produces and verifies one-way hashes for passwords and PINs.
// Both factors go through the same salted, cost-parameterized bcrypt path.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher with the given bcrypt cost. Costs outside the
// bcrypt-supported range fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the salted hash of secret.
func (h *Hasher) Hash(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), h.cost)
}

// Compare reports whether candidate matches the stored hash. bcrypt
// re-derives the digest and compares it in constant time, so the result
// does not leak how much of the candidate matched.
func (h *Hasher) Compare(candidate string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(candidate)) == nil
}
