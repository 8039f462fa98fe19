package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt with an injected cost so hashing strength is a
// deployment decision rather than ambient state.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher builds a hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the library default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the plaintext.
func (h *PasswordHasher) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
}

// Verify reports whether the plaintext matches the stored hash. Malformed
// stored hashes verify as false rather than erroring.
func (h *PasswordHasher) Verify(plaintext string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}
