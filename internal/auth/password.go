package auth

import "golang.org/x/crypto/bcrypt"

// defaultBcryptCost balances login latency against brute-force resistance.
const defaultBcryptCost = 12

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher constructs a hasher; cost <= 0 selects the default.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost <= 0 {
		cost = defaultBcryptCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash derives a bcrypt hash from the password.
func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether the password matches the stored hash.
func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
