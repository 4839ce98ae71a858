package service

import "golang.org/x/crypto/bcrypt"

const DefaultBcryptCost = 10

// HashPassword derives a salted bcrypt digest from the plaintext. The salt
// is embedded in the digest, so no separate salt storage is needed.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
// Any internal bcrypt error, including a malformed digest, collapses to
// false so callers only ever observe match or no-match.
func CheckPassword(password string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
