package auth

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

func bcryptCost() int {
	if s := os.Getenv("BCRYPT_COST"); s != "" {
		if c, err := strconv.Atoi(s); err == nil && c >= bcrypt.MinCost && c <= bcrypt.MaxCost {
			return c
		}
	}
	return bcrypt.DefaultCost
}

// HashPassword hashes a plaintext password using bcrypt. The cost can be
// tuned with BCRYPT_COST.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost())
	return string(b), err
}

// CheckPassword compares a bcrypt hash with a candidate plaintext password.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}
