package util

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost for stored credentials. Login is on the hot path for every
// site user, so this stays below the library default.
const passwordHashCost = 8

// HashPassword turns a plaintext password into a bcrypt hash for the
// users table.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword verifies a login attempt against the stored hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
