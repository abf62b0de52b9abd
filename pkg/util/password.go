package util

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost 12 keeps hashing around 250ms on current hardware, slow enough
// for credential stuffing to be impractical.
const bcryptCost = 12

// HashPassword returns the bcrypt hash of a plain text password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plain text password matches the hash.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
