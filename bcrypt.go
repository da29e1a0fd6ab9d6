package accounts

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost trades login latency for brute-force resistance.
const passwordHashCost = 14

// HashPassword derives the stored hash for a cleartext password. Empty
// passwords are rejected before hashing; bcrypt itself would accept them.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// ComparePasswordAndHash checks a cleartext password against a stored hash.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedHashAndPassword
	}
	return err
}

// RandomPasswordHash fills the password column for accounts that never set
// a credential, keeping the column non-empty and non-guessable.
func RandomPasswordHash() string {
	for {
		if h, err := HashPassword(uuid.NewString()); err == nil {
			return h
		}
	}
}
