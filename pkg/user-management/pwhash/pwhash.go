package pwhash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt work factor. Raising this slows every verification, keep it in sync
// with the expected login latency budget.
const HashingCost = 12

var ErrEmptyPassword = errors.New("password must not be empty")

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashingCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePasswordWithHash returns whether password matches the stored hash.
// Malformed hashes and empty inputs report a non-match instead of failing,
// the caller treats every non-match the same way.
func ComparePasswordWithHash(hash string, password string) (bool, error) {
	if hash == "" || password == "" {
		return false, errors.New("arguments must not be empty")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
