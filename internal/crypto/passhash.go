// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/and161185/taskhub/internal/errs"
)

// MaxPasswordBytes is the longest input bcrypt accepts. The limit is in bytes, not characters.
const MaxPasswordBytes = 72

// Cost is the bcrypt work factor used for every stored password.
const Cost = 10

// dummyHash is compared against when the account does not exist, so that a
// miss costs as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskhub-dummy-password"), Cost)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password exceeds %d bytes", errs.ErrValidation, MaxPasswordBytes)
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnCompare performs a throwaway comparison. Its result is always false.
func BurnCompare(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}
