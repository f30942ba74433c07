// Package hash stores and checks user passwords with bcrypt. Length rules
// belong to request validation and are not repeated here.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new digests.
const Cost = 10

var ErrMismatch = errors.New("password does not match")

func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Compare returns ErrMismatch for a wrong password. Any other error means
// digest is not a usable bcrypt hash.
func Compare(digest, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
