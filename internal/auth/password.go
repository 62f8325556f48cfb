// Package auth implements the identity core: password hashing, role-based
// access control, stateless capability tokens and session credentials.
package auth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
)

// Authenticator hashes and verifies user passwords with bcrypt. Each hash
// carries its own random salt, so hashing the same password twice yields
// different stored values.
type Authenticator struct {
	cost int
	log  *zap.Logger
}

// NewAuthenticator returns an Authenticator with the given work factor.
// Costs outside the bcrypt range fall back to the library default.
func NewAuthenticator(cost int, log *zap.Logger) *Authenticator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{cost: cost, log: log}
}

// SetPassword computes a salted hash of plaintext and stores it on u.
// Persistence is the caller's responsibility; plaintext is never stored
// or logged.
func (a *Authenticator) SetPassword(u *model.User, plaintext string) error {
	if plaintext == "" {
		return fmt.Errorf("%w: password is empty", errs.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), a.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// Verify reports whether plaintext matches the user's stored hash. A
// malformed stored hash fails closed: the anomaly is logged and Verify
// returns false instead of propagating the error.
func (a *Authenticator) Verify(u *model.User, plaintext string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		a.log.Warn("stored password hash is malformed",
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
	}
	return false
}
