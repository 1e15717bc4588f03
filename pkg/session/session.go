package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Principal is the identity attached to a session.
type Principal struct {
	UserID                   uuid.UUID `json:"user_id"`
	Role                     string    `json:"role"`
	RequiresTwoFactor        bool      `json:"requires_two_factor"`
	IsTwoFactorAuthenticated bool      `json:"is_two_factor_authenticated"`
}

// PendingTwoFactor reports whether the password step passed but the second
// factor has not.
func (p Principal) PendingTwoFactor() bool {
	return p.RequiresTwoFactor && !p.IsTwoFactorAuthenticated
}

// FullyAuthenticated reports whether every required factor has been verified.
func (p Principal) FullyAuthenticated() bool {
	return p.UserID != uuid.Nil && !p.PendingTwoFactor()
}

type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
