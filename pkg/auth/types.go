package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const SubjectEmailVerify = "email_verify"

type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Role          string
	EmailVerified bool
	CreatedAt     time.Time
}

// VerificationTokenPayload is signed into email verification links.
type VerificationTokenPayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Subject  string `json:"sub"`
	ExpireAt int64  `json:"exp"`
}

func (p VerificationTokenPayload) ExpiresAt() time.Time {
	return time.Unix(p.ExpireAt, 0)
}

// Storage persists user accounts.
type Storage interface {
	// CreateUser returns ErrEmailAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, user *User) error
	// GetUserByEmail and GetUserByID return ErrUserNotFound when missing.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// Hasher hashes and checks passwords.
type Hasher interface {
	Hash(ctx context.Context, plaintext string, cost int) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// TwoFactorStatus tells whether a user must pass a second factor.
type TwoFactorStatus interface {
	IsEnabled(ctx context.Context, userID uuid.UUID) (bool, error)
}
