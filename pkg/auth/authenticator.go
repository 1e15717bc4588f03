package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/guardkit/pkg/email"
	"github.com/dmitrymomot/guardkit/pkg/hasher"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/sanitizer"
	"github.com/dmitrymomot/guardkit/pkg/session"
	"github.com/dmitrymomot/guardkit/pkg/token"
	"github.com/dmitrymomot/guardkit/pkg/validator"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// Authenticator verifies credentials and manages the account lifecycle
// needed around login.
type Authenticator struct {
	storage     Storage
	hasher      Hasher
	twoFactor   TwoFactorStatus
	sender      email.Sender
	tokenSecret string

	passwordCost  int
	verifyTTL     time.Duration
	verifyBaseURL string
	logger        *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Authenticator)

func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPasswordCost overrides the bcrypt cost for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(a *Authenticator) {
		a.passwordCost = cost
	}
}

// WithVerificationTTL sets how long email verification links stay valid.
func WithVerificationTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.verifyTTL = ttl
		}
	}
}

// WithVerificationURL sets the link base; the token is appended as ?token=.
func WithVerificationURL(base string) Option {
	return func(a *Authenticator) {
		a.verifyBaseURL = base
	}
}

func NewAuthenticator(
	storage Storage,
	h Hasher,
	twoFactor TwoFactorStatus,
	sender email.Sender,
	tokenSecret string,
	opts ...Option,
) *Authenticator {
	a := &Authenticator{
		storage:       storage,
		hasher:        h,
		twoFactor:     twoFactor,
		sender:        sender,
		tokenSecret:   tokenSecret,
		passwordCost:  hasher.PasswordCost,
		verifyTTL:     24 * time.Hour,
		verifyBaseURL: "http://localhost:8080/auth/verify-email",
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register creates an unverified user account and emails a verification link.
func (a *Authenticator) Register(ctx context.Context, emailAddr, password string) (*User, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.Required("email", emailAddr),
		validator.Email("email", emailAddr),
		validator.MinLen("password", password, MinPasswordLength),
		validator.MaxLen("password", password, MaxPasswordLength),
	); err != nil {
		return nil, err
	}

	_, err := a.storage.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := a.hasher.Hash(ctx, password, a.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := a.sendVerification(ctx, user); err != nil {
		a.logger.ErrorContext(ctx, "failed to send verification email",
			logger.UserID(user.ID),
			logger.Component("auth"),
			logger.Error(err),
		)
	}
	return user, nil
}

// Authenticate checks credentials. Any mismatch, including an unknown email,
// yields ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, emailAddr, password string) (*session.Principal, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.Required("email", emailAddr),
		validator.Required("password", password),
	); err != nil {
		return nil, err
	}

	user, err := a.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.dummyCompare(ctx, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := a.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, hasher.ErrInvalidHash) {
			a.logger.ErrorContext(ctx, "stored password hash is malformed",
				logger.UserID(user.ID),
				logger.Component("auth"),
			)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		if err := a.sendVerification(ctx, user); err != nil {
			a.logger.ErrorContext(ctx, "failed to send verification email",
				logger.UserID(user.ID),
				logger.Component("auth"),
				logger.Error(err),
			)
		}
		return nil, ErrEmailNotVerified
	}

	enabled, err := a.twoFactor.IsEnabled(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &session.Principal{
		UserID:            user.ID,
		Role:              user.Role,
		RequiresTwoFactor: enabled,
	}, nil
}

// VerifyEmail marks the account named by a verification token as verified.
func (a *Authenticator) VerifyEmail(ctx context.Context, tok string) error {
	payload, err := token.Parse[VerificationTokenPayload](tok, a.tokenSecret)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if payload.Subject != SubjectEmailVerify {
		return ErrTokenInvalid
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return ErrTokenInvalid
	}
	user, err := a.storage.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if user.Email != payload.Email {
		return ErrTokenInvalid
	}
	if user.EmailVerified {
		return nil
	}
	return a.storage.MarkEmailVerified(ctx, user.ID)
}

// VerifyPassword returns ErrPasswordMismatch unless password belongs to userID.
func (a *Authenticator) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error {
	ok, err := a.CheckPassword(ctx, userID, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPasswordMismatch
	}
	return nil
}

// CheckPassword reports whether password belongs to userID.
func (a *Authenticator) CheckPassword(ctx context.Context, userID uuid.UUID, password string) (bool, error) {
	user, err := a.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.dummyCompare(ctx, password)
			return false, nil
		}
		return false, err
	}
	ok, err := a.hasher.Verify(ctx, password, user.PasswordHash)
	if errors.Is(err, hasher.ErrInvalidHash) {
		return false, nil
	}
	return ok, err
}

// GetUser returns the account by id.
func (a *Authenticator) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	return a.storage.GetUserByID(ctx, userID)
}

// VerificationToken signs a verification token for user.
func (a *Authenticator) VerificationToken(user *User) (string, error) {
	return token.Generate(VerificationTokenPayload{
		ID:       user.ID.String(),
		Email:    user.Email,
		Subject:  SubjectEmailVerify,
		ExpireAt: time.Now().Add(a.verifyTTL).Unix(),
	}, a.tokenSecret)
}

func (a *Authenticator) sendVerification(ctx context.Context, user *User) error {
	tok, err := a.VerificationToken(user)
	if err != nil {
		return err
	}
	link := a.verifyBaseURL + "?token=" + url.QueryEscape(tok)

	return a.sender.Send(ctx, email.Message{
		To:      user.Email,
		Subject: "Verify your email address",
		HTMLBody: fmt.Sprintf(
			`<p>Confirm your email address by following <a href="%s">this link</a>.</p>`,
			html.EscapeString(link),
		),
		Tag: "email-verification",
	})
}

// dummyCompare spends the same bcrypt work as a real check so unknown
// accounts are not distinguishable by response time.
func (a *Authenticator) dummyCompare(ctx context.Context, password string) {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.Hash(ctx, "guardkit-dummy-password", a.passwordCost)
	})
	if a.dummyHash != "" {
		_, _ = a.hasher.Verify(ctx, password, a.dummyHash)
	}
}

// EnsureAdmin creates a verified administrator account unless the email is
// already registered.
func (a *Authenticator) EnsureAdmin(ctx context.Context, emailAddr, password string) (*User, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.Email("email", emailAddr),
		validator.MinLen("password", password, MinPasswordLength),
	); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := a.hasher.Hash(ctx, password, a.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &User{
		ID:            uuid.New(),
		Email:         emailAddr,
		PasswordHash:  hash,
		Role:          RoleAdmin,
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "admin account created",
		logger.UserID(user.ID),
		logger.Component("auth"),
	)
	return user, nil
}
