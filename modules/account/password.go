package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/guardkit/handler"
	"github.com/dmitrymomot/guardkit/pkg/auth"
	"github.com/dmitrymomot/guardkit/pkg/binder"
	"github.com/dmitrymomot/guardkit/pkg/clientip"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/session"
	"github.com/dmitrymomot/guardkit/pkg/validator"
)

// Authenticator is the subset of auth.Authenticator used by PasswordService.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	Authenticate(ctx context.Context, email, password string) (*session.Principal, error)
	VerifyEmail(ctx context.Context, token string) error
}

// Sessions issues and revokes login sessions.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, p session.Principal) (*session.Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type PasswordService struct {
	auth         Authenticator
	sessions     Sessions
	errorHandler handler.ErrorHandler[handler.Context]
	logger       *slog.Logger
}

type Option func(*PasswordService)

// WithErrorHandler replaces the default JSON error handler.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *PasswordService) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *PasswordService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewPasswordService(a Authenticator, sessions Sessions, opts ...Option) *PasswordService {
	s := &PasswordService{
		auth:     a,
		sessions: sessions,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.logger)
	}
	return s
}

func (s *PasswordService) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", handler.Wrap(s.login,
		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, LoginRequest](s.errorHandler),
	))
	r.Post("/register", handler.Wrap(s.register,
		handler.WithBinder[handler.Context, RegisterRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, RegisterRequest](s.errorHandler),
	))

	r.Post("/logout", handler.Wrap(s.logout,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Get("/verify-email", handler.Wrap(s.verifyEmail,
		handler.WithBinder[handler.Context, VerifyEmailRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, VerifyEmailRequest](s.errorHandler),
	))

	return r
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	RequiresTwoFactor bool `json:"requires_two_factor"`
}

// login starts a session. With 2FA enabled the session is intermediate until
// POST /2fa/verify succeeds.
func (s *PasswordService) login(ctx handler.Context, req LoginRequest) handler.Response {
	principal, err := s.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.WarnContext(ctx, "failed sign-in attempt",
				logger.Component("account"),
				slog.String("client_ip", clientip.GetIPFromContext(ctx)),
			)
		}
		return handler.Error(mapError(err))
	}

	// Drop any session the client already holds before issuing a new token.
	if _, ok := session.FromContext(ctx); ok {
		if err := s.sessions.Destroy(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
			return handler.Error(err)
		}
	}

	if _, err := s.sessions.Create(ctx, ctx.ResponseWriter(), *principal); err != nil {
		return handler.Error(err)
	}

	s.logger.InfoContext(ctx, "user signed in",
		logger.UserID(principal.UserID),
		logger.Component("account"),
		slog.String("client_ip", clientip.GetIPFromContext(ctx)),
		slog.Bool("requires_two_factor", principal.RequiresTwoFactor),
	)
	return handler.JSON(loginResponse{RequiresTwoFactor: principal.RequiresTwoFactor})
}

func (s *PasswordService) logout(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.sessions.Destroy(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *PasswordService) register(ctx handler.Context, req RegisterRequest) handler.Response {
	user, err := s.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(registerResponse{
		ID:    user.ID.String(),
		Email: user.Email,
	}, handler.WithJSONStatus(http.StatusCreated))
}

type VerifyEmailRequest struct {
	Token string `query:"token"`
}

func (s *PasswordService) verifyEmail(ctx handler.Context, req VerifyEmailRequest) handler.Response {
	if err := validator.Apply(
		validator.Required("token", req.Token),
		validator.MaxLen("token", req.Token, 2048),
	); err != nil {
		return handler.Error(err)
	}
	if err := s.auth.VerifyEmail(ctx, req.Token); err != nil {
		return handler.Error(mapError(err))
	}
	return handler.Empty()
}
