// Package twofactor serves the two-factor HTTP endpoints on top of pkg/twofactor.
package twofactor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/guardkit/handler"
	"github.com/dmitrymomot/guardkit/pkg/auth"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/session"
	"github.com/dmitrymomot/guardkit/pkg/totp"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
)

// Service is the subset of twofactor.Service used by the endpoints.
type Service interface {
	Setup(ctx context.Context, userID uuid.UUID, accountLabel string) (*twofactor.SetupResult, error)
	Verify(ctx context.Context, userID uuid.UUID, in twofactor.VerifyInput) (*twofactor.VerifyResult, error)
	Disable(ctx context.Context, userID uuid.UUID, password string) error
	RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, password string) ([]string, error)
	Status(ctx context.Context, userID uuid.UUID) (*twofactor.Status, error)
}

// Settings reads and updates the system-wide TOTP parameters.
type Settings interface {
	Get(ctx context.Context) (totp.Settings, error)
	Update(ctx context.Context, s totp.Settings) (totp.Settings, error)
}

// Sessions upgrades an intermediate session once the second factor passes.
type Sessions interface {
	UpgradeTwoFactor(ctx context.Context, w http.ResponseWriter, r *http.Request) (*session.Session, error)
}

// Accounts resolves the label shown in authenticator apps.
type Accounts interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*auth.User, error)
}

type Module struct {
	svc           Service
	settings      Settings
	sessions      Sessions
	accounts      Accounts
	errorHandler handler.ErrorHandler[handler.Context]
	logger       *slog.Logger
}

type Option func(*Module)

// WithErrorHandler replaces the default JSON error handler.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(m *Module) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(svc Service, settings Settings, sessions Sessions, accounts Accounts, opts ...Option) *Module {
	m := &Module{
		svc:      svc,
		settings: settings,
		sessions: sessions,
		accounts: accounts,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.errorHandler == nil {
		m.errorHandler = handler.NewErrorHandler(m.logger)
	}
	return m
}

// Handle returns the user-facing routes, mounted under /2fa.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/setup", handler.Wrap(m.setup,
		handler.WithErrorHandler[handler.Context, struct{}](m.errorHandler),
	))

	r.Post("/verify", handler.Wrap(m.verify,
		handler.WithBinder[handler.Context, VerifyRequest](bindJSON),
		handler.WithErrorHandler[handler.Context, VerifyRequest](m.errorHandler),
	))

	r.Post("/disable", handler.Wrap(m.disable,
		handler.WithBinder[handler.Context, PasswordRequest](bindJSON),
		handler.WithErrorHandler[handler.Context, PasswordRequest](m.errorHandler),
	))
	r.Post("/backup-codes", handler.Wrap(m.regenerate,
		handler.WithBinder[handler.Context, PasswordRequest](bindJSON),
		handler.WithErrorHandler[handler.Context, PasswordRequest](m.errorHandler),
	))
	r.Get("/status", handler.Wrap(m.status,
		handler.WithErrorHandler[handler.Context, struct{}](m.errorHandler),
	))

	return r
}

// AdminHandle returns the settings routes, mounted under /admin/2fa.
func (m *Module) AdminHandle() http.Handler {
	r := chi.NewRouter()

	r.Get("/settings", handler.Wrap(m.getSettings,
		handler.WithErrorHandler[handler.Context, struct{}](m.errorHandler),
	))
	r.Put("/settings", handler.Wrap(m.updateSettings,
		handler.WithBinder[handler.Context, SettingsRequest](bindJSON),
		handler.WithErrorHandler[handler.Context, SettingsRequest](m.errorHandler),
	))

	return r
}
