package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/guardkit/modules/account"
	twofactorapi "github.com/dmitrymomot/guardkit/modules/twofactor"
	"github.com/dmitrymomot/guardkit/pkg/auth"
	"github.com/dmitrymomot/guardkit/pkg/clientip"
	"github.com/dmitrymomot/guardkit/pkg/email"
	"github.com/dmitrymomot/guardkit/pkg/gate"
	"github.com/dmitrymomot/guardkit/pkg/hasher"
	"github.com/dmitrymomot/guardkit/pkg/httpserver"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/requestid"
	"github.com/dmitrymomot/guardkit/pkg/secrets"
	"github.com/dmitrymomot/guardkit/pkg/session"
	"github.com/dmitrymomot/guardkit/pkg/totp"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
)

type application struct {
	server     *httpserver.Server
	router     http.Handler
	background []func(ctx context.Context) error
}

func build(ctx context.Context, cfg serverConfig, deps *dependencies, log *slog.Logger) (*application, error) {
	app := &application{}

	cipher, err := secrets.New(cfg.Secrets.Key, secrets.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to init secrets cipher: %w", err)
	}
	h := hasher.New(hasher.WithWorkers(cfg.Hasher.Workers))

	sender, err := newSender(cfg.Email, log)
	if err != nil {
		return nil, err
	}

	settings := twofactor.NewSettingsProvider(deps.settings, totp.DefaultSettings(cfg.App.Name))
	authenticator := auth.NewAuthenticator(deps.users, h, enrollmentStatus{deps.twoFactor}, sender, cfg.App.TokenSecret,
		auth.WithLogger(log),
		auth.WithVerificationURL(cfg.App.VerificationURL),
	)
	svc := twofactor.NewService(deps.twoFactor, settings, cipher, h, authenticator,
		twofactor.WithLogger(log),
	)

	if cfg.App.AdminEmail != "" {
		admin, err := authenticator.EnsureAdmin(ctx, cfg.App.AdminEmail, cfg.App.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure admin account: %w", err)
		}
		log.InfoContext(ctx, "admin account ready", logger.UserID(admin.ID), logger.Component("server"))
	}

	sessions, err := newSessions(cfg, deps, cipher, log, app)
	if err != nil {
		return nil, err
	}

	passwordSvc := account.NewPasswordService(authenticator, sessions, account.WithLogger(log))
	twoFactorMod := twofactorapi.New(svc, settings, sessions, authenticator, twofactorapi.WithLogger(log))

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware(cfg.App.TrustProxy),
		middleware.Recoverer,
		sessions.Middleware,
		gate.Middleware(gateRules(cfg.App), gate.WithLogger(log)),
	)
	r.Get("/health", httpserver.HealthCheckHandler(log))
	r.Get("/ready", httpserver.HealthCheckHandler(log, deps.checks...))
	r.Mount("/", account.Router(account.RouterOptions{
		Password:       passwordSvc,
		TwoFactor:      twoFactorMod,
		TwoFactorAdmin: twoFactorMod.AdminHandle(),
	}))
	app.router = r

	app.server = httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(addr string) {
			log.Info("http server listening", slog.String("addr", addr), logger.Component("server"))
		}),
	)

	return app, nil
}

// gateRules routes intermediate sessions to the challenge page and keeps the
// 2FA verification endpoint reachable for both session kinds.
func gateRules(cfg appConfig) gate.Rules {
	return gate.Rules{
		LoginPath:   cfg.LoginPath,
		VerifyPath:  cfg.ChallengePath,
		HomePath:    cfg.HomePath,
		NeutralPath: cfg.NeutralPath,
		PublicPaths: []string{
			"/health",
			"/ready",
			"/auth/login",
			"/auth/register",
			"/auth/verify-email",
		},
		TwoFactorPaths: []string{"/2fa/verify", "/auth/logout"},
		RoleRules: []gate.RoleRule{
			{Prefix: "/admin", Role: auth.RoleAdmin},
		},
	}
}

func newSender(cfg email.Config, log *slog.Logger) (email.Sender, error) {
	if cfg.UsePostmark() {
		s, err := email.NewPostmarkSender(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to init postmark sender: %w", err)
		}
		return s, nil
	}
	log.Warn("postmark is not configured, emails are written to disk",
		slog.String("dir", cfg.DevDir),
		logger.Component("email"),
	)
	return email.NewDevSender(cfg.DevDir), nil
}

func newSessions(cfg serverConfig, deps *dependencies, cipher *secrets.Cipher, log *slog.Logger, app *application) (*session.Manager, error) {
	var store session.Store
	switch cfg.Session.Store {
	case "redis":
		store = session.NewRedisStore(deps.redis, cfg.Session.RedisPrefix)
	case "memory":
		mem := session.NewMemoryStore()
		app.background = append(app.background, func(ctx context.Context) error {
			return session.RunCleanup(ctx, mem, cfg.Session.CleanupInterval)
		})
		store = mem
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	return session.New(
		session.WithStore(store),
		session.WithConfig(cfg.Session),
		session.WithLogger(log),
		session.WithTransport(session.NewCompositeTransport(
			session.NewCookieTransport(cfg.Session.CookieName, cfg.Session.SecureCookies, cipher),
			session.NewHeaderTransport(),
		)),
	), nil
}

// enrollmentStatus answers the login-time 2FA check straight from storage.
// The service cannot be used here because it depends on the authenticator.
type enrollmentStatus struct {
	storage twofactor.Storage
}

func (s enrollmentStatus) IsEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	e, err := s.storage.GetEnrollment(ctx, userID)
	if errors.Is(err, twofactor.ErrEnrollmentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return e.State() == twofactor.StateActive, nil
}
