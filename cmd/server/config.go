package main

import (
	"errors"

	"github.com/dmitrymomot/guardkit/pkg/config"
	"github.com/dmitrymomot/guardkit/pkg/email"
	"github.com/dmitrymomot/guardkit/pkg/hasher"
	"github.com/dmitrymomot/guardkit/pkg/httpserver"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/pg"
	"github.com/dmitrymomot/guardkit/pkg/redis"
	"github.com/dmitrymomot/guardkit/pkg/secrets"
	"github.com/dmitrymomot/guardkit/pkg/session"
)

type appConfig struct {
	Name string `env:"APP_NAME" envDefault:"Guardkit"`
	// StorageDriver selects the persistence backend: "postgres" or "memory".
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	// TokenSecret signs email verification links.
	TokenSecret     string `env:"TOKEN_SECRET" envDefault:"insecure-dev-token-secret"`
	VerificationURL string `env:"VERIFICATION_URL" envDefault:"http://localhost:8080/auth/verify-email"`
	TrustProxy      bool   `env:"TRUST_PROXY" envDefault:"false"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Browser redirect targets used by the access gate.
	LoginPath     string `env:"GATE_LOGIN_PATH" envDefault:"/login"`
	ChallengePath string `env:"GATE_CHALLENGE_PATH" envDefault:"/login/two-factor"`
	HomePath      string `env:"GATE_HOME_PATH" envDefault:"/"`
	NeutralPath   string `env:"GATE_NEUTRAL_PATH" envDefault:"/"`
}

type serverConfig struct {
	App     appConfig
	Log     logger.Config
	HTTP    httpserver.Config
	Session session.Config
	Email   email.Config
	Secrets secrets.Config
	Hasher  hasher.Config
	// Postgres and Redis are only loaded when selected.
	Postgres pg.Config
	Redis    redis.Config
}

func (c serverConfig) usesRedis() bool {
	return c.Session.Store == "redis"
}

// loadConfig reads every package config from the environment.
func loadConfig() (serverConfig, error) {
	var cfg serverConfig
	if err := errors.Join(
		config.Load(&cfg.App),
		config.Load(&cfg.Log),
		config.Load(&cfg.HTTP),
		config.Load(&cfg.Session),
		config.Load(&cfg.Email),
		config.Load(&cfg.Secrets),
		config.Load(&cfg.Hasher),
	); err != nil {
		return cfg, err
	}

	switch cfg.App.StorageDriver {
	case "postgres":
		if err := config.Load(&cfg.Postgres); err != nil {
			return cfg, err
		}
	case "memory":
	default:
		return cfg, errors.New("STORAGE_DRIVER must be postgres or memory")
	}

	if cfg.usesRedis() {
		if err := config.Load(&cfg.Redis); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
