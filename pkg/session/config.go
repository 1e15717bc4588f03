package session

import "time"

type Config struct {
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// TTL is the lifetime of a fully authenticated session.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	// PendingTTL is the lifetime of a session awaiting its second factor.
	PendingTTL time.Duration `env:"SESSION_PENDING_TTL" envDefault:"10m"`

	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
	SecureCookies   bool          `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// Store selects the backend: "memory" or "redis".
	Store       string `env:"SESSION_STORE" envDefault:"memory"`
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"session:"`
}

func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		TTL:             12 * time.Hour,
		PendingTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		Store:           "memory",
		RedisPrefix:     "session:",
	}
}

// ttlFor returns the lifetime for a session holding p.
func (c Config) ttlFor(p Principal) time.Duration {
	if p.PendingTwoFactor() {
		return c.PendingTTL
	}
	return c.TTL
}
