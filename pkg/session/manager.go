package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/guardkit/pkg/logger"
)

type Manager struct {
	store     Store
	transport Transport
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Manager)

func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

func WithTransport(t Transport) Option {
	return func(m *Manager) { m.transport = t }
}

func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New builds a Manager. Without options it uses a MemoryStore and the
// bearer header transport.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.transport == nil {
		m.transport = NewHeaderTransport()
	}
	return m
}

// Store exposes the backing store, e.g. for the cleanup loop.
func (m *Manager) Store() Store {
	return m.store
}

// Create issues a new session for p and writes its token to w.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, p Principal) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	ttl := m.config.ttlFor(p)
	s := &Session{
		Token:     token,
		Principal: p,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}
	if err := m.transport.SetToken(w, token, ttl); err != nil {
		_ = m.store.Delete(ctx, token)
		return nil, err
	}

	return s, nil
}

// Get loads the session referenced by the request.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.IsExpired(m.now()) {
		_ = m.store.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	return s, nil
}

// UpgradeTwoFactor marks the request session as having passed its second
// factor. The session moves to a fresh token with the full lifetime and the
// old token is revoked.
func (m *Manager) UpgradeTwoFactor(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	current, err := m.Get(ctx, r)
	if err != nil {
		return nil, err
	}
	if !current.Principal.PendingTwoFactor() {
		return current, nil
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	upgraded := &Session{
		Token:     token,
		Principal: current.Principal,
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.TTL),
	}
	upgraded.Principal.IsTwoFactorAuthenticated = true

	if err := m.store.Create(ctx, upgraded); err != nil {
		return nil, err
	}
	if err := m.store.Delete(ctx, current.Token); err != nil {
		_ = m.store.Delete(ctx, upgraded.Token)
		return nil, err
	}
	if err := m.transport.SetToken(w, upgraded.Token, m.config.TTL); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "session upgraded after second factor",
		logger.UserID(upgraded.Principal.UserID),
		logger.Component("session"),
	)
	return upgraded, nil
}

// Destroy revokes the request session and clears the client token.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token, err := m.transport.GetToken(r); err == nil {
		if err := m.store.Delete(ctx, token); err != nil {
			return err
		}
	}
	return m.transport.ClearToken(w)
}

// Middleware attaches the request session, when valid, to the context.
// Requests without a session pass through untouched.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(r.Context(), r)
		if err != nil {
			switch {
			case errors.Is(err, ErrSessionNotFound):
			case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrInvalidSession):
				_ = m.transport.ClearToken(w)
			default:
				m.logger.ErrorContext(r.Context(), "failed to load session",
					logger.Error(err),
					logger.Component("session"),
				)
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
