package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/secrets"
	"github.com/dmitrymomot/guardkit/pkg/session"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupManager(t *testing.T, opts ...session.Option) (*session.Manager, *clock) {
	t.Helper()
	clk := &clock{now: time.Now()}
	cfg := session.DefaultConfig()
	cfg.TTL = time.Hour
	cfg.PendingTTL = 5 * time.Minute

	base := []session.Option{session.WithConfig(cfg), session.WithClock(clk.Now)}
	return session.New(append(base, opts...)...), clk
}

func bearerRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestManager_CreateAndGet(t *testing.T) {
	t.Parallel()
	m, _ := setupManager(t)
	ctx := context.Background()

	p := session.Principal{UserID: uuid.New(), Role: "user"}
	w := httptest.NewRecorder()
	s, err := m.Create(ctx, w, p)
	require.NoError(t, err)
	assert.Equal(t, s.Token, w.Header().Get("X-Session-Token"))
	assert.True(t, s.Principal.FullyAuthenticated())

	got, err := m.Get(ctx, bearerRequest(s.Token))
	require.NoError(t, err)
	assert.Equal(t, p, got.Principal)
}

func TestManager_GetErrors(t *testing.T) {
	t.Parallel()
	m, _ := setupManager(t)
	ctx := context.Background()

	_, err := m.Get(ctx, bearerRequest(""))
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = m.Get(ctx, bearerRequest("unknown"))
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_PendingSessionExpiresSooner(t *testing.T) {
	t.Parallel()
	m, clk := setupManager(t)
	ctx := context.Background()

	pending, err := m.Create(ctx, httptest.NewRecorder(), session.Principal{UserID: uuid.New(), RequiresTwoFactor: true})
	require.NoError(t, err)
	full, err := m.Create(ctx, httptest.NewRecorder(), session.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)

	_, err = m.Get(ctx, bearerRequest(pending.Token))
	require.ErrorIs(t, err, session.ErrSessionExpired)

	_, err = m.Get(ctx, bearerRequest(full.Token))
	require.NoError(t, err)
}

func TestManager_UpgradeTwoFactor(t *testing.T) {
	t.Parallel()
	m, _ := setupManager(t)
	ctx := context.Background()

	p := session.Principal{UserID: uuid.New(), Role: "user", RequiresTwoFactor: true}
	pending, err := m.Create(ctx, httptest.NewRecorder(), p)
	require.NoError(t, err)
	assert.True(t, pending.Principal.PendingTwoFactor())
	assert.False(t, pending.Principal.FullyAuthenticated())

	w := httptest.NewRecorder()
	upgraded, err := m.UpgradeTwoFactor(ctx, w, bearerRequest(pending.Token))
	require.NoError(t, err)
	assert.NotEqual(t, pending.Token, upgraded.Token)
	assert.Equal(t, upgraded.Token, w.Header().Get("X-Session-Token"))
	assert.True(t, upgraded.Principal.IsTwoFactorAuthenticated)
	assert.True(t, upgraded.Principal.FullyAuthenticated())

	_, err = m.Get(ctx, bearerRequest(pending.Token))
	require.ErrorIs(t, err, session.ErrSessionNotFound, "old token must be revoked")

	got, err := m.Get(ctx, bearerRequest(upgraded.Token))
	require.NoError(t, err)
	assert.True(t, got.Principal.IsTwoFactorAuthenticated)
}

func TestManager_UpgradeFullSessionIsNoop(t *testing.T) {
	t.Parallel()
	m, _ := setupManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, httptest.NewRecorder(), session.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	same, err := m.UpgradeTwoFactor(ctx, httptest.NewRecorder(), bearerRequest(s.Token))
	require.NoError(t, err)
	assert.Equal(t, s.Token, same.Token)
}

func TestManager_Destroy(t *testing.T) {
	t.Parallel()
	m, _ := setupManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, httptest.NewRecorder(), session.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, httptest.NewRecorder(), bearerRequest(s.Token)))

	_, err = m.Get(ctx, bearerRequest(s.Token))
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_Middleware(t *testing.T) {
	t.Parallel()
	m, _ := setupManager(t)

	s, err := m.Create(context.Background(), httptest.NewRecorder(), session.Principal{UserID: uuid.New(), Role: "admin"})
	require.NoError(t, err)

	var seen *session.Principal
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = session.PrincipalFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), bearerRequest(s.Token))
	require.NotNil(t, seen)
	assert.Equal(t, "admin", seen.Role)

	seen = nil
	h.ServeHTTP(httptest.NewRecorder(), bearerRequest("bogus"))
	assert.Nil(t, seen)
}

func TestCookieTransport(t *testing.T) {
	t.Parallel()

	cipher, err := secrets.New("cookie-test-key")
	require.NoError(t, err)
	tr := session.NewCookieTransport("sid", true, cipher)
	m, _ := setupManager(t, session.WithTransport(tr))
	ctx := context.Background()

	w := httptest.NewRecorder()
	s, err := m.Create(ctx, w, session.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "sid", c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.NotContains(t, c.Value, s.Token)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	got, err := m.Get(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "tampered"})
	_, err = m.Get(ctx, r)
	require.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestCompositeTransport(t *testing.T) {
	t.Parallel()

	cipher, err := secrets.New("composite-key")
	require.NoError(t, err)
	tr := session.NewCompositeTransport(session.NewCookieTransport("sid", false, cipher), session.NewHeaderTransport())

	w := httptest.NewRecorder()
	require.NoError(t, tr.SetToken(w, "tok", time.Minute))
	assert.Equal(t, "tok", w.Header().Get("X-Session-Token"))
	assert.Len(t, w.Result().Cookies(), 1)

	got, err := tr.GetToken(bearerRequest("from-header"))
	require.NoError(t, err)
	assert.Equal(t, "from-header", got)

	_, err = tr.GetToken(httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}
