package twofactor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/handler"
	"github.com/dmitrymomot/guardkit/modules/twofactor"
	"github.com/dmitrymomot/guardkit/pkg/auth"
	"github.com/dmitrymomot/guardkit/pkg/hasher"
	"github.com/dmitrymomot/guardkit/pkg/secrets"
	"github.com/dmitrymomot/guardkit/pkg/session"
	"github.com/dmitrymomot/guardkit/pkg/totp"
	domain "github.com/dmitrymomot/guardkit/pkg/twofactor"
	"github.com/dmitrymomot/guardkit/svc/memstore"
)

const password = "correct horse battery staple"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type passwords struct{}

func (passwords) CheckPassword(_ context.Context, _ uuid.UUID, pw string) (bool, error) {
	return pw == password, nil
}

type accounts struct{}

func (accounts) GetUser(_ context.Context, id uuid.UUID) (*auth.User, error) {
	return &auth.User{ID: id, Email: "user@example.com"}, nil
}

type env struct {
	router   http.Handler
	sessions *session.Manager
	clock    *clock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cipher, err := secrets.New("module-test-key")
	require.NoError(t, err)

	clk := &clock{t: time.Now().Truncate(time.Second)}
	settings := domain.NewSettingsProvider(memstore.NewSettingsStore(), totp.DefaultSettings("Guardkit"))
	svc := domain.NewService(memstore.NewTwoFactorStore(), settings, cipher, hasher.New(), passwords{},
		domain.WithClock(clk.Now),
	)
	sessions := session.New()

	mod := twofactor.New(svc, settings, sessions, accounts{})

	r := chi.NewRouter()
	r.Use(sessions.Middleware)
	r.Mount("/2fa", mod.Handle())
	r.Mount("/admin/2fa", mod.AdminHandle())

	return &env{router: r, sessions: sessions, clock: clk}
}

func (e *env) login(t *testing.T, p session.Principal) string {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := e.sessions.Create(context.Background(), rec, p)
	require.NoError(t, err)
	token := rec.Header().Get("X-Session-Token")
	require.NotEmpty(t, token)
	return token
}

func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) code(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, totp.DefaultDigits, totp.DefaultPeriod, e.clock.Now())
	require.NoError(t, err)
	return code
}

type envelope struct {
	Data  json.RawMessage      `json:"data"`
	Error *handler.ErrorDetail `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NotNil(t, env.Error)
	return env.Error.Code
}

type setupBody struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qr_code"`
	Message         string `json:"message"`
}

type verifyBody struct {
	Success     bool     `json:"success"`
	Method      string   `json:"method"`
	Enabled     bool     `json:"enabled"`
	BackupCodes []string `json:"backup_codes"`
}

type statusBody struct {
	State                string `json:"state"`
	Enabled              bool   `json:"enabled"`
	Digits               int    `json:"digits"`
	Period               int    `json:"period"`
	RemainingBackupCodes int    `json:"remaining_backup_codes"`
}

// enable runs setup and the first verification for a fully signed-in user.
func (e *env) enable(t *testing.T, token string) (string, []string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/2fa/setup", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	setup := decode[setupBody](t, rec)

	rec = e.do(t, http.MethodPost, "/2fa/verify", token, `{"code":"`+e.code(t, setup.Secret)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[verifyBody](t, rec)
	require.True(t, res.Enabled)
	return setup.Secret, res.BackupCodes
}

func TestRequiresSession(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/2fa/setup"},
		{http.MethodPost, "/2fa/verify"},
		{http.MethodGet, "/2fa/status"},
		{http.MethodGet, "/admin/2fa/settings"},
	} {
		rec := e.do(t, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestEnableFlow(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	token := e.login(t, session.Principal{UserID: uuid.New(), Role: auth.RoleUser})

	rec := e.do(t, http.MethodPost, "/2fa/setup", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	setup := decode[setupBody](t, rec)
	assert.NotEmpty(t, setup.Secret)
	assert.True(t, strings.HasPrefix(setup.ProvisioningURI, "otpauth://totp/Guardkit:user@example.com?"))
	assert.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))
	assert.NotEmpty(t, setup.Message)

	status := decode[statusBody](t, e.do(t, http.MethodGet, "/2fa/status", token, ""))
	assert.Equal(t, "pending", status.State)
	assert.False(t, status.Enabled)

	rec = e.do(t, http.MethodPost, "/2fa/verify", token, `{"code":"`+e.code(t, setup.Secret)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[verifyBody](t, rec)
	assert.True(t, res.Success)
	assert.True(t, res.Enabled)
	assert.Equal(t, "totp", res.Method)
	assert.Len(t, res.BackupCodes, 10)

	status = decode[statusBody](t, e.do(t, http.MethodGet, "/2fa/status", token, ""))
	assert.Equal(t, "active", status.State)
	assert.True(t, status.Enabled)
	assert.Equal(t, 10, status.RemainingBackupCodes)
	assert.Equal(t, totp.DefaultDigits, status.Digits)

	rec = e.do(t, http.MethodPost, "/2fa/setup", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "already_enabled", errorCode(t, rec))
}

func TestVerifyErrors(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	token := e.login(t, session.Principal{UserID: uuid.New(), Role: auth.RoleUser})

	rec := e.do(t, http.MethodPost, "/2fa/verify", token, `{"code":"123456"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "enrollment_not_found", errorCode(t, rec))

	secret, _ := e.enable(t, token)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKey  string
	}{
		{"empty body", "", http.StatusBadRequest, "code_required"},
		{"empty inputs", `{"code":"","backup_code":""}`, http.StatusBadRequest, "code_required"},
		{"unknown field", `{"code":"1","remember":true}`, http.StatusBadRequest, "bad_request"},
		{"wrong type", `{"code":123456}`, http.StatusBadRequest, "bad_request"},
		{"too long", `{"code":"` + strings.Repeat("1", 17) + `"}`, http.StatusBadRequest, "validation_error"},
		{"wrong code", `{"code":"000000x"}`, http.StatusBadRequest, "invalid_code"},
		{"replayed code", `{"code":"` + e.code(t, secret) + `"}`, http.StatusBadRequest, "invalid_code"},
		{"unknown backup code", `{"backup_code":"AAAAAAAAAA"}`, http.StatusBadRequest, "invalid_code"},
	}
	for _, tt := range tests {
		rec := e.do(t, http.MethodPost, "/2fa/verify", token, tt.body)
		assert.Equal(t, tt.wantCode, rec.Code, tt.name)
		assert.Equal(t, tt.wantKey, errorCode(t, rec), tt.name)
	}
}

func TestBackupCodeLoginUpgradesSession(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	userID := uuid.New()
	full := e.login(t, session.Principal{UserID: userID, Role: auth.RoleUser})
	_, codes := e.enable(t, full)

	pending := e.login(t, session.Principal{UserID: userID, Role: auth.RoleUser, RequiresTwoFactor: true})

	rec := e.do(t, http.MethodGet, "/2fa/status", pending, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "intermediate session cannot read status")

	rec = e.do(t, http.MethodPost, "/2fa/verify", pending, `{"backup_code":"`+strings.ToLower(codes[0])+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[verifyBody](t, rec)
	assert.Equal(t, "backup_code", res.Method)
	assert.False(t, res.Enabled)
	assert.Empty(t, res.BackupCodes)

	upgraded := rec.Header().Get("X-Session-Token")
	require.NotEmpty(t, upgraded)
	assert.NotEqual(t, pending, upgraded)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/2fa/status", pending, "").Code, "old token is revoked")

	rec = e.do(t, http.MethodGet, "/2fa/status", upgraded, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[statusBody](t, rec).RemainingBackupCodes)

	rec = e.do(t, http.MethodPost, "/2fa/verify", upgraded, `{"backup_code":"`+codes[0]+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "backup codes are single use")
}

func TestDisableAndRegenerate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	token := e.login(t, session.Principal{UserID: uuid.New(), Role: auth.RoleUser})

	rec := e.do(t, http.MethodPost, "/2fa/disable", token, `{"password":"`+password+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "not_enabled", errorCode(t, rec))

	_, first := e.enable(t, token)

	rec = e.do(t, http.MethodPost, "/2fa/backup-codes", token, `{"password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_password", errorCode(t, rec))

	rec = e.do(t, http.MethodPost, "/2fa/backup-codes", token, `{"password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	codes := decode[struct {
		BackupCodes []string `json:"backup_codes"`
	}](t, rec).BackupCodes
	assert.Len(t, codes, 10)
	assert.NotEqual(t, first, codes)

	rec = e.do(t, http.MethodPost, "/2fa/disable", token, `{"password":""}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/2fa/disable", token, `{"password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"data":{"success":true}}`, rec.Body.String())

	status := decode[statusBody](t, e.do(t, http.MethodGet, "/2fa/status", token, ""))
	assert.Equal(t, "none", status.State)
	assert.Zero(t, status.RemainingBackupCodes)
}

func TestAdminSettings(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	user := e.login(t, session.Principal{UserID: uuid.New(), Role: auth.RoleUser})
	admin := e.login(t, session.Principal{UserID: uuid.New(), Role: auth.RoleAdmin})

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/admin/2fa/settings", user, "").Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPut, "/admin/2fa/settings", user, `{"issuer":"X","digits":6,"period":30}`).Code)

	rec := e.do(t, http.MethodGet, "/admin/2fa/settings", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, totp.DefaultSettings("Guardkit"), decode[totp.Settings](t, rec))

	rec = e.do(t, http.MethodPut, "/admin/2fa/settings", admin, `{"issuer":"Acme","digits":"8","period":30}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "numbers must be JSON numbers")

	rec = e.do(t, http.MethodPut, "/admin/2fa/settings", admin, `{"issuer":" ","digits":7,"period":10}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, env.Error.Details, "issuer")
	assert.Contains(t, env.Error.Details, "digits")
	assert.Contains(t, env.Error.Details, "period")

	rec = e.do(t, http.MethodPut, "/admin/2fa/settings", admin, `{"issuer":" Acme ","digits":8,"period":60}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, totp.Settings{Issuer: "Acme", Digits: 8, Period: 60}, decode[totp.Settings](t, rec))

	rec = e.do(t, http.MethodPost, "/2fa/setup", user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	setup := decode[setupBody](t, rec)
	assert.Contains(t, setup.ProvisioningURI, "digits=8")
	assert.Contains(t, setup.ProvisioningURI, "period=60")
}
