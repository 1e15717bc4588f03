package twofactor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/hasher"
	"github.com/dmitrymomot/guardkit/pkg/secrets"
	"github.com/dmitrymomot/guardkit/pkg/totp"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
	"github.com/dmitrymomot/guardkit/svc/memstore"
)

const (
	testPassword = "correct horse battery staple"
	testKey      = "test-secrets-key"
)

type fakePasswords struct {
	mu        sync.Mutex
	passwords map[uuid.UUID]string
}

func (f *fakePasswords) CheckPassword(_ context.Context, userID uuid.UUID, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwords[userID] == password, nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc      *twofactor.Service
	store    *memstore.TwoFactorStore
	settings *twofactor.SettingsProvider
	clock    *testClock
	userID   uuid.UUID
	hasher   *hasher.Hasher
	pw       *fakePasswords
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cipher, err := secrets.New(testKey)
	require.NoError(t, err)

	f := &fixture{
		store:    memstore.NewTwoFactorStore(),
		settings: twofactor.NewSettingsProvider(memstore.NewSettingsStore(), totp.DefaultSettings("Guardkit")),
		clock:    &testClock{t: time.Unix(1_700_000_000, 0)},
		userID:   uuid.New(),
		hasher:   hasher.New(),
	}
	f.pw = &fakePasswords{passwords: map[uuid.UUID]string{f.userID: testPassword}}
	f.svc = f.newService(t, cipher)
	return f
}

func (f *fixture) newService(t *testing.T, cipher twofactor.Cipher) *twofactor.Service {
	t.Helper()
	return twofactor.NewService(f.store, f.settings, cipher, f.hasher, f.pw,
		twofactor.WithClock(f.clock.Now),
	)
}

func (f *fixture) code(t *testing.T, secret string, offset time.Duration) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, totp.DefaultDigits, totp.DefaultPeriod, f.clock.Now().Add(offset))
	require.NoError(t, err)
	return code
}

// enable runs setup and the first verification, returning the secret and the
// backup codes.
func (f *fixture) enable(t *testing.T) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := f.svc.Setup(ctx, f.userID, "user@example.com")
	require.NoError(t, err)

	res, err := f.svc.Verify(ctx, f.userID, twofactor.VerifyInput{Code: f.code(t, setup.Secret, 0)})
	require.NoError(t, err)
	require.True(t, res.Enabled)
	return setup.Secret, res.BackupCodes
}

func (f *fixture) enrollment(t *testing.T) *twofactor.Enrollment {
	t.Helper()
	e, err := f.store.GetEnrollment(context.Background(), f.userID)
	require.NoError(t, err)
	return e
}

func (f *fixture) requireInvariants(t *testing.T) {
	t.Helper()

	e, err := f.store.GetEnrollment(context.Background(), f.userID)
	if err != nil {
		require.ErrorIs(t, err, twofactor.ErrEnrollmentNotFound)
		require.Empty(t, f.store.BackupCodes(f.userID))
		return
	}
	if e.Enabled {
		require.NotNil(t, e.EncryptedSecret)
	}
	if e.State() == twofactor.StateNone {
		require.Nil(t, e.EncryptedSecret)
		require.Empty(t, f.store.BackupCodes(f.userID))
	}
}
