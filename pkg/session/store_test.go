package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/session"
)

func testStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	s := &session.Session{
		Token:     uuid.NewString(),
		Principal: session.Principal{UserID: uuid.New(), Role: "user", RequiresTwoFactor: true},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Principal, got.Principal)

	require.NoError(t, store.Delete(ctx, s.Token))
	_, err = store.Get(ctx, s.Token)
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	require.ErrorIs(t, store.Create(ctx, &session.Session{}), session.ErrInvalidSession)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStore(t, session.NewMemoryStore())
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	t.Parallel()
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &session.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Second)}))
	require.NoError(t, store.Create(ctx, &session.Session{Token: "new", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, store.DeleteExpired(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestRunCleanup_StopsOnCancel(t *testing.T) {
	t.Parallel()
	store := session.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), &session.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Second)}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.RunCleanup(ctx, store, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	testStore(t, session.NewRedisStore(client, "test-session:"))
}
