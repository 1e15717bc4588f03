package hasher_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/guardkit/pkg/hasher"
)

func TestHasher_HashVerify(t *testing.T) {
	t.Parallel()
	h := hasher.New(hasher.WithWorkers(2))
	ctx := context.Background()

	hash, err := h.Hash(ctx, "ABCDEF1234", hasher.BackupCodeCost)
	require.NoError(t, err)
	assert.NotEqual(t, "ABCDEF1234", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, hasher.BackupCodeCost, cost)

	ok, err := h.Verify(ctx, "ABCDEF1234", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "ABCDEF1235", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_CostIsClamped(t *testing.T) {
	t.Parallel()
	h := hasher.New()

	hash, err := h.Hash(context.Background(), "value", 1)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHasher_Errors(t *testing.T) {
	t.Parallel()
	h := hasher.New()
	ctx := context.Background()

	_, err := h.Hash(ctx, "", hasher.BackupCodeCost)
	require.ErrorIs(t, err, hasher.ErrEmptyValue)

	ok, err := h.Verify(ctx, "value", "not-a-bcrypt-hash")
	require.ErrorIs(t, err, hasher.ErrInvalidHash)
	assert.False(t, ok)
}

func TestHasher_CanceledContext(t *testing.T) {
	t.Parallel()
	h := hasher.New(hasher.WithWorkers(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "value", hasher.BackupCodeCost)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHasher_Concurrent(t *testing.T) {
	t.Parallel()
	h := hasher.New(hasher.WithWorkers(2))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := h.Hash(ctx, "value", bcrypt.MinCost)
			if err != nil {
				errs <- err
				return
			}
			if ok, err := h.Verify(ctx, "value", hash); err != nil || !ok {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
