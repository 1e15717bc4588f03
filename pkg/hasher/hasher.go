package hasher

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt cost for account passwords.
	PasswordCost = 12
	// BackupCodeCost is the bcrypt cost for backup codes.
	BackupCodeCost = 8
)

// Config configures the worker pool size.
type Config struct {
	Workers int `env:"HASHER_WORKERS" envDefault:"0"`
}

// Hasher hashes and verifies values on a bounded worker pool.
type Hasher struct {
	slots chan struct{}
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithWorkers limits the number of concurrent bcrypt operations.
// Values below 1 keep the default of runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(h *Hasher) {
		if n > 0 {
			h.slots = make(chan struct{}, n)
		}
	}
}

// New creates a Hasher.
func New(opts ...Option) *Hasher {
	h := &Hasher{slots: make(chan struct{}, runtime.NumCPU())}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type result[T any] struct {
	val T
	err error
}

// run executes fn on a pool slot. The goroutine keeps its slot until fn
// returns even if the caller gave up, so the bound holds.
func run[T any](ctx context.Context, h *Hasher, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	select {
	case h.slots <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	out := make(chan result[T], 1)
	go func() {
		defer func() { <-h.slots }()
		v, err := fn()
		out <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-out:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Hash returns the bcrypt hash of plaintext using cost, clamped to bcrypt's range.
func (h *Hasher) Hash(ctx context.Context, plaintext string, cost int) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyValue
	}
	cost = max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))

	return run(ctx, h, func() (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
		if err != nil {
			return "", errors.Join(ErrHashFailed, err)
		}
		return string(b), nil
	})
}

// Verify reports whether plaintext matches hash. A mismatch is not an error;
// a malformed hash is.
func (h *Hasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	return run(ctx, h, func() (bool, error) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, errors.Join(ErrInvalidHash, err)
		}
	})
}
