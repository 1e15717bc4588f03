package twofactor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/guardkit/pkg/hasher"
	"github.com/dmitrymomot/guardkit/pkg/totp"
)

// BackupCodeManager issues and redeems single-use recovery codes.
// Codes are stored as bcrypt hashes and never persisted in plaintext.
type BackupCodeManager struct {
	hasher Hasher
	count  int
	length int
	now    func() time.Time
}

type BackupCodeOption func(*BackupCodeManager)

// WithBackupCodeCount sets how many codes a batch contains.
func WithBackupCodeCount(n int) BackupCodeOption {
	return func(m *BackupCodeManager) {
		if n > 0 {
			m.count = n
		}
	}
}

// WithBackupCodeClock overrides the time source used for used_at and created_at.
func WithBackupCodeClock(now func() time.Time) BackupCodeOption {
	return func(m *BackupCodeManager) {
		m.now = now
	}
}

func NewBackupCodeManager(h Hasher, opts ...BackupCodeOption) *BackupCodeManager {
	m := &BackupCodeManager{
		hasher: h,
		count:  totp.DefaultBackupCodeCount,
		length: totp.DefaultBackupCodeLength,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate returns a new batch of plaintext codes. Codes within a batch are not
// checked for collisions.
func (m *BackupCodeManager) Generate() ([]string, error) {
	return totp.GenerateBackupCodes(m.count, m.length)
}

// Persist hashes codes and stores them as unused through tx.
func (m *BackupCodeManager) Persist(ctx context.Context, tx Tx, userID uuid.UUID, codes []string) error {
	now := m.now()
	rows := make([]BackupCode, 0, len(codes))
	for _, code := range codes {
		hash, err := m.hasher.Hash(ctx, totp.NormalizeBackupCode(code), hasher.BackupCodeCost)
		if err != nil {
			return err
		}
		rows = append(rows, BackupCode{
			ID:        uuid.New(),
			UserID:    userID,
			CodeHash:  hash,
			CreatedAt: now,
		})
	}
	return tx.CreateBackupCodes(ctx, rows)
}

// Consume redeems candidate if it matches an unused code. It returns false when
// nothing matched or a concurrent caller marked the same code first.
func (m *BackupCodeManager) Consume(ctx context.Context, tx Tx, userID uuid.UUID, candidate string) (bool, error) {
	candidate = totp.NormalizeBackupCode(candidate)
	if candidate == "" {
		return false, nil
	}

	codes, err := tx.ListUnusedBackupCodes(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, c := range codes {
		ok, err := m.hasher.Verify(ctx, candidate, c.CodeHash)
		if err != nil {
			if errors.Is(err, hasher.ErrInvalidHash) {
				continue
			}
			return false, err
		}
		if ok {
			return tx.MarkBackupCodeUsed(ctx, c.ID, m.now())
		}
	}
	return false, nil
}

// Regenerate replaces every code of the user with a fresh batch and returns
// the plaintexts.
func (m *BackupCodeManager) Regenerate(ctx context.Context, tx Tx, userID uuid.UUID) ([]string, error) {
	if err := tx.DeleteBackupCodes(ctx, userID); err != nil {
		return nil, err
	}
	codes, err := m.Generate()
	if err != nil {
		return nil, err
	}
	if err := m.Persist(ctx, tx, userID, codes); err != nil {
		return nil, err
	}
	return codes, nil
}
