package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/guardkit/pkg/twofactor"
)

type TwoFactorStore struct {
	mu          sync.Mutex
	enrollments map[uuid.UUID]twofactor.Enrollment
	codes       map[uuid.UUID]twofactor.BackupCode
}

func NewTwoFactorStore() *TwoFactorStore {
	return &TwoFactorStore{
		enrollments: make(map[uuid.UUID]twofactor.Enrollment),
		codes:       make(map[uuid.UUID]twofactor.BackupCode),
	}
}

func (s *TwoFactorStore) GetEnrollment(ctx context.Context, userID uuid.UUID) (*twofactor.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[userID]
	if !ok {
		return nil, twofactor.ErrEnrollmentNotFound
	}
	return &e, nil
}

func (s *TwoFactorStore) CountUnusedBackupCodes(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.codes {
		if c.UserID == userID && !c.IsUsed {
			n++
		}
	}
	return n, nil
}

// BackupCodes returns a copy of every code row of the user, used and unused.
func (s *TwoFactorStore) BackupCodes(userID uuid.UUID) []twofactor.BackupCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []twofactor.BackupCode
	for _, c := range s.codes {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

func (s *TwoFactorStore) WithTx(ctx context.Context, fn func(tx twofactor.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &twoFactorTx{
		enrollments: maps.Clone(s.enrollments),
		codes:       maps.Clone(s.codes),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.enrollments = tx.enrollments
	s.codes = tx.codes
	return nil
}

type twoFactorTx struct {
	enrollments map[uuid.UUID]twofactor.Enrollment
	codes       map[uuid.UUID]twofactor.BackupCode
}

func (tx *twoFactorTx) LockEnrollment(ctx context.Context, userID uuid.UUID) (*twofactor.Enrollment, error) {
	e, ok := tx.enrollments[userID]
	if !ok {
		return nil, twofactor.ErrEnrollmentNotFound
	}
	return &e, nil
}

func (tx *twoFactorTx) SaveEnrollment(ctx context.Context, e *twofactor.Enrollment) error {
	tx.enrollments[e.UserID] = *e
	return nil
}

func (tx *twoFactorTx) CreateBackupCodes(ctx context.Context, codes []twofactor.BackupCode) error {
	for _, c := range codes {
		tx.codes[c.ID] = c
	}
	return nil
}

func (tx *twoFactorTx) ListUnusedBackupCodes(ctx context.Context, userID uuid.UUID) ([]twofactor.BackupCode, error) {
	var out []twofactor.BackupCode
	for _, c := range tx.codes {
		if c.UserID == userID && !c.IsUsed {
			out = append(out, c)
		}
	}
	return out, nil
}

func (tx *twoFactorTx) MarkBackupCodeUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	c, ok := tx.codes[id]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	c.UsedAt = &usedAt
	tx.codes[id] = c
	return true, nil
}

func (tx *twoFactorTx) DeleteBackupCodes(ctx context.Context, userID uuid.UUID) error {
	maps.DeleteFunc(tx.codes, func(_ uuid.UUID, c twofactor.BackupCode) bool {
		return c.UserID == userID
	})
	return nil
}
