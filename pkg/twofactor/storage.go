package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/guardkit/pkg/totp"
)

// Storage persists enrollments and backup codes.
type Storage interface {
	// GetEnrollment returns ErrEnrollmentNotFound when the user never enrolled.
	GetEnrollment(ctx context.Context, userID uuid.UUID) (*Enrollment, error)
	CountUnusedBackupCodes(ctx context.Context, userID uuid.UUID) (int, error)
	// WithTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back on error or panic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view of Storage.
type Tx interface {
	// LockEnrollment reads the enrollment and holds it until the transaction
	// ends. Returns ErrEnrollmentNotFound when missing.
	LockEnrollment(ctx context.Context, userID uuid.UUID) (*Enrollment, error)
	// SaveEnrollment inserts or updates by user id.
	SaveEnrollment(ctx context.Context, e *Enrollment) error
	CreateBackupCodes(ctx context.Context, codes []BackupCode) error
	ListUnusedBackupCodes(ctx context.Context, userID uuid.UUID) ([]BackupCode, error)
	// MarkBackupCodeUsed flips is_used only if it is still false and reports
	// whether a row changed.
	MarkBackupCodeUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)
	DeleteBackupCodes(ctx context.Context, userID uuid.UUID) error
}

// SettingsStorage persists the single system settings row.
type SettingsStorage interface {
	// GetSettings returns ErrSettingsNotFound before the first save.
	GetSettings(ctx context.Context) (totp.Settings, error)
	SaveSettings(ctx context.Context, s totp.Settings) error
}
