package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateNone    State = "none"
	StatePending State = "pending"
	StateActive  State = "active"
)

type Event string

const (
	EventSetup      Event = "setup"
	EventVerify     Event = "verify"
	EventDisable    Event = "disable"
	EventRegenerate Event = "regenerate"
)

// Method tells which factor satisfied a verification.
type Method string

const (
	MethodTOTP       Method = "totp"
	MethodBackupCode Method = "backup_code"
)

// Enrollment is the per-user 2FA record. Rows are never hard-deleted; disabling
// clears the secret instead.
type Enrollment struct {
	UserID          uuid.UUID
	EncryptedSecret *string
	Enabled         bool
	Digits          int
	Period          int
	LastUsedAt      *time.Time
	LastUsedStep    int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// State derives the lifecycle state from the stored fields. A nil enrollment
// is StateNone.
func (e *Enrollment) State() State {
	switch {
	case e == nil:
		return StateNone
	case e.Enabled:
		return StateActive
	case e.EncryptedSecret != nil:
		return StatePending
	default:
		return StateNone
	}
}

type BackupCode struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CodeHash  string
	IsUsed    bool
	UsedAt    *time.Time
	CreatedAt time.Time
}

type SetupResult struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qr_code"`
}

type VerifyInput struct {
	Code       string
	BackupCode string
}

type VerifyResult struct {
	Method Method
	// Enabled is true when this verification activated the enrollment.
	Enabled bool
	// BackupCodes is only populated on activation.
	BackupCodes []string
}

type Status struct {
	State                State      `json:"state"`
	Enabled              bool       `json:"enabled"`
	Digits               int        `json:"digits,omitempty"`
	Period               int        `json:"period,omitempty"`
	RemainingBackupCodes int        `json:"remaining_backup_codes"`
	LastUsedAt           *time.Time `json:"last_used_at,omitempty"`
}

// Cipher protects TOTP secrets at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Hasher hashes backup codes.
type Hasher interface {
	Hash(ctx context.Context, plaintext string, cost int) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// PasswordVerifier re-checks the account password before destructive operations.
type PasswordVerifier interface {
	CheckPassword(ctx context.Context, userID uuid.UUID, password string) (bool, error)
}
