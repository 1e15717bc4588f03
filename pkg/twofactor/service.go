package twofactor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/statemachine"
	"github.com/dmitrymomot/guardkit/pkg/totp"
)

// Service drives the enrollment state machine.
type Service struct {
	storage     Storage
	settings    *SettingsProvider
	cipher      Cipher
	passwords   PasswordVerifier
	backupCodes *BackupCodeManager
	states      *statemachine.Table[State, Event]
	logger      *slog.Logger
	now         func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithBackupCodeManager replaces the default manager built from the hasher.
func WithBackupCodeManager(m *BackupCodeManager) ServiceOption {
	return func(s *Service) {
		s.backupCodes = m
	}
}

func NewService(
	storage Storage,
	settings *SettingsProvider,
	cipher Cipher,
	h Hasher,
	passwords PasswordVerifier,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		storage:   storage,
		settings:  settings,
		cipher:    cipher,
		passwords: passwords,
		states:    Transitions(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backupCodes == nil {
		s.backupCodes = NewBackupCodeManager(h, WithBackupCodeClock(s.now))
	}
	return s
}

// Transitions returns the enrollment state table.
func Transitions() *statemachine.Table[State, Event] {
	return statemachine.New[State, Event]().
		Allow(EventSetup, StatePending, StateNone, StatePending).
		Allow(EventVerify, StateActive, StatePending, StateActive).
		Allow(EventDisable, StateNone, StateActive).
		Allow(EventRegenerate, StateActive, StateActive)
}

// Setup issues a fresh secret and leaves the enrollment pending. Calling it
// again while pending replaces the secret.
func (s *Service) Setup(ctx context.Context, userID uuid.UUID, accountLabel string) (*SetupResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	accountLabel = strings.TrimSpace(accountLabel)
	if accountLabel == "" {
		accountLabel = userID.String()
	}

	var result *SetupResult
	err = s.storage.WithTx(ctx, func(tx Tx) error {
		e, err := tx.LockEnrollment(ctx, userID)
		if err != nil && !errors.Is(err, ErrEnrollmentNotFound) {
			return err
		}
		if _, err := s.states.Next(e.State(), EventSetup); err != nil {
			return ErrAlreadyEnabled
		}

		secret, err := totp.GenerateSecret()
		if err != nil {
			return err
		}
		encrypted, err := s.cipher.Encrypt(secret)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to encrypt totp secret",
				logger.UserID(userID),
				logger.Component("twofactor"),
				logger.Error(err),
			)
			return errors.Join(ErrSecretUnavailable, err)
		}

		now := s.now()
		if e == nil {
			e = &Enrollment{UserID: userID, CreatedAt: now}
		}
		e.EncryptedSecret = &encrypted
		e.Enabled = false
		e.Digits = settings.Digits
		e.Period = settings.Period
		e.LastUsedAt = nil
		e.LastUsedStep = 0
		e.UpdatedAt = now

		if err := tx.SaveEnrollment(ctx, e); err != nil {
			return err
		}

		uri := totp.BuildProvisioningURI(accountLabel, secret, settings)
		qr, err := totp.RenderQRCode(uri)
		if err != nil {
			return err
		}
		result = &SetupResult{Secret: secret, ProvisioningURI: uri, QRCode: qr}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "two-factor setup started",
		logger.UserID(userID),
		logger.Component("twofactor"),
		logger.State(string(StatePending)),
	)
	return result, nil
}

// Verify checks a TOTP code, or a backup code once the enrollment is active.
// A TOTP code is accepted at most once per time step. The first success on a
// pending enrollment activates it and returns the backup codes.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, in VerifyInput) (*VerifyResult, error) {
	code := strings.TrimSpace(in.Code)
	backup := strings.TrimSpace(in.BackupCode)
	if code == "" && backup == "" {
		return nil, ErrCodeRequired
	}

	var result *VerifyResult
	err := s.storage.WithTx(ctx, func(tx Tx) error {
		e, err := tx.LockEnrollment(ctx, userID)
		if err != nil {
			return err
		}
		state := e.State()
		next, err := s.states.Next(state, EventVerify)
		if err != nil {
			return ErrEnrollmentNotFound
		}

		now := s.now()
		if code != "" {
			secret, err := s.decryptSecret(ctx, e)
			if err != nil {
				return err
			}
			if step, ok := totp.VerifyAt(code, secret, e.Digits, e.Period, now); ok && step > e.LastUsedStep {
				e.LastUsedStep = step
				result, err = s.complete(ctx, tx, e, state, next, MethodTOTP, now)
				return err
			}
		}

		if backup != "" && state == StateActive {
			ok, err := s.backupCodes.Consume(ctx, tx, userID, backup)
			if err != nil {
				return err
			}
			if ok {
				result, err = s.complete(ctx, tx, e, state, next, MethodBackupCode, now)
				return err
			}
		}

		return ErrInvalidCode
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			s.logger.WarnContext(ctx, "two-factor verification failed",
				logger.UserID(userID),
				logger.Component("twofactor"),
			)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) complete(
	ctx context.Context,
	tx Tx,
	e *Enrollment,
	from, to State,
	method Method,
	now time.Time,
) (*VerifyResult, error) {
	result := &VerifyResult{Method: method}

	if from == StatePending && to == StateActive {
		codes, err := s.backupCodes.Generate()
		if err != nil {
			return nil, err
		}
		if err := s.backupCodes.Persist(ctx, tx, e.UserID, codes); err != nil {
			return nil, err
		}
		e.Enabled = true
		result.Enabled = true
		result.BackupCodes = codes
	}

	e.LastUsedAt = &now
	e.UpdatedAt = now
	if err := tx.SaveEnrollment(ctx, e); err != nil {
		return nil, err
	}

	attrs := []any{
		logger.UserID(e.UserID),
		logger.Component("twofactor"),
		logger.State(string(to)),
		slog.String("method", string(method)),
	}
	if result.Enabled {
		s.logger.InfoContext(ctx, "two-factor enabled", attrs...)
	} else if method == MethodBackupCode {
		s.logger.InfoContext(ctx, "backup code redeemed", attrs...)
	}
	return result, nil
}

// Disable turns 2FA off after re-checking the password. The secret is cleared
// and all backup codes are deleted.
func (s *Service) Disable(ctx context.Context, userID uuid.UUID, password string) error {
	if err := s.checkPassword(ctx, userID, password); err != nil {
		return err
	}

	err := s.storage.WithTx(ctx, func(tx Tx) error {
		e, err := tx.LockEnrollment(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrEnrollmentNotFound) {
				return ErrNotEnabled
			}
			return err
		}
		if _, err := s.states.Next(e.State(), EventDisable); err != nil {
			return ErrNotEnabled
		}

		e.EncryptedSecret = nil
		e.Enabled = false
		e.LastUsedAt = nil
		e.LastUsedStep = 0
		e.UpdatedAt = s.now()

		if err := tx.SaveEnrollment(ctx, e); err != nil {
			return err
		}
		return tx.DeleteBackupCodes(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "two-factor disabled",
		logger.UserID(userID),
		logger.Component("twofactor"),
		logger.State(string(StateNone)),
	)
	return nil
}

// RegenerateBackupCodes replaces all backup codes after re-checking the
// password. The secret and enabled flag are untouched.
func (s *Service) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, password string) ([]string, error) {
	if err := s.checkPassword(ctx, userID, password); err != nil {
		return nil, err
	}

	var codes []string
	err := s.storage.WithTx(ctx, func(tx Tx) error {
		e, err := tx.LockEnrollment(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrEnrollmentNotFound) {
				return ErrNotEnabled
			}
			return err
		}
		if _, err := s.states.Next(e.State(), EventRegenerate); err != nil {
			return ErrNotEnabled
		}

		codes, err = s.backupCodes.Regenerate(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "backup codes regenerated",
		logger.UserID(userID),
		logger.Component("twofactor"),
	)
	return codes, nil
}

// Status reports the enrollment state without exposing the secret.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	e, err := s.storage.GetEnrollment(ctx, userID)
	if errors.Is(err, ErrEnrollmentNotFound) {
		return &Status{State: StateNone}, nil
	}
	if err != nil {
		return nil, err
	}

	st := &Status{
		State:      e.State(),
		Enabled:    e.State() == StateActive,
		LastUsedAt: e.LastUsedAt,
	}
	if st.State != StateNone {
		st.Digits = e.Digits
		st.Period = e.Period
	}
	if st.Enabled {
		if st.RemainingBackupCodes, err = s.storage.CountUnusedBackupCodes(ctx, userID); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// IsEnabled reports whether login must be completed with a second factor.
func (s *Service) IsEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	e, err := s.storage.GetEnrollment(ctx, userID)
	if errors.Is(err, ErrEnrollmentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return e.State() == StateActive, nil
}

func (s *Service) checkPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if password == "" {
		return ErrPasswordMismatch
	}
	ok, err := s.passwords.CheckPassword(ctx, userID, password)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.WarnContext(ctx, "password re-entry rejected",
			logger.UserID(userID),
			logger.Component("twofactor"),
		)
		return ErrPasswordMismatch
	}
	return nil
}

func (s *Service) decryptSecret(ctx context.Context, e *Enrollment) (string, error) {
	if e.EncryptedSecret == nil {
		s.logger.ErrorContext(ctx, "enrollment has no secret",
			logger.UserID(e.UserID),
			logger.Component("twofactor"),
		)
		return "", ErrSecretUnavailable
	}
	secret, err := s.cipher.Decrypt(*e.EncryptedSecret)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to decrypt totp secret",
			logger.UserID(e.UserID),
			logger.Component("twofactor"),
			logger.Error(err),
		)
		return "", errors.Join(ErrSecretUnavailable, err)
	}
	return secret, nil
}
