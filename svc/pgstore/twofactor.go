package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/guardkit/pkg/pg"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
)

const enrollmentColumns = `user_id, encrypted_secret, enabled, digits, period,
	last_used_at, last_used_step, created_at, updated_at`

type TwoFactorStore struct {
	db DB
}

func NewTwoFactorStore(db DB) *TwoFactorStore {
	return &TwoFactorStore{db: db}
}

func (s *TwoFactorStore) GetEnrollment(ctx context.Context, userID uuid.UUID) (*twofactor.Enrollment, error) {
	return getEnrollment(ctx, s.db, userID, false)
}

func (s *TwoFactorStore) CountUnusedBackupCodes(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM two_factor_backup_codes WHERE user_id = $1 AND NOT is_used`,
		userID,
	).Scan(&n)
	return n, err
}

func (s *TwoFactorStore) WithTx(ctx context.Context, fn func(tx twofactor.Tx) error) error {
	return pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&twoFactorTx{tx: tx})
	})
}

type twoFactorTx struct {
	tx pgx.Tx
}

// LockEnrollment takes a row lock on the enrollment. A missing row is not
// locked; concurrent first-time setups both upsert a pending enrollment and
// the last one wins.
func (tx *twoFactorTx) LockEnrollment(ctx context.Context, userID uuid.UUID) (*twofactor.Enrollment, error) {
	return getEnrollment(ctx, tx.tx, userID, true)
}

func (tx *twoFactorTx) SaveEnrollment(ctx context.Context, e *twofactor.Enrollment) error {
	_, err := tx.tx.Exec(ctx, `
		INSERT INTO two_factor_enrollments (`+enrollmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_secret = EXCLUDED.encrypted_secret,
			enabled = EXCLUDED.enabled,
			digits = EXCLUDED.digits,
			period = EXCLUDED.period,
			last_used_at = EXCLUDED.last_used_at,
			last_used_step = EXCLUDED.last_used_step,
			updated_at = EXCLUDED.updated_at`,
		e.UserID, e.EncryptedSecret, e.Enabled, e.Digits, e.Period,
		e.LastUsedAt, e.LastUsedStep, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (tx *twoFactorTx) CreateBackupCodes(ctx context.Context, codes []twofactor.BackupCode) error {
	if len(codes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range codes {
		batch.Queue(`
			INSERT INTO two_factor_backup_codes (id, user_id, code_hash, is_used, used_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.UserID, c.CodeHash, c.IsUsed, c.UsedAt, c.CreatedAt)
	}
	return tx.tx.SendBatch(ctx, batch).Close()
}

func (tx *twoFactorTx) ListUnusedBackupCodes(ctx context.Context, userID uuid.UUID) ([]twofactor.BackupCode, error) {
	rows, err := tx.tx.Query(ctx, `
		SELECT id, user_id, code_hash, is_used, used_at, created_at
		FROM two_factor_backup_codes
		WHERE user_id = $1 AND NOT is_used
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (twofactor.BackupCode, error) {
		var c twofactor.BackupCode
		err := row.Scan(&c.ID, &c.UserID, &c.CodeHash, &c.IsUsed, &c.UsedAt, &c.CreatedAt)
		return c, err
	})
}

func (tx *twoFactorTx) MarkBackupCodeUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	tag, err := tx.tx.Exec(ctx, `
		UPDATE two_factor_backup_codes
		SET is_used = TRUE, used_at = $2
		WHERE id = $1 AND is_used = FALSE`, id, usedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (tx *twoFactorTx) DeleteBackupCodes(ctx context.Context, userID uuid.UUID) error {
	_, err := tx.tx.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE user_id = $1`, userID)
	return err
}

func getEnrollment(ctx context.Context, q querier, userID uuid.UUID, lock bool) (*twofactor.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM two_factor_enrollments WHERE user_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var e twofactor.Enrollment
	err := q.QueryRow(ctx, query, userID).Scan(
		&e.UserID, &e.EncryptedSecret, &e.Enabled, &e.Digits, &e.Period,
		&e.LastUsedAt, &e.LastUsedStep, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, twofactor.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &e, nil
}
