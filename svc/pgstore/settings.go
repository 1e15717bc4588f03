package pgstore

import (
	"context"

	"github.com/dmitrymomot/guardkit/pkg/pg"
	"github.com/dmitrymomot/guardkit/pkg/totp"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
)

type SettingsStore struct {
	db DB
}

func NewSettingsStore(db DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) GetSettings(ctx context.Context) (totp.Settings, error) {
	var out totp.Settings
	err := s.db.QueryRow(ctx,
		`SELECT issuer, digits, period FROM system_totp_settings WHERE id = 1`,
	).Scan(&out.Issuer, &out.Digits, &out.Period)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return totp.Settings{}, twofactor.ErrSettingsNotFound
		}
		return totp.Settings{}, err
	}
	return out, nil
}

func (s *SettingsStore) SaveSettings(ctx context.Context, settings totp.Settings) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO system_totp_settings (id, issuer, digits, period, updated_at)
		VALUES (1, $1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			issuer = EXCLUDED.issuer,
			digits = EXCLUDED.digits,
			period = EXCLUDED.period,
			updated_at = EXCLUDED.updated_at`,
		settings.Issuer, settings.Digits, settings.Period,
	)
	return err
}
