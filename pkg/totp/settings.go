package totp

import (
	"errors"
	"strings"
)

const (
	DefaultDigits = 6
	DefaultPeriod = 30

	MinPeriod = 30
	MaxPeriod = 1800
)

// Settings are the system-wide parameters for new enrollments.
type Settings struct {
	Issuer string `json:"issuer"`
	Digits int    `json:"digits"`
	Period int    `json:"period"`
}

// DefaultSettings returns the settings used before an administrator changes them.
func DefaultSettings(appName string) Settings {
	return Settings{
		Issuer: appName,
		Digits: DefaultDigits,
		Period: DefaultPeriod,
	}
}

// Validate checks every field and joins all failures.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Issuer) == "" {
		errs = append(errs, ErrInvalidIssuer)
	}
	if !validDigits(s.Digits) {
		errs = append(errs, ErrInvalidDigits)
	}
	if s.Period < MinPeriod || s.Period > MaxPeriod {
		errs = append(errs, ErrInvalidPeriod)
	}
	return errors.Join(errs...)
}

func validDigits(d int) bool {
	return d == 6 || d == 8
}
