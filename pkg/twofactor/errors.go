package twofactor

import "errors"

var (
	ErrAlreadyEnabled     = errors.New("twofactor: already enabled")
	ErrNotEnabled         = errors.New("twofactor: not enabled")
	ErrEnrollmentNotFound = errors.New("twofactor: enrollment not found")
	ErrCodeRequired       = errors.New("twofactor: code or backup code is required")
	ErrInvalidCode        = errors.New("twofactor: invalid code")
	ErrPasswordMismatch   = errors.New("twofactor: password mismatch")
	ErrSecretUnavailable  = errors.New("twofactor: secret unavailable")
	ErrSettingsNotFound   = errors.New("twofactor: settings not found")
	ErrInvalidSettings    = errors.New("twofactor: invalid settings")
)
