package totp

import "errors"

var (
	ErrFailedToGenerateSecret      = errors.New("totp: failed to generate secret")
	ErrFailedToGenerateBackupCodes = errors.New("totp: failed to generate backup codes")
	ErrFailedToGenerateCode        = errors.New("totp: failed to generate code")
	ErrFailedToRenderQRCode        = errors.New("totp: failed to render QR code")
	ErrInvalidBackupCodeCount      = errors.New("totp: backup code count must be greater than 0")
	ErrInvalidBackupCodeLength     = errors.New("totp: backup code length must be between 8 and 12")
	ErrInvalidIssuer               = errors.New("totp: issuer is required")
	ErrInvalidDigits               = errors.New("totp: digits must be 6 or 8")
	ErrInvalidPeriod               = errors.New("totp: period must be between 30 and 1800 seconds")
)
