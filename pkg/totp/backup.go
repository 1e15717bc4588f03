package totp

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	DefaultBackupCodeCount  = 10
	DefaultBackupCodeLength = 10

	backupAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateBackupCodes returns count uppercase alphanumeric codes of the given length.
// Codes are independent; uniqueness relies on entropy alone.
func GenerateBackupCodes(count, length int) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidBackupCodeCount
	}
	if length < 8 || length > 12 {
		return nil, ErrInvalidBackupCodeLength
	}

	limit := big.NewInt(int64(len(backupAlphabet)))
	codes := make([]string, count)
	buf := make([]byte, length)

	for i := range codes {
		for j := range buf {
			n, err := rand.Int(rand.Reader, limit)
			if err != nil {
				return nil, errors.Join(ErrFailedToGenerateBackupCodes, err)
			}
			buf[j] = backupAlphabet[n.Int64()]
		}
		codes[i] = string(buf)
	}

	return codes, nil
}

// NormalizeBackupCode uppercases a user-typed code and drops spaces and dashes.
func NormalizeBackupCode(code string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '-' || r == '\t':
			return -1
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		}
		return r
	}, code)
}
