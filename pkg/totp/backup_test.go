package totp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/totp"
)

func TestGenerateBackupCodes(t *testing.T) {
	t.Parallel()

	codes, err := totp.GenerateBackupCodes(totp.DefaultBackupCodeCount, totp.DefaultBackupCodeLength)
	require.NoError(t, err)
	require.Len(t, codes, 10)

	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		assert.Regexp(t, `^[A-Z0-9]{10}$`, c)
		seen[c] = struct{}{}
	}
	assert.Len(t, seen, len(codes))
}

func TestGenerateBackupCodes_InvalidArgs(t *testing.T) {
	t.Parallel()

	_, err := totp.GenerateBackupCodes(0, 10)
	require.ErrorIs(t, err, totp.ErrInvalidBackupCodeCount)

	_, err = totp.GenerateBackupCodes(10, 7)
	require.ErrorIs(t, err, totp.ErrInvalidBackupCodeLength)

	_, err = totp.GenerateBackupCodes(10, 13)
	require.ErrorIs(t, err, totp.ErrInvalidBackupCodeLength)
}

func TestNormalizeBackupCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"ABCDE12345", "ABCDE12345"},
		{"abcde-12345", "ABCDE12345"},
		{" abc de 123 45 ", "ABCDE12345"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, totp.NormalizeBackupCode(tt.in))
	}
}
