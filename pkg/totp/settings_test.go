package totp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/totp"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := totp.DefaultSettings("Acme")
	assert.Equal(t, totp.Settings{Issuer: "Acme", Digits: 6, Period: 30}, s)
	require.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings totp.Settings
		wantErrs []error
	}{
		{"eight digits", totp.Settings{Issuer: "A", Digits: 8, Period: 30}, nil},
		{"max period", totp.Settings{Issuer: "A", Digits: 6, Period: 1800}, nil},
		{"seven digits", totp.Settings{Issuer: "A", Digits: 7, Period: 30}, []error{totp.ErrInvalidDigits}},
		{"period too short", totp.Settings{Issuer: "A", Digits: 6, Period: 29}, []error{totp.ErrInvalidPeriod}},
		{"period too long", totp.Settings{Issuer: "A", Digits: 6, Period: 1801}, []error{totp.ErrInvalidPeriod}},
		{"blank issuer", totp.Settings{Issuer: "  ", Digits: 6, Period: 30}, []error{totp.ErrInvalidIssuer}},
		{"everything wrong", totp.Settings{}, []error{totp.ErrInvalidIssuer, totp.ErrInvalidDigits, totp.ErrInvalidPeriod}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.settings.Validate()
			if len(tt.wantErrs) == 0 {
				require.NoError(t, err)
				return
			}
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}
