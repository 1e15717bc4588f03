package totp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	pqtotp "github.com/pquerna/otp/totp"
)

const (
	// SecretSize is the secret length in bytes (160 bits, RFC 4226).
	SecretSize = 20

	// Skew is the number of time steps accepted on each side of the current one.
	Skew = 2

	algorithm = "SHA1"
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a random base32-encoded secret without padding.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return b32.EncodeToString(buf), nil
}

// BuildProvisioningURI returns an otpauth://totp URI for authenticator apps.
// The label is "issuer:account" with both parts percent-encoded.
func BuildProvisioningURI(accountLabel, secret string, s Settings) string {
	label := url.PathEscape(s.Issuer) + ":" + url.PathEscape(accountLabel)

	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", s.Issuer)
	q.Set("algorithm", algorithm)
	q.Set("digits", strconv.Itoa(s.Digits))
	q.Set("period", strconv.Itoa(s.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// GenerateCode returns the code for the time step containing t.
func GenerateCode(secret string, digits, period int, t time.Time) (string, error) {
	if !validDigits(digits) || period <= 0 {
		return "", ErrFailedToGenerateCode
	}
	code, err := pqtotp.GenerateCodeCustom(secret, t, pqtotp.ValidateOpts{
		Period:    uint(period),
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}
	return code, nil
}

// Verify reports whether token is valid for secret now.
func Verify(token, secret string, digits, period int) bool {
	_, ok := VerifyAt(token, secret, digits, period, time.Now())
	return ok
}

// VerifyAt checks token against the steps around t and returns the matched
// step. Every candidate is compared so timing does not depend on which step
// matched.
func VerifyAt(token, secret string, digits, period int, t time.Time) (int64, bool) {
	if !validDigits(digits) || period <= 0 || !isDigits(token, digits) {
		return 0, false
	}

	current := t.Unix() / int64(period)
	var (
		matched int64
		ok      bool
	)

	for offset := int64(-Skew); offset <= Skew; offset++ {
		step := current + offset
		if step < 0 {
			continue
		}
		code, err := GenerateCode(secret, digits, period, time.Unix(step*int64(period), 0))
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(code), []byte(token)) == 1 && !ok {
			matched, ok = step, true
		}
	}

	return matched, ok
}

// CurrentStep returns the time step that contains t.
func CurrentStep(t time.Time, period int) int64 {
	if period <= 0 {
		return 0
	}
	return t.Unix() / int64(period)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
