package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidToken     = errors.New("token: invalid format")
	ErrSignatureInvalid = errors.New("token: signature mismatch")
	ErrExpired          = errors.New("token: expired")
	ErrEmptySecret      = errors.New("token: signing secret is empty")
)

// Expirer is implemented by payloads that carry an expiry.
type Expirer interface {
	ExpiresAt() time.Time
}

// Generate signs payload with secret.
func Generate[T any](payload T, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(data) + "." + enc.EncodeToString(sign(data, secret)), nil
}

// Parse verifies tok and decodes its payload. Payloads implementing Expirer
// are rejected once expired.
func Parse[T any](tok, secret string) (T, error) {
	var payload T
	if secret == "" {
		return payload, ErrEmptySecret
	}

	body, sig, ok := strings.Cut(tok, ".")
	if !ok || body == "" || sig == "" {
		return payload, ErrInvalidToken
	}

	enc := base64.RawURLEncoding
	data, err := enc.DecodeString(body)
	if err != nil {
		return payload, ErrInvalidToken
	}
	gotSig, err := enc.DecodeString(sig)
	if err != nil {
		return payload, ErrInvalidToken
	}
	if !hmac.Equal(gotSig, sign(data, secret)) {
		return payload, ErrSignatureInvalid
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}
	if e, ok := any(payload).(Expirer); ok && !time.Now().Before(e.ExpiresAt()) {
		return payload, ErrExpired
	}
	return payload, nil
}

func sign(data []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return h.Sum(nil)
}
