package session

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

// Transport moves the session token between client and server.
type Transport interface {
	GetToken(r *http.Request) (string, error)
	SetToken(w http.ResponseWriter, token string, ttl time.Duration) error
	ClearToken(w http.ResponseWriter) error
}

// TokenCipher encrypts cookie values. *secrets.Cipher satisfies it.
type TokenCipher interface {
	EncryptBytes(data []byte) ([]byte, error)
	DecryptBytes(data []byte) ([]byte, error)
}

// CookieTransport stores the encrypted token in an HttpOnly cookie.
type CookieTransport struct {
	name   string
	secure bool
	cipher TokenCipher
}

func NewCookieTransport(name string, secure bool, cipher TokenCipher) *CookieTransport {
	return &CookieTransport{name: name, secure: secure, cipher: cipher}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	c, err := r.Cookie(t.name)
	if err != nil || c.Value == "" {
		return "", ErrSessionNotFound
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", ErrInvalidSession
	}
	token, err := t.cipher.DecryptBytes(raw)
	if err != nil {
		return "", ErrInvalidSession
	}
	return string(token), nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	sealed, err := t.cipher.EncryptBytes([]byte(token))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    base64.RawURLEncoding.EncodeToString(sealed),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

const bearerPrefix = "Bearer "

// HeaderTransport reads "Authorization: Bearer <token>" and returns new
// tokens in the X-Session-Token response header.
type HeaderTransport struct{}

func NewHeaderTransport() *HeaderTransport {
	return &HeaderTransport{}
}

func (HeaderTransport) GetToken(r *http.Request) (string, error) {
	v := r.Header.Get("Authorization")
	if !strings.HasPrefix(v, bearerPrefix) {
		return "", ErrSessionNotFound
	}
	token := strings.TrimSpace(strings.TrimPrefix(v, bearerPrefix))
	if token == "" {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (HeaderTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	w.Header().Set("X-Session-Token", token)
	w.Header().Set("X-Session-Expires", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	return nil
}

func (HeaderTransport) ClearToken(w http.ResponseWriter) error {
	w.Header().Del("X-Session-Token")
	w.Header().Del("X-Session-Expires")
	return nil
}

// CompositeTransport reads from the first transport that has a token and
// writes to all of them.
type CompositeTransport struct {
	transports []Transport
}

func NewCompositeTransport(transports ...Transport) *CompositeTransport {
	return &CompositeTransport{transports: transports}
}

func (t *CompositeTransport) GetToken(r *http.Request) (string, error) {
	for _, tr := range t.transports {
		if token, err := tr.GetToken(r); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrSessionNotFound
}

func (t *CompositeTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	var lastErr error
	for _, tr := range t.transports {
		if err := tr.SetToken(w, token, ttl); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (t *CompositeTransport) ClearToken(w http.ResponseWriter) error {
	var lastErr error
	for _, tr := range t.transports {
		if err := tr.ClearToken(w); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
