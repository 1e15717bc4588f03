package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the AES-256 key length.
	KeySize = 32

	hkdfInfo = "guardkit-secrets-v1"

	// insecureFallbackKey is used only when no key is configured.
	insecureFallbackKey = "guardkit-insecure-development-key-change-me"
)

// Cipher seals and opens values with AES-256-GCM.
type Cipher struct {
	aead   cipher.AEAD
	logger *slog.Logger
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithLogger sets the logger used to report an insecure configuration.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cipher) {
		if l != nil {
			c.logger = l
		}
	}
}

// New derives the working key from key and returns a ready Cipher.
func New(key string, opts ...Option) (*Cipher, error) {
	c := &Cipher{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(c)
	}

	if key == "" {
		c.logger.Warn("SECRETS_KEY is not set, falling back to an insecure built-in key",
			slog.String("component", "secrets"))
		key = insecureFallbackKey
	}

	derived, err := deriveKey([]byte(key))
	if err != nil {
		return nil, err
	}
	defer clear(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	c.aead = aead

	return c, nil
}

// Encrypt seals plaintext and returns base64-encoded nonce+ciphertext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	sealed, err := c.EncryptBytes([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext, err)
	}
	plain, err := c.DecryptBytes(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// EncryptBytes seals data. The output layout is nonce || ciphertext || tag.
func (c *Cipher) EncryptBytes(data []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(data)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return c.aead.Seal(nonce, nonce, data, nil), nil
}

// DecryptBytes opens data produced by EncryptBytes.
func (c *Cipher) DecryptBytes(data []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(data) < ns+c.aead.Overhead() {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext)
	}
	plain, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plain, nil
}

func deriveKey(secret []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// GenerateKey returns a random base64-encoded key suitable for SECRETS_KEY.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
