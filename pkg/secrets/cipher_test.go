package secrets_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/secrets"
)

func newCipher(t *testing.T, key string) *secrets.Cipher {
	t.Helper()
	c, err := secrets.New(key)
	require.NoError(t, err)
	return c
}

func TestCipher_RoundTrip(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	c := newCipher(t, key)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"totp secret", "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"},
		{"unicode", "Hello 世界"},
		{"json", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ct, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)
			if tt.plaintext != "" {
				assert.NotContains(t, ct, tt.plaintext)
			}

			plain, err := c.Decrypt(ct)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plain)
		})
	}
}

func TestCipher_NonceIsRandom(t *testing.T) {
	t.Parallel()
	c := newCipher(t, "some-key")

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipher_KeyChangeFails(t *testing.T) {
	t.Parallel()

	ct, err := newCipher(t, "key-one").Encrypt("secret")
	require.NoError(t, err)

	_, err = newCipher(t, "key-two").Decrypt(ct)
	require.ErrorIs(t, err, secrets.ErrDecryptionFailed)
}

func TestCipher_MalformedCiphertext(t *testing.T) {
	t.Parallel()
	c := newCipher(t, "key")

	tests := []struct {
		name string
		in   string
	}{
		{"not base64", "%%%"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("abc"))},
		{"garbage", base64.StdEncoding.EncodeToString(make([]byte, 64))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := c.Decrypt(tt.in)
			require.ErrorIs(t, err, secrets.ErrDecryptionFailed)
		})
	}
}

func TestCipher_TamperedCiphertext(t *testing.T) {
	t.Parallel()
	c := newCipher(t, "key")

	sealed, err := c.EncryptBytes([]byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = c.DecryptBytes(sealed)
	require.ErrorIs(t, err, secrets.ErrDecryptionFailed)
}

func TestNew_FallbackKey(t *testing.T) {
	t.Parallel()

	a := newCipher(t, "")
	b := newCipher(t, "")

	ct, err := a.Encrypt("value")
	require.NoError(t, err)
	plain, err := b.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "value", plain)
}
