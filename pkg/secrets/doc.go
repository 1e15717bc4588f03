// Package secrets encrypts values that must be stored at rest, such as TOTP
// shared secrets, and small payloads carried in cookies.
//
// A Cipher is built from a single process-wide key. The working AES-256 key
// is derived from it with HKDF-SHA-256, so any configured string works as
// input. Values are sealed with AES-256-GCM; the random nonce is prepended to
// the ciphertext and string helpers base64-encode the result.
//
// GCM authenticates its input. A changed key or a tampered ciphertext
// produces an error wrapping ErrDecryptionFailed instead of garbage plaintext.
//
// # Usage
//
//	c, err := secrets.New(cfg.Key, secrets.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//
//	ct, err := c.Encrypt("JBSWY3DPEHPK3PXP")
//	plain, err := c.Decrypt(ct)
//
// When the key is empty New falls back to a hardcoded development key and
// logs a warning. Never run production with the fallback.
package secrets
