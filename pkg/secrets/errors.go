package secrets

import "errors"

var (
	ErrEncryptionFailed    = errors.New("secrets: encryption failed")
	ErrDecryptionFailed    = errors.New("secrets: decryption failed")
	ErrInvalidCiphertext   = errors.New("secrets: invalid ciphertext format")
	ErrKeyDerivationFailed = errors.New("secrets: key derivation failed")
)
