package hasher

import "errors"

var (
	ErrHashFailed  = errors.New("hasher: failed to hash value")
	ErrEmptyValue  = errors.New("hasher: value is empty")
	ErrInvalidHash = errors.New("hasher: invalid hash")
)
