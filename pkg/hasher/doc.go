// Package hasher provides one-way hashing for passwords and backup codes.
//
// Both use bcrypt, which embeds salt and cost in the hash and compares in
// constant time. Passwords use PasswordCost; backup codes are high-entropy
// random strings and use the cheaper BackupCodeCost.
//
// bcrypt is CPU-bound. Hasher runs every operation on a bounded set of
// worker goroutines so a burst of logins cannot starve the rest of the
// process, and callers stop waiting as soon as their context is done.
//
//	h := hasher.New(hasher.WithWorkers(4))
//	hash, err := h.Hash(ctx, "correct horse", hasher.PasswordCost)
//	ok, err := h.Verify(ctx, "correct horse", hash)
package hasher
