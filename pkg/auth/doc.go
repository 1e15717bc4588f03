// Package auth verifies account credentials and produces the session
// principal used by the rest of the system.
//
// Authenticate checks email and password and returns a principal. When the
// user has two-factor authentication enabled the principal is intermediate
// (RequiresTwoFactor set, IsTwoFactorAuthenticated unset) and must be upgraded
// through the session manager after a successful second factor. Unverified
// accounts never receive a principal; a fresh verification link is emailed
// instead.
package auth
