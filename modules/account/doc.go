// Package account exposes the password login flow over HTTP and mounts it
// next to the two-factor endpoints.
//
// Routes served by PasswordService, mounted under /auth:
//
//	POST /auth/login         {"email","password"} -> {"requires_two_factor"}
//	POST /auth/logout        204
//	POST /auth/register      {"email","password"} -> 201 {"id","email"}
//	GET  /auth/verify-email  ?token=... -> 204
//
// A successful login returns the session token in the X-Session-Token header
// (and a cookie when the cookie transport is configured). When the user has
// 2FA enabled the session is intermediate: only POST /2fa/verify and
// POST /auth/logout are reachable until the second factor passes.
package account
