// Package token signs small JSON payloads with HMAC-SHA256 so they can travel
// through untrusted channels such as email links.
//
// Format: base64url(payload) "." base64url(signature). Tokens are signed,
// not encrypted; never put secrets in the payload.
package token
