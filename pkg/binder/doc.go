// Package binder decodes HTTP request data into typed request structs.
//
// Binders share the signature func(r *http.Request, v any) error so they can be
// passed to handler.Wrap. A binder that finds nothing to decode returns
// ErrBinderNotApplicable and the handler skips it, leaving the request struct
// at its zero value.
//
// JSON decoding is strict: unknown fields, trailing data and bodies over
// DefaultMaxJSONSize are rejected. Decoded strings have control characters
// stripped.
//
//	type VerifyRequest struct {
//	    Code       string `json:"code"`
//	    BackupCode string `json:"backup_code"`
//	}
//
//	mux.Post("/2fa/verify", handler.Wrap(verify,
//	    handler.WithBinder[handler.Context, VerifyRequest](binder.JSON()),
//	))
//
// Query parameters bind through `query:"name"` struct tags on string, bool and
// integer fields.
package binder
