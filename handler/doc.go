// Package handler provides type-safe JSON HTTP handlers.
//
// A HandlerFunc receives a Context and a typed request decoded by binders
// (see package binder) and returns a Response. Wrap adapts it to an
// http.HandlerFunc. Every body the package writes uses the JSONResponse
// envelope:
//
//	{"data": {...}}
//	{"error": {"code": "invalid_code", "message": "Invalid verification code"}}
//
// Errors are classified by errorToDetail: validator.ValidationErrors become
// 400 with per-field details, HTTPError values carry their own status and key,
// binder failures become 400 or 415, and anything else is reported as a
// generic 500 whose text never reaches the client. NewErrorHandler adds
// structured logging on top of the same classification.
package handler
