// Package memstore provides in-memory implementations of the twofactor and
// auth storage interfaces. It backs the development server and tests.
//
// TwoFactorStore runs each transaction against a private copy of its state
// under a single mutex and swaps the copy in on success, so a failed or
// panicking transaction leaves no trace.
package memstore
