// Package twofactor implements TOTP enrollment and verification for user
// accounts, including single-use backup codes and the system-wide TOTP
// settings.
//
// An enrollment moves between three states:
//
//	none --setup--> pending --verify--> active --disable--> none
//
// Setup may be repeated while pending; each call issues a fresh secret.
// Backup codes are generated on the first successful verification and shown
// exactly once. Every mutation runs inside Storage.WithTx so that concurrent
// requests for the same user serialize on the enrollment row.
//
// Usage:
//
//	settings := twofactor.NewSettingsProvider(settingsStore, totp.DefaultSettings("Acme"))
//	svc := twofactor.NewService(store, settings, cipher, hasher.New(), authenticator,
//		twofactor.WithLogger(log),
//	)
//
//	setup, err := svc.Setup(ctx, userID, "user@example.com")
//	// show setup.QRCode, then
//	res, err := svc.Verify(ctx, userID, twofactor.VerifyInput{Code: "123456"})
//	// res.BackupCodes holds the plaintext codes once
package twofactor
