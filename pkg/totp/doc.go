// Package totp implements the time-based one-time password engine used for
// two-factor authentication (RFC 6238).
//
// It covers secret generation, otpauth:// provisioning URIs, QR rendering of
// those URIs, code verification over a fixed window of time steps, and
// generation of human-readable backup codes. Code computation is delegated
// to github.com/pquerna/otp; window handling and comparison live here.
//
// Verification is stateless. VerifyAt reports which time step matched so a
// caller can persist it and reject tokens from the same or earlier steps.
//
// # Verification window
//
// Tokens are accepted for the current step and Skew steps on either side
// (Skew = 2), wider than the common ±1 to tolerate clock drift on phones.
//
// # Failure semantics
//
// Verify never returns an error. A malformed secret, an unsupported digit
// count, a non-positive period, or a token of the wrong shape all yield
// false.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//	uri := totp.BuildProvisioningURI("jane@example.com", secret, settings)
//	qr, _ := totp.RenderQRCode(uri)
//
//	if step, ok := totp.VerifyAt(code, secret, settings.Digits, settings.Period, time.Now()); ok {
//	    // persist step
//	}
package totp
