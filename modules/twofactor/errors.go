package twofactor

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/guardkit/handler"
	"github.com/dmitrymomot/guardkit/pkg/totp"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
	"github.com/dmitrymomot/guardkit/pkg/validator"
)

var (
	errUnauthorized = handler.ErrUnauthorized.WithMessage("Authentication required")
	errAdminOnly    = handler.ErrUnauthorized.WithMessage("Administrator access required")

	errAlreadyEnabled     = handler.NewHTTPError(http.StatusBadRequest, "already_enabled").WithMessage("Two-factor authentication is already enabled")
	errNotEnabled         = handler.NewHTTPError(http.StatusBadRequest, "not_enabled").WithMessage("Two-factor authentication is not enabled")
	errCodeRequired       = handler.NewHTTPError(http.StatusBadRequest, "code_required").WithMessage("Verification code or backup code is required")
	errInvalidCode        = handler.NewHTTPError(http.StatusBadRequest, "invalid_code").WithMessage("Invalid verification code")
	errEnrollmentNotFound = handler.NewHTTPError(http.StatusNotFound, "enrollment_not_found").WithMessage("Two-factor setup has not been started")
	errPasswordMismatch   = handler.NewHTTPError(http.StatusUnauthorized, "invalid_password").WithMessage("Invalid password")
	errSecretUnavailable  = handler.ErrInternalServerError.WithMessage("Two-factor verification is temporarily unavailable")
)

// mapError translates domain errors into HTTP errors. The original error is
// kept in the chain so the error handler can log the cause.
func mapError(err error) error {
	var mapped error
	switch {
	case errors.Is(err, twofactor.ErrAlreadyEnabled):
		mapped = errAlreadyEnabled
	case errors.Is(err, twofactor.ErrNotEnabled):
		mapped = errNotEnabled
	case errors.Is(err, twofactor.ErrCodeRequired):
		mapped = errCodeRequired
	case errors.Is(err, twofactor.ErrInvalidCode):
		mapped = errInvalidCode
	case errors.Is(err, twofactor.ErrEnrollmentNotFound):
		mapped = errEnrollmentNotFound
	case errors.Is(err, twofactor.ErrPasswordMismatch):
		mapped = errPasswordMismatch
	case errors.Is(err, twofactor.ErrSecretUnavailable):
		mapped = errSecretUnavailable
	case errors.Is(err, twofactor.ErrInvalidSettings):
		return settingsValidationErrors(err)
	default:
		return err
	}
	return errors.Join(mapped, err)
}

// settingsValidationErrors reports settings failures per field.
func settingsValidationErrors(err error) error {
	var ve validator.ValidationErrors
	if errors.Is(err, totp.ErrInvalidIssuer) {
		ve = append(ve, validator.ValidationError{Field: "issuer", Message: "is required"})
	}
	if errors.Is(err, totp.ErrInvalidDigits) {
		ve = append(ve, validator.ValidationError{Field: "digits", Message: "must be 6 or 8"})
	}
	if errors.Is(err, totp.ErrInvalidPeriod) {
		ve = append(ve, validator.ValidationError{
			Field:   "period",
			Message: fmt.Sprintf("must be between %d and %d seconds", totp.MinPeriod, totp.MaxPeriod),
		})
	}
	if len(ve) == 0 {
		return err
	}
	return ve
}
