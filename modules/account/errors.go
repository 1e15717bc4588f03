package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/guardkit/handler"
	"github.com/dmitrymomot/guardkit/pkg/auth"
)

var (
	errInvalidCredentials = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials").WithMessage("Invalid email or password")
	errEmailNotVerified   = handler.NewHTTPError(http.StatusForbidden, "email_not_verified").WithMessage("Email address is not verified, check your inbox")
	errEmailTaken         = handler.NewHTTPError(http.StatusConflict, "email_taken").WithMessage("An account with this email already exists")
	errInvalidToken       = handler.NewHTTPError(http.StatusBadRequest, "invalid_token").WithMessage("Verification link is invalid or has expired")
)

func mapError(err error) error {
	var mapped error
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		mapped = errInvalidCredentials
	case errors.Is(err, auth.ErrEmailNotVerified):
		mapped = errEmailNotVerified
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		mapped = errEmailTaken
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenExpired):
		mapped = errInvalidToken
	default:
		return err
	}
	return errors.Join(mapped, err)
}
