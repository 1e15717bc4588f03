package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount. Each service is optional
// and is only mounted if provided.
type RouterOptions struct {
	// Password serves login, logout, registration and email verification.
	Password Mountable
	// TwoFactor serves the user 2FA endpoints.
	TwoFactor Mountable
	// TwoFactorAdmin serves the administrator settings endpoints.
	TwoFactorAdmin http.Handler
}

// Router creates the account router with the configured services.
//
// Example:
//
//	passwordSvc := account.NewPasswordService(authenticator, sessionMgr)
//	twoFactorMod := twofactor.New(svc, settings, sessionMgr, authenticator)
//
//	r.Mount("/", account.Router(account.RouterOptions{
//	    Password:       passwordSvc,
//	    TwoFactor:      twoFactorMod,
//	    TwoFactorAdmin: twoFactorMod.AdminHandle(),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Password != nil {
		r.Mount("/auth", opts.Password.Handle())
	}
	if opts.TwoFactor != nil {
		r.Mount("/2fa", opts.TwoFactor.Handle())
	}
	if opts.TwoFactorAdmin != nil {
		r.Mount("/admin/2fa", opts.TwoFactorAdmin)
	}

	return r
}
