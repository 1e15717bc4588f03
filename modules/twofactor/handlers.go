package twofactor

import (
	"github.com/dmitrymomot/guardkit/handler"
	"github.com/dmitrymomot/guardkit/pkg/auth"
	"github.com/dmitrymomot/guardkit/pkg/binder"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/session"
	"github.com/dmitrymomot/guardkit/pkg/totp"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
	"github.com/dmitrymomot/guardkit/pkg/validator"
)

var bindJSON = binder.JSON()

type VerifyRequest struct {
	Code       string `json:"code"`
	BackupCode string `json:"backup_code"`
}

type PasswordRequest struct {
	Password string `json:"password"`
}

// SettingsRequest takes JSON numbers only; "30" for period is rejected by the decoder.
type SettingsRequest struct {
	Issuer string `json:"issuer"`
	Digits int    `json:"digits"`
	Period int    `json:"period"`
}

type setupResponse struct {
	*twofactor.SetupResult
	Message string `json:"message"`
}

type verifyResponse struct {
	Success     bool     `json:"success"`
	Method      string   `json:"method"`
	Enabled     bool     `json:"enabled,omitempty"`
	BackupCodes []string `json:"backup_codes,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type backupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

// principal returns the session principal, or nil when there is none.
func principal(ctx handler.Context) *session.Principal {
	p, ok := session.PrincipalFromContext(ctx)
	if !ok {
		return nil
	}
	return p
}

func (m *Module) setup(ctx handler.Context, _ struct{}) handler.Response {
	p := principal(ctx)
	if p == nil || !p.FullyAuthenticated() {
		return handler.Error(errUnauthorized)
	}

	label := ""
	if user, err := m.accounts.GetUser(ctx, p.UserID); err == nil {
		label = user.Email
	} else {
		m.logger.WarnContext(ctx, "account label lookup failed, falling back to user id",
			logger.UserID(p.UserID),
			logger.Error(err),
		)
	}

	res, err := m.svc.Setup(ctx, p.UserID, label)
	if err != nil {
		return handler.Error(mapError(err))
	}

	return handler.JSON(setupResponse{
		SetupResult: res,
		Message:     "Scan the QR code with your authenticator app, then confirm with a code",
	}, handler.WithJSONHeader("Cache-Control", "no-store"))
}

func (m *Module) verify(ctx handler.Context, req VerifyRequest) handler.Response {
	p := principal(ctx)
	if p == nil {
		return handler.Error(errUnauthorized)
	}

	if err := validator.Apply(
		validator.MaxLen("code", req.Code, 16),
		validator.MaxLen("backup_code", req.BackupCode, 32),
	); err != nil {
		return handler.Error(err)
	}

	res, err := m.svc.Verify(ctx, p.UserID, twofactor.VerifyInput{
		Code:       req.Code,
		BackupCode: req.BackupCode,
	})
	if err != nil {
		return handler.Error(mapError(err))
	}

	if p.PendingTwoFactor() {
		if _, err := m.sessions.UpgradeTwoFactor(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
			return handler.Error(mapError(err))
		}
	}

	return handler.JSON(verifyResponse{
		Success:     true,
		Method:      string(res.Method),
		Enabled:     res.Enabled,
		BackupCodes: res.BackupCodes,
	}, handler.WithJSONHeader("Cache-Control", "no-store"))
}

func (m *Module) disable(ctx handler.Context, req PasswordRequest) handler.Response {
	p := principal(ctx)
	if p == nil || !p.FullyAuthenticated() {
		return handler.Error(errUnauthorized)
	}
	if err := m.svc.Disable(ctx, p.UserID, req.Password); err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(successResponse{Success: true})
}

func (m *Module) regenerate(ctx handler.Context, req PasswordRequest) handler.Response {
	p := principal(ctx)
	if p == nil || !p.FullyAuthenticated() {
		return handler.Error(errUnauthorized)
	}
	codes, err := m.svc.RegenerateBackupCodes(ctx, p.UserID, req.Password)
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(backupCodesResponse{BackupCodes: codes}, handler.WithJSONHeader("Cache-Control", "no-store"))
}

func (m *Module) status(ctx handler.Context, _ struct{}) handler.Response {
	p := principal(ctx)
	if p == nil || !p.FullyAuthenticated() {
		return handler.Error(errUnauthorized)
	}
	st, err := m.svc.Status(ctx, p.UserID)
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(st)
}

func (m *Module) getSettings(ctx handler.Context, _ struct{}) handler.Response {
	if !isAdmin(principal(ctx)) {
		return handler.Error(errAdminOnly)
	}
	s, err := m.settings.Get(ctx)
	if err != nil {
		return handler.Error(mapError(err))
	}
	return handler.JSON(s)
}

func (m *Module) updateSettings(ctx handler.Context, req SettingsRequest) handler.Response {
	p := principal(ctx)
	if !isAdmin(p) {
		return handler.Error(errAdminOnly)
	}
	s, err := m.settings.Update(ctx, totp.Settings{
		Issuer: req.Issuer,
		Digits: req.Digits,
		Period: req.Period,
	})
	if err != nil {
		return handler.Error(mapError(err))
	}

	m.logger.InfoContext(ctx, "two-factor settings updated",
		logger.UserID(p.UserID),
		logger.Component("twofactor"),
		logger.Event("settings_updated"),
	)
	return handler.JSON(s)
}

func isAdmin(p *session.Principal) bool {
	return p != nil && p.FullyAuthenticated() && p.Role == auth.RoleAdmin
}
