package gate

import (
	"strings"

	"github.com/dmitrymomot/guardkit/pkg/session"
)

// Reason explains a Decision.
type Reason string

const (
	ReasonPublic            Reason = "public"
	ReasonAllowed           Reason = "allowed"
	ReasonUnauthenticated   Reason = "unauthenticated"
	ReasonTwoFactorRequired Reason = "two_factor_required"
	ReasonAlreadyVerified   Reason = "already_verified"
	ReasonForbiddenRole     Reason = "forbidden_role"
)

// RoleRule restricts every path under Prefix to Role.
type RoleRule struct {
	Prefix string
	Role   string
}

type Rules struct {
	LoginPath   string
	VerifyPath  string
	HomePath    string
	NeutralPath string

	// PublicPaths are reachable without a session.
	PublicPaths []string
	// TwoFactorPaths stay reachable while the second factor is pending,
	// in addition to VerifyPath.
	TwoFactorPaths []string
	RoleRules      []RoleRule
}

type Decision struct {
	Allow    bool
	Redirect string
	Reason   Reason
}

// Decide evaluates rules in order: public routes, missing session, pending
// second factor, verified user on the verify page, role restrictions.
func Decide(p *session.Principal, path string, rules Rules) Decision {
	if matchAny(path, rules.PublicPaths) {
		return Decision{Allow: true, Reason: ReasonPublic}
	}

	if p == nil {
		return Decision{Redirect: rules.LoginPath, Reason: ReasonUnauthenticated}
	}

	if p.PendingTwoFactor() {
		if path == rules.VerifyPath || matchAny(path, rules.TwoFactorPaths) {
			return Decision{Allow: true, Reason: ReasonAllowed}
		}
		return Decision{Redirect: rules.VerifyPath, Reason: ReasonTwoFactorRequired}
	}

	if rules.VerifyPath != "" && path == rules.VerifyPath {
		return Decision{Redirect: rules.HomePath, Reason: ReasonAlreadyVerified}
	}

	for _, rr := range rules.RoleRules {
		if match(path, rr.Prefix) && p.Role != rr.Role {
			return Decision{Redirect: rules.NeutralPath, Reason: ReasonForbiddenRole}
		}
	}

	return Decision{Allow: true, Reason: ReasonAllowed}
}

func matchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if match(path, p) {
			return true
		}
	}
	return false
}

// match reports whether path equals prefix or lies under it on a segment
// boundary, so "/admin" matches "/admin/x" but not "/administrator".
func match(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
