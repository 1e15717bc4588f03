package gate

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/session"
)

type config struct {
	isAPI  func(r *http.Request) bool
	logger *slog.Logger
}

type Option func(*config)

// WithAPIDetector overrides how API requests are told apart from browsers.
func WithAPIDetector(fn func(r *http.Request) bool) Option {
	return func(c *config) {
		if fn != nil {
			c.isAPI = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware enforces rules using the principal stored in the request context
// by session.Manager.Middleware.
func Middleware(rules Rules, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		isAPI:  IsAPIRequest,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := session.PrincipalFromContext(r.Context())
			d := Decide(p, r.URL.Path, rules)
			if d.Allow {
				next.ServeHTTP(w, r)
				return
			}

			cfg.logger.DebugContext(r.Context(), "request redirected by access gate",
				logger.Component("gate"),
				logger.Path(r.URL.Path),
				slog.String("reason", string(d.Reason)),
				slog.String("redirect", d.Redirect),
			)

			if cfg.isAPI(r) {
				writeJSON(w, d)
				return
			}
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		})
	}
}

// IsAPIRequest treats requests asking for JSON or carrying a bearer token as
// API calls.
func IsAPIRequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
}

type redirectBody struct {
	Error redirectError `json:"error"`
}

type redirectError struct {
	Code     string `json:"code"`
	Reason   Reason `json:"reason"`
	Redirect string `json:"redirect"`
}

func writeJSON(w http.ResponseWriter, d Decision) {
	status := http.StatusUnauthorized
	if d.Reason == ReasonForbiddenRole || d.Reason == ReasonAlreadyVerified {
		status = http.StatusForbidden
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(redirectBody{Error: redirectError{
		Code:     "redirect",
		Reason:   d.Reason,
		Redirect: d.Redirect,
	}})
}
