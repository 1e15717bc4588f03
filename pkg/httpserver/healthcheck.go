package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/guardkit/pkg/logger"
)

// Check is a named readiness probe for one dependency.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheckHandler returns a handler usable for liveness and readiness probes.
//
// Without checks it always answers 200 with status "alive". With checks it
// runs each one against the request context and answers 200 "ready" when all
// pass, or 503 "not_ready" with the failing check names otherwise. Check
// errors are logged, never returned to the client.
func HealthCheckHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "alive"}
		status := http.StatusOK

		if len(checks) > 0 {
			resp.Status = "ready"
			resp.Checks = make(map[string]string, len(checks))
			for _, c := range checks {
				if err := c.Fn(r.Context()); err != nil {
					log.ErrorContext(r.Context(), "readiness check failed",
						slog.String("check", c.Name),
						logger.Error(err),
					)
					resp.Checks[c.Name] = "fail"
					resp.Status = "not_ready"
					status = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[c.Name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
