package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/guardkit/pkg/logger"
)

// determineLogLevel maps HTTP status codes to appropriate log levels
func determineLogLevel(statusCode int) slog.Level {
	if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// NewErrorHandler returns an ErrorHandler that renders errors as JSON
// envelopes and logs them. Client errors log at warn and server errors at
// error level; the full error chain is only ever logged. Request ids are
// expected to come from the logger's context extractors.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		status, detail := errorToDetail(err)

		log.LogAttrs(r.Context(), determineLogLevel(status), "request error",
			logger.Error(err),
			logger.Status(status),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Component("error_handler"),
		)

		resp := jsonResponse{status: status, body: JSONResponse{Error: detail}}
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
