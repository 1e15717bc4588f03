// Package logger builds *slog.Logger instances and provides attribute helpers
// so log keys stay consistent across packages.
//
// New applies options on top of JSON-at-info defaults. WithEnvironment picks
// text/debug for development and JSON/info otherwise. Context extractors add
// request-scoped attributes such as the request id to every record logged
// with a context.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, cfg.AppName),
//	    logger.WithContextExtractors(requestIDExtractor),
//	)
//	log.ErrorContext(ctx, "verify failed", logger.UserID(id), logger.Error(err))
package logger
