// Package httpserver runs an http.Handler with graceful shutdown and exposes
// liveness and readiness handlers.
//
// Run binds the listener before invoking start hooks, so a hook observes a
// server that already accepts connections. Cancelling the context passed to
// Run triggers a shutdown bounded by the configured shutdown timeout.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
package httpserver
