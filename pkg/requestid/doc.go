// Package requestid attaches a correlation identifier to every HTTP request.
//
// Middleware reuses a well-formed X-Request-ID header from the client or
// generates a UUIDv7, stores it in the request context, and echoes it in the
// response header. The id is also stored under chi's middleware.RequestIDKey
// so chi's own helpers see the same value.
//
// LoggerExtractor plugs into logger.WithContextExtractors so every record
// logged with a request context carries the request_id attribute.
package requestid
