// Package redis opens a go-redis client from a URL with startup retries and
// exposes a healthcheck probe.
package redis
