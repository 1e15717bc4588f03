// Package clientip resolves the client address of an HTTP request for rate
// limiting and audit logs. Proxy headers are ignored unless the deployment
// sits behind a trusted proxy.
package clientip
