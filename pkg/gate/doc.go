// Package gate decides whether a request may reach its route given the
// session principal, and redirects it elsewhere when not.
//
// Decide is a pure function over the principal, the request path and a set
// of Rules. Middleware applies it to HTTP traffic: browsers get a 303 redirect,
// API clients get a JSON body naming the redirect target.
package gate
