// Package session keeps authenticated principals on the server and hands the
// client only an opaque random token.
//
// A Session carries a Principal: the user id, role and two-factor flags.
// After a password login for a user with two-factor enabled the principal is
// intermediate (RequiresTwoFactor set, IsTwoFactorAuthenticated clear). The
// only way to complete it is Manager.UpgradeTwoFactor, a server-side
// transition that also rotates the token, so a client cannot promote its own
// session and a token captured before verification stops working after it.
//
// Stores: MemoryStore for single-process deployments and tests, RedisStore
// for shared state. Transports: CookieTransport encrypts the token in an
// HttpOnly cookie, HeaderTransport reads "Authorization: Bearer <token>",
// and CompositeTransport tries several in order.
//
//	mgr := session.New(
//	    session.WithStore(session.NewRedisStore(rdb)),
//	    session.WithTransport(session.NewCompositeTransport(cookieTransport, session.NewHeaderTransport())),
//	    session.WithConfig(cfg),
//	)
//	router.Use(mgr.Middleware)
package session
