package session

import "context"

type sessionContextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// PrincipalFromContext returns the principal of the request session, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	p := s.Principal
	return &p, true
}
