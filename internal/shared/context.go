package shared

import "context"

type ctxKey int

const sessionKey ctxKey = iota

// ContextWithSession attaches the request session so handlers and the CSRF
// layer can reach it without threading it explicitly.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the request session, or nil outside the session
// middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey).(*Session)
	return sess
}
