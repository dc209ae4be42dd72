package memory

import "context"

// DefaultSession is used when a request carries no session id.
const DefaultSession = "default"

type sessionKey struct{}

// WithSession attaches the session id to the context so downstream handlers
// can reach the right conversation history.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the attached session id, or DefaultSession.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		return id
	}
	return DefaultSession
}
