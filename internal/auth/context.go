package auth

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
)

type contextKey struct{}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, session)
}

// SessionFrom returns the session stored in ctx, if any.
func SessionFrom(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(contextKey{}).(*model.Session)
	return session, ok && session != nil
}
