package keygate

import (
	"context"
)

var userIDCtxKey = &contextKey{"user_id"}

type contextKey struct {
	name string
}

// WithUserID sets the resolved user id in the given context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext finds the user id the Access Gate resolved, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(userIDCtxKey).(string)
	return raw, ok
}
