package middleware

import "context"

type userKey struct{}

type UserCtx struct {
	UserID   int64
	Username string
	Email    string
}

func WithUser(ctx context.Context, u UserCtx) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// FromCtx returns the authenticated caller; ok is false outside Auth.
func FromCtx(ctx context.Context) (UserCtx, bool) {
	u, ok := ctx.Value(userKey{}).(UserCtx)
	return u, ok
}
