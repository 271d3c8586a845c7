package authctx

import (
	"context"

	"funnybanny-backend/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser is the signed-in account taken from the access token.
type CurrentUser struct {
	AccountID string
	Role      domain.UserRole
	LinkID    string
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
