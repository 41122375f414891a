package authz

import (
	"context"
	"errors"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// AuthUser is the minimal identity attached to an authenticated request.
// The stored password hash is never part of this value.
type AuthUser struct {
	ID    int64
	Name  string
	Email string
	Image string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value
// has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// RequireSession reports ErrUnauthenticated when no identity is attached to ctx.
func RequireSession(ctx context.Context) error {
	if UserFromContext(ctx) == nil {
		return ErrUnauthenticated
	}
	return nil
}
