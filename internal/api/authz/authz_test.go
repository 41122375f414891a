package authz

import (
	"context"
	"errors"
	"testing"
)

func TestUserFromContext(t *testing.T) {
	if UserFromContext(nil) != nil {
		t.Error("nil context should yield nil user")
	}
	if UserFromContext(context.Background()) != nil {
		t.Error("empty context should yield nil user")
	}

	user := &AuthUser{ID: 7, Email: "admin@fincavilladaniela.com"}
	ctx := ContextWithUser(context.Background(), user)
	if got := UserFromContext(ctx); got != user {
		t.Errorf("UserFromContext = %v, want %v", got, user)
	}
}

func TestRequireSession(t *testing.T) {
	if err := RequireSession(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}

	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 1})
	if err := RequireSession(ctx); err != nil {
		t.Errorf("expected nil error with user in context, got %v", err)
	}
}
