package ctx

import (
	"context"

	"github.com/krakosik/symposium/internal/model"
)

type contextKey string

const (
	AdminContextKey contextKey = "admin"
)

type User = model.User

// WithAdmin returns a copy of ctx carrying the authenticated administrator.
func WithAdmin(ctx context.Context, admin User) context.Context {
	return context.WithValue(ctx, AdminContextKey, admin)
}

func GetAdminFromContext(ctx context.Context) (User, bool) {
	admin, ok := ctx.Value(AdminContextKey).(User)
	return admin, ok
}
