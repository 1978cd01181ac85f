package middleware

import "context"

type contextKey string

const (
	ctxAdminID       contextKey = "admin_id"
	ctxAdminUsername contextKey = "admin_username"
	ctxUserID        contextKey = "user_id"
	ctxUserEmail     contextKey = "user_email"
)

func AdminIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxAdminID).(int64); ok {
		return v
	}
	return 0
}

func AdminUsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminUsername).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

func UserEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserEmail).(string); ok {
		return v
	}
	return ""
}

// WithAdmin injects admin identity into the context, for tests and handlers.
func WithAdmin(ctx context.Context, adminID int64, username string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAdminID, adminID)
	return context.WithValue(ctx, ctxAdminUsername, username)
}

// WithUser injects shopper identity into the context.
func WithUser(ctx context.Context, userID int64, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxUserEmail, email)
}
