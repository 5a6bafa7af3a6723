package middleware

import "context"

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxRole       contextKey = "actor_role"
	ctxSupplierID contextKey = "supplier_id"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

// UserIDFromContext returns the authenticated user id, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxUserID)
}

// RoleFromContext returns the authenticated actor role, or "" when absent.
func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

// SupplierIDFromContext returns the caller's supplier id, or "" when the
// caller is not a supplier user.
func SupplierIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxSupplierID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withString(ctx, ctxRole, role)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

func WithSupplierID(ctx context.Context, supplierID string) context.Context {
	return withString(ctx, ctxSupplierID, supplierID)
}
