package shared

import "context"

type businessContextKey struct{}

type userContextKey struct{}

// ContextWithBusiness stores the tenant business ID in context.
func ContextWithBusiness(ctx context.Context, businessID int64) context.Context {
	return context.WithValue(ctx, businessContextKey{}, businessID)
}

// BusinessFromContext extracts the tenant business ID from context. The
// second return is false when the request was not routed through the tenant
// middleware.
func BusinessFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(businessContextKey{}).(int64)
	return id, ok
}

// ContextWithUser stores the acting user ID in context.
func ContextWithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}

// UserFromContext extracts the acting user ID from context.
func UserFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userContextKey{}).(int64)
	return id, ok
}
