package tenants

import "context"

type contextKey struct{}

// ContextWithTenant stores the resolved tenant on the request context.
func ContextWithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, tenant)
}

// FromContext returns the tenant placed by the auth middleware, if any.
func FromContext(ctx context.Context) *Tenant {
	tenant, _ := ctx.Value(contextKey{}).(*Tenant)
	return tenant
}
