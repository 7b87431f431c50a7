// Package tenantctx carries the authenticated tenant through a request's
// context. The tenant id is set once by the auth middleware and read by the
// repositories; it is never taken from request payloads.
package tenantctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
)

type contextKey struct{}

type TenantContext struct {
	TenantID uuid.UUID
	Email    string
	Role     model.TenantRole
}

func With(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

func From(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(contextKey{}).(TenantContext)
	return tc, ok
}

// TenantID returns the current tenant id, or uuid.Nil when unauthenticated.
// Repositories treat uuid.Nil as "match nothing" so a missing tenant context
// fails closed.
func TenantID(ctx context.Context) uuid.UUID {
	tc, ok := From(ctx)
	if !ok {
		return uuid.Nil
	}
	return tc.TenantID
}

func IsAdmin(ctx context.Context) bool {
	tc, ok := From(ctx)
	return ok && tc.Role == model.TenantRoleAdmin
}
