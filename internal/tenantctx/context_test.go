package tenantctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avelar/clinic-api/internal/model"
)

func TestTenantContextRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := With(context.Background(), TenantContext{
		TenantID: id,
		Email:    "owner@clinic.test",
		Role:     model.TenantRoleOwner,
	})

	tc, ok := From(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, tc.TenantID)
	assert.Equal(t, "owner@clinic.test", tc.Email)
	assert.Equal(t, id, TenantID(ctx))
}

func TestTenantIDFailsClosed(t *testing.T) {
	assert.Equal(t, uuid.Nil, TenantID(context.Background()))

	_, ok := From(context.Background())
	assert.False(t, ok)
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(context.Background()))

	owner := With(context.Background(), TenantContext{TenantID: uuid.New(), Role: model.TenantRoleOwner})
	assert.False(t, IsAdmin(owner))

	admin := With(context.Background(), TenantContext{TenantID: uuid.New(), Role: model.TenantRoleAdmin})
	assert.True(t, IsAdmin(admin))
}
