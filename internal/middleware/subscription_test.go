package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

type fakeSubscriptionRepo struct {
	current map[uuid.UUID]*model.Subscription
	err     error
	calls   int
}

func (r *fakeSubscriptionRepo) Create(context.Context, *model.Subscription) error { return nil }

func (r *fakeSubscriptionRepo) GetCurrent(_ context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	sub, ok := r.current[tenantID]
	if !ok {
		return nil, apperrors.NotFound("subscription", nil)
	}
	return sub, nil
}

func (r *fakeSubscriptionRepo) Update(context.Context, uuid.UUID, *model.Subscription) error {
	return nil
}

func gateRequest(t *testing.T, gate *SubscriptionGate, tenantID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/patients", gate.Require(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req = req.WithContext(tenantctx.With(req.Context(), tenantctx.TenantContext{TenantID: tenantID}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func usableSubscription(tenantID uuid.UUID) *model.Subscription {
	now := time.Now()
	return &model.Subscription{
		TenantID: tenantID,
		Plan:     model.SubscriptionPlanMonthly,
		Status:   model.SubscriptionStatusActive,
		StartsAt: now.AddDate(0, 0, -1),
		EndsAt:   now.AddDate(0, 1, 0),
	}
}

func TestGateAllowsUsableSubscription(t *testing.T) {
	tenantID := uuid.New()
	repo := &fakeSubscriptionRepo{current: map[uuid.UUID]*model.Subscription{
		tenantID: usableSubscription(tenantID),
	}}
	gate := NewSubscriptionGate(repo, time.Minute, time.Minute)

	w := gateRequest(t, gate, tenantID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateBlocksWithoutSubscription(t *testing.T) {
	repo := &fakeSubscriptionRepo{current: map[uuid.UUID]*model.Subscription{}}
	gate := NewSubscriptionGate(repo, time.Minute, time.Minute)

	w := gateRequest(t, gate, uuid.New())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "subscription")
}

func TestGateCachesVerdict(t *testing.T) {
	tenantID := uuid.New()
	repo := &fakeSubscriptionRepo{current: map[uuid.UUID]*model.Subscription{
		tenantID: usableSubscription(tenantID),
	}}
	gate := NewSubscriptionGate(repo, time.Minute, time.Minute)

	gateRequest(t, gate, tenantID)
	gateRequest(t, gate, tenantID)
	assert.Equal(t, 1, repo.calls)
}

func TestGateInvalidateDropsCache(t *testing.T) {
	tenantID := uuid.New()
	repo := &fakeSubscriptionRepo{current: map[uuid.UUID]*model.Subscription{
		tenantID: usableSubscription(tenantID),
	}}
	gate := NewSubscriptionGate(repo, time.Minute, time.Minute)

	w := gateRequest(t, gate, tenantID)
	assert.Equal(t, http.StatusOK, w.Code)

	// A cancelled subscription keeps passing until the cache is invalidated.
	delete(repo.current, tenantID)
	w = gateRequest(t, gate, tenantID)
	assert.Equal(t, http.StatusOK, w.Code)

	gate.Invalidate(tenantID.String())
	w = gateRequest(t, gate, tenantID)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGateLookupFailureIsNotAVerdict(t *testing.T) {
	tenantID := uuid.New()
	repo := &fakeSubscriptionRepo{
		current: map[uuid.UUID]*model.Subscription{},
		err:     errors.New("connection refused"),
	}
	gate := NewSubscriptionGate(repo, time.Minute, time.Minute)

	// A repository failure surfaces as 500, never as subscription_required.
	w := gateRequest(t, gate, tenantID)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "subscription")

	// And it is not cached: the next request re-checks the repository.
	w = gateRequest(t, gate, tenantID)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 2, repo.calls)

	// Once the database recovers, the tenant passes immediately.
	repo.err = nil
	repo.current[tenantID] = usableSubscription(tenantID)
	w = gateRequest(t, gate, tenantID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateFailsClosedWithoutTenant(t *testing.T) {
	repo := &fakeSubscriptionRepo{current: map[uuid.UUID]*model.Subscription{}}
	gate := NewSubscriptionGate(repo, time.Minute, time.Minute)

	w := gateRequest(t, gate, uuid.Nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
