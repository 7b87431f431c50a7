package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

type fakeSubscriptionRepo struct {
	current map[uuid.UUID]*model.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{current: make(map[uuid.UUID]*model.Subscription)}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *model.Subscription) error {
	sub.ID = uuid.New()
	r.current[sub.TenantID] = sub
	return nil
}

func (r *fakeSubscriptionRepo) GetCurrent(_ context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	sub, ok := r.current[tenantID]
	if !ok {
		return nil, apperrors.NotFound("subscription", nil)
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, tenantID uuid.UUID, sub *model.Subscription) error {
	if _, ok := r.current[tenantID]; !ok {
		return apperrors.NotFound("subscription", nil)
	}
	copied := *sub
	r.current[tenantID] = &copied
	return nil
}

func TestActivateMonthly(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, zerolog.Nop())
	tenantID := uuid.New()

	sub, err := svc.Activate(context.Background(), tenantID, &model.ActivateSubscriptionRequest{Plan: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPlanMonthly, sub.Plan)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.Usable(time.Now()))
	assert.WithinDuration(t, time.Now().AddDate(0, 1, 0), sub.EndsAt, time.Minute)
}

func TestActivateAnnualOverTrial(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, zerolog.Nop())
	tenantID := uuid.New()

	now := time.Now()
	repo.current[tenantID] = &model.Subscription{
		Base:     model.Base{ID: uuid.New()},
		TenantID: tenantID,
		Plan:     model.SubscriptionPlanTrial,
		Status:   model.SubscriptionStatusActive,
		StartsAt: now.AddDate(0, 0, -7),
		EndsAt:   now.AddDate(0, 0, 7),
	}

	sub, err := svc.Activate(context.Background(), tenantID, &model.ActivateSubscriptionRequest{Plan: "annual"})
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPlanAnnual, sub.Plan)
	assert.WithinDuration(t, now.AddDate(1, 0, 0), sub.EndsAt, time.Minute)
}

func TestActivateRejectsUsablePaidPlan(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, zerolog.Nop())
	tenantID := uuid.New()

	now := time.Now()
	repo.current[tenantID] = &model.Subscription{
		Base:     model.Base{ID: uuid.New()},
		TenantID: tenantID,
		Plan:     model.SubscriptionPlanMonthly,
		Status:   model.SubscriptionStatusActive,
		StartsAt: now,
		EndsAt:   now.AddDate(0, 1, 0),
	}

	_, err := svc.Activate(context.Background(), tenantID, &model.ActivateSubscriptionRequest{Plan: "annual"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestActivateAfterExpiry(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, zerolog.Nop())
	tenantID := uuid.New()

	now := time.Now()
	repo.current[tenantID] = &model.Subscription{
		Base:     model.Base{ID: uuid.New()},
		TenantID: tenantID,
		Plan:     model.SubscriptionPlanMonthly,
		Status:   model.SubscriptionStatusActive,
		StartsAt: now.AddDate(0, -2, 0),
		EndsAt:   now.AddDate(0, -1, 0),
	}

	sub, err := svc.Activate(context.Background(), tenantID, &model.ActivateSubscriptionRequest{Plan: "monthly"})
	require.NoError(t, err)
	assert.True(t, sub.Usable(time.Now()))
}

func TestCancel(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewService(repo, zerolog.Nop())
	tenantID := uuid.New()

	_, err := svc.Activate(context.Background(), tenantID, &model.ActivateSubscriptionRequest{Plan: "monthly"})
	require.NoError(t, err)

	sub, err := svc.Cancel(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusCancelled, sub.Status)
	assert.False(t, sub.Usable(time.Now()))

	_, err = svc.Cancel(context.Background(), tenantID)
	assert.True(t, apperrors.IsConflict(err))
}

func TestSubscriptionUsableWindow(t *testing.T) {
	now := time.Now()
	sub := &model.Subscription{
		Status:   model.SubscriptionStatusActive,
		StartsAt: now.AddDate(0, 0, -1),
		EndsAt:   now.AddDate(0, 0, 1),
	}
	assert.True(t, sub.Usable(now))
	assert.False(t, sub.Usable(now.AddDate(0, 0, 2)))

	sub.Status = model.SubscriptionStatusPastDue
	assert.False(t, sub.Usable(now))
}
