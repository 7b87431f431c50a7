package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

type Service struct {
	repo   repository.SubscriptionRepository
	logger zerolog.Logger
}

func NewService(repo repository.SubscriptionRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetCurrent(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	return s.repo.GetCurrent(ctx, tenantID)
}

// Activate opens a paid subscription starting now. A still-usable paid plan
// cannot be activated over; an expired, cancelled or trial plan can.
func (s *Service) Activate(ctx context.Context, tenantID uuid.UUID, req *model.ActivateSubscriptionRequest) (*model.Subscription, error) {
	plan := model.SubscriptionPlan(req.Plan)
	now := time.Now()

	current, err := s.repo.GetCurrent(ctx, tenantID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	if current != nil && current.Usable(now) && current.Plan != model.SubscriptionPlanTrial {
		return nil, apperrors.Conflict("an active subscription already exists", nil)
	}

	endsAt := now.AddDate(0, 1, 0)
	if plan == model.SubscriptionPlanAnnual {
		endsAt = now.AddDate(1, 0, 0)
	}

	sub := &model.Subscription{
		TenantID: tenantID,
		Plan:     plan,
		Status:   model.SubscriptionStatusActive,
		StartsAt: now,
		EndsAt:   endsAt,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("plan", string(plan)).
		Time("ends_at", endsAt).
		Msg("subscription activated")
	return sub, nil
}

// Cancel marks the current subscription cancelled. Access ends immediately;
// the subscription gate stops accepting the tenant on its next cache refresh.
func (s *Service) Cancel(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	current, err := s.repo.GetCurrent(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if current.Status == model.SubscriptionStatusCancelled {
		return nil, apperrors.Conflict("subscription is already cancelled", nil)
	}

	current.Status = model.SubscriptionStatusCancelled
	if err := s.repo.Update(ctx, tenantID, current); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Msg("subscription cancelled")
	return current, nil
}
