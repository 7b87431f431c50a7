package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, tenant_id, plan, status, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.TenantID,
		sub.Plan,
		sub.Status,
		sub.StartsAt,
		sub.EndsAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetCurrent returns the tenant's most recent subscription regardless of
// status; the caller decides whether it still grants access.
func (r *subscriptionRepository) GetCurrent(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	query := `
		SELECT id, tenant_id, plan, status, starts_at, ends_at, created_at, updated_at
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY starts_at DESC
		LIMIT 1
	`
	var sub model.Subscription
	err := r.db.GetContext(ctx, &sub, query, tenantID)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("subscription", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, tenantID uuid.UUID, sub *model.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan = $1, status = $2, starts_at = $3, ends_at = $4, updated_at = $5
		WHERE id = $6 AND tenant_id = $7
	`
	sub.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		sub.Plan,
		sub.Status,
		sub.StartsAt,
		sub.EndsAt,
		sub.UpdatedAt,
		sub.ID,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("subscription", nil)
	}
	return nil
}
