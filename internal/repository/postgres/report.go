package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
)

func (r *reportRepository) SessionsByStatus(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*model.SessionStatusCount, error) {
	query := `
		SELECT s.status, COUNT(*) AS count
		FROM sessions s
		JOIN appointments a ON a.id = s.appointment_id
		WHERE a.tenant_id = $1
		AND s.scheduled_at >= $2 AND s.scheduled_at < $3
		GROUP BY s.status
	`
	counts := []*model.SessionStatusCount{}
	if err := r.db.SelectContext(ctx, &counts, query, tenantID, from, to); err != nil {
		return nil, fmt.Errorf("failed to count sessions by status: %w", err)
	}
	return counts, nil
}

func (r *reportRepository) ValueByPaymentStatus(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*model.PaymentStatusSum, error) {
	query := `
		SELECT s.payment_status, COALESCE(SUM(s.value_cents), 0) AS total_cents
		FROM sessions s
		JOIN appointments a ON a.id = s.appointment_id
		WHERE a.tenant_id = $1
		AND s.scheduled_at >= $2 AND s.scheduled_at < $3
		AND s.status NOT IN ($4, $5)
		GROUP BY s.payment_status
	`
	sums := []*model.PaymentStatusSum{}
	err := r.db.SelectContext(ctx, &sums, query, tenantID, from, to,
		model.SessionStatusCancelled, model.SessionStatusNoShow)
	if err != nil {
		return nil, fmt.Errorf("failed to sum session values: %w", err)
	}
	return sums, nil
}

func (r *reportRepository) ActivePatients(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM patients
		WHERE tenant_id = $1 AND active = TRUE
	`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, tenantID); err != nil {
		return 0, fmt.Errorf("failed to count active patients: %w", err)
	}
	return count, nil
}
