package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

// Sessions carry no tenant_id of their own; ownership is resolved through the
// appointment join, with the tenant filter on the appointments table.

func (r *sessionRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Session, error) {
	query := `
		SELECT s.id, s.appointment_id, s.number, s.scheduled_at, s.status, s.payment_status,
		       s.value_cents, s.original_at, s.rescheduled_at, s.created_at, s.updated_at
		FROM sessions s
		JOIN appointments a ON a.id = s.appointment_id
		WHERE s.id = $1 AND a.tenant_id = $2
	`
	var session model.Session
	err := r.db.GetContext(ctx, &session, query, id, tenantID)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("session", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Update(ctx context.Context, tenantID uuid.UUID, session *model.Session, event *model.OutboxEvent) error {
	session.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE sessions s
			SET scheduled_at = $1, status = $2, payment_status = $3,
			    original_at = $4, rescheduled_at = $5, updated_at = $6
			FROM appointments a
			WHERE s.appointment_id = a.id
			  AND s.id = $7 AND a.tenant_id = $8
		`
		result, err := tx.ExecContext(ctx, query,
			session.ScheduledAt,
			session.Status,
			session.PaymentStatus,
			session.OriginalAt,
			session.RescheduledAt,
			session.UpdatedAt,
			session.ID,
			tenantID,
		)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("session", nil)
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *sessionRepository) List(ctx context.Context, tenantID uuid.UUID, filters *model.SessionFilters) ([]*model.Session, int, error) {
	filters.Normalize()

	where := "WHERE a.tenant_id = $1"
	args := []interface{}{tenantID}

	if filters.AppointmentID != nil {
		args = append(args, *filters.AppointmentID)
		where += fmt.Sprintf(" AND s.appointment_id = $%d", len(args))
	}
	if filters.PatientID != nil {
		args = append(args, *filters.PatientID)
		where += fmt.Sprintf(" AND a.patient_id = $%d", len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += fmt.Sprintf(" AND s.status = $%d", len(args))
	}
	if filters.PaymentStatus != nil {
		args = append(args, *filters.PaymentStatus)
		where += fmt.Sprintf(" AND s.payment_status = $%d", len(args))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		where += fmt.Sprintf(" AND s.scheduled_at >= $%d", len(args))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		where += fmt.Sprintf(" AND s.scheduled_at < $%d", len(args))
	}

	join := "FROM sessions s JOIN appointments a ON a.id = s.appointment_id"

	var total int
	countQuery := "SELECT COUNT(*) " + join + " " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	args = append(args, filters.PageSize, filters.Offset())
	query := fmt.Sprintf(`
		SELECT s.id, s.appointment_id, s.number, s.scheduled_at, s.status, s.payment_status,
		       s.value_cents, s.original_at, s.rescheduled_at, s.created_at, s.updated_at
		%s %s
		ORDER BY s.scheduled_at ASC
		LIMIT $%d OFFSET $%d
	`, join, where, len(args)-1, len(args))

	sessions := []*model.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, total, nil
}
