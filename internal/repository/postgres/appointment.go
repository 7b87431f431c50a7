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

func insertSessionsTx(ctx context.Context, tx *sqlx.Tx, sessions []*model.Session) error {
	query := `
		INSERT INTO sessions (id, appointment_id, number, scheduled_at, status, payment_status, value_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, s := range sessions {
		_, err := tx.ExecContext(ctx, query,
			s.ID,
			s.AppointmentID,
			s.Number,
			s.ScheduledAt,
			s.Status,
			s.PaymentStatus,
			s.ValueCents,
			s.CreatedAt,
			s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session %d: %w", s.Number, err)
		}
	}
	return nil
}

func (r *appointmentRepository) CreateWithSessions(ctx context.Context, tenantID uuid.UUID, apt *model.Appointment, sessions []*model.Session, event *model.OutboxEvent) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.TenantID = tenantID
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()

	for _, s := range sessions {
		s.ID = uuid.New()
		s.AppointmentID = apt.ID
		s.CreatedAt = apt.CreatedAt
		s.UpdatedAt = apt.CreatedAt
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO appointments (id, tenant_id, patient_id, staff_id, first_session_at, quantity, frequency, price_cents, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err := tx.ExecContext(ctx, query,
			apt.ID,
			apt.TenantID,
			apt.PatientID,
			apt.StaffID,
			apt.FirstSessionAt,
			apt.Quantity,
			apt.Frequency,
			apt.PriceCents,
			apt.Notes,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		if err := insertSessionsTx(ctx, tx, sessions); err != nil {
			return err
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, tenant_id, patient_id, staff_id, first_session_at, quantity, frequency, price_cents, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1 AND tenant_id = $2
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id, tenantID)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// UpdateWithSessions rewrites the appointment header. A non-nil sessions slice
// means the schedule changed: the old session set (and any payment links on
// it) is discarded and the regenerated set inserted in its place.
func (r *appointmentRepository) UpdateWithSessions(ctx context.Context, tenantID uuid.UUID, apt *model.Appointment, sessions []*model.Session, event *model.OutboxEvent) error {
	apt.UpdatedAt = time.Now()

	for _, s := range sessions {
		s.ID = uuid.New()
		s.AppointmentID = apt.ID
		s.CreatedAt = apt.UpdatedAt
		s.UpdatedAt = apt.UpdatedAt
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE appointments
			SET staff_id = $1, first_session_at = $2, quantity = $3, frequency = $4, price_cents = $5, notes = $6, updated_at = $7
			WHERE id = $8 AND tenant_id = $9
		`
		result, err := tx.ExecContext(ctx, query,
			apt.StaffID,
			apt.FirstSessionAt,
			apt.Quantity,
			apt.Frequency,
			apt.PriceCents,
			apt.Notes,
			apt.UpdatedAt,
			apt.ID,
			tenantID,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}

		if sessions != nil {
			queries := []string{
				`DELETE FROM payment_sessions ps
				 USING sessions s
				 WHERE ps.session_id = s.id AND s.appointment_id = $1`,
				`DELETE FROM sessions WHERE appointment_id = $1`,
			}
			for _, q := range queries {
				if _, err := tx.ExecContext(ctx, q, apt.ID); err != nil {
					return fmt.Errorf("failed to discard sessions: %w", err)
				}
			}
			if err := insertSessionsTx(ctx, tx, sessions); err != nil {
				return err
			}
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *appointmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		queries := []string{
			`DELETE FROM payment_sessions ps
			 USING sessions s, appointments a
			 WHERE ps.session_id = s.id
			   AND s.appointment_id = a.id
			   AND a.id = $1 AND a.tenant_id = $2`,
			`DELETE FROM sessions s
			 USING appointments a
			 WHERE s.appointment_id = a.id
			   AND a.id = $1 AND a.tenant_id = $2`,
		}
		for _, q := range queries {
			if _, err := tx.ExecContext(ctx, q, id, tenantID); err != nil {
				return fmt.Errorf("failed to delete appointment sessions: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM appointments WHERE id = $1 AND tenant_id = $2`, id, tenantID)
		if err != nil {
			return fmt.Errorf("failed to delete appointment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *appointmentRepository) List(ctx context.Context, tenantID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	filters.Normalize()

	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}

	if filters.PatientID != nil {
		args = append(args, *filters.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filters.StaffID != nil {
		args = append(args, *filters.StaffID)
		where += fmt.Sprintf(" AND staff_id = $%d", len(args))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		where += fmt.Sprintf(" AND first_session_at >= $%d", len(args))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		where += fmt.Sprintf(" AND first_session_at < $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM appointments " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	args = append(args, filters.PageSize, filters.Offset())
	query := fmt.Sprintf(`
		SELECT id, tenant_id, patient_id, staff_id, first_session_at, quantity, frequency, price_cents, notes, created_at, updated_at
		FROM appointments %s
		ORDER BY first_session_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) CountSessions(ctx context.Context, tenantID, appointmentID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions s
		JOIN appointments a ON a.id = s.appointment_id
		WHERE a.id = $1 AND a.tenant_id = $2
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, appointmentID, tenantID); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
