package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

// CreateWithLinks inserts the payment, links it to the sessions and flips them
// to paid, all in one transaction. Ownership of every session is checked
// through the appointment join inside the UPDATE itself: if any requested
// session belongs to another tenant, or is already paid, the row count comes
// up short and the whole transaction rolls back.
func (r *paymentRepository) CreateWithLinks(ctx context.Context, tenantID uuid.UUID, payment *model.Payment, sessionIDs []uuid.UUID) error {
	payment.ID = uuid.New()
	payment.TenantID = tenantID
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO payments (id, tenant_id, patient_id, amount_cents, method, paid_at, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err := tx.ExecContext(ctx, query,
			payment.ID,
			payment.TenantID,
			payment.PatientID,
			payment.AmountCents,
			payment.Method,
			payment.PaidAt,
			payment.Notes,
			payment.CreatedAt,
			payment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		flip := `
			UPDATE sessions s
			SET payment_status = $1, updated_at = $2
			FROM appointments a
			WHERE s.appointment_id = a.id
			  AND a.tenant_id = $3
			  AND s.id = ANY($4)
			  AND s.payment_status = $5
		`
		result, err := tx.ExecContext(ctx, flip,
			model.PaymentStatusPaid,
			payment.UpdatedAt,
			tenantID,
			pq.Array(sessionIDs),
			model.PaymentStatusPending,
		)
		if err != nil {
			return fmt.Errorf("failed to mark sessions paid: %w", err)
		}
		flipped, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if flipped != int64(len(sessionIDs)) {
			return apperrors.BadRequest("one or more sessions do not exist or are already paid", nil)
		}

		link := `INSERT INTO payment_sessions (payment_id, session_id, created_at) VALUES ($1, $2, $3)`
		for _, sid := range sessionIDs {
			if _, err := tx.ExecContext(ctx, link, payment.ID, sid, payment.CreatedAt); err != nil {
				if IsUniqueViolation(err) {
					return apperrors.Conflict("session already linked to a payment", err)
				}
				return fmt.Errorf("failed to link session: %w", err)
			}
		}
		payment.SessionIDs = sessionIDs
		return nil
	})
}

func (r *paymentRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, tenant_id, patient_id, amount_cents, method, paid_at, notes, created_at, updated_at
		FROM payments
		WHERE id = $1 AND tenant_id = $2
	`
	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, query, id, tenantID)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("payment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	sessionIDs, err := r.SessionIDs(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	payment.SessionIDs = sessionIDs
	return &payment, nil
}

// DeleteWithLinks reverts the linked sessions to pending, drops the links and
// removes the payment, all in one transaction.
func (r *paymentRepository) DeleteWithLinks(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		revert := `
			UPDATE sessions s
			SET payment_status = $1, updated_at = $2
			FROM payment_sessions ps, payments p
			WHERE ps.session_id = s.id
			  AND ps.payment_id = p.id
			  AND p.id = $3 AND p.tenant_id = $4
		`
		if _, err := tx.ExecContext(ctx, revert,
			model.PaymentStatusPending, time.Now(), id, tenantID); err != nil {
			return fmt.Errorf("failed to revert sessions: %w", err)
		}

		unlink := `
			DELETE FROM payment_sessions ps
			USING payments p
			WHERE ps.payment_id = p.id
			  AND p.id = $1 AND p.tenant_id = $2
		`
		if _, err := tx.ExecContext(ctx, unlink, id, tenantID); err != nil {
			return fmt.Errorf("failed to unlink sessions: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM payments WHERE id = $1 AND tenant_id = $2`, id, tenantID)
		if err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("payment", nil)
		}
		return nil
	})
}

func (r *paymentRepository) List(ctx context.Context, tenantID uuid.UUID, filters *model.PaymentFilters) ([]*model.Payment, int, error) {
	filters.Normalize()

	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}

	if filters.PatientID != nil {
		args = append(args, *filters.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		where += fmt.Sprintf(" AND paid_at >= $%d", len(args))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		where += fmt.Sprintf(" AND paid_at < $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM payments " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	args = append(args, filters.PageSize, filters.Offset())
	query := fmt.Sprintf(`
		SELECT id, tenant_id, patient_id, amount_cents, method, paid_at, notes, created_at, updated_at
		FROM payments %s
		ORDER BY paid_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	payments := []*model.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepository) SessionIDs(ctx context.Context, tenantID, paymentID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT ps.session_id
		FROM payment_sessions ps
		JOIN payments p ON p.id = ps.payment_id
		WHERE p.id = $1 AND p.tenant_id = $2
		ORDER BY ps.session_id
	`
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, query, paymentID, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list payment sessions: %w", err)
	}
	return ids, nil
}
