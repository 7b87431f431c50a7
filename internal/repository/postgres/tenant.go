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

func (r *tenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, lower($4), $5, $6, $7)
	`
	tenant.ID = uuid.New()
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Email,
		tenant.PasswordHash,
		tenant.Role,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("email already registered", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *tenantRepository) Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	query := `
		SELECT id, name, email, password_hash, role, last_login_at, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	var tenant model.Tenant
	err := r.db.GetContext(ctx, &tenant, query, id)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("tenant", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByEmail(ctx context.Context, email string) (*model.Tenant, error) {
	query := `
		SELECT id, name, email, password_hash, role, last_login_at, created_at, updated_at
		FROM tenants
		WHERE email = lower($1)
	`
	var tenant model.Tenant
	err := r.db.GetContext(ctx, &tenant, query, email)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("tenant", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant by email: %w", err)
	}
	return &tenant, nil
}

func (r *tenantRepository) Update(ctx context.Context, tenant *model.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, password_hash = $2, last_login_at = $3, updated_at = $4
		WHERE id = $5
	`
	tenant.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		tenant.Name,
		tenant.PasswordHash,
		tenant.LastLoginAt,
		tenant.UpdatedAt,
		tenant.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("tenant", nil)
	}
	return nil
}

// DeleteCascade removes every row the tenant owns, leaves first. The order
// matters: payment links reference sessions and payments, sessions reference
// appointments, appointments reference patients and staff.
func (r *tenantRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*model.TenantDeletionReport, error) {
	report := &model.TenantDeletionReport{}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		steps := []struct {
			count *int64
			query string
		}{
			{&report.PaymentSessions, `
				DELETE FROM payment_sessions ps
				USING payments p
				WHERE ps.payment_id = p.id AND p.tenant_id = $1`},
			{&report.Sessions, `
				DELETE FROM sessions s
				USING appointments a
				WHERE s.appointment_id = a.id AND a.tenant_id = $1`},
			{&report.Appointments, `DELETE FROM appointments WHERE tenant_id = $1`},
			{&report.Payments, `DELETE FROM payments WHERE tenant_id = $1`},
			{&report.Patients, `DELETE FROM patients WHERE tenant_id = $1`},
			{&report.Staff, `DELETE FROM staff WHERE tenant_id = $1`},
			{&report.Specialties, `DELETE FROM specialties WHERE tenant_id = $1`},
			{&report.Subscriptions, `DELETE FROM subscriptions WHERE tenant_id = $1`},
			{&report.Tokens, `DELETE FROM tenant_tokens WHERE tenant_id = $1`},
			{&report.OutboxEvents, `DELETE FROM outbox_events WHERE tenant_id = $1`},
			{&report.Tenants, `DELETE FROM tenants WHERE id = $1`},
		}

		for _, step := range steps {
			result, err := tx.ExecContext(ctx, step.query, id)
			if err != nil {
				return fmt.Errorf("cascade delete failed: %w", err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			*step.count = n
		}

		if report.Tenants == 0 {
			return apperrors.NotFound("tenant", nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
