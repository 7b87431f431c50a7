package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

func (r *staffRepository) Create(ctx context.Context, tenantID uuid.UUID, staff *model.Staff) error {
	query := `
		INSERT INTO staff (id, tenant_id, specialty_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, lower($5), $6, $7, $8)
	`
	staff.ID = uuid.New()
	staff.TenantID = tenantID
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.TenantID,
		staff.SpecialtyID,
		staff.Name,
		staff.Email,
		staff.Phone,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("a staff member with this email already exists", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, tenant_id, specialty_id, name, email, phone, created_at, updated_at
		FROM staff
		WHERE id = $1 AND tenant_id = $2
	`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, id, tenantID)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("staff", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, tenantID uuid.UUID, staff *model.Staff) error {
	query := `
		UPDATE staff
		SET specialty_id = $1, name = $2, email = lower($3), phone = $4, updated_at = $5
		WHERE id = $6 AND tenant_id = $7
	`
	staff.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		staff.SpecialtyID,
		staff.Name,
		staff.Email,
		staff.Phone,
		staff.UpdatedAt,
		staff.ID,
		tenantID,
	)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("a staff member with this email already exists", err)
	}
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("staff", nil)
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	// Appointments keep their history: staff_id is nulled, not cascaded.
	query := `
		WITH unassigned AS (
			UPDATE appointments SET staff_id = NULL
			WHERE staff_id = $1 AND tenant_id = $2
		)
		DELETE FROM staff WHERE id = $1 AND tenant_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("staff", nil)
	}
	return nil
}

func (r *staffRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT id, tenant_id, specialty_id, name, email, phone, created_at, updated_at
		FROM staff
		WHERE tenant_id = $1
		ORDER BY name ASC
	`
	staff := []*model.Staff{}
	err := r.db.SelectContext(ctx, &staff, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}
