package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

// Specialty names are unique per (tenant_id, lower(name)); the partial index
// lets two tenants use the same name independently.

func (r *specialtyRepository) Create(ctx context.Context, tenantID uuid.UUID, specialty *model.Specialty) error {
	query := `
		INSERT INTO specialties (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	specialty.ID = uuid.New()
	specialty.TenantID = tenantID
	specialty.CreatedAt = time.Now()
	specialty.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		specialty.ID,
		specialty.TenantID,
		specialty.Name,
		specialty.Description,
		specialty.CreatedAt,
		specialty.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("a specialty with this name already exists", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create specialty: %w", err)
	}
	return nil
}

func (r *specialtyRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Specialty, error) {
	query := `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM specialties
		WHERE id = $1 AND tenant_id = $2
	`
	var specialty model.Specialty
	err := r.db.GetContext(ctx, &specialty, query, id, tenantID)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("specialty", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get specialty: %w", err)
	}
	return &specialty, nil
}

func (r *specialtyRepository) Update(ctx context.Context, tenantID uuid.UUID, specialty *model.Specialty) error {
	query := `
		UPDATE specialties
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4 AND tenant_id = $5
	`
	specialty.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		specialty.Name,
		specialty.Description,
		specialty.UpdatedAt,
		specialty.ID,
		tenantID,
	)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("a specialty with this name already exists", err)
	}
	if err != nil {
		return fmt.Errorf("failed to update specialty: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("specialty", nil)
	}
	return nil
}

func (r *specialtyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM specialties WHERE id = $1 AND tenant_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete specialty: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("specialty", nil)
	}
	return nil
}

func (r *specialtyRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*model.Specialty, error) {
	query := `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM specialties
		WHERE tenant_id = $1
		ORDER BY name ASC
	`
	specialties := []*model.Specialty{}
	err := r.db.SelectContext(ctx, &specialties, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *specialtyRepository) CountStaffReferences(ctx context.Context, tenantID, specialtyID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM staff
		WHERE specialty_id = $1 AND tenant_id = $2
	`
	var count int64
	err := r.db.GetContext(ctx, &count, query, specialtyID, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to count staff references: %w", err)
	}
	return count, nil
}
