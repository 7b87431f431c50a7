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

func (r *patientRepository) Create(ctx context.Context, tenantID uuid.UUID, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, tenant_id, name, email, phone, birth_date, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8, $9, $10)
	`
	patient.ID = uuid.New()
	patient.TenantID = tenantID
	patient.Active = true
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.TenantID,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.BirthDate,
		patient.Notes,
		patient.Active,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("a patient with this email already exists", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, birth_date, notes, active, created_at, updated_at
		FROM patients
		WHERE id = $1 AND tenant_id = $2
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id, tenantID)
	if IsNoRows(err) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, tenantID uuid.UUID, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, email = lower($2), phone = $3, birth_date = $4, notes = $5, active = $6, updated_at = $7
		WHERE id = $8 AND tenant_id = $9
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.BirthDate,
		patient.Notes,
		patient.Active,
		patient.UpdatedAt,
		patient.ID,
		tenantID,
	)
	if IsUniqueViolation(err) {
		return apperrors.Conflict("a patient with this email already exists", err)
	}
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

// Delete removes the patient together with its appointments, their sessions
// and any payment links referencing those sessions, in one transaction.
// Payments themselves survive as historical records.
func (r *patientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		queries := []string{
			`DELETE FROM payment_sessions ps
			 USING sessions s, appointments a
			 WHERE ps.session_id = s.id
			   AND s.appointment_id = a.id
			   AND a.patient_id = $1 AND a.tenant_id = $2`,
			`DELETE FROM sessions s
			 USING appointments a
			 WHERE s.appointment_id = a.id
			   AND a.patient_id = $1 AND a.tenant_id = $2`,
			`DELETE FROM appointments
			 WHERE patient_id = $1 AND tenant_id = $2`,
		}
		for _, q := range queries {
			if _, err := tx.ExecContext(ctx, q, id, tenantID); err != nil {
				return fmt.Errorf("failed to delete patient data: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM patients WHERE id = $1 AND tenant_id = $2`, id, tenantID)
		if err != nil {
			return fmt.Errorf("failed to delete patient: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("patient", nil)
		}
		return nil
	})
}

func (r *patientRepository) List(ctx context.Context, tenantID uuid.UUID, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	filters.Normalize()

	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}

	if filters.SearchTerm != "" {
		args = append(args, "%"+filters.SearchTerm+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	if filters.Active != nil {
		args = append(args, *filters.Active)
		where += fmt.Sprintf(" AND active = $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM patients " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	args = append(args, filters.PageSize, filters.Offset())
	query := fmt.Sprintf(`
		SELECT id, tenant_id, name, email, phone, birth_date, notes, active, created_at, updated_at
		FROM patients %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}
