package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Base
	TenantID  uuid.UUID  `db:"tenant_id" json:"-"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Notes     string     `db:"notes" json:"notes,omitempty"`
	Active    bool       `db:"active" json:"active"`
}

type CreatePatientRequest struct {
	Name      string     `json:"name" binding:"required,max=120"`
	Email     string     `json:"email" binding:"required,email"`
	Phone     string     `json:"phone" binding:"max=32"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     string     `json:"notes" binding:"max=2000"`
}

type UpdatePatientRequest struct {
	Name      *string    `json:"name" binding:"omitempty,max=120"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Phone     *string    `json:"phone" binding:"omitempty,max=32"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     *string    `json:"notes" binding:"omitempty,max=2000"`
	Active    *bool      `json:"active"`
}

type PatientFilters struct {
	SearchTerm string
	Active     *bool
	Pagination
}
