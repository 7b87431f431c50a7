package model

import "github.com/google/uuid"

// Specialty names are unique per tenant, not globally.
type Specialty struct {
	Base
	TenantID    uuid.UUID `db:"tenant_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
}

type CreateSpecialtyRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=1000"`
}

type UpdateSpecialtyRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}
