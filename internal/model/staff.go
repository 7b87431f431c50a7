package model

import "github.com/google/uuid"

type Staff struct {
	Base
	TenantID    uuid.UUID  `db:"tenant_id" json:"-"`
	SpecialtyID *uuid.UUID `db:"specialty_id" json:"specialty_id,omitempty"`
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
}

type CreateStaffRequest struct {
	Name        string  `json:"name" binding:"required,max=120"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       string  `json:"phone" binding:"max=32"`
	SpecialtyID *string `json:"specialty_id" binding:"omitempty,uuid"`
}

type UpdateStaffRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=32"`
	SpecialtyID *string `json:"specialty_id" binding:"omitempty,uuid"`
}
