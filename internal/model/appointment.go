package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/recurrence"
)

// Appointment is an agreement to hold Quantity sessions at Frequency cadence,
// starting at FirstSessionAt, at a fixed per-session price. Deleting an
// appointment cascades to its sessions.
type Appointment struct {
	Base
	TenantID       uuid.UUID            `db:"tenant_id" json:"-"`
	PatientID      uuid.UUID            `db:"patient_id" json:"patient_id"`
	StaffID        *uuid.UUID           `db:"staff_id" json:"staff_id,omitempty"`
	FirstSessionAt time.Time            `db:"first_session_at" json:"first_session_at"`
	Quantity       int                  `db:"quantity" json:"quantity"`
	Frequency      recurrence.Frequency `db:"frequency" json:"frequency"`
	PriceCents     int64                `db:"price_cents" json:"price_cents"`
	Notes          string               `db:"notes" json:"notes,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID      string    `json:"patient_id" binding:"required,uuid"`
	StaffID        *string   `json:"staff_id" binding:"omitempty,uuid"`
	FirstSessionAt time.Time `json:"first_session_at" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,min=1,max=120"`
	Frequency      string    `json:"frequency" binding:"required,frequency"`
	PriceCents     int64     `json:"price_cents" binding:"min=0"`
	Notes          string    `json:"notes" binding:"max=2000"`
}

// UpdateAppointmentRequest carries partial updates. Changing quantity,
// frequency or first session discards and regenerates every session.
type UpdateAppointmentRequest struct {
	StaffID        *string    `json:"staff_id" binding:"omitempty,uuid"`
	FirstSessionAt *time.Time `json:"first_session_at"`
	Quantity       *int       `json:"quantity" binding:"omitempty,min=1,max=120"`
	Frequency      *string    `json:"frequency" binding:"omitempty,frequency"`
	PriceCents     *int64     `json:"price_cents" binding:"omitempty,min=0"`
	Notes          *string    `json:"notes" binding:"omitempty,max=2000"`
}

type AppointmentFilters struct {
	PatientID *uuid.UUID
	StaffID   *uuid.UUID
	From      *time.Time
	To        *time.Time
	Pagination
}
