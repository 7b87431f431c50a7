package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled   SessionStatus = "scheduled"
	SessionStatusCompleted   SessionStatus = "completed"
	SessionStatusCancelled   SessionStatus = "cancelled"
	SessionStatusNoShow      SessionStatus = "no_show"
	SessionStatusRescheduled SessionStatus = "rescheduled"
)

// Valid reports whether s is a known status value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusCompleted, SessionStatusCancelled,
		SessionStatusNoShow, SessionStatusRescheduled:
		return true
	}
	return false
}

// Terminal reports whether s ends the session's lifecycle.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusCancelled, SessionStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo encodes the session state machine:
// scheduled -> completed | cancelled | no_show | rescheduled
// rescheduled -> completed | cancelled | no_show | rescheduled
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	if !next.Valid() || next == SessionStatusScheduled {
		return false
	}
	switch s {
	case SessionStatusScheduled, SessionStatusRescheduled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Session is one scheduled occurrence within an appointment. ValueCents is
// snapshotted from the appointment price at generation time and never re-read.
type Session struct {
	Base
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	Number        int           `db:"number" json:"number"`
	ScheduledAt   time.Time     `db:"scheduled_at" json:"scheduled_at"`
	Status        SessionStatus `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	ValueCents    int64         `db:"value_cents" json:"value_cents"`
	// OriginalAt holds the pre-reschedule date, snapshotted once on the
	// first reschedule and cleared when a terminal status is entered.
	OriginalAt    *time.Time `db:"original_at" json:"original_at,omitempty"`
	RescheduledAt *time.Time `db:"rescheduled_at" json:"rescheduled_at,omitempty"`
}

type UpdateSessionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled no_show"`
}

type RescheduleSessionRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

type SessionFilters struct {
	AppointmentID *uuid.UUID
	PatientID     *uuid.UUID
	Status        *SessionStatus
	PaymentStatus *PaymentStatus
	From          *time.Time
	To            *time.Time
	Pagination
}
