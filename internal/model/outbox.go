package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusProcessed  OutboxStatus = "processed"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// Outbox event types emitted by the clinic services.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentUpdated   = "appointment.updated"
	EventAppointmentCancelled = "appointment.cancelled"
	EventSessionRescheduled   = "session.rescheduled"
)

// OutboxEvent is written in the same transaction as the domain change it
// announces; cmd/worker drains pending rows and performs delivery.
type OutboxEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	TenantID    uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	EventType   string          `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      OutboxStatus    `db:"status" json:"status"`
	RetryCount  int             `db:"retry_count" json:"retry_count"`
	LastError   *string         `db:"last_error" json:"last_error,omitempty"`
	NextRetryAt *time.Time      `db:"next_retry_at" json:"next_retry_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// AppointmentEventPayload is the outbox payload for appointment lifecycle
// events; the worker renders notification emails from it.
type AppointmentEventPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	PatientEmail  string    `json:"patient_email"`
	StaffName     string    `json:"staff_name,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Quantity      int       `json:"quantity"`
	Frequency     string    `json:"frequency"`
	PreviousAt    time.Time `json:"previous_at,omitempty"`
}
