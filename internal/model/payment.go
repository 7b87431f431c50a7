package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodPix      PaymentMethod = "pix"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodPix:
		return true
	}
	return false
}

// Payment is a money receipt linked to one or more sessions through the
// payment_sessions association table. Creating a payment flips its sessions
// to paid; deleting it reverts them to pending. Both run in one transaction.
type Payment struct {
	Base
	TenantID    uuid.UUID     `db:"tenant_id" json:"-"`
	PatientID   uuid.UUID     `db:"patient_id" json:"patient_id"`
	AmountCents int64         `db:"amount_cents" json:"amount_cents"`
	Method      PaymentMethod `db:"method" json:"method"`
	PaidAt      time.Time     `db:"paid_at" json:"paid_at"`
	Notes       string        `db:"notes" json:"notes,omitempty"`

	SessionIDs []uuid.UUID `db:"-" json:"session_ids,omitempty"`
}

type CreatePaymentRequest struct {
	PatientID   string     `json:"patient_id" binding:"required,uuid"`
	AmountCents int64      `json:"amount_cents" binding:"required,min=1"`
	Method      string     `json:"method" binding:"required,oneof=cash card transfer pix"`
	PaidAt      *time.Time `json:"paid_at"`
	Notes       string     `json:"notes" binding:"max=1000"`
	SessionIDs  []string   `json:"session_ids" binding:"required,min=1,dive,uuid"`
}

type PaymentFilters struct {
	PatientID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Pagination
}
