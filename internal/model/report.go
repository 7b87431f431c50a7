package model

import "time"

// DashboardReport aggregates a tenant's sessions and payments over a range.
type DashboardReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	SessionsByStatus  map[SessionStatus]int64 `json:"sessions_by_status"`
	PendingValueCents int64                   `json:"pending_value_cents"`
	PaidValueCents    int64                   `json:"paid_value_cents"`
	ActivePatients    int64                   `json:"active_patients"`
}

type SessionStatusCount struct {
	Status SessionStatus `db:"status"`
	Count  int64         `db:"count"`
}

type PaymentStatusSum struct {
	PaymentStatus PaymentStatus `db:"payment_status"`
	TotalCents    int64         `db:"total_cents"`
}
