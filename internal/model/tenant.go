package model

import "time"

type TenantRole string

const (
	TenantRoleOwner TenantRole = "owner"
	TenantRoleAdmin TenantRole = "admin"
)

// Tenant is the owning account of a private data partition. Every other row
// in the schema references a tenant directly or through its appointment chain.
type Tenant struct {
	Base
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         TenantRole `db:"role" json:"role"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// TenantDeletionReport lists how many rows each table lost when a tenant was
// removed, in the order the deletions ran.
type TenantDeletionReport struct {
	PaymentSessions int64 `json:"payment_sessions"`
	Sessions        int64 `json:"sessions"`
	Appointments    int64 `json:"appointments"`
	Payments        int64 `json:"payments"`
	Patients        int64 `json:"patients"`
	Staff           int64 `json:"staff"`
	Specialties     int64 `json:"specialties"`
	Subscriptions   int64 `json:"subscriptions"`
	Tokens          int64 `json:"tokens"`
	OutboxEvents    int64 `json:"outbox_events"`
	Tenants         int64 `json:"tenants"`
}
