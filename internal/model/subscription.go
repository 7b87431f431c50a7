package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan string

const (
	SubscriptionPlanTrial   SubscriptionPlan = "trial"
	SubscriptionPlanMonthly SubscriptionPlan = "monthly"
	SubscriptionPlanAnnual  SubscriptionPlan = "annual"
)

func (p SubscriptionPlan) Valid() bool {
	switch p {
	case SubscriptionPlanTrial, SubscriptionPlanMonthly, SubscriptionPlanAnnual:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription gates a tenant's access to the clinic routes. It is billing
// state, not clinic data.
type Subscription struct {
	Base
	TenantID uuid.UUID          `db:"tenant_id" json:"-"`
	Plan     SubscriptionPlan   `db:"plan" json:"plan"`
	Status   SubscriptionStatus `db:"status" json:"status"`
	StartsAt time.Time          `db:"starts_at" json:"starts_at"`
	EndsAt   time.Time          `db:"ends_at" json:"ends_at"`
}

// Usable reports whether the subscription grants access at the given instant.
func (s *Subscription) Usable(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.EndsAt)
}

type ActivateSubscriptionRequest struct {
	Plan string `json:"plan" binding:"required,oneof=monthly annual"`
}
