package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
)

// Every method that touches tenant-owned data takes the owning tenant id as
// an explicit parameter, so an unscoped query is visible at the call site.
// A row that exists under another tenant behaves exactly like a missing row.
type (
	TenantRepository interface {
		Create(ctx context.Context, tenant *model.Tenant) error
		Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
		GetByEmail(ctx context.Context, email string) (*model.Tenant, error)
		Update(ctx context.Context, tenant *model.Tenant) error
		// DeleteCascade removes every row the tenant owns, in dependency
		// order, inside one transaction, and reports per-table counts.
		DeleteCascade(ctx context.Context, id uuid.UUID) (*model.TenantDeletionReport, error)
	}

	TokenRepository interface {
		StoreRefreshToken(ctx context.Context, tenantID uuid.UUID, token string, expiry time.Time) error
		ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error)
		InvalidateToken(ctx context.Context, token string) error
		InvalidateTenantTokens(ctx context.Context, tenantID uuid.UUID) error
	}

	SpecialtyRepository interface {
		Create(ctx context.Context, tenantID uuid.UUID, specialty *model.Specialty) error
		Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Specialty, error)
		Update(ctx context.Context, tenantID uuid.UUID, specialty *model.Specialty) error
		Delete(ctx context.Context, tenantID, id uuid.UUID) error
		List(ctx context.Context, tenantID uuid.UUID) ([]*model.Specialty, error)
		CountStaffReferences(ctx context.Context, tenantID, specialtyID uuid.UUID) (int64, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, tenantID uuid.UUID, staff *model.Staff) error
		Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Staff, error)
		Update(ctx context.Context, tenantID uuid.UUID, staff *model.Staff) error
		Delete(ctx context.Context, tenantID, id uuid.UUID) error
		List(ctx context.Context, tenantID uuid.UUID) ([]*model.Staff, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, tenantID uuid.UUID, patient *model.Patient) error
		Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, tenantID uuid.UUID, patient *model.Patient) error
		// Delete removes the patient and everything hanging off it
		// (appointments, sessions, payment links) in one transaction.
		Delete(ctx context.Context, tenantID, id uuid.UUID) error
		List(ctx context.Context, tenantID uuid.UUID, filters *model.PatientFilters) ([]*model.Patient, int, error)
	}

	AppointmentRepository interface {
		// CreateWithSessions persists the appointment header, its generated
		// sessions and the notification outbox row in one transaction.
		CreateWithSessions(ctx context.Context, tenantID uuid.UUID, apt *model.Appointment, sessions []*model.Session, event *model.OutboxEvent) error
		Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Appointment, error)
		// UpdateWithSessions updates the header and, when sessions is
		// non-nil, discards and re-inserts the full session set.
		UpdateWithSessions(ctx context.Context, tenantID uuid.UUID, apt *model.Appointment, sessions []*model.Session, event *model.OutboxEvent) error
		Delete(ctx context.Context, tenantID, id uuid.UUID, event *model.OutboxEvent) error
		List(ctx context.Context, tenantID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
		CountSessions(ctx context.Context, tenantID, appointmentID uuid.UUID) (int, error)
	}

	SessionRepository interface {
		// Get scopes through the appointment join; the tenant filter sits
		// on the appointments table, the root of the join.
		Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Session, error)
		Update(ctx context.Context, tenantID uuid.UUID, session *model.Session, event *model.OutboxEvent) error
		List(ctx context.Context, tenantID uuid.UUID, filters *model.SessionFilters) ([]*model.Session, int, error)
	}

	PaymentRepository interface {
		// CreateWithLinks inserts the payment, links the sessions and flips
		// them to paid in one transaction. Session ownership is verified
		// through the appointment join inside the same statement.
		CreateWithLinks(ctx context.Context, tenantID uuid.UUID, payment *model.Payment, sessionIDs []uuid.UUID) error
		Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Payment, error)
		// DeleteWithLinks removes the payment and its links and reverts the
		// linked sessions to pending in one transaction.
		DeleteWithLinks(ctx context.Context, tenantID, id uuid.UUID) error
		List(ctx context.Context, tenantID uuid.UUID, filters *model.PaymentFilters) ([]*model.Payment, int, error)
		SessionIDs(ctx context.Context, tenantID, paymentID uuid.UUID) ([]uuid.UUID, error)
	}

	SubscriptionRepository interface {
		Create(ctx context.Context, sub *model.Subscription) error
		GetCurrent(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error)
		Update(ctx context.Context, tenantID uuid.UUID, sub *model.Subscription) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending flips up to limit deliverable events to processing and
		// returns them; a claimed event is invisible to other workers until
		// MarkProcessed or MarkFailed settles it.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, nextRetryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	ReportRepository interface {
		SessionsByStatus(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*model.SessionStatusCount, error)
		ValueByPaymentStatus(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*model.PaymentStatusSum, error)
		ActivePatients(ctx context.Context, tenantID uuid.UUID) (int64, error)
	}
)
