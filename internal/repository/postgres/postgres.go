package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/avelar/clinic-api/internal/repository"
)

type tenantRepository struct {
	BaseRepository
}

type tokenRepository struct {
	BaseRepository
}

type specialtyRepository struct {
	BaseRepository
}

type staffRepository struct {
	BaseRepository
}

type patientRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

type sessionRepository struct {
	BaseRepository
}

type paymentRepository struct {
	BaseRepository
}

type subscriptionRepository struct {
	BaseRepository
}

type outboxRepository struct {
	BaseRepository
}

type reportRepository struct {
	BaseRepository
}

func NewTenantRepository(db *sqlx.DB) repository.TenantRepository {
	return &tenantRepository{NewBaseRepository(db)}
}

func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{NewBaseRepository(db)}
}

func NewSpecialtyRepository(db *sqlx.DB) repository.SpecialtyRepository {
	return &specialtyRepository{NewBaseRepository(db)}
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{NewBaseRepository(db)}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{NewBaseRepository(db)}
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{NewBaseRepository(db)}
}

func NewSubscriptionRepository(db *sqlx.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{NewBaseRepository(db)}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{NewBaseRepository(db)}
}
