package appointment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/recurrence"
	"github.com/avelar/clinic-api/internal/repository"
	"github.com/avelar/clinic-api/pkg/metrics"
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	staff    repository.StaffRepository
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	staff repository.StaffRepository,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		staff:    staff,
		logger:   logger,
		metrics:  m,
	}
}

// buildSessions materializes the appointment's schedule. Every session starts
// scheduled/pending and snapshots the per-session price.
func buildSessions(apt *model.Appointment) ([]*model.Session, error) {
	dates, err := recurrence.Expand(apt.FirstSessionAt, apt.Quantity, apt.Frequency)
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, len(dates))
	for i, at := range dates {
		sessions[i] = &model.Session{
			Number:        i + 1,
			ScheduledAt:   at,
			Status:        model.SessionStatusScheduled,
			PaymentStatus: model.PaymentStatusPending,
			ValueCents:    apt.PriceCents,
		}
	}
	return sessions, nil
}

func (s *Service) buildEvent(ctx context.Context, tenantID uuid.UUID, eventType string, apt *model.Appointment) *model.OutboxEvent {
	payload := model.AppointmentEventPayload{
		AppointmentID: apt.ID,
		ScheduledAt:   apt.FirstSessionAt,
		Quantity:      apt.Quantity,
		Frequency:     string(apt.Frequency),
	}

	if patient, err := s.patients.Get(ctx, tenantID, apt.PatientID); err == nil {
		payload.PatientName = patient.Name
		payload.PatientEmail = patient.Email
	}
	if apt.StaffID != nil {
		if member, err := s.staff.Get(ctx, tenantID, *apt.StaffID); err == nil {
			payload.StaffName = member.Name
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal event payload")
		raw = json.RawMessage("{}")
	}

	return &model.OutboxEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		EventType: eventType,
		Payload:   raw,
	}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id: %w", err)
	}
	if _, err := s.patients.Get(ctx, tenantID, patientID); err != nil {
		return nil, err
	}

	var staffID *uuid.UUID
	if req.StaffID != nil && *req.StaffID != "" {
		id, err := uuid.Parse(*req.StaffID)
		if err != nil {
			return nil, fmt.Errorf("invalid staff id: %w", err)
		}
		if _, err := s.staff.Get(ctx, tenantID, id); err != nil {
			return nil, err
		}
		staffID = &id
	}

	apt := &model.Appointment{
		PatientID:      patientID,
		StaffID:        staffID,
		FirstSessionAt: req.FirstSessionAt,
		Quantity:       req.Quantity,
		Frequency:      recurrence.Frequency(req.Frequency),
		PriceCents:     req.PriceCents,
		Notes:          req.Notes,
	}

	sessions, err := buildSessions(apt)
	if err != nil {
		return nil, err
	}

	apt.ID = uuid.New()
	event := s.buildEvent(ctx, tenantID, model.EventAppointmentCreated, apt)

	if err := s.repo.CreateWithSessions(ctx, tenantID, apt, sessions, event); err != nil {
		return nil, err
	}

	s.metrics.SessionsGenerated.Add(float64(len(sessions)))
	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("appointment_id", apt.ID.String()).
		Int("sessions", len(sessions)).
		Str("frequency", string(apt.Frequency)).
		Msg("appointment created")
	return apt, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Update applies the partial request. A change to quantity, frequency or
// first session discards every existing session and regenerates the schedule;
// anything else leaves the sessions untouched, including their prices.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	regenerate := false

	if req.StaffID != nil {
		if *req.StaffID == "" {
			apt.StaffID = nil
		} else {
			staffID, err := uuid.Parse(*req.StaffID)
			if err != nil {
				return nil, fmt.Errorf("invalid staff id: %w", err)
			}
			if _, err := s.staff.Get(ctx, tenantID, staffID); err != nil {
				return nil, err
			}
			apt.StaffID = &staffID
		}
	}
	if req.FirstSessionAt != nil && !req.FirstSessionAt.Equal(apt.FirstSessionAt) {
		apt.FirstSessionAt = *req.FirstSessionAt
		regenerate = true
	}
	if req.Quantity != nil && *req.Quantity != apt.Quantity {
		apt.Quantity = *req.Quantity
		regenerate = true
	}
	if req.Frequency != nil && recurrence.Frequency(*req.Frequency) != apt.Frequency {
		apt.Frequency = recurrence.Frequency(*req.Frequency)
		regenerate = true
	}
	if req.PriceCents != nil {
		apt.PriceCents = *req.PriceCents
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	var sessions []*model.Session
	if regenerate {
		sessions, err = buildSessions(apt)
		if err != nil {
			return nil, err
		}
	}

	event := s.buildEvent(ctx, tenantID, model.EventAppointmentUpdated, apt)
	if err := s.repo.UpdateWithSessions(ctx, tenantID, apt, sessions, event); err != nil {
		return nil, err
	}

	if regenerate {
		s.metrics.SessionsGenerated.Add(float64(len(sessions)))
		s.logger.Info().
			Str("tenant_id", tenantID.String()).
			Str("appointment_id", apt.ID.String()).
			Int("sessions", len(sessions)).
			Msg("appointment schedule regenerated")
	}
	return apt, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	event := s.buildEvent(ctx, tenantID, model.EventAppointmentCancelled, apt)
	return s.repo.Delete(ctx, tenantID, id, event)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}
