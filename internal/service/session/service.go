package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

type Service struct {
	repo         repository.SessionRepository
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	logger       zerolog.Logger
}

func NewService(
	repo repository.SessionRepository,
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		patients:     patients,
		logger:       logger,
	}
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Session, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filters *model.SessionFilters) ([]*model.Session, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}

// UpdateStatus moves the session to a terminal status. Entering a terminal
// status closes the reschedule bookkeeping: original and rescheduled stamps
// are cleared.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, req *model.UpdateSessionStatusRequest) (*model.Session, error) {
	session, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	next := model.SessionStatus(req.Status)
	if !session.Status.CanTransitionTo(next) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("cannot transition session from %s to %s", session.Status, next), nil)
	}

	session.Status = next
	if next.Terminal() {
		session.OriginalAt = nil
		session.RescheduledAt = nil
	}

	if err := s.repo.Update(ctx, tenantID, session, nil); err != nil {
		return nil, err
	}
	return session, nil
}

// Reschedule moves the session to a new datetime. The original datetime is
// snapshotted once, on the first reschedule, and survives any number of
// follow-up reschedules.
func (s *Service) Reschedule(ctx context.Context, tenantID, id uuid.UUID, req *model.RescheduleSessionRequest) (*model.Session, error) {
	session, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !session.Status.CanTransitionTo(model.SessionStatusRescheduled) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("cannot reschedule a %s session", session.Status), nil)
	}

	previousAt := session.ScheduledAt
	if session.OriginalAt == nil {
		original := session.ScheduledAt
		session.OriginalAt = &original
	}
	now := time.Now()
	session.RescheduledAt = &now
	session.ScheduledAt = req.ScheduledAt
	session.Status = model.SessionStatusRescheduled

	event := s.buildRescheduleEvent(ctx, tenantID, session, previousAt)
	if err := s.repo.Update(ctx, tenantID, session, event); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("session_id", session.ID.String()).
		Time("from", previousAt).
		Time("to", session.ScheduledAt).
		Msg("session rescheduled")
	return session, nil
}

func (s *Service) buildRescheduleEvent(ctx context.Context, tenantID uuid.UUID, session *model.Session, previousAt time.Time) *model.OutboxEvent {
	payload := model.AppointmentEventPayload{
		AppointmentID: session.AppointmentID,
		ScheduledAt:   session.ScheduledAt,
		PreviousAt:    previousAt,
	}

	if apt, err := s.appointments.Get(ctx, tenantID, session.AppointmentID); err == nil {
		payload.Frequency = string(apt.Frequency)
		if patient, err := s.patients.Get(ctx, tenantID, apt.PatientID); err == nil {
			payload.PatientName = patient.Name
			payload.PatientEmail = patient.Email
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal event payload")
		raw = []byte("{}")
	}

	return &model.OutboxEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		EventType: model.EventSessionRescheduled,
		Payload:   raw,
	}
}
