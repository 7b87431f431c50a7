package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

type fakeSessionRepo struct {
	sessions  map[uuid.UUID]*model.Session
	lastEvent *model.OutboxEvent
}

func newFakeSessionRepo(sessions ...*model.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return r
}

func (r *fakeSessionRepo) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*model.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session", nil)
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, _ uuid.UUID, s *model.Session, event *model.OutboxEvent) error {
	if _, ok := r.sessions[s.ID]; !ok {
		return apperrors.NotFound("session", nil)
	}
	copied := *s
	r.sessions[s.ID] = &copied
	r.lastEvent = event
	return nil
}

func (r *fakeSessionRepo) List(_ context.Context, _ uuid.UUID, _ *model.SessionFilters) ([]*model.Session, int, error) {
	out := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, len(out), nil
}

type fakeAppointmentGetter struct {
	apt *model.Appointment
}

func (r *fakeAppointmentGetter) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*model.Appointment, error) {
	if r.apt == nil || r.apt.ID != id {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return r.apt, nil
}

func (r *fakeAppointmentGetter) CreateWithSessions(context.Context, uuid.UUID, *model.Appointment, []*model.Session, *model.OutboxEvent) error {
	return nil
}

func (r *fakeAppointmentGetter) UpdateWithSessions(context.Context, uuid.UUID, *model.Appointment, []*model.Session, *model.OutboxEvent) error {
	return nil
}

func (r *fakeAppointmentGetter) Delete(context.Context, uuid.UUID, uuid.UUID, *model.OutboxEvent) error {
	return nil
}

func (r *fakeAppointmentGetter) List(context.Context, uuid.UUID, *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}

func (r *fakeAppointmentGetter) CountSessions(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

type fakePatientGetter struct {
	patient *model.Patient
}

func (r *fakePatientGetter) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*model.Patient, error) {
	if r.patient == nil || r.patient.ID != id {
		return nil, apperrors.NotFound("patient", nil)
	}
	return r.patient, nil
}

func (r *fakePatientGetter) Create(context.Context, uuid.UUID, *model.Patient) error { return nil }
func (r *fakePatientGetter) Update(context.Context, uuid.UUID, *model.Patient) error { return nil }
func (r *fakePatientGetter) Delete(context.Context, uuid.UUID, uuid.UUID) error      { return nil }
func (r *fakePatientGetter) List(context.Context, uuid.UUID, *model.PatientFilters) ([]*model.Patient, int, error) {
	return nil, 0, nil
}

func scheduledSession() *model.Session {
	return &model.Session{
		Base:          model.Base{ID: uuid.New()},
		AppointmentID: uuid.New(),
		Number:        1,
		ScheduledAt:   time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Status:        model.SessionStatusScheduled,
		PaymentStatus: model.PaymentStatusPending,
		ValueCents:    15000,
	}
}

func newTestService(repo *fakeSessionRepo) *Service {
	return NewService(repo, &fakeAppointmentGetter{}, &fakePatientGetter{}, zerolog.Nop())
}

func TestUpdateStatusCompletesSession(t *testing.T) {
	s := scheduledSession()
	repo := newFakeSessionRepo(s)
	svc := newTestService(repo)

	got, err := svc.UpdateStatus(context.Background(), uuid.New(), s.ID,
		&model.UpdateSessionStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, got.Status)
}

func TestUpdateStatusRejectsTerminalSession(t *testing.T) {
	s := scheduledSession()
	s.Status = model.SessionStatusCompleted
	repo := newFakeSessionRepo(s)
	svc := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), s.ID,
		&model.UpdateSessionStatusRequest{Status: "cancelled"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdateStatusTerminalClearsRescheduleBookkeeping(t *testing.T) {
	s := scheduledSession()
	original := s.ScheduledAt.Add(-24 * time.Hour)
	moved := time.Now()
	s.Status = model.SessionStatusRescheduled
	s.OriginalAt = &original
	s.RescheduledAt = &moved
	repo := newFakeSessionRepo(s)
	svc := newTestService(repo)

	got, err := svc.UpdateStatus(context.Background(), uuid.New(), s.ID,
		&model.UpdateSessionStatusRequest{Status: "no_show"})
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusNoShow, got.Status)
	assert.Nil(t, got.OriginalAt)
	assert.Nil(t, got.RescheduledAt)
}

func TestRescheduleSnapshotsOriginalOnce(t *testing.T) {
	s := scheduledSession()
	firstDate := s.ScheduledAt
	repo := newFakeSessionRepo(s)
	svc := newTestService(repo)
	tenantID := uuid.New()

	second := firstDate.Add(48 * time.Hour)
	got, err := svc.Reschedule(context.Background(), tenantID, s.ID,
		&model.RescheduleSessionRequest{ScheduledAt: second})
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusRescheduled, got.Status)
	assert.Equal(t, second, got.ScheduledAt)
	require.NotNil(t, got.OriginalAt)
	assert.Equal(t, firstDate, *got.OriginalAt)
	assert.NotNil(t, got.RescheduledAt)

	// A second reschedule keeps the first snapshot.
	third := firstDate.Add(96 * time.Hour)
	got, err = svc.Reschedule(context.Background(), tenantID, s.ID,
		&model.RescheduleSessionRequest{ScheduledAt: third})
	require.NoError(t, err)
	assert.Equal(t, third, got.ScheduledAt)
	require.NotNil(t, got.OriginalAt)
	assert.Equal(t, firstDate, *got.OriginalAt)
}

func TestRescheduleRejectsTerminalSession(t *testing.T) {
	s := scheduledSession()
	s.Status = model.SessionStatusCancelled
	repo := newFakeSessionRepo(s)
	svc := newTestService(repo)

	_, err := svc.Reschedule(context.Background(), uuid.New(), s.ID,
		&model.RescheduleSessionRequest{ScheduledAt: time.Now().Add(time.Hour)})
	assert.True(t, apperrors.IsConflict(err))
}

func TestRescheduleEmitsOutboxEvent(t *testing.T) {
	s := scheduledSession()
	repo := newFakeSessionRepo(s)
	svc := newTestService(repo)

	_, err := svc.Reschedule(context.Background(), uuid.New(), s.ID,
		&model.RescheduleSessionRequest{ScheduledAt: s.ScheduledAt.Add(time.Hour)})
	require.NoError(t, err)
	require.NotNil(t, repo.lastEvent)
	assert.Equal(t, model.EventSessionRescheduled, repo.lastEvent.EventType)
}

func TestUpdateStatusUnknownSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(),
		&model.UpdateSessionStatusRequest{Status: "completed"})
	assert.True(t, apperrors.IsNotFound(err))
}
