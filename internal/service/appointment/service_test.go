package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/recurrence"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/metrics"
)

var testMetrics = metrics.New("clinic_appointment_test")

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	lastSessions []*model.Session
	lastEvent    *model.OutboxEvent
	updateCalled bool
}

func newFakeAppointmentRepo(appointments ...*model.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	for _, apt := range appointments {
		r.appointments[apt.ID] = apt
	}
	return r
}

func (r *fakeAppointmentRepo) CreateWithSessions(_ context.Context, tenantID uuid.UUID, apt *model.Appointment, sessions []*model.Session, event *model.OutboxEvent) error {
	apt.TenantID = tenantID
	r.appointments[apt.ID] = apt
	r.lastSessions = sessions
	r.lastEvent = event
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) UpdateWithSessions(_ context.Context, _ uuid.UUID, apt *model.Appointment, sessions []*model.Session, event *model.OutboxEvent) error {
	if _, ok := r.appointments[apt.ID]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	copied := *apt
	r.appointments[apt.ID] = &copied
	r.lastSessions = sessions
	r.lastEvent = event
	r.updateCalled = true
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID, event *model.OutboxEvent) error {
	if _, ok := r.appointments[id]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	delete(r.appointments, id)
	r.lastEvent = event
	return nil
}

func (r *fakeAppointmentRepo) List(context.Context, uuid.UUID, *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}

func (r *fakeAppointmentRepo) CountSessions(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (r *fakePatientRepo) Create(context.Context, uuid.UUID, *model.Patient) error { return nil }
func (r *fakePatientRepo) Update(context.Context, uuid.UUID, *model.Patient) error { return nil }
func (r *fakePatientRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error      { return nil }
func (r *fakePatientRepo) List(context.Context, uuid.UUID, *model.PatientFilters) ([]*model.Patient, int, error) {
	return nil, 0, nil
}

type fakeStaffRepo struct {
	staff map[uuid.UUID]*model.Staff
}

func (r *fakeStaffRepo) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*model.Staff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, apperrors.NotFound("staff", nil)
	}
	return s, nil
}

func (r *fakeStaffRepo) Create(context.Context, uuid.UUID, *model.Staff) error { return nil }
func (r *fakeStaffRepo) Update(context.Context, uuid.UUID, *model.Staff) error { return nil }
func (r *fakeStaffRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error    { return nil }
func (r *fakeStaffRepo) List(context.Context, uuid.UUID) ([]*model.Staff, error) {
	return nil, nil
}

func testPatient() *model.Patient {
	return &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Ana Souza",
		Email:  "ana@example.com",
		Active: true,
	}
}

func newTestService(repo *fakeAppointmentRepo, patient *model.Patient) *Service {
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	if patient != nil {
		patients.patients[patient.ID] = patient
	}
	return NewService(repo, patients, &fakeStaffRepo{staff: map[uuid.UUID]*model.Staff{}}, zerolog.Nop(), testMetrics)
}

func TestCreateGeneratesWeeklySessions(t *testing.T) {
	patient := testPatient()
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, patient)

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	apt, err := svc.Create(context.Background(), uuid.New(), &model.CreateAppointmentRequest{
		PatientID:      patient.ID.String(),
		FirstSessionAt: start,
		Quantity:       4,
		Frequency:      "weekly",
		PriceCents:     15000,
	})
	require.NoError(t, err)
	require.Len(t, repo.lastSessions, 4)

	for i, s := range repo.lastSessions {
		assert.Equal(t, i+1, s.Number)
		assert.Equal(t, start.AddDate(0, 0, 7*i), s.ScheduledAt)
		assert.Equal(t, model.SessionStatusScheduled, s.Status)
		assert.Equal(t, model.PaymentStatusPending, s.PaymentStatus)
		assert.Equal(t, int64(15000), s.ValueCents)
	}

	require.NotNil(t, repo.lastEvent)
	assert.Equal(t, model.EventAppointmentCreated, repo.lastEvent.EventType)
	assert.Equal(t, recurrence.Weekly, apt.Frequency)
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), uuid.New(), &model.CreateAppointmentRequest{
		PatientID:      uuid.New().String(),
		FirstSessionAt: time.Now(),
		Quantity:       1,
		Frequency:      "weekly",
		PriceCents:     100,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateRejectsForeignStaff(t *testing.T) {
	patient := testPatient()
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, patient)

	foreign := uuid.New().String()
	_, err := svc.Create(context.Background(), uuid.New(), &model.CreateAppointmentRequest{
		PatientID:      patient.ID.String(),
		StaffID:        &foreign,
		FirstSessionAt: time.Now(),
		Quantity:       1,
		Frequency:      "weekly",
		PriceCents:     100,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateQuantityRegeneratesSessions(t *testing.T) {
	patient := testPatient()
	apt := &model.Appointment{
		Base:           model.Base{ID: uuid.New()},
		PatientID:      patient.ID,
		FirstSessionAt: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Quantity:       4,
		Frequency:      recurrence.Weekly,
		PriceCents:     15000,
	}
	repo := newFakeAppointmentRepo(apt)
	svc := newTestService(repo, patient)

	quantity := 6
	got, err := svc.Update(context.Background(), uuid.New(), apt.ID, &model.UpdateAppointmentRequest{
		Quantity: &quantity,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)
	require.Len(t, repo.lastSessions, 6)
	assert.Equal(t, model.EventAppointmentUpdated, repo.lastEvent.EventType)
}

func TestUpdatePriceOnlyKeepsSessions(t *testing.T) {
	patient := testPatient()
	apt := &model.Appointment{
		Base:           model.Base{ID: uuid.New()},
		PatientID:      patient.ID,
		FirstSessionAt: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Quantity:       4,
		Frequency:      recurrence.Weekly,
		PriceCents:     15000,
	}
	repo := newFakeAppointmentRepo(apt)
	svc := newTestService(repo, patient)

	price := int64(20000)
	got, err := svc.Update(context.Background(), uuid.New(), apt.ID, &model.UpdateAppointmentRequest{
		PriceCents: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), got.PriceCents)
	assert.True(t, repo.updateCalled)
	// Existing sessions keep their snapshotted value.
	assert.Nil(t, repo.lastSessions)
}

func TestDeleteEmitsCancellationEvent(t *testing.T) {
	patient := testPatient()
	apt := &model.Appointment{
		Base:           model.Base{ID: uuid.New()},
		PatientID:      patient.ID,
		FirstSessionAt: time.Now(),
		Quantity:       2,
		Frequency:      recurrence.Monthly,
		PriceCents:     10000,
	}
	repo := newFakeAppointmentRepo(apt)
	svc := newTestService(repo, patient)

	require.NoError(t, svc.Delete(context.Background(), uuid.New(), apt.ID))
	require.NotNil(t, repo.lastEvent)
	assert.Equal(t, model.EventAppointmentCancelled, repo.lastEvent.EventType)
}
