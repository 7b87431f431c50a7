package payment

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

type fakePaymentRepo struct {
	payments       map[uuid.UUID]*model.Payment
	lastSessionIDs []uuid.UUID
	deleted        []uuid.UUID
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (r *fakePaymentRepo) CreateWithLinks(_ context.Context, tenantID uuid.UUID, p *model.Payment, sessionIDs []uuid.UUID) error {
	p.ID = uuid.New()
	p.TenantID = tenantID
	p.SessionIDs = sessionIDs
	r.payments[p.ID] = p
	r.lastSessionIDs = sessionIDs
	return nil
}

func (r *fakePaymentRepo) Get(_ context.Context, tenantID, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok || p.TenantID != tenantID {
		return nil, apperrors.NotFound("payment", nil)
	}
	return p, nil
}

func (r *fakePaymentRepo) DeleteWithLinks(_ context.Context, tenantID, id uuid.UUID) error {
	p, ok := r.payments[id]
	if !ok || p.TenantID != tenantID {
		return apperrors.NotFound("payment", nil)
	}
	delete(r.payments, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakePaymentRepo) List(context.Context, uuid.UUID, *model.PaymentFilters) ([]*model.Payment, int, error) {
	return nil, 0, nil
}

func (r *fakePaymentRepo) SessionIDs(_ context.Context, _, paymentID uuid.UUID) ([]uuid.UUID, error) {
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, apperrors.NotFound("payment", nil)
	}
	return p.SessionIDs, nil
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

func newTestService(repo *fakePaymentRepo, patient *model.Patient) *Service {
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	if patient != nil {
		patients.patients[patient.ID] = patient
	}
	return NewService(repo, patients, zerolog.Nop())
}

func TestCreateDeduplicatesSessionIDs(t *testing.T) {
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, Name: "Ana"}
	repo := newFakePaymentRepo()
	svc := newTestService(repo, patient)

	sessionID := uuid.New().String()
	other := uuid.New().String()

	p, err := svc.Create(context.Background(), uuid.New(), &model.CreatePaymentRequest{
		PatientID:   patient.ID.String(),
		AmountCents: 30000,
		Method:      "pix",
		SessionIDs:  []string{sessionID, other, sessionID},
	})
	require.NoError(t, err)
	assert.Len(t, repo.lastSessionIDs, 2)
	assert.Len(t, p.SessionIDs, 2)
}

func TestCreateDefaultsPaidAt(t *testing.T) {
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, Name: "Ana"}
	repo := newFakePaymentRepo()
	svc := newTestService(repo, patient)

	p, err := svc.Create(context.Background(), uuid.New(), &model.CreatePaymentRequest{
		PatientID:   patient.ID.String(),
		AmountCents: 15000,
		Method:      "cash",
		SessionIDs:  []string{uuid.New().String()},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), p.PaidAt, time.Minute)

	explicit := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	p, err = svc.Create(context.Background(), uuid.New(), &model.CreatePaymentRequest{
		PatientID:   patient.ID.String(),
		AmountCents: 15000,
		Method:      "card",
		PaidAt:      &explicit,
		SessionIDs:  []string{uuid.New().String()},
	})
	require.NoError(t, err)
	assert.Equal(t, explicit, p.PaidAt)
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), uuid.New(), &model.CreatePaymentRequest{
		PatientID:   uuid.New().String(),
		AmountCents: 100,
		Method:      "cash",
		SessionIDs:  []string{uuid.New().String()},
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteForeignPaymentIsNotFound(t *testing.T) {
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, Name: "Ana"}
	repo := newFakePaymentRepo()
	svc := newTestService(repo, patient)
	owner := uuid.New()

	p, err := svc.Create(context.Background(), owner, &model.CreatePaymentRequest{
		PatientID:   patient.ID.String(),
		AmountCents: 100,
		Method:      "transfer",
		SessionIDs:  []string{uuid.New().String()},
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), p.ID)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.Delete(context.Background(), owner, p.ID))
	assert.Len(t, repo.deleted, 1)
}
