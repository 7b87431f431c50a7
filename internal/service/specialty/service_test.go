package specialty

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/clinic-api/internal/model"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

type fakeSpecialtyRepo struct {
	specialties map[uuid.UUID]*model.Specialty
	staffRefs   map[uuid.UUID]int64
}

func newFakeSpecialtyRepo() *fakeSpecialtyRepo {
	return &fakeSpecialtyRepo{
		specialties: make(map[uuid.UUID]*model.Specialty),
		staffRefs:   make(map[uuid.UUID]int64),
	}
}

func (r *fakeSpecialtyRepo) Create(_ context.Context, tenantID uuid.UUID, s *model.Specialty) error {
	for _, existing := range r.specialties {
		if existing.TenantID == tenantID && existing.Name == s.Name {
			return apperrors.Conflict("a specialty with this name already exists", nil)
		}
	}
	s.ID = uuid.New()
	s.TenantID = tenantID
	r.specialties[s.ID] = s
	return nil
}

func (r *fakeSpecialtyRepo) Get(_ context.Context, tenantID, id uuid.UUID) (*model.Specialty, error) {
	s, ok := r.specialties[id]
	if !ok || s.TenantID != tenantID {
		return nil, apperrors.NotFound("specialty", nil)
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSpecialtyRepo) Update(_ context.Context, tenantID uuid.UUID, s *model.Specialty) error {
	existing, ok := r.specialties[s.ID]
	if !ok || existing.TenantID != tenantID {
		return apperrors.NotFound("specialty", nil)
	}
	copied := *s
	r.specialties[s.ID] = &copied
	return nil
}

func (r *fakeSpecialtyRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	s, ok := r.specialties[id]
	if !ok || s.TenantID != tenantID {
		return apperrors.NotFound("specialty", nil)
	}
	delete(r.specialties, id)
	return nil
}

func (r *fakeSpecialtyRepo) List(_ context.Context, tenantID uuid.UUID) ([]*model.Specialty, error) {
	out := []*model.Specialty{}
	for _, s := range r.specialties {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSpecialtyRepo) CountStaffReferences(_ context.Context, _ uuid.UUID, id uuid.UUID) (int64, error) {
	return r.staffRefs[id], nil
}

func TestDeleteBlockedByStaffReferences(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := NewService(repo)
	tenantID := uuid.New()

	created, err := svc.Create(context.Background(), tenantID, &model.CreateSpecialtyRequest{Name: "Physiotherapy"})
	require.NoError(t, err)

	repo.staffRefs[created.ID] = 2
	err = svc.Delete(context.Background(), tenantID, created.ID)
	assert.True(t, apperrors.IsConflict(err))

	repo.staffRefs[created.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), tenantID, created.ID))
}

func TestSpecialtyInvisibleAcrossTenants(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := NewService(repo)
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, &model.CreateSpecialtyRequest{Name: "Speech Therapy"})
	require.NoError(t, err)

	// Same name under a different tenant is not a conflict.
	_, err = svc.Create(context.Background(), uuid.New(), &model.CreateSpecialtyRequest{Name: "Speech Therapy"})
	require.NoError(t, err)

	// A foreign tenant sees not-found, never forbidden.
	_, err = svc.Get(context.Background(), uuid.New(), created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDuplicateNameSameTenantConflicts(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := NewService(repo)
	tenantID := uuid.New()

	_, err := svc.Create(context.Background(), tenantID, &model.CreateSpecialtyRequest{Name: "Psychology"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantID, &model.CreateSpecialtyRequest{Name: "Psychology"})
	assert.True(t, apperrors.IsConflict(err))
}
