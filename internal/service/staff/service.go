package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
)

type Service struct {
	repo        repository.StaffRepository
	specialties repository.SpecialtyRepository
}

func NewService(repo repository.StaffRepository, specialties repository.SpecialtyRepository) *Service {
	return &Service{repo: repo, specialties: specialties}
}

// resolveSpecialty checks that a referenced specialty exists under the same
// tenant. A foreign specialty id comes back as not found.
func (s *Service) resolveSpecialty(ctx context.Context, tenantID uuid.UUID, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.specialties.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req *model.CreateStaffRequest) (*model.Staff, error) {
	specialtyID, err := s.resolveSpecialty(ctx, tenantID, req.SpecialtyID)
	if err != nil {
		return nil, err
	}

	staff := &model.Staff{
		SpecialtyID: specialtyID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
	}
	if err := s.repo.Create(ctx, tenantID, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Staff, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	staff, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.SpecialtyID != nil {
		specialtyID, err := s.resolveSpecialty(ctx, tenantID, req.SpecialtyID)
		if err != nil {
			return nil, err
		}
		staff.SpecialtyID = specialtyID
	}
	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Email != nil {
		staff.Email = *req.Email
	}
	if req.Phone != nil {
		staff.Phone = *req.Phone
	}

	if err := s.repo.Update(ctx, tenantID, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]*model.Staff, error) {
	return s.repo.List(ctx, tenantID)
}
