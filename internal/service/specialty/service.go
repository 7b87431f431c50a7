package specialty

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

type Service struct {
	repo repository.SpecialtyRepository
}

func NewService(repo repository.SpecialtyRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req *model.CreateSpecialtyRequest) (*model.Specialty, error) {
	specialty := &model.Specialty{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, tenantID, specialty); err != nil {
		return nil, err
	}
	return specialty, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Specialty, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req *model.UpdateSpecialtyRequest) (*model.Specialty, error) {
	specialty, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		specialty.Name = *req.Name
	}
	if req.Description != nil {
		specialty.Description = *req.Description
	}

	if err := s.repo.Update(ctx, tenantID, specialty); err != nil {
		return nil, err
	}
	return specialty, nil
}

// Delete refuses while staff still reference the specialty, so the reference
// can never dangle.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	count, err := s.repo.CountStaffReferences(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict(
			fmt.Sprintf("specialty is assigned to %d staff member(s)", count), nil)
	}
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]*model.Specialty, error) {
	return s.repo.List(ctx, tenantID)
}
