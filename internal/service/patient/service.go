package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
)

type Service struct {
	repo   repository.PatientRepository
	logger zerolog.Logger
}

func NewService(repo repository.PatientRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, tenantID, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.BirthDate != nil {
		patient.BirthDate = req.BirthDate
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}
	if req.Active != nil {
		patient.Active = *req.Active
	}

	if err := s.repo.Update(ctx, tenantID, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// Delete drops the patient and its full appointment history.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("patient_id", id.String()).
		Msg("patient deleted with history")
	return nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}
