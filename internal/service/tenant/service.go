package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
)

type Service struct {
	repo   repository.TenantRepository
	logger zerolog.Logger
}

func NewService(repo repository.TenantRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes the tenant and every row it owns, then revokes any
// outstanding refresh tokens. The per-table report goes back to the caller.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*model.TenantDeletionReport, error) {
	report, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", id.String()).
		Int64("appointments", report.Appointments).
		Int64("sessions", report.Sessions).
		Int64("patients", report.Patients).
		Int64("payments", report.Payments).
		Msg("tenant deleted")
	return report, nil
}
