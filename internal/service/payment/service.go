package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
)

type Service struct {
	repo     repository.PaymentRepository
	patients repository.PatientRepository
	logger   zerolog.Logger
}

func NewService(repo repository.PaymentRepository, patients repository.PatientRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, logger: logger}
}

// Create records a payment against one or more sessions. The linked sessions
// flip to paid in the same transaction; any session that is missing, foreign
// or already paid fails the whole request.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req *model.CreatePaymentRequest) (*model.Payment, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id: %w", err)
	}
	if _, err := s.patients.Get(ctx, tenantID, patientID); err != nil {
		return nil, err
	}

	sessionIDs := make([]uuid.UUID, 0, len(req.SessionIDs))
	seen := make(map[uuid.UUID]struct{}, len(req.SessionIDs))
	for _, raw := range req.SessionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid session id: %w", err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		sessionIDs = append(sessionIDs, id)
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	payment := &model.Payment{
		PatientID:   patientID,
		AmountCents: req.AmountCents,
		Method:      model.PaymentMethod(req.Method),
		PaidAt:      paidAt,
		Notes:       req.Notes,
	}
	if err := s.repo.CreateWithLinks(ctx, tenantID, payment, sessionIDs); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("payment_id", payment.ID.String()).
		Int64("amount_cents", payment.AmountCents).
		Int("sessions", len(sessionIDs)).
		Msg("payment recorded")
	return payment, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Payment, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Delete removes the payment and reverts its sessions to pending.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.DeleteWithLinks(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("payment_id", id.String()).
		Msg("payment deleted, sessions reverted")
	return nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filters *model.PaymentFilters) ([]*model.Payment, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}
