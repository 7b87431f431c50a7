package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
)

type Service struct {
	repo repository.ReportRepository
}

func NewService(repo repository.ReportRepository) *Service {
	return &Service{repo: repo}
}

// Dashboard aggregates the tenant's sessions and outstanding value over the
// given range. Cancelled and no-show sessions are excluded from the value
// sums but still counted per status.
func (s *Service) Dashboard(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*model.DashboardReport, error) {
	report := &model.DashboardReport{
		From:             from,
		To:               to,
		SessionsByStatus: make(map[model.SessionStatus]int64),
	}

	counts, err := s.repo.SessionsByStatus(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		report.SessionsByStatus[c.Status] = c.Count
	}

	sums, err := s.repo.ValueByPaymentStatus(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	for _, sum := range sums {
		switch sum.PaymentStatus {
		case model.PaymentStatusPending:
			report.PendingValueCents = sum.TotalCents
		case model.PaymentStatusPaid:
			report.PaidValueCents = sum.TotalCents
		}
	}

	active, err := s.repo.ActivePatients(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	report.ActivePatients = active

	return report, nil
}
