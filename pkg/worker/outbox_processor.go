package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/email"
	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
	"github.com/avelar/clinic-api/pkg/messaging"
	"github.com/avelar/clinic-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize       int
	PollInterval    time.Duration
	MaxRetries      int
	RetentionPeriod time.Duration
	EventChannel    string
}

// OutboxProcessor drains pending outbox events: each event is rendered into a
// notification email and published to the broker. Failures are retried with
// exponential backoff until MaxRetries, then parked as failed.
type OutboxProcessor struct {
	repo     repository.OutboxRepository
	emailSvc email.Service
	broker   messaging.Broker
	config   OutboxProcessorConfig
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	emailSvc email.Service,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:     repo,
		emailSvc: emailSvc,
		broker:   broker,
		config:   config,
		logger:   logger,
		metrics:  m,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	prune := time.NewTicker(time.Hour)
	defer prune.Stop()

	p.logger.Info().
		Int("batch_size", p.config.BatchSize).
		Dur("poll_interval", p.config.PollInterval).
		Msg("outbox processor started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("outbox processor shutting down")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to process outbox batch")
			}
		case <-prune.C:
			cutoff := time.Now().Add(-p.config.RetentionPeriod)
			n, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
			if err != nil {
				p.logger.Error().Err(err).Msg("failed to prune outbox")
				continue
			}
			if n > 0 {
				p.logger.Info().Int64("pruned", n).Msg("pruned processed outbox events")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.ClaimPending(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("claim_pending_events", "error").Inc()
		return fmt.Errorf("failed to claim pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("claim_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.deliver(ctx, event); err != nil {
			p.handleFailure(ctx, event, err)
			continue
		}

		p.metrics.OutboxEventsProcessed.Inc()
		if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
			p.logger.Error().Err(err).
				Str("event_id", event.ID.String()).
				Msg("failed to mark event processed")
		}
	}
	return nil
}

func (p *OutboxProcessor) deliver(ctx context.Context, event *model.OutboxEvent) error {
	var payload model.AppointmentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if payload.PatientEmail != "" {
		var err error
		switch event.EventType {
		case model.EventAppointmentCreated:
			err = p.emailSvc.SendAppointmentCreated(ctx, &payload)
		case model.EventAppointmentUpdated:
			err = p.emailSvc.SendAppointmentUpdated(ctx, &payload)
		case model.EventAppointmentCancelled:
			err = p.emailSvc.SendAppointmentCancelled(ctx, &payload)
		case model.EventSessionRescheduled:
			err = p.emailSvc.SendSessionRescheduled(ctx, &payload)
		default:
			p.logger.Warn().
				Str("event_type", event.EventType).
				Msg("unknown event type, skipping email")
		}
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	if err := p.broker.Publish(ctx, p.config.EventChannel, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *OutboxProcessor) handleFailure(ctx context.Context, event *model.OutboxEvent, deliverErr error) {
	p.metrics.OutboxEventsFailed.Inc()

	var nextRetryAt *time.Time
	if event.RetryCount+1 < p.config.MaxRetries {
		// 30s, 1m, 2m, 4m, ...
		backoff := 30 * time.Second << uint(event.RetryCount)
		at := time.Now().Add(backoff)
		nextRetryAt = &at
	}

	p.logger.Error().Err(deliverErr).
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Int("retry_count", event.RetryCount+1).
		Bool("exhausted", nextRetryAt == nil).
		Msg("event delivery failed")

	if err := p.repo.MarkFailed(ctx, event.ID, deliverErr.Error(), nextRetryAt); err != nil {
		p.logger.Error().Err(err).
			Str("event_id", event.ID.String()).
			Msg("failed to record delivery failure")
	}
}
