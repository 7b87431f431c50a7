package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
)

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, tenant_id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.TenantID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// ClaimPending atomically claims up to limit deliverable events by flipping
// them to processing in the same statement that selects them. The flip, not
// the row lock, is what keeps a second worker (or an overlapping poll) from
// re-delivering a batch that is still in flight; SKIP LOCKED only stops two
// claims racing on the same rows.
func (r *outboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = $1
		WHERE id IN (
			SELECT id
			FROM outbox_events
			WHERE status = $2
			AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, tenant_id, event_type, payload, status, retry_count, last_error, next_retry_at, created_at, processed_at
	`
	events := []*model.OutboxEvent{}
	err := r.db.SelectContext(ctx, &events, query, model.OutboxStatusProcessing, model.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW(), last_error = NULL
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, id)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// MarkFailed records the delivery error. A nil nextRetryAt means retries are
// exhausted and the event moves to failed for good.
func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, nextRetryAt *time.Time) error {
	status := model.OutboxStatusPending
	if nextRetryAt == nil {
		status = model.OutboxStatusFailed
	}
	query := `
		UPDATE outbox_events
		SET status = $1, retry_count = retry_count + 1, last_error = $2, next_retry_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, errMsg, nextRetryAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = $1 AND processed_at < $2
	`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune processed events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
