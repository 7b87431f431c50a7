package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/avelar/clinic-api/internal/model"
)

// uniqueViolation is the Postgres error code raised when a compound
// (tenant_id, field) unique index is hit.
const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// IsNoRows reports whether err means the query matched nothing, which covers
// both genuinely missing rows and rows owned by another tenant.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// insertOutboxTx writes a notification event inside the caller's transaction
// so the event commits or rolls back together with the domain change.
func insertOutboxTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	if event == nil {
		return nil
	}
	if event.Payload == nil {
		event.Payload = json.RawMessage("{}")
	}
	query := `
		INSERT INTO outbox_events (id, tenant_id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		event.ID,
		event.TenantID,
		event.EventType,
		event.Payload,
		model.OutboxStatusPending,
		time.Now(),
	)
	return err
}
