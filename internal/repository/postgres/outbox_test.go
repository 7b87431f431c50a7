package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/clinic-api/internal/model"
)

// These tests exercise real claim semantics and need a Postgres instance with
// the outbox_events table; they skip when TEST_DATABASE_URL is unset.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestEvent(t *testing.T, db *sqlx.DB) *model.OutboxEvent {
	t.Helper()
	repo := NewOutboxRepository(db)

	event := &model.OutboxEvent{
		TenantID:  uuid.New(),
		EventType: model.EventAppointmentCreated,
		Payload:   json.RawMessage(`{}`),
	}
	require.NoError(t, repo.Create(context.Background(), event))
	t.Cleanup(func() {
		db.Exec("DELETE FROM outbox_events WHERE id = $1", event.ID)
	})
	return event
}

func claimIDs(t *testing.T, db *sqlx.DB, limit int) map[uuid.UUID]model.OutboxStatus {
	t.Helper()
	events, err := NewOutboxRepository(db).ClaimPending(context.Background(), limit)
	require.NoError(t, err)

	out := make(map[uuid.UUID]model.OutboxStatus, len(events))
	for _, e := range events {
		out[e.ID] = e.Status
	}
	return out
}

func TestClaimPendingIsExclusive(t *testing.T) {
	db := testDB(t)
	event := createTestEvent(t, db)

	claimed := claimIDs(t, db, 100)
	require.Contains(t, claimed, event.ID)
	assert.Equal(t, model.OutboxStatusProcessing, claimed[event.ID])

	// The claim settles before delivery starts, so a second worker polling
	// from its own connection must not see the event again.
	db2, err := sqlx.Connect("postgres", os.Getenv("TEST_DATABASE_URL"))
	require.NoError(t, err)
	defer db2.Close()

	assert.NotContains(t, claimIDs(t, db2, 100), event.ID)
	assert.NotContains(t, claimIDs(t, db, 100), event.ID)
}

func TestClaimPendingAfterRetryBackoff(t *testing.T) {
	db := testDB(t)
	repo := NewOutboxRepository(db)
	event := createTestEvent(t, db)

	require.Contains(t, claimIDs(t, db, 100), event.ID)

	// A failure with a future retry time parks the event.
	future := time.Now().Add(time.Hour)
	require.NoError(t, repo.MarkFailed(context.Background(), event.ID, "smtp timeout", &future))
	assert.NotContains(t, claimIDs(t, db, 100), event.ID)

	// Once the backoff elapses it becomes claimable again.
	past := time.Now().Add(-time.Minute)
	_, err := db.Exec("UPDATE outbox_events SET next_retry_at = $1 WHERE id = $2", past, event.ID)
	require.NoError(t, err)
	assert.Contains(t, claimIDs(t, db, 100), event.ID)
}

func TestClaimPendingSkipsSettledEvents(t *testing.T) {
	db := testDB(t)
	repo := NewOutboxRepository(db)

	processed := createTestEvent(t, db)
	require.Contains(t, claimIDs(t, db, 100), processed.ID)
	require.NoError(t, repo.MarkProcessed(context.Background(), processed.ID))
	assert.NotContains(t, claimIDs(t, db, 100), processed.ID)

	// Exhausted retries (nil nextRetryAt) park the event for good.
	failed := createTestEvent(t, db)
	require.Contains(t, claimIDs(t, db, 100), failed.ID)
	require.NoError(t, repo.MarkFailed(context.Background(), failed.ID, "smtp timeout", nil))
	assert.NotContains(t, claimIDs(t, db, 100), failed.ID)
}
