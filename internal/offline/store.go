package offline

import (
	"context"
	"fmt"

	"classbook/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS queued_bookings (
	id              TEXT PRIMARY KEY,
	room_id         TEXT NOT NULL,
	date            TEXT NOT NULL,
	start_time      TEXT NOT NULL,
	end_time        TEXT NOT NULL,
	purpose         TEXT NOT NULL,
	idempotency_key TEXT NOT NULL,
	status          TEXT NOT NULL,
	attempts        INTEGER NOT NULL DEFAULT 0,
	last_error      TEXT,
	next_retry_at   TIMESTAMP,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_queued_bookings_status ON queued_bookings (status);
`

// Store persists queue entries in the local sqlite database so queued
// bookings survive a restart of the agent.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Due(ctx context.Context, maxAttempts int) ([]Entry, error)
	SetStatus(ctx context.Context, id, status string) error
	MarkFailure(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, id string) error
}

type sqliteStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) (Store, error) {
	if _, err := db.Exec(schema); err != nil {
		log.Error().Err(err).Msg("failed to create offline queue schema")

		return nil, fmt.Errorf("failed to create offline queue schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Insert(ctx context.Context, entry Entry) error {
	query := `INSERT INTO queued_bookings
		(id, room_id, date, start_time, end_time, purpose, idempotency_key, status, attempts, last_error, next_retry_at, created_at)
		VALUES (:id, :room_id, :date, :start_time, :end_time, :purpose, :idempotency_key, :status, :attempts, :last_error, :next_retry_at, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to insert queue entry: %w", err)
	}

	return nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (Entry, error) {
	var entry Entry
	if err := s.db.GetContext(ctx, &entry, `SELECT * FROM queued_bookings WHERE id = ?`, id); err != nil {
		return entry, fmt.Errorf("failed to get queue entry: %w", err)
	}

	return entry, nil
}

func (s *sqliteStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, `SELECT * FROM queued_bookings ORDER BY created_at ASC`); err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}

	return entries, nil
}

// Due returns entries eligible for a sync attempt right now, oldest first.
func (s *sqliteStore) Due(ctx context.Context, maxAttempts int) ([]Entry, error) {
	query := `SELECT * FROM queued_bookings
		WHERE (status IN (?, ?))
		   OR (status = ? AND attempts < ? AND (next_retry_at IS NULL OR next_retry_at <= ?))
		ORDER BY created_at ASC`

	var entries []Entry
	err := s.db.SelectContext(ctx, &entries, query,
		StatusPendingValidation, StatusPendingSync, StatusFailed, maxAttempts, timezone.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list due queue entries: %w", err)
	}

	return entries, nil
}

func (s *sqliteStore) SetStatus(ctx context.Context, id, status string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE queued_bookings SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("failed to update queue entry status: %w", err)
	}

	return nil
}

// MarkFailure writes back status, attempt count, last error and next retry
// window in one statement.
func (s *sqliteStore) MarkFailure(ctx context.Context, entry Entry) error {
	query := `UPDATE queued_bookings
		SET status = :status, attempts = :attempts, last_error = :last_error, next_retry_at = :next_retry_at
		WHERE id = :id`

	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to mark queue entry failure: %w", err)
	}

	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM queued_bookings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}

	return nil
}
