// Package sqlite stores polls and preferences in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goodcast/goodapi/pkg/domain"
)

//go:embed schema.sql
var embeddedSchema embed.FS

const timeLayout = time.RFC3339Nano

// Store implements ports.PollStore and ports.PreferenceStore.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an open database. Call InitSchema before use.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	s := New(db)
	if err := s.InitSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates missing tables. Foreign keys are enforced per
// connection, so databases not opened through Open should pass
// _foreign_keys=on in their DSN.
func (s *Store) InitSchema() error {
	b, err := embeddedSchema.ReadFile("schema.sql")
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(strings.TrimSpace(string(b))); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---------- Polls ----------

func (s *Store) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO polls(id, created_at, ends_at) VALUES (?, ?, ?)`,
		poll.ID, formatTime(poll.CreatedAt), formatTime(poll.EndsAt)); err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO poll_options(id, poll_id, idx, label) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range poll.Options {
		if _, err := stmt.ExecContext(ctx, o.ID, poll.ID, o.Index, o.Option); err != nil {
			return fmt.Errorf("failed to insert poll option: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetPoll(ctx context.Context, pollID, actorID string) (*domain.Poll, error) {
	var (
		p               domain.Poll
		created, endsAt string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, created_at, ends_at FROM polls WHERE id = ?`, pollID).
		Scan(&p.ID, &created, &endsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.EndsAt, err = parseTime(endsAt); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.idx, o.label,
		       COUNT(r.actor_id),
		       COALESCE(MAX(r.actor_id = ?), 0)
		FROM poll_options o
		LEFT JOIN poll_responses r ON r.option_id = o.id
		WHERE o.poll_id = ?
		GROUP BY o.id
		ORDER BY o.idx`, actorID, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	p.Options = []domain.PollOption{}
	for rows.Next() {
		var o domain.PollOption
		if err := rows.Scan(&o.ID, &o.Index, &o.Option, &o.VoteCount, &o.Voted); err != nil {
			return nil, err
		}
		p.Options = append(p.Options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) RespondPoll(ctx context.Context, resp domain.PollResponse) error {
	var pollID string
	err := s.db.QueryRowContext(ctx, `SELECT poll_id FROM poll_options WHERE id = ?`, resp.OptionID).Scan(&pollID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.pollExists(ctx, resp.PollID); err != nil {
			return err
		}
		return domain.ErrInvalidOption
	case err != nil:
		return err
	case pollID != resp.PollID:
		return domain.ErrInvalidOption
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO poll_responses(poll_id, option_id, actor_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(poll_id, actor_id) DO UPDATE SET option_id = excluded.option_id, created_at = excluded.created_at`,
		resp.PollID, resp.OptionID, resp.ActorID, formatTime(resp.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record poll response: %w", err)
	}
	return nil
}

func (s *Store) pollExists(ctx context.Context, pollID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM polls WHERE id = ?`, pollID).Scan(&n); err != nil {
		return false, err
	}
	if n == 0 {
		return false, domain.ErrNotFound
	}
	return true, nil
}

// ---------- Preferences ----------

func (s *Store) GetPreference(ctx context.Context, id string) (*domain.Preference, error) {
	var (
		p       domain.Preference
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, app_icon, high_signal_notification_filter, created_at FROM preferences WHERE id = ?`, id).
		Scan(&p.ID, &p.AppIcon, &p.HighSignalNotificationFilter, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertPreference(ctx context.Context, id string, update domain.PreferenceUpdate) (*domain.Preference, error) {
	var icon, filter any
	if update.AppIcon != nil {
		icon = *update.AppIcon
	}
	if update.HighSignalNotificationFilter != nil {
		filter = *update.HighSignalNotificationFilter
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences(id, app_icon, high_signal_notification_filter, created_at)
		VALUES (?, COALESCE(?, 0), COALESCE(?, 0), ?)
		ON CONFLICT(id) DO UPDATE SET
			app_icon = COALESCE(?, app_icon),
			high_signal_notification_filter = COALESCE(?, high_signal_notification_filter)`,
		id, icon, filter, formatTime(s.now()), icon, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert preference: %w", err)
	}
	return s.GetPreference(ctx, id)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}
