// Package storage is the local submission journal: a SQLite log of every
// record created through the UI, used by the activity feed and the relay.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"projecthub/internal/core"
)

// ErrNotFound is returned when no journal entry has the requested event id.
var ErrNotFound = errors.New("journal entry not found")

// Status tracks an entry through the relay.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusSynced    Status = "synced"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one journaled submission.
type Entry struct {
	ID        int64
	EventID   string
	Action    core.Action
	EntityID  int64
	Summary   string
	Payload   json.RawMessage
	Status    Status
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Journal stores entries in a SQLite database file.
type Journal struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// Open creates the database file and its directory when missing and runs
// the migrations.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

func (j *Journal) stamp() string {
	return j.now().UTC().Format(timeLayout)
}

// Record journals a successful create as pending. payload is stored as JSON.
func (j *Journal) Record(ctx context.Context, action core.Action, entityID int64, summary string, payload any) (Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("encode journal payload: %w", err)
	}
	row, err := j.queries.InsertEntry(ctx, InsertEntryParams{
		EventID:   uuid.NewString(),
		Action:    string(action),
		EntityID:  entityID,
		Summary:   summary,
		Payload:   string(raw),
		CreatedAt: j.stamp(),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	return row.entry()
}

// Get loads an entry by event id.
func (j *Journal) Get(ctx context.Context, eventID string) (Entry, error) {
	row, err := j.queries.GetEntry(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get journal entry: %w", err)
	}
	return row.entry()
}

// ListRecent returns the newest entries first.
func (j *Journal) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.queries.ListRecent(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return entries(rows)
}

// ListUnsynced returns entries not yet on the ledger that have not been
// touched for at least idle, oldest first. Entries that failed maxAttempts
// times or more are left out; maxAttempts of zero returns them all.
func (j *Journal) ListUnsynced(ctx context.Context, idle time.Duration, maxAttempts, limit int) ([]Entry, error) {
	before := j.now().Add(-idle).UTC().Format(timeLayout)
	rows, err := j.queries.ListUnsynced(ctx, before, int64(maxAttempts), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list unsynced entries: %w", err)
	}
	return entries(rows)
}

// MarkPublished marks an unsynced entry as published and restarts its idle
// clock. Synced entries are left alone.
func (j *Journal) MarkPublished(ctx context.Context, eventID string) error {
	if _, err := j.queries.MarkPublished(ctx, j.stamp(), eventID); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// MarkSynced records that the entry reached the ledger.
func (j *Journal) MarkSynced(ctx context.Context, eventID string) error {
	n, err := j.queries.MarkSynced(ctx, j.stamp(), eventID)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed counts a failed relay attempt and keeps the error text.
func (j *Journal) MarkFailed(ctx context.Context, eventID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	n, err := j.queries.MarkFailed(ctx, msg, j.stamp(), eventID)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Counts returns the number of entries per status.
func (j *Journal) Counts(ctx context.Context) (map[Status]int, error) {
	raw, err := j.queries.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	counts := make(map[Status]int, len(raw))
	for s, n := range raw {
		counts[Status(s)] = int(n)
	}
	return counts, nil
}

func entries(rows []journalRow) ([]Entry, error) {
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r journalRow) entry() (Entry, error) {
	created, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", r.CreatedAt, err)
	}
	updated, err := time.Parse(timeLayout, r.UpdatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse updated_at %q: %w", r.UpdatedAt, err)
	}
	return Entry{
		ID:        r.ID,
		EventID:   r.EventID,
		Action:    core.Action(r.Action),
		EntityID:  r.EntityID,
		Summary:   r.Summary,
		Payload:   json.RawMessage(r.Payload),
		Status:    Status(r.Status),
		Attempts:  int(r.Attempts),
		LastError: strings.TrimSpace(r.LastError),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
