package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// journalRow mirrors one journal_entries row.
type journalRow struct {
	ID        int64
	EventID   string
	Action    string
	EntityID  int64
	Summary   string
	Payload   string
	Status    string
	Attempts  int64
	LastError string
	CreatedAt string
	UpdatedAt string
}

const journalColumns = `id, event_id, action, entity_id, summary, payload, status, attempts, last_error, created_at, updated_at`

func scanJournalRow(s interface{ Scan(...any) error }) (journalRow, error) {
	var r journalRow
	err := s.Scan(
		&r.ID,
		&r.EventID,
		&r.Action,
		&r.EntityID,
		&r.Summary,
		&r.Payload,
		&r.Status,
		&r.Attempts,
		&r.LastError,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

const insertEntry = `
INSERT INTO journal_entries (event_id, action, entity_id, summary, payload, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 'pending', ?, ?)
RETURNING ` + journalColumns

type InsertEntryParams struct {
	EventID   string
	Action    string
	EntityID  int64
	Summary   string
	Payload   string
	CreatedAt string
}

func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) (journalRow, error) {
	row := q.db.QueryRowContext(ctx, insertEntry,
		arg.EventID,
		arg.Action,
		arg.EntityID,
		arg.Summary,
		arg.Payload,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return scanJournalRow(row)
}

const getEntry = `SELECT ` + journalColumns + ` FROM journal_entries WHERE event_id = ?`

func (q *Queries) GetEntry(ctx context.Context, eventID string) (journalRow, error) {
	return scanJournalRow(q.db.QueryRowContext(ctx, getEntry, eventID))
}

const listRecent = `SELECT ` + journalColumns + ` FROM journal_entries ORDER BY id DESC LIMIT ?`

func (q *Queries) ListRecent(ctx context.Context, limit int64) ([]journalRow, error) {
	return q.list(ctx, listRecent, limit)
}

const listUnsynced = `
SELECT ` + journalColumns + ` FROM journal_entries
WHERE status != 'synced' AND updated_at <= ?
  AND (? = 0 OR attempts < ?)
ORDER BY id
LIMIT ?`

// ListUnsynced skips rows with maxAttempts or more failures; zero disables
// the cap.
func (q *Queries) ListUnsynced(ctx context.Context, before string, maxAttempts, limit int64) ([]journalRow, error) {
	return q.list(ctx, listUnsynced, before, maxAttempts, maxAttempts, limit)
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]journalRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []journalRow
	for rows.Next() {
		r, err := scanJournalRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markPublished = `
UPDATE journal_entries SET status = 'published', updated_at = ?
WHERE event_id = ? AND status != 'synced'`

func (q *Queries) MarkPublished(ctx context.Context, updatedAt, eventID string) (int64, error) {
	return q.exec(ctx, markPublished, updatedAt, eventID)
}

const markSynced = `
UPDATE journal_entries SET status = 'synced', last_error = '', updated_at = ?
WHERE event_id = ?`

func (q *Queries) MarkSynced(ctx context.Context, updatedAt, eventID string) (int64, error) {
	return q.exec(ctx, markSynced, updatedAt, eventID)
}

const markFailed = `
UPDATE journal_entries SET attempts = attempts + 1, last_error = ?, updated_at = ?
WHERE event_id = ?`

func (q *Queries) MarkFailed(ctx context.Context, lastError, updatedAt, eventID string) (int64, error) {
	return q.exec(ctx, markFailed, lastError, updatedAt, eventID)
}

const countByStatus = `SELECT status, COUNT(*) FROM journal_entries GROUP BY status`

func (q *Queries) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, countByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (q *Queries) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
