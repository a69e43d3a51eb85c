package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hazyhaar/lazyload/dbopen"
	"github.com/hazyhaar/lazyload/event"
)

// Schema for the lazyload_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS lazyload_events (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL,
	page_url TEXT NOT NULL DEFAULT '',
	kind     TEXT NOT NULL,
	source   TEXT NOT NULL DEFAULT '',
	type     TEXT NOT NULL DEFAULT '',
	trig     TEXT NOT NULL DEFAULT '',
	count    INTEGER NOT NULL DEFAULT 0,
	loaded   INTEGER NOT NULL DEFAULT 0,
	error    TEXT NOT NULL DEFAULT '',
	at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lazyload_events_run ON lazyload_events(run_id, at);
`

// SQLite appends events to the lazyload_events table. It is a write-only
// report: nothing in the loader reads it back.
type SQLite struct {
	db    *sql.DB
	owned bool
}

// NewSQLite creates the table if needed and returns the sink. The caller
// owns db (open it with dbopen).
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("sqlite sink: schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// OpenSQLite opens (creating directories as needed) the database at path
// and returns a sink that closes it on Close. opts tune the connection.
func OpenSQLite(path string, opts ...dbopen.Option) (*SQLite, error) {
	opts = append([]dbopen.Option{dbopen.WithMkdirAll(), dbopen.WithSchema(Schema)}, opts...)
	db, err := dbopen.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("sqlite sink: %w", err)
	}
	return &SQLite{db: db, owned: true}, nil
}

func (s *SQLite) Send(ctx context.Context, ev event.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lazyload_events (
			id, run_id, page_url, kind, source, type, trig, count, loaded, error, at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ev.ID, ev.RunID, ev.PageURL, string(ev.Kind), ev.Source, ev.Type, ev.Trigger,
		ev.Count, ev.Loaded, ev.Error, ev.At)
	if err != nil {
		return fmt.Errorf("sqlite sink: insert: %w", err)
	}
	return nil
}

// Close closes the database only when OpenSQLite opened it.
func (s *SQLite) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// CountByKind summarises a run: events per kind.
func CountByKind(ctx context.Context, db *sql.DB, runID string) (map[event.Kind]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM lazyload_events WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[event.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[event.Kind(kind)] = n
	}
	return out, rows.Err()
}
