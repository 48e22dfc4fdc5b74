// Package journal persists committed settlement events to SQLite. The
// external dashboard rebuilds its database by replaying the journal in
// sequence order; the core never reads it back.
package journal

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/floflo777/mbc20/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
`

// Entry is one journaled event.
type Entry struct {
	Seq       int64           `json:"seq"`
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the journal database. Pass ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init journal schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append implements core.EventSink. The chain has already committed when the
// sink runs, so a write failure is logged rather than propagated back.
func (s *Store) Append(ev model.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logrus.Errorf("journal: marshal %s event: %v", ev.Kind(), err)
		return
	}
	_, err = s.db.Exec(
		`INSERT INTO events (id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), ev.Kind(), string(payload), time.Now().Unix(),
	)
	if err != nil {
		logrus.Errorf("journal: append %s event: %v", ev.Kind(), err)
	}
}

// ReadSince returns all entries with seq greater than since, in order.
func (s *Store) ReadSince(since int64) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT seq, id, kind, payload, created_at FROM events WHERE seq > ? ORDER BY seq`,
		since,
	)
	if err != nil {
		return nil, errors.Wrap(err, "read journal")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload string
		var createdAt int64
		if err := rows.Scan(&e.Seq, &e.ID, &e.Kind, &payload, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan journal entry")
		}
		e.Payload = json.RawMessage(payload)
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
