package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tarjetas/internal/session"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB wraps the SQLite connection holding the single persisted-session slot.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SaveSession writes the snapshot into the slot, replacing whatever was there.
func (db *DB) SaveSession(snap session.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO session_slot (id, payload, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession reads the slot. An empty slot or a payload that fails any shape
// check yields (nil, nil): malformed persisted data is indistinguishable from
// no session. Only infrastructure failures (the query itself) return an error.
func (db *DB) LoadSession() (*session.Snapshot, error) {
	var payload string
	row := db.conn.QueryRow(`SELECT payload FROM session_slot WHERE id = 1`)
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSnapshot([]byte(payload)), nil
}

// ClearSession empties the slot. Clearing an already-empty slot succeeds.
func (db *DB) ClearSession() error {
	if _, err := db.conn.Exec(`DELETE FROM session_slot WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// decodeSnapshot validates the persisted payload field by field: deckId must
// be a string, currentIndex a non-negative number, answers an object, and
// cardOrder, when present, an array of numbers. Anything else is nil.
func decodeSnapshot(payload []byte) *session.Snapshot {
	var raw struct {
		DeckID       *string                         `json:"deckId"`
		CurrentIndex *float64                        `json:"currentIndex"`
		Answers      map[string]session.AnswerStatus `json:"answers"`
		CardOrder    []int                           `json:"cardOrder"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil
	}
	if raw.DeckID == nil || raw.CurrentIndex == nil || raw.Answers == nil {
		return nil
	}
	if *raw.CurrentIndex < 0 {
		return nil
	}
	return &session.Snapshot{
		DeckID:       *raw.DeckID,
		CurrentIndex: int(*raw.CurrentIndex),
		Answers:      raw.Answers,
		CardOrder:    raw.CardOrder,
	}
}
