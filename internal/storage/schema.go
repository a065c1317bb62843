package storage

const schema = `
-- The 'session_slot' table holds at most one row: the JSON snapshot of the
-- current study session. The CHECK pins the slot to a single row.
CREATE TABLE IF NOT EXISTS session_slot (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    payload TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
`
