package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Archive is a SQLite-backed mirror of session activity. It implements
// Recorder; the Manager stays the source of truth for the running
// process and the archive only ever appends.
type Archive struct {
	db *sql.DB
}

// NewArchive opens (or creates) the archive database at dbPath.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return a, nil
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, timestamp);

	CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		tool_name TEXT NOT NULL,
		arguments TEXT NOT NULL,
		result TEXT,
		error TEXT,
		started_at TIMESTAMP NOT NULL,
		duration_ms INTEGER,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_session ON tool_calls(session_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool_name);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordSession inserts a session row. Re-recording an id is a no-op.
func (a *Archive) RecordSession(s *Session) error {
	_, err := a.db.Exec(`
		INSERT OR IGNORE INTO sessions (id, created_at)
		VALUES (?, ?)
	`, s.ID, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// RecordTurn appends a turn row for a session.
func (a *Archive) RecordTurn(sessionID string, t Turn) error {
	rowID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("turn id: %w", err)
	}

	_, err = a.db.Exec(`
		INSERT INTO turns (id, session_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, rowID.String(), sessionID, t.Role, t.Content, t.Timestamp)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// RecordToolCall logs one tool invocation made while answering a query.
// errMsg is empty for successful calls.
func (a *Archive) RecordToolCall(sessionID, toolName, arguments, result, errMsg string, duration time.Duration) error {
	rowID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("tool call id: %w", err)
	}

	_, err = a.db.Exec(`
		INSERT INTO tool_calls (id, session_id, tool_name, arguments, result, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rowID.String(), sessionID, toolName, arguments, result, errMsg, time.Now(), duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert tool call: %w", err)
	}
	return nil
}

// Turns retrieves the archived turns of a session, oldest first.
func (a *Archive) Turns(sessionID string) ([]Turn, error) {
	rows, err := a.db.Query(`
		SELECT role, content, timestamp
		FROM turns
		WHERE session_id = ?
		ORDER BY timestamp ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Stats returns archive counters for diagnostics.
func (a *Archive) Stats() map[string]any {
	var sessions, turns, toolCalls int

	_ = a.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&sessions)
	_ = a.db.QueryRow(`SELECT COUNT(*) FROM turns`).Scan(&turns)
	_ = a.db.QueryRow(`SELECT COUNT(*) FROM tool_calls`).Scan(&toolCalls)

	return map[string]any{
		"sessions":   sessions,
		"turns":      turns,
		"tool_calls": toolCalls,
		"storage":    "sqlite",
	}
}
