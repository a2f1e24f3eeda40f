package ledger

import (
	"database/sql"
	"time"
)

// Ledger provides helper methods for recording run history
type Ledger struct {
	db *sql.DB
}

// New creates a ledger helper over an open database
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// CreateSession records a new session
func (l *Ledger) CreateSession(sessionID, targetFile, theme, status string) error {
	_, err := l.db.Exec(`
		INSERT INTO sessions (session_id, target_file, theme, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, targetFile, theme, status, time.Now().Unix())
	return err
}

// CompleteSession records the terminal status and iteration count
func (l *Ledger) CompleteSession(sessionID, status string, iterations int) error {
	_, err := l.db.Exec(`
		UPDATE sessions
		SET status = ?, iterations = ?, completed_at = ?
		WHERE session_id = ?
	`, status, iterations, time.Now().Unix(), sessionID)
	return err
}

// RecordIteration records one loop action and the error count it observed
func (l *Ledger) RecordIteration(sessionID string, iter int, action string, errorCount int, snapshotTag string) error {
	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO iterations
		(session_id, iter, action, error_count, snapshot_tag, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sessionID, iter, action, errorCount, snapshotTag, time.Now().Unix())
	return err
}

// RecordOracleUsage records token usage and latency for one oracle call
func (l *Ledger) RecordOracleUsage(requestID, sessionID, operation, model string, promptTokens, completionTokens int, latencyMs int64) error {
	_, err := l.db.Exec(`
		INSERT INTO oracle_usage
		(request_id, session_id, operation, model, prompt_tokens, completion_tokens, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, requestID, sessionID, operation, model, promptTokens, completionTokens, latencyMs, time.Now().Unix())
	return err
}

// GetSession retrieves a session row
func (l *Ledger) GetSession(sessionID string) (*SessionRow, error) {
	var row SessionRow
	var completedAt sql.NullInt64

	err := l.db.QueryRow(`
		SELECT session_id, target_file, theme, status, iterations, created_at, completed_at
		FROM sessions
		WHERE session_id = ?
	`, sessionID).Scan(&row.SessionID, &row.TargetFile, &row.Theme, &row.Status, &row.Iterations, &row.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		row.CompletedAt = completedAt.Int64
	}
	return &row, nil
}

// SessionRow mirrors one row of the sessions table
type SessionRow struct {
	SessionID   string
	TargetFile  string
	Theme       string
	Status      string
	Iterations  int
	CreatedAt   int64
	CompletedAt int64
}
