package loop

import (
	"log/slog"

	"github.com/google/uuid"

	"leanloop/internal/ledger"
	"leanloop/internal/metrics"
	"leanloop/internal/oracle"
)

// Recorder writes run history into the ledger. A nil Recorder (or nil
// backing stores) is valid and records nothing; ledger failures are logged,
// never surfaced, so bookkeeping cannot fail a repair.
type Recorder struct {
	sessionID string
	ledger    *ledger.Ledger
	hist      *metrics.Histogram
}

// NewRecorder creates a recorder for one session
func NewRecorder(sessionID string, l *ledger.Ledger, h *metrics.Histogram) *Recorder {
	return &Recorder{sessionID: sessionID, ledger: l, hist: h}
}

// Iteration records one loop action and the error count it observed
func (r *Recorder) Iteration(iter int, action string, errorCount int, snapshotTag string) {
	if r == nil || r.ledger == nil {
		return
	}
	if err := r.ledger.RecordIteration(r.sessionID, iter, action, errorCount, snapshotTag); err != nil {
		slog.Warn("failed to record iteration", "iter", iter, "action", action, "err", err)
	}
}

// OracleUsage records token usage and latency for one oracle call
func (r *Recorder) OracleUsage(operation string, res *oracle.Result) {
	if r == nil || res == nil {
		return
	}
	if r.ledger != nil {
		err := r.ledger.RecordOracleUsage(uuid.New().String(), r.sessionID, operation,
			res.Model, res.PromptTokens, res.CompletionTokens, res.LatencyMs)
		if err != nil {
			slog.Warn("failed to record oracle usage", "operation", operation, "err", err)
		}
	}
	r.Latency(operation, res.LatencyMs)
}

// Latency records one latency measurement
func (r *Recorder) Latency(operation string, ms int64) {
	if r == nil || r.hist == nil {
		return
	}
	if err := r.hist.RecordLatency(operation, ms); err != nil {
		slog.Warn("failed to record latency", "operation", operation, "err", err)
	}
}

// Complete records the terminal session status
func (r *Recorder) Complete(status Status, iterations int) {
	if r == nil || r.ledger == nil {
		return
	}
	if err := r.ledger.CompleteSession(r.sessionID, string(status), iterations); err != nil {
		slog.Warn("failed to record session completion", "err", err)
	}
}
