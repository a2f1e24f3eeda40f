package ledger

import (
	"path/filepath"
	"testing"
)

// TestLedgerRoundtrip tests session creation, iteration recording, and
// completion against a fresh database
func TestLedgerRoundtrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	l := New(db)

	if err := l.CreateSession("sess-1", "Proof.lean", "analysis", "dirty"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := l.RecordIteration("sess-1", 1, "deterministic", 2, "iter001_det"); err != nil {
		t.Fatalf("RecordIteration failed: %v", err)
	}
	if err := l.RecordOracleUsage("req-1", "sess-1", "oracle_repair", "gpt-5", 1200, 800, 3500); err != nil {
		t.Fatalf("RecordOracleUsage failed: %v", err)
	}
	if err := l.CompleteSession("sess-1", "ok", 3); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	row, err := l.GetSession("sess-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if row.TargetFile != "Proof.lean" {
		t.Errorf("Unexpected target file: %s", row.TargetFile)
	}
	if row.Theme != "analysis" {
		t.Errorf("Unexpected theme: %s", row.Theme)
	}
	if row.Status != "ok" {
		t.Errorf("Expected status ok, got %s", row.Status)
	}
	if row.Iterations != 3 {
		t.Errorf("Expected 3 iterations, got %d", row.Iterations)
	}
	if row.CompletedAt == 0 {
		t.Error("Expected completed_at to be set")
	}
}

// TestRecordIterationReplace tests that re-recording the same (session, iter,
// action) replaces rather than fails
func TestRecordIterationReplace(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	l := New(db)
	if err := l.CreateSession("sess-2", "X.lean", "", "dirty"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := l.RecordIteration("sess-2", 1, "repair", 3, "iter001_llmrepair"); err != nil {
		t.Fatalf("First RecordIteration failed: %v", err)
	}
	if err := l.RecordIteration("sess-2", 1, "repair", 1, "iter001_llmrepair"); err != nil {
		t.Fatalf("Second RecordIteration failed: %v", err)
	}

	var count, errorCount int
	err = db.QueryRow(`SELECT COUNT(*), MAX(error_count) FROM iterations WHERE session_id = ?`, "sess-2").
		Scan(&count, &errorCount)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 iteration row after replace, got %d", count)
	}
	if errorCount != 1 {
		t.Errorf("Expected replaced error count 1, got %d", errorCount)
	}
}

// TestGetSessionMissing tests the not-found path
func TestGetSessionMissing(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := New(db).GetSession("no-such-session"); err == nil {
		t.Error("Expected error for missing session")
	}
}

// TestOpenIdempotent tests that opening an existing ledger reapplies the
// schema without error
func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db1, err := Open(path)
	if err != nil {
		t.Fatalf("First Open failed: %v", err)
	}
	db1.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("Second Open failed: %v", err)
	}
	db2.Close()
}
