package metrics

import (
	"path/filepath"
	"testing"

	"leanloop/internal/ledger"
)

// TestFindBucket tests bucket assignment across the latency range
func TestFindBucket(t *testing.T) {
	tests := []struct {
		latency  int64
		expected int
	}{
		{50, 100},
		{100, 100},
		{101, 500},
		{4000, 5000},
		{200000, 300000},
		{2000000, 1200000}, // beyond the last bucket clamps to it
	}

	for _, tt := range tests {
		if got := findBucket(tt.latency); got != tt.expected {
			t.Errorf("findBucket(%d) = %d, want %d", tt.latency, got, tt.expected)
		}
	}
}

// TestRecordLatencyAndPercentiles tests recording and percentile calculation
// over the run ledger
func TestRecordLatencyAndPercentiles(t *testing.T) {
	db, err := ledger.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer db.Close()

	h := NewHistogram(db)

	// 10 measurements in the 100ms bucket, 10 in the 500ms bucket.
	for i := 0; i < 10; i++ {
		if err := h.RecordLatency(OpCheck, 50); err != nil {
			t.Fatalf("RecordLatency failed: %v", err)
		}
		if err := h.RecordLatency(OpCheck, 300); err != nil {
			t.Fatalf("RecordLatency failed: %v", err)
		}
	}

	p, err := h.CalculatePercentiles(OpCheck, 5)
	if err != nil {
		t.Fatalf("CalculatePercentiles failed: %v", err)
	}

	if p.Count != 20 {
		t.Errorf("Expected 20 measurements, got %d", p.Count)
	}
	// p50 lands exactly at the top of the first bucket.
	if p.P50 != 100 {
		t.Errorf("Expected p50 = 100, got %f", p.P50)
	}
	// p95 interpolates into the second bucket: 100 + 0.9*400.
	if p.P95 != 460 {
		t.Errorf("Expected p95 = 460, got %f", p.P95)
	}
	if p.P99 < p.P95 || p.P99 > 500 {
		t.Errorf("p99 out of range: %f", p.P99)
	}
}

// TestCalculatePercentilesNoData tests the empty-window error path
func TestCalculatePercentilesNoData(t *testing.T) {
	db, err := ledger.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer db.Close()

	if _, err := NewHistogram(db).CalculatePercentiles(OpBuild, 5); err == nil {
		t.Error("Expected error when no measurements exist in the window")
	}
}

// TestRecordLatencyAggregates tests that repeated measurements in the same
// minute upsert a single row
func TestRecordLatencyAggregates(t *testing.T) {
	db, err := ledger.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer db.Close()

	h := NewHistogram(db)
	for i := 0; i < 5; i++ {
		if err := h.RecordLatency(OpBuild, 42); err != nil {
			t.Fatalf("RecordLatency failed: %v", err)
		}
	}

	var rows, total int
	err = db.QueryRow(`
		SELECT COUNT(*), SUM(count) FROM latency_histogram WHERE operation = ?
	`, OpBuild).Scan(&rows, &total)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("Expected a single aggregated row, got %d", rows)
	}
	if total != 5 {
		t.Errorf("Expected count 5, got %d", total)
	}
}
