package metrics

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

// LatencyBuckets defines histogram buckets in milliseconds. The top buckets
// cover whole-project builds, which can run for many minutes.
var LatencyBuckets = []int{100, 500, 1000, 5000, 15000, 60000, 300000, 1200000}

// Operation names recorded by the repair loop
const (
	OpBuild    = "build"
	OpCheck    = "check"
	OpRepair   = "oracle_repair"
	OpExtend   = "oracle_extend"
	OpDocument = "oracle_document"
)

// Histogram records operation latencies into the run ledger
type Histogram struct {
	db *sql.DB
}

// NewHistogram creates a histogram recorder over the ledger database
func NewHistogram(db *sql.DB) *Histogram {
	return &Histogram{db: db}
}

// RecordLatency records one latency measurement in a 1-minute window
func (h *Histogram) RecordLatency(operation string, latencyMs int64) error {
	bucket := findBucket(latencyMs)
	timestamp := time.Now().Unix() / 60 * 60

	_, err := h.db.Exec(`
		INSERT INTO latency_histogram (operation, bucket_ms, count, timestamp)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(operation, bucket_ms, timestamp)
		DO UPDATE SET count = count + 1
	`, operation, bucket, timestamp)

	return err
}

func findBucket(latencyMs int64) int {
	for _, bucket := range LatencyBuckets {
		if latencyMs <= int64(bucket) {
			return bucket
		}
	}
	return LatencyBuckets[len(LatencyBuckets)-1]
}

// Percentiles holds calculated percentile values for one operation
type Percentiles struct {
	Operation string
	P50       float64
	P95       float64
	P99       float64
	Count     int
	WindowEnd int64
}

// CalculatePercentiles calculates p50, p95, p99 for an operation over the
// trailing window
func (h *Histogram) CalculatePercentiles(operation string, windowMinutes int) (*Percentiles, error) {
	windowStart := time.Now().Unix()/60*60 - int64(windowMinutes*60)

	rows, err := h.db.Query(`
		SELECT bucket_ms, SUM(count) as total_count
		FROM latency_histogram
		WHERE operation = ? AND timestamp >= ?
		GROUP BY bucket_ms
		ORDER BY bucket_ms ASC
	`, operation, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query histogram: %w", err)
	}
	defer rows.Close()

	var buckets []bucketData
	totalCount := 0
	for rows.Next() {
		var bd bucketData
		if err := rows.Scan(&bd.bucket, &bd.count); err != nil {
			return nil, err
		}
		buckets = append(buckets, bd)
		totalCount += bd.count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if totalCount == 0 {
		return nil, fmt.Errorf("no data available for operation %s", operation)
	}

	return &Percentiles{
		Operation: operation,
		P50:       calculatePercentile(buckets, totalCount, 0.50),
		P95:       calculatePercentile(buckets, totalCount, 0.95),
		P99:       calculatePercentile(buckets, totalCount, 0.99),
		Count:     totalCount,
		WindowEnd: time.Now().Unix(),
	}, nil
}

type bucketData struct {
	bucket int
	count  int
}

func calculatePercentile(buckets []bucketData, totalCount int, percentile float64) float64 {
	if len(buckets) == 0 || totalCount == 0 {
		return 0
	}

	targetCount := int(math.Ceil(float64(totalCount) * percentile))
	cumulativeCount := 0

	for _, bd := range buckets {
		cumulativeCount += bd.count
		if cumulativeCount >= targetCount {
			// Linear interpolation within the bucket
			prevCumulative := cumulativeCount - bd.count
			ratio := float64(targetCount-prevCumulative) / float64(bd.count)

			prevBucket := 0
			for i, b := range LatencyBuckets {
				if b == bd.bucket && i > 0 {
					prevBucket = LatencyBuckets[i-1]
					break
				}
			}

			return float64(prevBucket) + ratio*float64(bd.bucket-prevBucket)
		}
	}

	return float64(buckets[len(buckets)-1].bucket)
}
