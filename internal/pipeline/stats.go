package pipeline

import (
	"sync"
	"time"

	"altiprofile/pkg/utils"
)

// Stats accumulates the outcome of a batch of pipeline runs. It is safe for
// concurrent use.
type Stats struct {
	mu        sync.Mutex
	start     time.Time
	processed int
	failed    int
	inputSize int64
	samples   int
	rows      int
}

// NewStats starts a new batch
func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

// Record adds a successful run
func (s *Stats) Record(result *Result, inputSize int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed++
	s.inputSize += inputSize
	s.samples += result.Summary.Samples
	s.rows += len(result.Rows)
}

// RecordFailure adds a failed run
func (s *Stats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

// Processed returns the number of successful runs
func (s *Stats) Processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}

// Fields returns the batch statistics as log fields
func (s *Stats) Fields() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := map[string]interface{}{
		"processed":        s.processed,
		"failed":           s.failed,
		"total_size":       s.inputSize,
		"total_size_human": utils.FormatBytes(s.inputSize),
		"total_samples":    s.samples,
		"total_rows":       s.rows,
		"duration":         time.Since(s.start).Round(time.Millisecond).String(),
		"avg_rows":         0,
	}
	if s.processed > 0 {
		fields["avg_rows"] = s.rows / s.processed
	}
	return fields
}
