package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"altiprofile/internal/profile"
)

func TestStats(t *testing.T) {
	t.Run("should start empty", func(t *testing.T) {
		fields := NewStats().Fields()

		assert.Equal(t, 0, fields["processed"])
		assert.Equal(t, 0, fields["failed"])
		assert.Equal(t, 0, fields["avg_rows"])
		assert.Equal(t, "0 B", fields["total_size_human"])
	})

	t.Run("should accumulate runs concurrently", func(t *testing.T) {
		stats := NewStats()
		result := &Result{
			Rows:    []profile.AggregatedRow{{DistanceKm: 0.5, AltitudeM: 100}, {DistanceKm: 1.5, AltitudeM: 120}},
			Summary: profile.Summary{Samples: 4},
		}

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				stats.Record(result, 256)
			}()
		}
		wg.Wait()
		stats.RecordFailure()

		fields := stats.Fields()
		assert.Equal(t, 4, stats.Processed())
		assert.Equal(t, 1, fields["failed"])
		assert.Equal(t, int64(1024), fields["total_size"])
		assert.Equal(t, "1.0 KB", fields["total_size_human"])
		assert.Equal(t, 16, fields["total_samples"])
		assert.Equal(t, 8, fields["total_rows"])
		assert.Equal(t, 2, fields["avg_rows"])
	})
}
