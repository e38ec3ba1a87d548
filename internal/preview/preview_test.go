package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altiprofile/internal/profile"
	"altiprofile/internal/trackcsv"
)

func testTrack() *trackcsv.Track {
	return &trackcsv.Track{
		Header: []string{"Distance", "Altitude", "Note"},
		Records: [][]string{
			{"0", "100", "start"},
			{"500", "120", "flat"},
			{"1200", "150", "col"},
		},
	}
}

func TestRawFrame(t *testing.T) {
	t.Run("should keep values as read", func(t *testing.T) {
		df := RawFrame(testTrack(), 0)
		require.NoError(t, df.Err)

		assert.Equal(t, 3, df.Nrow())
		assert.Equal(t, []string{"Distance", "Altitude", "Note"}, df.Names())
		assert.Equal(t, []string{"500", "120", "flat"}, df.Records()[2])
	})

	t.Run("should limit rows", func(t *testing.T) {
		df := RawFrame(testTrack(), 2)
		require.NoError(t, df.Err)

		assert.Equal(t, 2, df.Nrow())
	})
}

func TestProfileFrame(t *testing.T) {
	rows := []profile.AggregatedRow{
		{Interval: 0, DistanceKm: 0.25, AltitudeM: 110},
		{Interval: 1, DistanceKm: 1.2, AltitudeM: 150.5},
	}

	df := ProfileFrame(rows)
	require.NoError(t, df.Err)

	assert.Equal(t, [][]string{
		{"Distance_km", "Altitude_m"},
		{"0.25", "110"},
		{"1.2", "150.5"},
	}, df.Records())
}

func TestTables(t *testing.T) {
	t.Run("should render raw table", func(t *testing.T) {
		out := RawTable(testTrack(), 10)

		assert.Contains(t, out, "[3x3] DataFrame")
		assert.Contains(t, out, "Altitude")
		assert.Contains(t, out, "1200")
	})

	t.Run("should render profile table", func(t *testing.T) {
		out := ProfileTable([]profile.AggregatedRow{{Interval: 0, DistanceKm: 0.25, AltitudeM: 110}})

		assert.Contains(t, out, "[1x2] DataFrame")
		assert.Contains(t, out, "Distance_km")
		assert.Contains(t, out, "0.25")
	})

	t.Run("should render empty tables", func(t *testing.T) {
		assert.Equal(t, emptyTable, RawTable(&trackcsv.Track{Header: []string{"Distance", "Altitude"}}, 10))
		assert.Equal(t, emptyTable, ProfileTable(nil))
	})
}

func TestSummaryLines(t *testing.T) {
	t.Run("should format full summary", func(t *testing.T) {
		lines := SummaryLines(profile.Summary{
			Samples:       4,
			Buckets:       2,
			DistanceKm:    1.8,
			MinAltitudeM:  110,
			MaxAltitudeM:  160,
			MeanAltitudeM: 135,
			AscentM:       50,
		})

		assert.Equal(t, []string{
			"Samples: 4",
			"Rows: 2",
			"Distance: 1.8 km",
			"Altitude: min 110 m, max 160 m, mean 135 m",
			"Ascent: 50 m, descent: 0 m",
		}, lines)
	})

	t.Run("should stop after counts for empty profile", func(t *testing.T) {
		assert.Equal(t, []string{"Samples: 0", "Rows: 0"}, SummaryLines(profile.Summary{}))
	})
}
