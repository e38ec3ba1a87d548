// Package profile turns raw track log samples into a per-kilometre altimetry
// profile.
package profile

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
)

// Decimals is the precision of every aggregated value.
const Decimals = 2

// Sample is one raw track log record.
type Sample struct {
	DistanceM float64
	AltitudeM float64
}

// AggregatedRow is the averaged and rounded record of one kilometre bucket.
type AggregatedRow struct {
	Interval   int64   `json:"interval"`
	DistanceKm float64 `json:"distance_km"`
	AltitudeM  float64 `json:"altitude_m"`
}

type bucket struct {
	distances stats.Float64Data
	altitudes stats.Float64Data
}

// Aggregate groups samples by integer kilometre and averages distance and
// altitude inside each group. Rows come back ordered by interval whatever the
// order of the samples. No samples yields no rows.
func Aggregate(samples []Sample) ([]AggregatedRow, error) {
	buckets := make(map[int64]*bucket)

	for i, s := range samples {
		if err := checkSample(i, s); err != nil {
			return nil, err
		}

		km := s.DistanceM / 1000
		interval := int64(math.Floor(km))

		b, ok := buckets[interval]
		if !ok {
			b = &bucket{}
			buckets[interval] = b
		}
		b.distances = append(b.distances, km)
		b.altitudes = append(b.altitudes, s.AltitudeM)
	}

	intervals := make([]int64, 0, len(buckets))
	for interval := range buckets {
		intervals = append(intervals, interval)
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i] < intervals[j] })

	rows := make([]AggregatedRow, 0, len(intervals))
	for _, interval := range intervals {
		b := buckets[interval]

		distance, err := roundedMean(b.distances)
		if err != nil {
			return nil, err
		}
		altitude, err := roundedMean(b.altitudes)
		if err != nil {
			return nil, err
		}

		rows = append(rows, AggregatedRow{
			Interval:   interval,
			DistanceKm: distance,
			AltitudeM:  altitude,
		})
	}

	return rows, nil
}

func checkSample(i int, s Sample) error {
	switch {
	case math.IsNaN(s.DistanceM) || math.IsInf(s.DistanceM, 0):
		return &TypeError{Column: "Distance", Value: formatValue(s.DistanceM), Reason: "sample " + strconv.Itoa(i) + " is not finite"}
	case s.DistanceM < 0:
		return &TypeError{Column: "Distance", Value: formatValue(s.DistanceM), Reason: "sample " + strconv.Itoa(i) + " is negative"}
	case math.IsNaN(s.AltitudeM) || math.IsInf(s.AltitudeM, 0):
		return &TypeError{Column: "Altitude", Value: formatValue(s.AltitudeM), Reason: "sample " + strconv.Itoa(i) + " is not finite"}
	}
	return nil
}

func roundedMean(values stats.Float64Data) (float64, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, err
	}
	return stats.Round(mean, Decimals)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
