package profile

import (
	"github.com/montanaflynn/stats"
)

// Summary gives the headline figures of a processed track log.
type Summary struct {
	Samples       int     `json:"samples"`
	Buckets       int     `json:"buckets"`
	DistanceKm    float64 `json:"distance_km"`
	MinAltitudeM  float64 `json:"min_altitude_m"`
	MaxAltitudeM  float64 `json:"max_altitude_m"`
	MeanAltitudeM float64 `json:"mean_altitude_m"`
	AscentM       float64 `json:"ascent_m"`
	DescentM      float64 `json:"descent_m"`
}

// Summarize computes the summary of samples and of the rows aggregated from
// them. Altitude figures and climbs are taken over rows.
func Summarize(samples []Sample, rows []AggregatedRow) Summary {
	summary := Summary{
		Samples: len(samples),
		Buckets: len(rows),
	}

	for _, s := range samples {
		if km := s.DistanceM / 1000; km > summary.DistanceKm {
			summary.DistanceKm = km
		}
	}
	summary.DistanceKm = round(summary.DistanceKm)

	if len(rows) == 0 {
		return summary
	}

	altitudes := make(stats.Float64Data, 0, len(rows))
	for i, row := range rows {
		altitudes = append(altitudes, row.AltitudeM)
		if i == 0 {
			continue
		}
		delta := row.AltitudeM - rows[i-1].AltitudeM
		if delta > 0 {
			summary.AscentM += delta
		} else {
			summary.DescentM -= delta
		}
	}

	// errors only occur on empty input, excluded above
	minimum, _ := stats.Min(altitudes)
	maximum, _ := stats.Max(altitudes)
	mean, _ := stats.Mean(altitudes)

	summary.MinAltitudeM = minimum
	summary.MaxAltitudeM = maximum
	summary.MeanAltitudeM = round(mean)
	summary.AscentM = round(summary.AscentM)
	summary.DescentM = round(summary.DescentM)

	return summary
}

func round(v float64) float64 {
	r, err := stats.Round(v, Decimals)
	if err != nil {
		return v
	}
	return r
}
