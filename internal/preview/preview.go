// Package preview renders track logs and profiles as text tables.
package preview

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"altiprofile/internal/export"
	"altiprofile/internal/profile"
	"altiprofile/internal/trackcsv"
)

const emptyTable = "(no rows)"

// RawFrame loads the first maxRows records of a track into a data frame.
// Values are kept as read. A non-positive maxRows keeps every record.
func RawFrame(track *trackcsv.Track, maxRows int) dataframe.DataFrame {
	records := [][]string{track.Header}

	rows := track.Records
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	records = append(records, rows...)

	return dataframe.LoadRecords(records, dataframe.DetectTypes(false))
}

// ProfileFrame loads aggregated rows into a data frame with the workbook
// column names.
func ProfileFrame(rows []profile.AggregatedRow) dataframe.DataFrame {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{export.DistanceHeader, export.AltitudeHeader})
	for _, row := range rows {
		records = append(records, []string{formatFloat(row.DistanceKm), formatFloat(row.AltitudeM)})
	}

	return dataframe.LoadRecords(records, dataframe.DetectTypes(false))
}

// RawTable renders the loaded data
func RawTable(track *trackcsv.Track, maxRows int) string {
	if track == nil || len(track.Records) == 0 {
		return emptyTable
	}
	return RawFrame(track, maxRows).String()
}

// ProfileTable renders the converted data
func ProfileTable(rows []profile.AggregatedRow) string {
	if len(rows) == 0 {
		return emptyTable
	}
	return ProfileFrame(rows).String()
}

// SummaryLines formats a profile summary for reports.
func SummaryLines(s profile.Summary) []string {
	lines := []string{
		fmt.Sprintf("Samples: %d", s.Samples),
		fmt.Sprintf("Rows: %d", s.Buckets),
	}
	if s.Buckets == 0 {
		return lines
	}
	return append(lines,
		fmt.Sprintf("Distance: %s km", formatFloat(s.DistanceKm)),
		fmt.Sprintf("Altitude: min %s m, max %s m, mean %s m",
			formatFloat(s.MinAltitudeM), formatFloat(s.MaxAltitudeM), formatFloat(s.MeanAltitudeM)),
		fmt.Sprintf("Ascent: %s m, descent: %s m", formatFloat(s.AscentM), formatFloat(s.DescentM)),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
