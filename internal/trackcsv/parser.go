// Package trackcsv reads CSV track logs into raw tables and profile samples.
package trackcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"altiprofile/internal/profile"
	"altiprofile/pkg/logger"
)

// Required column names.
const (
	DistanceColumn = "Distance"
	AltitudeColumn = "Altitude"
)

const bom = "\uFEFF"

// Track is a parsed track log: the raw table as read and the samples
// extracted from its Distance and Altitude columns.
type Track struct {
	Header  []string
	Records [][]string
	Samples []profile.Sample
}

type row struct {
	Distance string `csv:"Distance"`
	Altitude string `csv:"Altitude"`
}

// recordReader feeds csvutil while keeping every raw record and its line.
type recordReader struct {
	r       *csv.Reader
	records [][]string
	line    int
	err     error
}

func (rr *recordReader) Read() ([]string, error) {
	record, err := rr.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		rr.err = malformed(err)
		return nil, rr.err
	}

	rr.line, _ = rr.r.FieldPos(0)
	rr.records = append(rr.records, record)
	return record, nil
}

// Parse reads a CSV track log. The header must name Distance and Altitude;
// other columns are kept in the raw table only.
func Parse(r io.Reader) (*Track, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &profile.SchemaError{Reason: "empty input, no header row"}
		}
		return nil, malformed(err)
	}
	header[0] = strings.TrimPrefix(header[0], bom)

	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &profile.SchemaError{Missing: missing}
	}

	rr := &recordReader{r: reader}
	dec, err := csvutil.NewDecoder(rr, header...)
	if err != nil {
		return nil, &profile.SchemaError{Reason: "invalid header: " + err.Error()}
	}

	track := &Track{Header: header}
	for {
		var rec row
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			if rr.err != nil {
				return nil, rr.err
			}
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}

		sample, err := toSample(rec, rr.line)
		if err != nil {
			return nil, err
		}
		track.Samples = append(track.Samples, sample)
	}
	track.Records = rr.records

	logger.Logger.WithFields(map[string]interface{}{
		"columns": len(header),
		"samples": len(track.Samples),
	}).Debug("Parsed track log")

	return track, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}

	var missing []string
	for _, name := range []string{DistanceColumn, AltitudeColumn} {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func toSample(rec row, line int) (profile.Sample, error) {
	distance, err := parseValue(DistanceColumn, rec.Distance, line)
	if err != nil {
		return profile.Sample{}, err
	}
	if distance < 0 {
		return profile.Sample{}, &profile.TypeError{Column: DistanceColumn, Line: line, Value: rec.Distance, Reason: "negative distance"}
	}

	altitude, err := parseValue(AltitudeColumn, rec.Altitude, line)
	if err != nil {
		return profile.Sample{}, err
	}

	return profile.Sample{DistanceM: distance, AltitudeM: altitude}, nil
}

func parseValue(column, raw string, line int) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, &profile.TypeError{Column: column, Line: line, Value: raw, Reason: "empty value"}
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || !isDecimal(value) {
		return 0, &profile.TypeError{Column: column, Line: line, Value: raw, Reason: "not a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &profile.TypeError{Column: column, Line: line, Value: raw, Reason: "not a finite number"}
	}

	return f, nil
}

// isDecimal rejects the hexadecimal and underscore forms strconv accepts
func isDecimal(value string) bool {
	if strings.ContainsRune(value, '_') {
		return false
	}
	unsigned := strings.TrimLeft(value, "+-")
	return !strings.HasPrefix(unsigned, "0x") && !strings.HasPrefix(unsigned, "0X")
}

func malformed(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &profile.SchemaError{Line: parseErr.StartLine, Reason: "malformed CSV: " + parseErr.Err.Error()}
	}
	return &profile.SchemaError{Reason: "malformed CSV: " + err.Error()}
}
