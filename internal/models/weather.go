package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts used throughout the pipeline. Input files carry compact
// dates; everything downstream (storage, API) uses the normalized form.
const (
	InputDateLayout      = "20060102"
	NormalizedDateLayout = "2006-01-02"
)

// Observation is one day's readings for one station. Temperatures and
// precipitation are kept in station-native integer units, exactly as they
// appear in the source file. Identity is (StationID, ObservationDate).
type Observation struct {
	StationID       string `json:"station_id" db:"station_id"`
	ObservationDate string `json:"observation_date" db:"observation_date"` // YYYY-MM-DD
	MaxTemp         int    `json:"max_temp" db:"max_temp"`
	MinTemp         int    `json:"min_temp" db:"min_temp"`
	Precipitation   int    `json:"precipitation" db:"precipitation"`
}

// RowID renders the observation's dedup key. The station and date parts are
// delimiter-separated so that two distinct (station, date) pairs can never
// render to the same key.
func (o *Observation) RowID() string {
	return o.StationID + ":" + o.ObservationDate
}

// Year returns the 4-digit calendar year of the observation date.
func (o *Observation) Year() string {
	if len(o.ObservationDate) < 4 {
		return ""
	}
	return o.ObservationDate[:4]
}

// StationYearStatistic is a derived yearly aggregate for one station: mean
// max/min temperature and summed precipitation over the year's observations.
// Exactly one row exists per (StationID, Year); recomputation replaces prior
// values in place.
type StationYearStatistic struct {
	StationID  string  `json:"station_id" db:"station_id"`
	Year       string  `json:"year" db:"year"`
	AvgMaxTemp float64 `json:"avg_max_temp" db:"avg_max_temp"`
	AvgMinTemp float64 `json:"avg_min_temp" db:"avg_min_temp"`
	PrecipSum  int64   `json:"precip_sum" db:"precip_sum"`
	UpdatedAt  string  `json:"updated_at,omitempty" db:"updated_at"`
}

// ParseErrorKind classifies parser failures.
type ParseErrorKind string

const (
	// MalformedLine means the line did not carry enough tab-delimited fields.
	MalformedLine ParseErrorKind = "malformed_line"
	// MalformedDate means the date field was not a valid YYYYMMDD calendar date.
	MalformedDate ParseErrorKind = "malformed_date"
	// MalformedNumber means a numeric field was not an integer literal.
	MalformedNumber ParseErrorKind = "malformed_number"
)

// ParseError reports a single unparseable line.
type ParseError struct {
	Kind  ParseErrorKind
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: field %q has invalid value %q", e.Kind, e.Field, e.Value)
}

// IsTransient returns false as parse errors are permanent.
func (e *ParseError) IsTransient() bool {
	return false
}

// ParseLine converts one raw tab-delimited line into an Observation for the
// given station. Format: YYYYMMDD\tmaxTemp\tminTemp\tprecipitation. The date
// is normalized to YYYY-MM-DD. Pure transform, no side effects.
//
// Missing-value sentinels (e.g. -9999) are not treated specially: any integer
// literal is accepted and stored as-is. Fields past the fourth are ignored.
func ParseLine(line, stationID string) (*Observation, error) {
	parts := strings.Split(line, "\t")
	if len(parts) < 4 {
		return nil, &ParseError{Kind: MalformedLine, Field: "line", Value: line}
	}

	rawDate := strings.TrimSpace(parts[0])
	date, err := time.Parse(InputDateLayout, rawDate)
	if err != nil {
		return nil, &ParseError{Kind: MalformedDate, Field: "date", Value: rawDate}
	}

	maxTemp, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, &ParseError{Kind: MalformedNumber, Field: "maxTemp", Value: parts[1]}
	}

	minTemp, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, &ParseError{Kind: MalformedNumber, Field: "minTemp", Value: parts[2]}
	}

	precip, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return nil, &ParseError{Kind: MalformedNumber, Field: "precipitation", Value: parts[3]}
	}

	return &Observation{
		StationID:       stationID,
		ObservationDate: date.Format(NormalizedDateLayout),
		MaxTemp:         maxTemp,
		MinTemp:         minTemp,
		Precipitation:   precip,
	}, nil
}
