package models

import (
	"errors"
	"testing"
)

// TestParseLine covers the full parse matrix: valid lines, the date
// normalization, and each malformed-field failure mode.
func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		stationID   string
		wantErr     bool
		wantKind    ParseErrorKind
		checkValues func(*testing.T, *Observation)
	}{
		{
			name:      "valid line",
			line:      "19850101\t289\t178\t25",
			stationID: "USC00110072",
			wantErr:   false,
			checkValues: func(t *testing.T, obs *Observation) {
				if obs.StationID != "USC00110072" {
					t.Errorf("StationID = %v, want USC00110072", obs.StationID)
				}
				if obs.ObservationDate != "1985-01-01" {
					t.Errorf("ObservationDate = %v, want 1985-01-01", obs.ObservationDate)
				}
				if obs.MaxTemp != 289 {
					t.Errorf("MaxTemp = %v, want 289", obs.MaxTemp)
				}
				if obs.MinTemp != 178 {
					t.Errorf("MinTemp = %v, want 178", obs.MinTemp)
				}
				if obs.Precipitation != 25 {
					t.Errorf("Precipitation = %v, want 25", obs.Precipitation)
				}
			},
		},
		{
			name:      "negative values are valid",
			line:      "20140215\t-50\t-122\t0",
			stationID: "USC00252820",
			wantErr:   false,
			checkValues: func(t *testing.T, obs *Observation) {
				if obs.MaxTemp != -50 {
					t.Errorf("MaxTemp = %v, want -50", obs.MaxTemp)
				}
				if obs.MinTemp != -122 {
					t.Errorf("MinTemp = %v, want -122", obs.MinTemp)
				}
			},
		},
		{
			name:      "sentinel values stored as-is",
			line:      "19910630\t-9999\t-9999\t-9999",
			stationID: "USC00110072",
			wantErr:   false,
			checkValues: func(t *testing.T, obs *Observation) {
				if obs.MaxTemp != -9999 || obs.MinTemp != -9999 || obs.Precipitation != -9999 {
					t.Errorf("sentinels not preserved: %+v", obs)
				}
			},
		},
		{
			name:      "extra trailing fields ignored",
			line:      "20000229\t100\t50\t3\textra",
			stationID: "USC00110072",
			wantErr:   false,
			checkValues: func(t *testing.T, obs *Observation) {
				if obs.ObservationDate != "2000-02-29" {
					t.Errorf("ObservationDate = %v, want 2000-02-29", obs.ObservationDate)
				}
				if obs.Precipitation != 3 {
					t.Errorf("Precipitation = %v, want 3", obs.Precipitation)
				}
			},
		},
		{
			name:      "too few fields",
			line:      "19850101\t289\t178",
			stationID: "USC00110072",
			wantErr:   true,
			wantKind:  MalformedLine,
		},
		{
			name:      "pre-normalized date rejected",
			line:      "1985-01-01\t289\t178\t25",
			stationID: "USC00110072",
			wantErr:   true,
			wantKind:  MalformedDate,
		},
		{
			name:      "impossible calendar date",
			line:      "19850231\t289\t178\t25",
			stationID: "USC00110072",
			wantErr:   true,
			wantKind:  MalformedDate,
		},
		{
			name:      "non-numeric max temp",
			line:      "19850101\tabc\t178\t25",
			stationID: "USC00110072",
			wantErr:   true,
			wantKind:  MalformedNumber,
		},
		{
			name:      "non-numeric min temp",
			line:      "19850101\t289\t17.8\t25",
			stationID: "USC00110072",
			wantErr:   true,
			wantKind:  MalformedNumber,
		},
		{
			name:      "non-numeric precipitation",
			line:      "19850101\t289\t178\tN/A",
			stationID: "USC00110072",
			wantErr:   true,
			wantKind:  MalformedNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := ParseLine(tt.line, tt.stationID)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLine() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("error type = %T, want *ParseError", err)
				}
				if parseErr.Kind != tt.wantKind {
					t.Errorf("Kind = %v, want %v", parseErr.Kind, tt.wantKind)
				}
				if parseErr.IsTransient() {
					t.Error("parse errors must not be transient")
				}
				return
			}

			if tt.checkValues != nil {
				tt.checkValues(t, obs)
			}
		})
	}
}

// TestObservation_RowID checks that the dedup key is delimiter-separated:
// pairs whose raw concatenations collide must render distinct keys.
func TestObservation_RowID(t *testing.T) {
	a := &Observation{StationID: "AB1", ObservationDate: "2024"}
	b := &Observation{StationID: "AB", ObservationDate: "12024"}

	if a.StationID+a.ObservationDate != b.StationID+b.ObservationDate {
		t.Fatal("test pair no longer concat-collides; pick a new pair")
	}
	if a.RowID() == b.RowID() {
		t.Errorf("RowID collision: %q == %q", a.RowID(), b.RowID())
	}

	obs := &Observation{StationID: "USC00110072", ObservationDate: "1985-01-01"}
	if got := obs.RowID(); got != "USC00110072:1985-01-01" {
		t.Errorf("RowID() = %q, want USC00110072:1985-01-01", got)
	}
}

func TestObservation_Year(t *testing.T) {
	obs := &Observation{ObservationDate: "1985-01-01"}
	if got := obs.Year(); got != "1985" {
		t.Errorf("Year() = %q, want 1985", got)
	}

	empty := &Observation{}
	if got := empty.Year(); got != "" {
		t.Errorf("Year() on empty date = %q, want empty", got)
	}
}
