// Package schema declares the layout of the PRSA hourly readings
// dataset and validates incoming data against it. The layout is fixed:
// loads fail on mismatch instead of silently coercing columns.
package schema

import (
	"fmt"
	"strings"
)

// Kind classifies a column for parsing.
type Kind int

const (
	Integer Kind = iota
	Numeric
	Text
)

// Column is one declared dataset column.
type Column struct {
	Name string
	Kind Kind
}

// The PRSA station files carry exactly these columns, in this order.
var columns = []Column{
	{"No", Integer},
	{"year", Integer},
	{"month", Integer},
	{"day", Integer},
	{"hour", Integer},
	{"PM2.5", Numeric},
	{"PM10", Numeric},
	{"SO2", Numeric},
	{"NO2", Numeric},
	{"CO", Numeric},
	{"O3", Numeric},
	{"TEMP", Numeric},
	{"PRES", Numeric},
	{"DEWP", Numeric},
	{"RAIN", Numeric},
	{"wd", Text},
	{"WSPM", Numeric},
	{"station", Text},
}

var pollutants = []string{"PM2.5", "PM10", "SO2", "NO2", "CO", "O3"}
var weather = []string{"TEMP", "PRES", "DEWP", "RAIN", "WSPM"}

// Columns returns the declared column layout.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Pollutants returns the pollutant measure names.
func Pollutants() []string {
	out := make([]string, len(pollutants))
	copy(out, pollutants)
	return out
}

// Weather returns the weather measure names.
func Weather() []string {
	out := make([]string, len(weather))
	copy(out, weather)
	return out
}

// Measures returns all numeric measure names (pollutants then weather).
func Measures() []string {
	out := make([]string, 0, len(pollutants)+len(weather))
	out = append(out, pollutants...)
	out = append(out, weather...)
	return out
}

// IsMeasure reports whether name is a declared numeric measure.
func IsMeasure(name string) bool {
	for _, m := range pollutants {
		if m == name {
			return true
		}
	}
	for _, m := range weather {
		if m == name {
			return true
		}
	}
	return false
}

// Validate checks a header row against the declared layout.
func Validate(header []string) error {
	if len(header) != len(columns) {
		return fmt.Errorf("expected %d columns, got %d", len(columns), len(header))
	}
	for i, col := range columns {
		got := strings.TrimSpace(header[i])
		if got != col.Name {
			return fmt.Errorf("column %d: expected %q, got %q", i, col.Name, got)
		}
	}
	return nil
}
