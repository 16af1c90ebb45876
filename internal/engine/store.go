package engine

import "airdash/internal/schema"

// Fixed dictionaries for derived categorical columns. Season ids come
// straight from the month bucket, weekday ids are Monday-based.
var (
	SeasonNames  = []string{"Winter", "Spring", "Summer", "Fall"}
	WeekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

// ColumnStore holds the loaded dataset in Struct-of-Arrays format.
// It is built once by the loader and read-only afterwards.
type ColumnStore struct {
	// Time columns. Dates is the composite YYYYMMDD key.
	Dates []int32
	Hours []int16

	// Numeric measure columns, keyed by schema name ("PM2.5", "TEMP", ...).
	// measureNames preserves schema order for deterministic iteration.
	measures     map[string][]float64
	measureNames []string

	// Dictionary Encoded IDs (0..N)
	SeasonIDs  []int32
	WeekdayIDs []int32
	WindIDs    []int32
	StationIDs []int32

	// Dictionaries (ID -> String) for the dynamic categoricals.
	WindDict    []string
	StationDict []string
}

func newColumnStore(rows int) *ColumnStore {
	cs := &ColumnStore{
		Dates:        make([]int32, rows),
		Hours:        make([]int16, rows),
		measures:     make(map[string][]float64),
		measureNames: schema.Measures(),
		SeasonIDs:    make([]int32, rows),
		WeekdayIDs:   make([]int32, rows),
		WindIDs:      make([]int32, rows),
		StationIDs:   make([]int32, rows),
	}
	for _, name := range cs.measureNames {
		cs.measures[name] = make([]float64, rows)
	}
	return cs
}

// Len returns the number of loaded rows.
func (cs *ColumnStore) Len() int { return len(cs.Dates) }

// MeasureNames returns the measure columns in schema order.
func (cs *ColumnStore) MeasureNames() []string {
	out := make([]string, len(cs.measureNames))
	copy(out, cs.measureNames)
	return out
}

// Measure returns the column for a named measure, or a TransformError
// if the name is not part of the loaded schema.
func (cs *ColumnStore) Measure(name string) ([]float64, error) {
	col, ok := cs.measures[name]
	if !ok {
		return nil, &TransformError{Column: name, Reason: "not in schema"}
	}
	return col, nil
}
