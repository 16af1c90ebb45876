package engine

import "strings"

// FilterParams selects rows for a derived view. Category selections
// are OR within a field and AND across fields; an empty selection
// means no restriction. Date bounds are inclusive; a range with
// From > To selects nothing (not an error).
type FilterParams struct {
	From      int32    `json:"from"` // YYYYMMDD, 0 = open
	To        int32    `json:"to"`   // YYYYMMDD, 0 = open
	Seasons   []string `json:"seasons"`
	WindDirs  []string `json:"wind_dirs"`
	Pollutant string   `json:"pollutant"`
}

// DefaultFilters returns the session defaults: full range, all
// categories, PM2.5 as the highlighted pollutant.
func DefaultFilters() FilterParams {
	return FilterParams{Pollutant: "PM2.5"}
}

// Clone deep-copies the slices so values can be handed out without
// sharing backing arrays.
func (p FilterParams) Clone() FilterParams {
	out := p
	if p.Seasons != nil {
		out.Seasons = append([]string(nil), p.Seasons...)
	}
	if p.WindDirs != nil {
		out.WindDirs = append([]string(nil), p.WindDirs...)
	}
	return out
}

// View is a read-only row selection over a ColumnStore. Aggregations
// iterate its indices; the underlying columns are never copied.
type View struct {
	store *ColumnStore
	rows  []int32
}

// Len returns the number of selected rows.
func (v *View) Len() int { return len(v.rows) }

// Store returns the backing store.
func (v *View) Store() *ColumnStore { return v.store }

// ApplyFilter resolves filter parameters into a View in a single pass.
// An unknown pollutant is a TransformError; category values that match
// no dictionary entry simply select nothing.
func (cs *ColumnStore) ApplyFilter(p FilterParams) (*View, error) {
	if p.Pollutant != "" {
		if _, err := cs.Measure(p.Pollutant); err != nil {
			return nil, err
		}
	}

	// Empty range selects nothing.
	if p.From != 0 && p.To != 0 && p.From > p.To {
		return &View{store: cs}, nil
	}

	seasonSet := idSet(p.Seasons, SeasonNames)
	windSet := idSet(p.WindDirs, cs.WindDict)

	n := cs.Len()
	rows := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		if p.From != 0 && cs.Dates[i] < p.From {
			continue
		}
		if p.To != 0 && cs.Dates[i] > p.To {
			continue
		}
		if seasonSet != nil && !seasonSet[cs.SeasonIDs[i]] {
			continue
		}
		if windSet != nil && !windSet[cs.WindIDs[i]] {
			continue
		}
		rows = append(rows, int32(i))
	}
	return &View{store: cs, rows: rows}, nil
}

// idSet maps selected names onto dictionary ids, case-insensitively.
// nil means no restriction.
func idSet(selected []string, dict []string) map[int32]bool {
	if len(selected) == 0 {
		return nil
	}
	set := make(map[int32]bool, len(selected))
	for _, s := range selected {
		for id, name := range dict {
			if strings.EqualFold(s, name) {
				set[int32(id)] = true
				break
			}
		}
	}
	return set
}
