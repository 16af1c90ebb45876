package engine

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// LoadSQLite reads the dataset from a SQLite file holding the PRSA
// columns in a "readings" table. Rows come back in time order so the
// forward-fill pass behaves the same as for CSV input.
func LoadSQLite(path string) (*ColumnStore, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Kind: LoadNotFound, Path: path, Err: err}
		}
		return nil, &LoadError{Kind: LoadParse, Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &LoadError{Kind: LoadParse, Path: path, Err: err}
	}
	defer db.Close()

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM readings`).Scan(&total); err != nil {
		return nil, &LoadError{Kind: LoadSchema, Path: path, Err: fmt.Errorf("readings table: %w", err)}
	}
	if total == 0 {
		return nil, &LoadError{Kind: LoadSchema, Path: path, Err: fmt.Errorf("no data rows")}
	}

	rows, err := db.Query(`SELECT year, month, day, hour,
		"PM2.5", "PM10", "SO2", "NO2", "CO", "O3",
		"TEMP", "PRES", "DEWP", "RAIN", "WSPM", wd, station
		FROM readings ORDER BY year, month, day, hour`)
	if err != nil {
		return nil, &LoadError{Kind: LoadSchema, Path: path, Err: err}
	}
	defer rows.Close()

	cs := newColumnStore(total)
	meas := make([][]float64, len(cs.measureNames))
	for i, n := range cs.measureNames {
		meas[i] = cs.measures[n]
	}

	wMap := make(map[string]int32)
	sMap := make(map[string]int32)
	intern := func(s string, m map[string]int32, list *[]string) int32 {
		if id, ok := m[s]; ok {
			return id
		}
		id := int32(len(*list))
		*list = append(*list, s)
		m[s] = id
		return id
	}

	i := 0
	for rows.Next() {
		if i >= total {
			return nil, &LoadError{Kind: LoadParse, Path: path, Err: fmt.Errorf("row count changed during load")}
		}
		var y, m, d, h int32
		vals := make([]sql.NullFloat64, len(meas))
		var wd, station sql.NullString
		dest := []any{&y, &m, &d, &h}
		for k := range vals {
			dest = append(dest, &vals[k])
		}
		dest = append(dest, &wd, &station)
		if err := rows.Scan(dest...); err != nil {
			return nil, &LoadError{Kind: LoadParse, Path: path, Err: err}
		}
		if m < 1 || m > 12 || d < 1 || d > 31 {
			return nil, &LoadError{Kind: LoadParse, Path: path, Err: fmt.Errorf("row %d: invalid date %d-%d", i+1, m, d)}
		}

		cs.Dates[i] = dateKey(y, m, d)
		cs.Hours[i] = int16(h)
		cs.SeasonIDs[i] = seasonOf(m)
		cs.WeekdayIDs[i] = weekdayOf(y, m, d)
		for k, v := range vals {
			if v.Valid {
				meas[k][i] = v.Float64
			} else {
				meas[k][i] = math.NaN()
			}
		}
		w := "NA"
		if wd.Valid && wd.String != "" {
			w = wd.String
		}
		st := ""
		if station.Valid {
			st = station.String
		}
		cs.WindIDs[i] = intern(w, wMap, &cs.WindDict)
		cs.StationIDs[i] = intern(st, sMap, &cs.StationDict)
		i++
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Kind: LoadParse, Path: path, Err: err}
	}

	finalize(cs)

	log.Printf("Load Complete. Rows: %d. Time: %v", total, time.Since(start))
	return cs, nil
}
