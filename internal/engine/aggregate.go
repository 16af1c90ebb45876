package engine

import (
	"fmt"
	"math"
	"sort"

	"airdash/internal/models"
	"airdash/internal/schema"
)

// Pollutants the original analysis singles out for activity planning.
var focusPollutants = []string{"PM2.5", "PM10", "O3"}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatDate(key int32) string {
	return fmt.Sprintf("%04d-%02d-%02d", key/10000, key/100%100, key%100)
}

// SeasonalMeans computes the mean of every measure column per season.
// Seasons with no rows are omitted; the rest keep calendar order.
func (v *View) SeasonalMeans() []models.SeasonRow {
	names := v.store.MeasureNames()
	sums := make([][]float64, len(SeasonNames))
	counts := make([]int, len(SeasonNames))
	for i := range sums {
		sums[i] = make([]float64, len(names))
	}

	cols := make([][]float64, len(names))
	for i, n := range names {
		cols[i], _ = v.store.Measure(n)
	}

	ids := v.store.SeasonIDs
	for _, r := range v.rows {
		sid := ids[r]
		counts[sid]++
		for k := range cols {
			sums[sid][k] += cols[k][r]
		}
	}

	out := make([]models.SeasonRow, 0, len(SeasonNames))
	for sid, name := range SeasonNames {
		if counts[sid] == 0 {
			continue
		}
		means := make(map[string]float64, len(names))
		for k, col := range names {
			means[col] = round2(sums[sid][k] / float64(counts[sid]))
		}
		out = append(out, models.SeasonRow{Season: name, Means: means})
	}
	return out
}

// HourlyMeans computes the mean of one pollutant per hour of day.
func (v *View) HourlyMeans(pollutant string) ([]models.HourPoint, error) {
	col, err := v.store.Measure(pollutant)
	if err != nil {
		return nil, err
	}

	var sums [24]float64
	var counts [24]int
	hours := v.store.Hours
	for _, r := range v.rows {
		h := hours[r]
		if h < 0 || h > 23 {
			continue
		}
		sums[h] += col[r]
		counts[h]++
	}

	out := make([]models.HourPoint, 0, 24)
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		out = append(out, models.HourPoint{Hour: h, Value: round2(sums[h] / float64(counts[h]))})
	}
	return out, nil
}

// WeekdayMeans computes the mean of one pollutant per day of week,
// Monday first.
func (v *View) WeekdayMeans(pollutant string) ([]models.WeekdayPoint, error) {
	col, err := v.store.Measure(pollutant)
	if err != nil {
		return nil, err
	}

	var sums [7]float64
	var counts [7]int
	ids := v.store.WeekdayIDs
	for _, r := range v.rows {
		sums[ids[r]] += col[r]
		counts[ids[r]]++
	}

	out := make([]models.WeekdayPoint, 0, 7)
	for d, name := range WeekdayNames {
		if counts[d] == 0 {
			continue
		}
		out = append(out, models.WeekdayPoint{Day: name, Value: round2(sums[d] / float64(counts[d]))})
	}
	return out, nil
}

// MonthlySeries computes the monthly mean of one pollutant across the
// filtered range, in chronological order.
func (v *View) MonthlySeries(pollutant string) ([]models.MonthPoint, error) {
	col, err := v.store.Measure(pollutant)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum float64
		n   int
	}
	months := make(map[int32]*acc)
	dates := v.store.Dates
	for _, r := range v.rows {
		key := dates[r] / 100 // YYYYMM
		a := months[key]
		if a == nil {
			a = &acc{}
			months[key] = a
		}
		a.sum += col[r]
		a.n++
	}

	keys := make([]int32, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]models.MonthPoint, 0, len(keys))
	for _, k := range keys {
		a := months[k]
		out = append(out, models.MonthPoint{
			Month: fmt.Sprintf("%04d-%02d", k/100, k%100),
			Value: round2(a.sum / float64(a.n)),
		})
	}
	return out, nil
}

// YearlyStats computes the yearly mean and sample standard deviation
// of one pollutant, in chronological order.
func (v *View) YearlyStats(pollutant string) ([]models.YearRow, error) {
	col, err := v.store.Measure(pollutant)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum   float64
		sumsq float64
		n     int
	}
	years := make(map[int32]*acc)
	dates := v.store.Dates
	for _, r := range v.rows {
		y := dates[r] / 10000
		a := years[y]
		if a == nil {
			a = &acc{}
			years[y] = a
		}
		val := col[r]
		a.sum += val
		a.sumsq += val * val
		a.n++
	}

	keys := make([]int32, 0, len(years))
	for k := range years {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]models.YearRow, 0, len(keys))
	for _, k := range keys {
		a := years[k]
		mean := a.sum / float64(a.n)
		std := 0.0
		if a.n > 1 {
			variance := (a.sumsq - a.sum*a.sum/float64(a.n)) / float64(a.n-1)
			if variance > 0 {
				std = math.Sqrt(variance)
			}
		}
		out = append(out, models.YearRow{Year: int(k), Mean: round2(mean), Std: round2(std), Count: a.n})
	}
	return out, nil
}

// WindMeans computes the mean of one pollutant per wind direction,
// sorted by direction name.
func (v *View) WindMeans(pollutant string) ([]models.WindPoint, error) {
	col, err := v.store.Measure(pollutant)
	if err != nil {
		return nil, err
	}

	dict := v.store.WindDict
	sums := make([]float64, len(dict))
	counts := make([]int, len(dict))
	ids := v.store.WindIDs
	for _, r := range v.rows {
		sums[ids[r]] += col[r]
		counts[ids[r]]++
	}

	out := make([]models.WindPoint, 0, len(dict))
	for id, name := range dict {
		if counts[id] == 0 {
			continue
		}
		out = append(out, models.WindPoint{Direction: name, Value: round2(sums[id] / float64(counts[id]))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Direction < out[j].Direction })
	return out, nil
}

// YearlyPercentChange compares each pollutant's yearly mean between
// the first and last year of the filtered range.
func (v *View) YearlyPercentChange() (*models.PercentChange, error) {
	out := &models.PercentChange{Change: make(map[string]float64)}
	for _, p := range schema.Pollutants() {
		rows, err := v.YearlyStats(p)
		if err != nil {
			return nil, err
		}
		if len(rows) < 2 {
			continue
		}
		first, last := rows[0], rows[len(rows)-1]
		out.FirstYear = first.Year
		out.LastYear = last.Year
		if first.Mean != 0 {
			out.Change[p] = round2((last.Mean - first.Mean) / first.Mean * 100)
		}
	}
	return out, nil
}

// Summary builds the dataset overview: row count, covered range,
// stations and descriptive statistics per measure column.
func (v *View) Summary() *models.Summary {
	s := &models.Summary{Rows: v.Len()}
	if v.Len() == 0 {
		return s
	}

	minDate, maxDate := int32(math.MaxInt32), int32(0)
	dates := v.store.Dates
	stationSeen := make(map[int32]bool)
	for _, r := range v.rows {
		if dates[r] < minDate {
			minDate = dates[r]
		}
		if dates[r] > maxDate {
			maxDate = dates[r]
		}
		stationSeen[v.store.StationIDs[r]] = true
	}
	s.From = formatDate(minDate)
	s.To = formatDate(maxDate)
	for id, name := range v.store.StationDict {
		if stationSeen[int32(id)] {
			s.Stations = append(s.Stations, name)
		}
	}
	sort.Strings(s.Stations)

	s.Stats = v.Describe(v.store.MeasureNames())
	return s
}

// Recommendations finds the best and worst hours and weekdays for
// outdoor activity per focus pollutant (lowest/highest mean level).
func (v *View) Recommendations() (*models.Recommendations, error) {
	rec := &models.Recommendations{
		BestHours:  make(map[string]int),
		WorstHours: make(map[string]int),
		BestDays:   make(map[string]string),
		WorstDays:  make(map[string]string),
	}
	for _, p := range focusPollutants {
		hours, err := v.HourlyMeans(p)
		if err != nil {
			return nil, err
		}
		if len(hours) > 0 {
			best, worst := hours[0], hours[0]
			for _, h := range hours[1:] {
				if h.Value < best.Value {
					best = h
				}
				if h.Value > worst.Value {
					worst = h
				}
			}
			rec.BestHours[p] = best.Hour
			rec.WorstHours[p] = worst.Hour
		}

		days, err := v.WeekdayMeans(p)
		if err != nil {
			return nil, err
		}
		if len(days) > 0 {
			best, worst := days[0], days[0]
			for _, d := range days[1:] {
				if d.Value < best.Value {
					best = d
				}
				if d.Value > worst.Value {
					worst = d
				}
			}
			rec.BestDays[p] = best.Day
			rec.WorstDays[p] = worst.Day
		}
	}
	return rec, nil
}
