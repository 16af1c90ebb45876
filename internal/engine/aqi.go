package engine

import (
	"sort"

	"airdash/internal/models"
)

// WHO guideline daily limits used by the air quality index.
var whoLimits = map[string]float64{
	"PM2.5": 25,
	"PM10":  50,
	"NO2":   40,
	"SO2":   20,
	"O3":    100,
}

// whoOrder fixes iteration order for deterministic output.
var whoOrder = []string{"PM2.5", "PM10", "SO2", "NO2", "O3"}

// AQI category labels, worst first threshold last.
const (
	AQIGood      = "Good"
	AQIModerate  = "Moderate"
	AQISensitive = "Unhealthy for Sensitive Groups"
	AQIUnhealthy = "Unhealthy"
	AQIVeryBad   = "Very Unhealthy"
)

// SimpleAQI normalizes PM2.5, PM10 and NO2 against their WHO limits
// and takes the worst ratio.
func SimpleAQI(pm25, pm10, no2 float64) float64 {
	aqi := pm25 / whoLimits["PM2.5"]
	if r := pm10 / whoLimits["PM10"]; r > aqi {
		aqi = r
	}
	if r := no2 / whoLimits["NO2"]; r > aqi {
		aqi = r
	}
	return aqi
}

// ClassifyAQI maps a normalized AQI value onto its category.
func ClassifyAQI(aqi float64) string {
	switch {
	case aqi <= 1:
		return AQIGood
	case aqi <= 2:
		return AQIModerate
	case aqi <= 3:
		return AQISensitive
	case aqi <= 4:
		return AQIUnhealthy
	default:
		return AQIVeryBad
	}
}

type dailyRow struct {
	date  int32
	means map[string]float64
}

// dailyMeans aggregates the WHO pollutants to daily means over the
// filtered rows, in chronological order.
func (v *View) dailyMeans() []dailyRow {
	type acc struct {
		sums map[string]float64
		n    int
	}
	cols := make(map[string][]float64, len(whoOrder))
	for _, p := range whoOrder {
		col, err := v.store.Measure(p)
		if err != nil {
			continue
		}
		cols[p] = col
	}

	days := make(map[int32]*acc)
	dates := v.store.Dates
	for _, r := range v.rows {
		key := dates[r]
		a := days[key]
		if a == nil {
			a = &acc{sums: make(map[string]float64, len(cols))}
			days[key] = a
		}
		for p, col := range cols {
			a.sums[p] += col[r]
		}
		a.n++
	}

	keys := make([]int32, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]dailyRow, 0, len(keys))
	for _, k := range keys {
		a := days[k]
		means := make(map[string]float64, len(a.sums))
		for p, sum := range a.sums {
			means[p] = sum / float64(a.n)
		}
		out = append(out, dailyRow{date: k, means: means})
	}
	return out
}

// YearlyAQI computes the mean daily AQI per year.
func (v *View) YearlyAQI() []models.YearAQI {
	type acc struct {
		sum float64
		n   int
	}
	years := make(map[int32]*acc)
	for _, day := range v.dailyMeans() {
		y := day.date / 10000
		a := years[y]
		if a == nil {
			a = &acc{}
			years[y] = a
		}
		a.sum += SimpleAQI(day.means["PM2.5"], day.means["PM10"], day.means["NO2"])
		a.n++
	}

	keys := make([]int32, 0, len(years))
	for k := range years {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]models.YearAQI, 0, len(keys))
	for _, k := range keys {
		a := years[k]
		out = append(out, models.YearAQI{Year: int(k), AQI: round2(a.sum / float64(a.n))})
	}
	return out
}

// AQICategoryShares computes, per year, the percentage of days falling
// into each AQI category.
func (v *View) AQICategoryShares() []models.YearCategoryShare {
	counts := make(map[int32]map[string]int)
	totals := make(map[int32]int)
	for _, day := range v.dailyMeans() {
		y := day.date / 10000
		if counts[y] == nil {
			counts[y] = make(map[string]int)
		}
		cat := ClassifyAQI(SimpleAQI(day.means["PM2.5"], day.means["PM10"], day.means["NO2"]))
		counts[y][cat]++
		totals[y]++
	}

	keys := make([]int32, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]models.YearCategoryShare, 0, len(keys))
	for _, k := range keys {
		shares := make(map[string]float64, len(counts[k]))
		for cat, n := range counts[k] {
			shares[cat] = round2(float64(n) / float64(totals[k]) * 100)
		}
		out = append(out, models.YearCategoryShare{Year: int(k), Shares: shares})
	}
	return out
}

// Exceedance computes, per year and WHO pollutant, the percentage of
// days whose daily mean exceeded the guideline limit.
func (v *View) Exceedance() []models.ExceedanceRow {
	over := make(map[int32]map[string]int)
	totals := make(map[int32]int)
	for _, day := range v.dailyMeans() {
		y := day.date / 10000
		if over[y] == nil {
			over[y] = make(map[string]int)
		}
		for _, p := range whoOrder {
			if day.means[p] > whoLimits[p] {
				over[y][p]++
			}
		}
		totals[y]++
	}

	keys := make([]int32, 0, len(over))
	for k := range over {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]models.ExceedanceRow, 0, len(keys))
	for _, k := range keys {
		pct := make(map[string]float64, len(whoOrder))
		for _, p := range whoOrder {
			pct[p] = round2(float64(over[k][p]) / float64(totals[k]) * 100)
		}
		out = append(out, models.ExceedanceRow{Year: int(k), Percent: pct})
	}
	return out
}
