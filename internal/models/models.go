package models

// Summary describes the currently filtered dataset.
type Summary struct {
	Rows     int           `json:"rows"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Stations []string      `json:"stations"`
	Stats    []ColumnStats `json:"stats"`
}

// ColumnStats holds descriptive statistics for one measure column.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SeasonRow holds per-season means for every measure column.
type SeasonRow struct {
	Season string             `json:"season"`
	Means  map[string]float64 `json:"means"`
}

type HourPoint struct {
	Hour  int     `json:"hour"`
	Value float64 `json:"value"`
}

type WeekdayPoint struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// MonthPoint is one step of a monthly series, keyed "2013-03".
type MonthPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// YearRow holds the yearly mean and spread of one pollutant.
type YearRow struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

type WindPoint struct {
	Direction string  `json:"direction"`
	Value     float64 `json:"value"`
}

// CorrelationMatrix is a symmetric Pearson matrix over the named
// columns; Values[i][j] correlates Columns[i] with Columns[j].
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// YearAQI is the mean daily AQI for one year.
type YearAQI struct {
	Year int     `json:"year"`
	AQI  float64 `json:"aqi"`
}

// YearCategoryShare maps AQI category to its share of days (percent).
type YearCategoryShare struct {
	Year   int                `json:"year"`
	Shares map[string]float64 `json:"shares"`
}

// ExceedanceRow maps pollutant to the percentage of days whose daily
// mean exceeded the WHO guideline in one year.
type ExceedanceRow struct {
	Year    int                `json:"year"`
	Percent map[string]float64 `json:"percent"`
}

// PercentChange compares pollutant yearly means between the first and
// last year in the filtered range.
type PercentChange struct {
	FirstYear int                `json:"first_year"`
	LastYear  int                `json:"last_year"`
	Change    map[string]float64 `json:"change"`
}

// Recommendations names the best/worst hours and weekdays for outdoor
// activity per key pollutant.
type Recommendations struct {
	BestHours  map[string]int    `json:"best_hours"`
	WorstHours map[string]int    `json:"worst_hours"`
	BestDays   map[string]string `json:"best_days"`
	WorstDays  map[string]string `json:"worst_days"`
}

// --- CHART TYPES ---
// Render-ready chart config; the embedded page draws these directly.

type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
