package engine

import (
	"testing"
)

// testStore builds a small hand-made store:
//
//	row date      hour season wd  PM2.5 PM10 NO2 O3 TEMP
//	0   20130115  2    Winter N   30    40   20  10  -2
//	1   20130116  8    Winter NW  60    80   50  20  -1
//	2   20130416  12   Spring SE  10    20   10  60  15
//	3   20130716  15   Summer SE  5     10   5   90  30
//	4   20141015  8    Fall   N   40    60   30  30  12
//	5   20141016  2    Fall   N   80    90   45  15  10
func testStore() *ColumnStore {
	cs := newColumnStore(6)
	copy(cs.Dates, []int32{20130115, 20130116, 20130416, 20130716, 20141015, 20141016})
	copy(cs.Hours, []int16{2, 8, 12, 15, 8, 2})
	copy(cs.SeasonIDs, []int32{0, 0, 1, 2, 3, 3})
	copy(cs.WeekdayIDs, []int32{1, 2, 2, 1, 2, 3})
	cs.WindDict = []string{"N", "NW", "SE"}
	copy(cs.WindIDs, []int32{0, 1, 2, 2, 0, 0})
	cs.StationDict = []string{"Tiantan"}

	copy(cs.measures["PM2.5"], []float64{30, 60, 10, 5, 40, 80})
	copy(cs.measures["PM10"], []float64{40, 80, 20, 10, 60, 90})
	copy(cs.measures["NO2"], []float64{20, 50, 10, 5, 30, 45})
	copy(cs.measures["O3"], []float64{10, 20, 60, 90, 30, 15})
	copy(cs.measures["TEMP"], []float64{-2, -1, 15, 30, 12, 10})
	return cs
}

func allRows(t *testing.T, cs *ColumnStore) *View {
	t.Helper()
	v, err := cs.ApplyFilter(DefaultFilters())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSeasonalMeans(t *testing.T) {
	v := allRows(t, testStore())
	rows := v.SeasonalMeans()

	if len(rows) != 4 {
		t.Fatalf("Expected 4 season rows, got %d", len(rows))
	}
	// Calendar order, not value order.
	order := []string{"Winter", "Spring", "Summer", "Fall"}
	for i, want := range order {
		if rows[i].Season != want {
			t.Errorf("Season %d: expected %s, got %s", i, want, rows[i].Season)
		}
	}
	if rows[0].Means["PM2.5"] != 45 {
		t.Errorf("Winter PM2.5: expected 45, got %f", rows[0].Means["PM2.5"])
	}
	if rows[3].Means["PM2.5"] != 60 {
		t.Errorf("Fall PM2.5: expected 60, got %f", rows[3].Means["PM2.5"])
	}
}

func TestSeasonalMeansOmitsEmptyGroups(t *testing.T) {
	cs := testStore()
	v, err := cs.ApplyFilter(FilterParams{From: 20130101, To: 20131231, Pollutant: "PM2.5"})
	if err != nil {
		t.Fatal(err)
	}
	rows := v.SeasonalMeans()
	// 2013 has no Fall rows: the group is omitted, not zero-filled.
	if len(rows) != 3 {
		t.Fatalf("Expected 3 season rows for 2013, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Season == "Fall" {
			t.Error("Fall should be omitted for 2013")
		}
	}
}

func TestHourlyMeans(t *testing.T) {
	v := allRows(t, testStore())
	points, err := v.HourlyMeans("PM2.5")
	if err != nil {
		t.Fatal(err)
	}

	want := []HourExpect{{2, 55}, {8, 50}, {12, 10}, {15, 5}}
	if len(points) != len(want) {
		t.Fatalf("Expected %d hour points, got %d", len(want), len(points))
	}
	for i, w := range want {
		if points[i].Hour != w.Hour || points[i].Value != w.Value {
			t.Errorf("Point %d: expected (%d, %f), got (%d, %f)", i, w.Hour, w.Value, points[i].Hour, points[i].Value)
		}
	}
}

type HourExpect struct {
	Hour  int
	Value float64
}

func TestHourlyMeansUnknownColumn(t *testing.T) {
	v := allRows(t, testStore())
	_, err := v.HourlyMeans("bogus")
	if err == nil {
		t.Fatal("Expected error for unknown column")
	}
}

func TestWeekdayMeans(t *testing.T) {
	v := allRows(t, testStore())
	points, err := v.WeekdayMeans("PM2.5")
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != 3 {
		t.Fatalf("Expected 3 weekday points, got %d", len(points))
	}
	if points[0].Day != "Tuesday" || points[0].Value != 17.5 {
		t.Errorf("Tuesday: expected 17.5, got %s %f", points[0].Day, points[0].Value)
	}
	if points[1].Day != "Wednesday" || points[1].Value != 36.67 {
		t.Errorf("Wednesday: expected 36.67, got %s %f", points[1].Day, points[1].Value)
	}
	if points[2].Day != "Thursday" || points[2].Value != 80 {
		t.Errorf("Thursday: expected 80, got %s %f", points[2].Day, points[2].Value)
	}
}

func TestMonthlySeries(t *testing.T) {
	v := allRows(t, testStore())
	points, err := v.MonthlySeries("PM2.5")
	if err != nil {
		t.Fatal(err)
	}

	wantMonths := []string{"2013-01", "2013-04", "2013-07", "2014-10"}
	wantValues := []float64{45, 10, 5, 60}
	if len(points) != len(wantMonths) {
		t.Fatalf("Expected %d month points, got %d", len(wantMonths), len(points))
	}
	for i := range wantMonths {
		if points[i].Month != wantMonths[i] || points[i].Value != wantValues[i] {
			t.Errorf("Point %d: expected (%s, %f), got (%s, %f)",
				i, wantMonths[i], wantValues[i], points[i].Month, points[i].Value)
		}
	}
}

func TestYearlyStats(t *testing.T) {
	v := allRows(t, testStore())
	rows, err := v.YearlyStats("PM2.5")
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 year rows, got %d", len(rows))
	}
	if rows[0].Year != 2013 || rows[0].Mean != 26.25 || rows[0].Count != 4 {
		t.Errorf("2013: expected mean 26.25 over 4 rows, got %+v", rows[0])
	}
	if rows[0].Std != 24.96 {
		t.Errorf("2013 Std: expected 24.96, got %f", rows[0].Std)
	}
	if rows[1].Year != 2014 || rows[1].Mean != 60 || rows[1].Std != 28.28 {
		t.Errorf("2014: expected mean 60 std 28.28, got %+v", rows[1])
	}
}

func TestWindMeans(t *testing.T) {
	v := allRows(t, testStore())
	points, err := v.WindMeans("PM2.5")
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != 3 {
		t.Fatalf("Expected 3 wind points, got %d", len(points))
	}
	// Sorted by direction name.
	if points[0].Direction != "N" || points[0].Value != 50 {
		t.Errorf("N: expected 50, got %s %f", points[0].Direction, points[0].Value)
	}
	if points[1].Direction != "NW" || points[1].Value != 60 {
		t.Errorf("NW: expected 60, got %s %f", points[1].Direction, points[1].Value)
	}
	if points[2].Direction != "SE" || points[2].Value != 7.5 {
		t.Errorf("SE: expected 7.5, got %s %f", points[2].Direction, points[2].Value)
	}
}

func TestYearlyPercentChange(t *testing.T) {
	v := allRows(t, testStore())
	change, err := v.YearlyPercentChange()
	if err != nil {
		t.Fatal(err)
	}

	if change.FirstYear != 2013 || change.LastYear != 2014 {
		t.Errorf("Expected range 2013-2014, got %d-%d", change.FirstYear, change.LastYear)
	}
	// (60 - 26.25) / 26.25 * 100
	if change.Change["PM2.5"] != 128.57 {
		t.Errorf("PM2.5 change: expected 128.57, got %f", change.Change["PM2.5"])
	}
}

func TestSummary(t *testing.T) {
	v := allRows(t, testStore())
	s := v.Summary()

	if s.Rows != 6 {
		t.Errorf("Expected 6 rows, got %d", s.Rows)
	}
	if s.From != "2013-01-15" || s.To != "2014-10-16" {
		t.Errorf("Expected 2013-01-15..2014-10-16, got %s..%s", s.From, s.To)
	}
	if len(s.Stations) != 1 || s.Stations[0] != "Tiantan" {
		t.Errorf("Expected [Tiantan], got %v", s.Stations)
	}
	if len(s.Stats) == 0 {
		t.Fatal("Expected descriptive stats")
	}
}

func TestSummaryEmptyView(t *testing.T) {
	cs := testStore()
	v, err := cs.ApplyFilter(FilterParams{From: 20200101, To: 20201231, Pollutant: "PM2.5"})
	if err != nil {
		t.Fatal(err)
	}
	s := v.Summary()
	if s.Rows != 0 {
		t.Errorf("Expected 0 rows, got %d", s.Rows)
	}
}

func TestRecommendations(t *testing.T) {
	v := allRows(t, testStore())
	rec, err := v.Recommendations()
	if err != nil {
		t.Fatal(err)
	}

	// PM2.5 hourly means: h2=55, h8=50, h12=10, h15=5.
	if rec.BestHours["PM2.5"] != 15 {
		t.Errorf("Best PM2.5 hour: expected 15, got %d", rec.BestHours["PM2.5"])
	}
	if rec.WorstHours["PM2.5"] != 2 {
		t.Errorf("Worst PM2.5 hour: expected 2, got %d", rec.WorstHours["PM2.5"])
	}
	// O3 hourly means: h2=12.5, h8=25, h12=60, h15=90.
	if rec.BestHours["O3"] != 2 {
		t.Errorf("Best O3 hour: expected 2, got %d", rec.BestHours["O3"])
	}
	if rec.WorstHours["O3"] != 15 {
		t.Errorf("Worst O3 hour: expected 15, got %d", rec.WorstHours["O3"])
	}
}
