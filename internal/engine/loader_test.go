package engine

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const testHeader = "No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,PRES,DEWP,RAIN,wd,WSPM,station"

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	csvContent := testHeader + "\n" +
		"1,2013,3,1,0,4.5,8,4,7,300,77,-0.7,1023,-18.8,0,NNW,4.4,Tiantan\n" +
		"2,2013,3,1,1,NA,10,4,7,300,77,-0.5,1023.5,-18.2,0,N,4.7,Tiantan\n" +
		"3,2013,7,2,5,12,20,5,9,400,80,25.1,1008,10.2,0.2,SE,1.1,Tiantan\n"

	cs, err := LoadCSV(writeTempCSV(t, csvContent))
	if err != nil {
		t.Fatal(err)
	}

	if cs.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", cs.Len())
	}

	if cs.Dates[0] != 20130301 {
		t.Errorf("Row 0 Date: Expected 20130301, got %d", cs.Dates[0])
	}
	if cs.Hours[1] != 1 {
		t.Errorf("Row 1 Hour: Expected 1, got %d", cs.Hours[1])
	}

	pm25, err := cs.Measure("PM2.5")
	if err != nil {
		t.Fatal(err)
	}
	if pm25[0] != 4.5 {
		t.Errorf("Row 0 PM2.5: Expected 4.5, got %f", pm25[0])
	}
	// NA forward-filled from the previous row.
	if pm25[1] != 4.5 {
		t.Errorf("Row 1 PM2.5: Expected forward-filled 4.5, got %f", pm25[1])
	}

	temp, _ := cs.Measure("TEMP")
	if temp[0] != -0.7 {
		t.Errorf("Row 0 TEMP: Expected -0.7, got %f", temp[0])
	}

	// Season buckets: March is Winter, July is Summer.
	if cs.SeasonIDs[0] != 0 {
		t.Errorf("Row 0 Season: Expected Winter(0), got %d", cs.SeasonIDs[0])
	}
	if cs.SeasonIDs[2] != 2 {
		t.Errorf("Row 2 Season: Expected Summer(2), got %d", cs.SeasonIDs[2])
	}

	// 2013-03-01 was a Friday.
	if WeekdayNames[cs.WeekdayIDs[0]] != "Friday" {
		t.Errorf("Row 0 Weekday: Expected Friday, got %s", WeekdayNames[cs.WeekdayIDs[0]])
	}

	if len(cs.WindDict) != 3 {
		t.Errorf("Expected 3 unique wind directions, got %d", len(cs.WindDict))
	}
	if len(cs.StationDict) != 1 || cs.StationDict[0] != "Tiantan" {
		t.Errorf("Expected station dict [Tiantan], got %v", cs.StationDict)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	if lerr.Kind != LoadNotFound {
		t.Errorf("Expected LoadNotFound, got %v", lerr.Kind)
	}
}

func TestLoadSchemaMismatch(t *testing.T) {
	csvContent := "id,date,value\n1,2013-01-01,5\n"
	_, err := LoadCSV(writeTempCSV(t, csvContent))
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	if lerr.Kind != LoadSchema {
		t.Errorf("Expected LoadSchema, got %v", lerr.Kind)
	}
}

func TestLoadParseError(t *testing.T) {
	csvContent := testHeader + "\n" + "1,2013,3,1\n"
	_, err := LoadCSV(writeTempCSV(t, csvContent))
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	if lerr.Kind != LoadParse {
		t.Errorf("Expected LoadParse, got %v", lerr.Kind)
	}
}

func TestFastHelpers(t *testing.T) {
	if f := parseFloat([]byte("123.45")); f != 123.45 {
		t.Errorf("parseFloat failed: %v", f)
	}
	if f := parseFloat([]byte("-12.5")); f != -12.5 {
		t.Errorf("parseFloat negative failed: %v", f)
	}
	if f := parseFloat([]byte("NA")); !math.IsNaN(f) {
		t.Errorf("parseFloat NA: expected NaN, got %v", f)
	}
	if f := parseFloat([]byte("")); !math.IsNaN(f) {
		t.Errorf("parseFloat empty: expected NaN, got %v", f)
	}

	if i := fastInt([]byte("99")); i != 99 {
		t.Errorf("fastInt failed: %v", i)
	}

	if d := dateKey(2023, 12, 1); d != 20231201 {
		t.Errorf("dateKey failed: %v", d)
	}

	seasons := map[int32]int32{1: 0, 3: 0, 4: 1, 6: 1, 7: 2, 9: 2, 10: 3, 12: 3}
	for month, want := range seasons {
		if got := seasonOf(month); got != want {
			t.Errorf("seasonOf(%d): expected %d, got %d", month, want, got)
		}
	}

	// 2017-02-28 was a Tuesday.
	if wd := weekdayOf(2017, 2, 28); WeekdayNames[wd] != "Tuesday" {
		t.Errorf("weekdayOf(2017-02-28): expected Tuesday, got %s", WeekdayNames[wd])
	}
}

func TestFillForward(t *testing.T) {
	nan := math.NaN()
	col := []float64{nan, nan, 3, nan, 5, nan}
	fillForward(col)
	want := []float64{3, 3, 3, 3, 5, 5}
	for i := range want {
		if col[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], col[i])
		}
	}
}
