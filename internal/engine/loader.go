package engine

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unsafe"

	"airdash/internal/schema"
)

// --- 1. FAST ZERO-ALLOC PARSERS ---

func unsafeToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// fastInt parses "123" -> 123. Non-negative fields only.
func fastInt(b []byte) int32 {
	var n int32
	for _, c := range b {
		n = n*10 + int32(c-'0')
	}
	return n
}

// parseFloat parses "-12.5" -> -12.5. Empty or "NA" fields become NaN
// so the forward-fill pass can repair them.
func parseFloat(b []byte) float64 {
	if len(b) == 0 || (len(b) == 2 && b[0] == 'N' && b[1] == 'A') {
		return math.NaN()
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
	}
	var num float64
	for i < len(b) && b[i] != '.' {
		num = num*10 + float64(b[i]-'0')
		i++
	}
	if i < len(b) {
		i++
		div := 10.0
		for i < len(b) {
			num += float64(b[i]-'0') / div
			div *= 10
			i++
		}
	}
	if neg {
		return -num
	}
	return num
}

// dateKey packs (2017, 2, 28) -> 20170228.
func dateKey(y, m, d int32) int32 {
	return y*10000 + m*100 + d
}

// seasonOf buckets a month into the season id used by SeasonNames.
// Months 1-3 Winter, 4-6 Spring, 7-9 Summer, 10-12 Fall.
func seasonOf(month int32) int32 {
	return (month - 1) / 3
}

// weekdayOf returns the Monday-based weekday id for a civil date.
func weekdayOf(y, m, d int32) int32 {
	wd := time.Date(int(y), time.Month(m), int(d), 0, 0, 0, 0, time.UTC).Weekday()
	return int32((int(wd) + 6) % 7)
}

// --- 2. ENTRY POINT ---

// Load reads a dataset file into a ColumnStore. SQLite files are
// detected by extension; everything else is treated as PRSA CSV.
// Failures come back as *LoadError.
func Load(path string) (*ColumnStore, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(path)
	default:
		return LoadCSV(path)
	}
}

// --- 3. CSV LOADER ---

// LoadCSV parses a PRSA CSV file into a ColumnStore using parallel
// chunked parsing. The header is validated against the declared schema
// before any row is touched.
func LoadCSV(path string) (*ColumnStore, error) {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Kind: LoadNotFound, Path: path, Err: err}
		}
		return nil, &LoadError{Kind: LoadParse, Path: path, Err: err}
	}

	// Header row: validate, then advance past it.
	idx := bytes.IndexByte(content, '\n')
	if idx == -1 {
		return nil, &LoadError{Kind: LoadSchema, Path: path, Err: fmt.Errorf("no data rows")}
	}
	header := strings.Split(strings.TrimRight(string(content[:idx]), "\r"), ",")
	if err := schema.Validate(header); err != nil {
		return nil, &LoadError{Kind: LoadSchema, Path: path, Err: err}
	}
	content = content[idx+1:]

	// Ensure the last row is newline-terminated so row counting sees it.
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}

	numWorkers := runtime.NumCPU()
	chunkSize := len(content) / numWorkers
	if chunkSize == 0 {
		numWorkers = 1
		chunkSize = len(content)
	}

	// A. Count Rows (Parallel) for Exact Allocation
	rowCounts := make([]int, numWorkers)
	var countWg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		countWg.Add(1)
		go func(idx, start, end int) {
			defer countWg.Done()
			start, end = alignChunk(content, start, end)
			if start < end {
				rowCounts[idx] = bytes.Count(content[start:end], []byte{'\n'})
			}
		}(i, i*chunkSize, (i+1)*chunkSize)
	}
	countWg.Wait()

	totalRows := 0
	for _, c := range rowCounts {
		totalRows += c
	}
	if totalRows == 0 {
		return nil, &LoadError{Kind: LoadSchema, Path: path, Err: fmt.Errorf("no data rows")}
	}

	// B. Allocate Store ONCE
	cs := newColumnStore(totalRows)

	offsets := make([]int, numWorkers)
	curr := 0
	for i, c := range rowCounts {
		offsets[i] = curr
		curr += c
	}

	// CSV field order: the schema measures minus WSPM sit in one run,
	// wd splits the run, WSPM and station close the row.
	names := cs.measureNames
	meas := make([][]float64, len(names))
	for i, n := range names {
		meas[i] = cs.measures[n]
	}

	// C. Parallel Parsing (Unrolled)
	type localDicts struct {
		wMap  map[string]int32
		wList []string
		sMap  map[string]int32
		sList []string
		idsW  []int32
		idsS  []int32
	}
	workerDicts := make([]*localDicts, numWorkers)
	workerErrs := make([]error, numWorkers)

	sep := []byte{','}

	var parseWg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		parseWg.Add(1)
		go func(idx, start, end, writeOffset int) {
			defer parseWg.Done()

			ld := &localDicts{
				wMap: make(map[string]int32), sMap: make(map[string]int32),
				idsW: make([]int32, rowCounts[idx]), idsS: make([]int32, rowCounts[idx]),
			}
			workerDicts[idx] = ld

			start, end = alignChunk(content, start, end)
			chunk := content[start:end]
			pos := 0
			row := 0

			intern := func(field []byte, m map[string]int32, list *[]string) int32 {
				s := unsafeToString(field)
				if id, ok := m[s]; ok {
					return id
				}
				id := int32(len(*list))
				str := string(field) // allocate only for new dict entries
				*list = append(*list, str)
				m[str] = id
				return id
			}

			for pos < len(chunk) {
				nextPos := len(chunk)
				if i := bytes.IndexByte(chunk[pos:], '\n'); i != -1 {
					nextPos = pos + i
				}
				line := chunk[pos:nextPos]
				pos = nextPos + 1
				if len(line) > 0 && line[len(line)-1] == '\r' {
					line = line[:len(line)-1]
				}
				if len(line) == 0 {
					workerErrs[idx] = fmt.Errorf("row %d: empty row", writeOffset+row+1)
					return
				}

				var field []byte
				var rest = line
				var found bool

				// 0: No (SKIP)
				if _, rest, found = bytes.Cut(rest, sep); !found {
					workerErrs[idx] = fmt.Errorf("row %d: missing fields", writeOffset+row+1)
					return
				}

				// 1-4: year, month, day, hour
				var y, m, d, h int32
				if field, rest, found = bytes.Cut(rest, sep); found {
					y = fastInt(field)
				}
				if field, rest, found = bytes.Cut(rest, sep); found {
					m = fastInt(field)
				}
				if field, rest, found = bytes.Cut(rest, sep); found {
					d = fastInt(field)
				}
				if field, rest, found = bytes.Cut(rest, sep); !found {
					workerErrs[idx] = fmt.Errorf("row %d: missing fields", writeOffset+row+1)
					return
				} else {
					h = fastInt(field)
				}
				if m < 1 || m > 12 || d < 1 || d > 31 {
					workerErrs[idx] = fmt.Errorf("row %d: invalid date %d-%d", writeOffset+row+1, m, d)
					return
				}

				cs.Dates[writeOffset+row] = dateKey(y, m, d)
				cs.Hours[writeOffset+row] = int16(h)
				cs.SeasonIDs[writeOffset+row] = seasonOf(m)
				cs.WeekdayIDs[writeOffset+row] = weekdayOf(y, m, d)

				// 5-14: PM2.5 .. RAIN (measure columns 0..9)
				for k := 0; k < 10; k++ {
					if field, rest, found = bytes.Cut(rest, sep); !found {
						workerErrs[idx] = fmt.Errorf("row %d: missing fields", writeOffset+row+1)
						return
					}
					meas[k][writeOffset+row] = parseFloat(field)
				}

				// 15: wd (dictionary)
				if field, rest, found = bytes.Cut(rest, sep); !found {
					workerErrs[idx] = fmt.Errorf("row %d: missing fields", writeOffset+row+1)
					return
				}
				ld.idsW[row] = intern(field, ld.wMap, &ld.wList)

				// 16: WSPM (measure column 10)
				if field, rest, found = bytes.Cut(rest, sep); !found {
					workerErrs[idx] = fmt.Errorf("row %d: missing fields", writeOffset+row+1)
					return
				}
				meas[10][writeOffset+row] = parseFloat(field)

				// 17: station (last field, dictionary)
				ld.idsS[row] = intern(rest, ld.sMap, &ld.sList)

				row++
			}
		}(i, i*chunkSize, (i+1)*chunkSize, offsets[i])
	}
	parseWg.Wait()

	for _, werr := range workerErrs {
		if werr != nil {
			return nil, &LoadError{Kind: LoadParse, Path: path, Err: werr}
		}
	}

	// D. Merge Dictionaries (Parallel)
	var dictWg sync.WaitGroup
	dictWg.Add(2)

	mergeDict := func(getList func(*localDicts) []string, getIDs func(*localDicts) []int32, globalDict *[]string, globalIDs []int32) {
		defer dictWg.Done()
		gMap := make(map[string]int32)
		*globalDict = make([]string, 0, 32)
		remaps := make([][]int32, numWorkers)

		for w := 0; w < numWorkers; w++ {
			localList := getList(workerDicts[w])
			remaps[w] = make([]int32, len(localList))
			for lid, s := range localList {
				if gid, exists := gMap[s]; exists {
					remaps[w][lid] = gid
				} else {
					gid = int32(len(*globalDict))
					*globalDict = append(*globalDict, s)
					gMap[s] = gid
					remaps[w][lid] = gid
				}
			}
		}
		for w := 0; w < numWorkers; w++ {
			localIDs := getIDs(workerDicts[w])
			dest := globalIDs[offsets[w] : offsets[w]+len(localIDs)]
			remap := remaps[w]
			for k, id := range localIDs {
				dest[k] = remap[id]
			}
		}
	}

	go mergeDict(func(d *localDicts) []string { return d.wList }, func(d *localDicts) []int32 { return d.idsW }, &cs.WindDict, cs.WindIDs)
	go mergeDict(func(d *localDicts) []string { return d.sList }, func(d *localDicts) []int32 { return d.idsS }, &cs.StationDict, cs.StationIDs)

	dictWg.Wait()

	finalize(cs)

	log.Printf("Load Complete. Rows: %d. Time: %v", totalRows, time.Since(start))
	return cs, nil
}

// alignChunk moves chunk bounds to newline boundaries.
func alignChunk(content []byte, start, end int) (int, int) {
	if start > 0 {
		if i := bytes.IndexByte(content[start:], '\n'); i != -1 {
			start += i + 1
		} else {
			start = len(content)
		}
	}
	if end < len(content) {
		if i := bytes.IndexByte(content[end:], '\n'); i != -1 {
			end += i + 1
		} else {
			end = len(content)
		}
	} else {
		end = len(content)
	}
	return start, end
}

// finalize repairs gaps after parsing: numeric NaNs are forward-filled
// (leading gaps take the first observed value) and missing wind
// directions inherit the previous row's direction.
func finalize(cs *ColumnStore) {
	for _, name := range cs.measureNames {
		fillForward(cs.measures[name])
	}

	naID := int32(-1)
	for id, s := range cs.WindDict {
		if s == "NA" || s == "" {
			naID = int32(id)
			break
		}
	}
	if naID >= 0 {
		prev := int32(-1)
		for i, id := range cs.WindIDs {
			if id == naID {
				if prev >= 0 {
					cs.WindIDs[i] = prev
				}
			} else {
				prev = id
			}
		}
	}
}

func fillForward(col []float64) {
	prev := math.NaN()
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = prev
		} else {
			prev = v
		}
	}
	// Leading gaps: backfill from the first valid value.
	if len(col) > 0 && math.IsNaN(col[0]) {
		first := math.NaN()
		for _, v := range col {
			if !math.IsNaN(v) {
				first = v
				break
			}
		}
		for i := range col {
			if math.IsNaN(col[i]) {
				col[i] = first
			} else {
				break
			}
		}
	}
}
