package engine

import (
	"math"

	"airdash/internal/models"
)

// Describe computes descriptive statistics for the named measure
// columns over the filtered rows.
func (v *View) Describe(columns []string) []models.ColumnStats {
	out := make([]models.ColumnStats, 0, len(columns))
	for _, name := range columns {
		col, err := v.store.Measure(name)
		if err != nil {
			continue
		}
		var sum, sumsq float64
		minV, maxV := math.Inf(1), math.Inf(-1)
		n := 0
		for _, r := range v.rows {
			val := col[r]
			if math.IsNaN(val) {
				continue
			}
			sum += val
			sumsq += val * val
			if val < minV {
				minV = val
			}
			if val > maxV {
				maxV = val
			}
			n++
		}
		stats := models.ColumnStats{Column: name, Count: n}
		if n > 0 {
			stats.Mean = round2(sum / float64(n))
			stats.Min = round2(minV)
			stats.Max = round2(maxV)
		}
		if n > 1 {
			variance := (sumsq - sum*sum/float64(n)) / float64(n-1)
			if variance > 0 {
				stats.Std = round2(math.Sqrt(variance))
			}
		}
		out = append(out, stats)
	}
	return out
}

// CorrelationMatrix computes the pairwise Pearson correlation of the
// named columns. Unknown columns fail with a TransformError.
func (v *View) CorrelationMatrix(columns []string) (*models.CorrelationMatrix, error) {
	cols := make([][]float64, len(columns))
	for i, name := range columns {
		col, err := v.store.Measure(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	m := &models.CorrelationMatrix{
		Columns: append([]string(nil), columns...),
		Values:  make([][]float64, len(columns)),
	}
	for i := range columns {
		m.Values[i] = make([]float64, len(columns))
		m.Values[i][i] = 1
	}
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			c := round2(v.pearson(cols[i], cols[j]))
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m, nil
}

// pearson computes the Pearson correlation of two columns over the
// view's rows. Pairs with NaN on either side are skipped; fewer than
// three valid pairs yields 0.
func (v *View) pearson(x, y []float64) float64 {
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	n := 0
	for _, r := range v.rows {
		a, b := x[r], y[r]
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		sumX += a
		sumY += b
		sumXY += a * b
		sumX2 += a * a
		sumY2 += b * b
		n++
	}
	if n < 3 {
		return 0
	}
	fn := float64(n)
	num := fn*sumXY - sumX*sumY
	den := math.Sqrt(fn*sumX2-sumX*sumX) * math.Sqrt(fn*sumY2-sumY*sumY)
	if den == 0 {
		return 0
	}
	return num / den
}
