package api

import "airdash/internal/models"

// newChart assembles a single-series chart config from parallel label
// and value slices. Returns nil when there is nothing to draw, which
// the page renders as an empty state.
func newChart(chartType, title, xAxis, yAxis string, labels []string, values []float64) *models.ChartConfig {
	if len(labels) == 0 {
		return nil
	}
	points := make([]models.ChartPoint, len(labels))
	for i := range labels {
		points[i] = models.ChartPoint{Label: labels[i], Value: values[i]}
	}
	return &models.ChartConfig{
		ChartType:  chartType,
		Title:      title,
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     []models.ChartSeries{{Name: yAxis, Data: points}},
		ShowLegend: false,
		ShowGrid:   true,
	}
}

func barChart(title, xAxis, yAxis string, labels []string, values []float64) *models.ChartConfig {
	return newChart("bar", title, xAxis, yAxis, labels, values)
}

func lineChart(title, xAxis, yAxis string, labels []string, values []float64) *models.ChartConfig {
	return newChart("line", title, xAxis, yAxis, labels, values)
}
