package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"airdash/internal/engine"
	"airdash/internal/schema"
	"airdash/internal/session"
)

type Handler struct {
	mu       sync.RWMutex
	store    *engine.ColumnStore
	sessions *session.Store
}

func NewHandler(store *engine.ColumnStore, sessions *session.Store) *Handler {
	return &Handler{store: store, sessions: sessions}
}

// SetData attaches a loaded dataset. Handlers answer 503 until then.
func (h *Handler) SetData(store *engine.ColumnStore) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.store = store
}

func (h *Handler) data() *engine.ColumnStore {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Page)
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/summary", h.GetSummary)
	api.GET("/seasonal", h.GetSeasonal)
	api.GET("/hourly", h.GetHourly)
	api.GET("/weekday", h.GetWeekday)
	api.GET("/monthly", h.GetMonthly)
	api.GET("/yearly", h.GetYearly)
	api.GET("/wind", h.GetWind)
	api.GET("/correlation", h.GetCorrelation)
	api.GET("/change", h.GetPercentChange)
	api.GET("/aqi/yearly", h.GetYearlyAQI)
	api.GET("/aqi/categories", h.GetAQICategories)
	api.GET("/exceedance", h.GetExceedance)
	api.GET("/recommendations", h.GetRecommendations)
	api.GET("/filters", h.GetFilters)
	api.PUT("/filters", h.UpdateFilters)
	api.POST("/filters/reset", h.ResetFilters)
}

// --- REQUEST PLUMBING ---

// view resolves the session filters (plus any query overrides) into a
// row view. All transform failures surface here as HTTP errors.
func (h *Handler) view(c echo.Context) (*engine.View, engine.FilterParams, error) {
	store := h.data()
	if store == nil {
		return nil, engine.FilterParams{}, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset not loaded yet")
	}

	params := h.sessions.Current()
	if err := applyQueryOverrides(c, &params); err != nil {
		return nil, params, err
	}

	v, err := store.ApplyFilter(params)
	if err != nil {
		return nil, params, toHTTPError(err)
	}
	return v, params, nil
}

// applyQueryOverrides layers query parameters over the session state
// for this request only. Dates accept "2013-03-01" or "20130301".
func applyQueryOverrides(c echo.Context, p *engine.FilterParams) error {
	if s := c.QueryParam("from"); s != "" {
		d, err := parseDateParam(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date: "+s)
		}
		p.From = d
	}
	if s := c.QueryParam("to"); s != "" {
		d, err := parseDateParam(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date: "+s)
		}
		p.To = d
	}
	if s := c.QueryParam("seasons"); s != "" {
		p.Seasons = splitList(s)
	}
	if s := c.QueryParam("wd"); s != "" {
		p.WindDirs = splitList(s)
	}
	if s := c.QueryParam("pollutant"); s != "" {
		p.Pollutant = s
	}
	return nil
}

func parseDateParam(s string) (int32, error) {
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 8 {
		return 0, errors.New("expected YYYY-MM-DD")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toHTTPError maps engine errors onto user-visible HTTP responses.
// A bad filter combination must never take the process down.
func toHTTPError(err error) error {
	var terr *engine.TransformError
	if errors.As(err, &terr) {
		return echo.NewHTTPError(http.StatusBadRequest, terr.Error())
	}
	var lerr *engine.LoadError
	if errors.As(err, &lerr) {
		if lerr.Kind == engine.LoadNotFound {
			return echo.NewHTTPError(http.StatusNotFound, lerr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, lerr.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	if h.data() == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "rows": h.data().Len()})
}

func (h *Handler) GetSummary(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    v.Summary(),
	})
}

func (h *Handler) GetSeasonal(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	rows := v.SeasonalMeans()

	points := make([]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Season)
		points = append(points, r.Means[params.Pollutant])
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    rows,
		"chart":   barChart("Mean "+params.Pollutant+" per Season", "Season", params.Pollutant, labels, points),
	})
}

func (h *Handler) GetHourly(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	points, err := v.HourlyMeans(params.Pollutant)
	if err != nil {
		return toHTTPError(err)
	}

	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, strconv.Itoa(p.Hour))
		values = append(values, p.Value)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    points,
		"chart":   lineChart(params.Pollutant+" by Hour of Day", "Hour", params.Pollutant, labels, values),
	})
}

func (h *Handler) GetWeekday(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	points, err := v.WeekdayMeans(params.Pollutant)
	if err != nil {
		return toHTTPError(err)
	}

	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Day)
		values = append(values, p.Value)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    points,
		"chart":   barChart(params.Pollutant+" by Day of Week", "Day", params.Pollutant, labels, values),
	})
}

func (h *Handler) GetMonthly(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	points, err := v.MonthlySeries(params.Pollutant)
	if err != nil {
		return toHTTPError(err)
	}

	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Month)
		values = append(values, p.Value)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    points,
		"chart":   lineChart("Monthly Mean "+params.Pollutant, "Month", params.Pollutant, labels, values),
	})
}

func (h *Handler) GetYearly(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	rows, err := v.YearlyStats(params.Pollutant)
	if err != nil {
		return toHTTPError(err)
	}

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, strconv.Itoa(r.Year))
		values = append(values, r.Mean)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    rows,
		"chart":   lineChart("Yearly Mean "+params.Pollutant, "Year", params.Pollutant, labels, values),
	})
}

func (h *Handler) GetWind(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	points, err := v.WindMeans(params.Pollutant)
	if err != nil {
		return toHTTPError(err)
	}

	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Direction)
		values = append(values, p.Value)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    points,
		"chart":   barChart("Mean "+params.Pollutant+" by Wind Direction", "Direction", params.Pollutant, labels, values),
	})
}

func (h *Handler) GetCorrelation(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}

	columns := append(schema.Pollutants(), schema.Weather()...)
	if s := c.QueryParam("columns"); s != "" {
		columns = splitList(s)
	}
	matrix, err := v.CorrelationMatrix(columns)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    matrix,
	})
}

func (h *Handler) GetPercentChange(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	change, err := v.YearlyPercentChange()
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    change,
	})
}

func (h *Handler) GetYearlyAQI(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	rows := v.YearlyAQI()

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, strconv.Itoa(r.Year))
		values = append(values, r.AQI)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    rows,
		"chart":   barChart("Mean Air Quality Index per Year", "Year", "AQI", labels, values),
	})
}

func (h *Handler) GetAQICategories(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    v.AQICategoryShares(),
	})
}

func (h *Handler) GetExceedance(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    v.Exceedance(),
	})
}

func (h *Handler) GetRecommendations(c echo.Context) error {
	v, params, err := h.view(c)
	if err != nil {
		return err
	}
	rec, err := v.Recommendations()
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"filters": params,
		"data":    rec,
	})
}

// --- FILTER STATE ---

func (h *Handler) GetFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.Current())
}

func (h *Handler) UpdateFilters(c echo.Context) error {
	store := h.data()
	if store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset not loaded yet")
	}

	var u session.Update
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter update")
	}

	// Validate the pollutant before committing the update.
	if u.Pollutant != nil {
		if _, err := store.Measure(*u.Pollutant); err != nil {
			return toHTTPError(err)
		}
	}
	return c.JSON(http.StatusOK, h.sessions.Update(u))
}

func (h *Handler) ResetFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.Reset())
}
