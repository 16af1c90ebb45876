package api

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed index.html
var indexHTML []byte

// Page serves the embedded dashboard page.
func (h *Handler) Page(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}
