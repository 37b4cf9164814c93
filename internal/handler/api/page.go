package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	models "GovTracker/internal/domain/models"
	xlogger "GovTracker/pkg/logger"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// PageHandler serves the single dashboard page. Charts are filled in by the
// page itself from the JSON API.
type PageHandler struct {
	logger   *xlogger.Logger
	universe models.Universe
	title    string
}

func NewPageHandler(logger *xlogger.Logger, universe models.Universe) *PageHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PageHandler{logger: logger, universe: universe, title: "Government Bond Dashboard"}
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
}

type pageData struct {
	Title        string
	Universe     models.Universe
	UniverseJSON template.JS
}

func (h *PageHandler) Index(c echo.Context) error {
	u, err := json.Marshal(h.universe)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pageData{
		Title:        h.title,
		Universe:     h.universe,
		UniverseJSON: template.JS(u),
	}); err != nil {
		h.logger.Error("render page", xlogger.Error(err))
		return c.String(http.StatusInternalServerError, "render error")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
