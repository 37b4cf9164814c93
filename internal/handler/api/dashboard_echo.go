package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	models "GovTracker/internal/domain/models"
	"GovTracker/internal/usecase"
	xhttp "GovTracker/pkg/http"
	xlogger "GovTracker/pkg/logger"
)

// HealthFunc reports whether the service can serve requests.
type HealthFunc func(ctx context.Context) error

// DashboardEchoHandler exposes the dashboard panels as JSON.
type DashboardEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.DashboardUseCase
	health HealthFunc
}

func NewDashboardEchoHandler(logger *xlogger.Logger, uc *usecase.DashboardUseCase, health HealthFunc) *DashboardEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardEchoHandler{logger: logger, uc: uc, health: health}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/universe", h.Universe)
	g.GET("/outright", h.Outright)
	g.GET("/spreads/credit", h.CreditSpread)
	g.GET("/spreads/curve", h.CurveSpread)
	g.GET("/fly", h.Fly)
	g.GET("/curve", h.RateCurve)
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c.Request().Context()); err != nil {
			h.logger.Warn("health check failed", xlogger.Error(err))
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, err.Error())
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *DashboardEchoHandler) Universe(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.uc.Universe())
}

func (h *DashboardEchoHandler) Outright(c echo.Context) error {
	d := h.uc.Universe().Defaults
	req := &models.OutrightRequest{Issuer: d.Issuer, Maturity: d.Maturity}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Outright(c.Request().Context(), req.Issuer, req.Maturity)
	if err != nil {
		return h.fail(c, "outright", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) CreditSpread(c echo.Context) error {
	d := h.uc.Universe().Defaults
	req := &models.CreditSpreadRequest{Issuer1: d.Issuer, Issuer2: d.PeerIssuer, Maturity: d.Maturity}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.CreditSpread(c.Request().Context(), req.Issuer1, req.Issuer2, req.Maturity)
	if err != nil {
		return h.fail(c, "credit spread", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) CurveSpread(c echo.Context) error {
	req := &models.CurveSpreadRequest{Issuer: h.uc.Universe().Defaults.Issuer}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.CurveSpread(c.Request().Context(), req.Issuer, req.Maturity1, req.Maturity2)
	if err != nil {
		return h.fail(c, "curve spread", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Fly(c echo.Context) error {
	req := &models.FlyRequest{Issuer: h.uc.Universe().Defaults.Issuer}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Fly(c.Request().Context(), req.Issuer, req.Short, req.Mid, req.Long)
	if err != nil {
		return h.fail(c, "fly", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) RateCurve(c echo.Context) error {
	req := &models.RateCurveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end, err := usecase.ParseDateRange(req.Start, req.End)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("start", err.Error()))
	}

	res, err := h.uc.RateCurve(c.Request().Context(), start, end)
	if err != nil {
		return h.fail(c, "rate curve", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) fail(c echo.Context, op string, err error) error {
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError(op+" failed").WithError(err))
}
