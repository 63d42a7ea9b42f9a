package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/usecase"
	xhttp "OrderFlow/pkg/http"
	xlogger "OrderFlow/pkg/logger"
)

// OrderflowService is what the handler needs from the use case layer.
type OrderflowService interface {
	Snapshot(ctx context.Context, p usecase.SnapshotParams) (*models.Report, error)
	Venues() []models.Venue
}

// OrderflowEchoHandler serves consensus reports over HTTP.
type OrderflowEchoHandler struct {
	logger *xlogger.Logger
	svc    OrderflowService
}

func NewOrderflowEchoHandler(logger *xlogger.Logger, svc OrderflowService) *OrderflowEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &OrderflowEchoHandler{logger: logger, svc: svc}
}

func (h *OrderflowEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api/v1")
	g.GET("/orderflow", h.Orderflow)
	g.GET("/venues", h.Venues)
}

func (h *OrderflowEchoHandler) Orderflow(c echo.Context) error {
	req := &models.OrderflowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rep, err := h.svc.Snapshot(c.Request().Context(), usecase.SnapshotParams{
		Symbol:   req.Symbol,
		Interval: req.Interval,
		Lookback: req.Lookback,
		Period:   req.Period,
		Fresh:    req.Fresh,
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, h.mapError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, rep)
}

type venueView struct {
	models.Venue
	DisplayName string `json:"displayName"`
}

func (h *OrderflowEchoHandler) Venues(c echo.Context) error {
	venues := h.svc.Venues()
	out := make([]venueView, len(venues))
	for i, v := range venues {
		out[i] = venueView{Venue: v, DisplayName: v.DisplayName()}
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *OrderflowEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"venues": len(h.svc.Venues()),
	})
}

func (h *OrderflowEchoHandler) mapError(err error) error {
	if qe, ok := models.IsQuorumError(err); ok {
		h.logger.Warn("orderflow quorum failed", xlogger.Int("got", qe.Got), xlogger.Int("need", qe.Need))
		return xhttp.ServiceUnavailableError("ERR_INSUFFICIENT_QUORUM", qe.Error()).
			WithParam("exchanges", qe.Diagnostics.Exchanges).
			WithParam("successRate", qe.Diagnostics.SuccessRate).
			WithError(err)
	}
	if errors.Is(err, context.Canceled) {
		return xhttp.NewAppError("ERR_CANCELED", "", "request canceled", 499)
	}
	h.logger.Error("orderflow usecase error", xlogger.Error(err))
	return xhttp.InternalError("consensus run failed").WithError(err)
}
