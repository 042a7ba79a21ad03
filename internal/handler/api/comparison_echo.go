package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"PeerBench/internal/domain/models"
	xhttp "PeerBench/pkg/http"
	"PeerBench/pkg/http/middleware"
	xlogger "PeerBench/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ComparisonService is the use case behind the comparison endpoints.
type ComparisonService interface {
	ParseRequest(req models.CompareRequest) (models.Query, error)
	Compare(ctx context.Context, q models.Query) (*models.ComparisonResult, error)
	Metrics() []models.MetricInfo
	Institutions() []models.Institution
}

// RateLimitConfig guards the compare routes. A nil Limiter disables it.
type RateLimitConfig struct {
	Limiter      middleware.Limiter
	Capacity     float64
	RefillPerSec float64
}

type ComparisonEchoHandler struct {
	logger  *xlogger.Logger
	svc     ComparisonService
	limit   RateLimitConfig
	started time.Time
}

func NewComparisonEchoHandler(logger *xlogger.Logger, svc ComparisonService, limit RateLimitConfig) *ComparisonEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ComparisonEchoHandler{logger: logger, svc: svc, limit: limit, started: time.Now()}
}

func (h *ComparisonEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/metrics", h.ListMetrics)
	g.GET("/institutions", h.ListInstitutions)

	var mw []echo.MiddlewareFunc
	if h.limit.Limiter != nil {
		mw = append(mw, middleware.RateLimit(h.limit.Limiter, h.limit.Capacity, h.limit.RefillPerSec))
	}
	g.GET("/compare", h.Compare, mw...)
	g.POST("/compare", h.Compare, mw...)
}

// Compare accepts the query string on GET and a JSON body on POST.
func (h *ComparisonEchoHandler) Compare(c echo.Context) error {
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q, err := h.svc.ParseRequest(*req)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.svc.Compare(c.Request().Context(), q)
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, res)
}

func (h *ComparisonEchoHandler) ListMetrics(c echo.Context) error {
	metrics := h.svc.Metrics()
	return xhttp.ListResponse(c, metrics, int64(len(metrics)))
}

func (h *ComparisonEchoHandler) ListInstitutions(c echo.Context) error {
	insts := h.svc.Institutions()
	return xhttp.ListResponse(c, insts, int64(len(insts)))
}

func (h *ComparisonEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *ComparisonEchoHandler) fail(c echo.Context, err error) error {
	var qe *models.QueryError
	switch {
	case errors.As(err, &qe):
		return xhttp.AppErrorResponse(c, xhttp.InvalidFieldError(qe.Field, qe.Reason).WithError(err))
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("compare timed out", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_TIMEOUT", "", "comparison timed out", http.StatusGatewayTimeout).WithError(err))
	case errors.Is(err, context.Canceled):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_CANCELED", "", "request canceled", 499).WithError(err))
	}
	h.logger.Error("compare usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("comparison failed").WithError(err))
}

var _ xhttp.Handler = (*ComparisonEchoHandler)(nil)
