package api

import (
	"time"

	models "CryptoBooster/internal/domain/models"
	svcmetrics "CryptoBooster/internal/service/metrics"
	"CryptoBooster/internal/service/ratelimit"
	"CryptoBooster/internal/usecase"
	xhttp "CryptoBooster/pkg/http"
	xlogger "CryptoBooster/pkg/logger"
	xutil "CryptoBooster/pkg/util"

	"github.com/labstack/echo/v4"
)

// ChartsEchoHandler serves the five-resolution candle bundles.
type ChartsEchoHandler struct {
	logger *xlogger.Logger
	charts *usecase.ChartSeriesUseCase
	rl     *ratelimit.Limiter
}

func NewChartsEchoHandler(logger *xlogger.Logger, charts *usecase.ChartSeriesUseCase) *ChartsEchoHandler {
	svcmetrics.Register()
	return &ChartsEchoHandler{logger: logger, charts: charts, rl: ratelimit.New()}
}

func (h *ChartsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/charts/:coin", h.Chart)
}

func (h *ChartsEchoHandler) Chart(c echo.Context) error {
	start := time.Now()
	defer func() {
		svcmetrics.AnalysisLatency.WithLabelValues("chart").Observe(time.Since(start).Seconds())
	}()

	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":chart", 5, 2) {
		h.logger.Warn("chart rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	series, err := h.charts.GenerateChartSeries(c.Request().Context(), req.Coin)
	if err != nil {
		svcmetrics.AnalysisErrors.WithLabelValues("chart").Inc()
		h.logger.Error("chart usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), time.Time{})
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Time{})
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0)

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, filterSeries(series, from, to, limit))
}

// filterSeries applies the optional from/to window and tail limit without
// touching the cached series.
func filterSeries(series *models.ChartSeries, from, to time.Time, limit int) *models.ChartSeries {
	if from.IsZero() && to.IsZero() && limit <= 0 {
		return series
	}

	out := &models.ChartSeries{CoinID: series.CoinID, Placeholder: series.Placeholder}
	for _, res := range []string{"1h", "4h", "12h", "1d", "1w"} {
		pts := series.Resolution(res)
		if !from.IsZero() || !to.IsZero() {
			af, at := xutil.AlignFromTo(from, to, res)
			fromMs, toMs := af.UnixMilli(), at.UnixMilli()
			filtered := make([]models.OHLCPoint, 0, len(pts))
			for _, p := range pts {
				if !from.IsZero() && p.Ts < fromMs {
					continue
				}
				if !to.IsZero() && p.Ts > toMs {
					continue
				}
				filtered = append(filtered, p)
			}
			pts = filtered
		}
		if limit > 0 && len(pts) > limit {
			pts = pts[len(pts)-limit:]
		}
		out.Set(res, pts)
	}
	return out
}
