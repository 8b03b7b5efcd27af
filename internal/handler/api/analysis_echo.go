package api

import (
	"time"

	models "CryptoBooster/internal/domain/models"
	svcmetrics "CryptoBooster/internal/service/metrics"
	"CryptoBooster/internal/services/patterns"
	xhttp "CryptoBooster/pkg/http"
	xlogger "CryptoBooster/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler exposes the multi-timeframe pattern scorer.
type AnalysisEchoHandler struct {
	logger *xlogger.Logger
}

func NewAnalysisEchoHandler(logger *xlogger.Logger) *AnalysisEchoHandler {
	svcmetrics.Register()
	return &AnalysisEchoHandler{logger: logger}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analysis", h.Analyze)
	g.GET("/analysis/patterns", h.Patterns)
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	start := time.Now()
	defer func() {
		svcmetrics.AnalysisLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.AnalysisErrors.WithLabelValues("analyze").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	momentum := make(models.MomentumContext, len(req.Momentum))
	for tf, m := range req.Momentum {
		momentum[tf] = models.Momentum(m)
	}
	res := patterns.AnalyzePatterns(models.PatternSelection(req.Selection), momentum)

	h.logger.Debug("pattern analysis computed",
		xlogger.String("signal", string(res.Signal)),
		xlogger.Any("confidence", res.Confidence))
	return xhttp.SuccessResponse(c, res)
}

// Patterns lists the catalog with per-timeframe weights so clients can build
// selection UIs without hardcoding the catalog.
func (h *AnalysisEchoHandler) Patterns(c echo.Context) error {
	names := patterns.AvailablePatterns()
	catalog := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		data, _ := patterns.PatternDetails(name)
		catalog = append(catalog, map[string]interface{}{
			"name":      name,
			"signal":    data.Signal,
			"power":     data.Power,
			"rarity":    data.Rarity,
			"type":      data.Type,
		})
	}

	weights := make(map[string]float64)
	for _, tf := range patterns.Timeframes() {
		weights[tf] = patterns.TimeframeWeight(tf)
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"patterns":         catalog,
		"timeframes":       patterns.Timeframes(),
		"timeframeWeights": weights,
	})
}
