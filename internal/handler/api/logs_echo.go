package api

import (
	xhttp "CryptoBooster/pkg/http"
	xlogger "CryptoBooster/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LogsEchoHandler serves the recent aggregated log entries for inspection.
type LogsEchoHandler struct {
	logger *xlogger.Logger
}

func NewLogsEchoHandler(logger *xlogger.Logger) *LogsEchoHandler {
	return &LogsEchoHandler{logger: logger}
}

func (h *LogsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/logs", h.Recent)
}

func (h *LogsEchoHandler) Recent(c echo.Context) error {
	entries := h.logger.Recent()
	if entries == nil {
		entries = []xlogger.AggregatedLogEntry{}
	}
	return xhttp.SuccessResponse(c, entries)
}
