package api

import (
	models "CryptoBooster/internal/domain/models"
	"CryptoBooster/internal/usecase"
	xhttp "CryptoBooster/pkg/http"
	xlogger "CryptoBooster/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PositionsEchoHandler exposes the position store over HTTP.
type PositionsEchoHandler struct {
	logger *xlogger.Logger
	store  *usecase.PositionStore
	editor *usecase.SignalEditor
}

func NewPositionsEchoHandler(logger *xlogger.Logger, store *usecase.PositionStore, editor *usecase.SignalEditor) *PositionsEchoHandler {
	return &PositionsEchoHandler{logger: logger, store: store, editor: editor}
}

func (h *PositionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/positions")
	g.GET("", h.List)
	g.POST("", h.Add)
	g.GET("/stats", h.Stats)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Remove)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.PATCH("/:id/notes", h.UpdateNotes)
	g.PUT("/:id/signal", h.UpdateSignal)
	g.GET("/:id/check", h.CheckStatus)
}

// List returns all positions, optionally filtered by ?crypto=<id>.
func (h *PositionsEchoHandler) List(c echo.Context) error {
	if cryptoID := c.QueryParam("crypto"); cryptoID != "" {
		return xhttp.SuccessResponse(c, h.store.GetPositionsByCrypto(cryptoID))
	}
	return xhttp.SuccessResponse(c, h.store.GetAllPositions())
}

func (h *PositionsEchoHandler) Add(c echo.Context) error {
	req := &models.AddPositionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signal := models.TradingSignal{
		Direction:   models.Direction(req.Signal.Direction),
		EntryPrice:  req.Signal.EntryPrice,
		StopLoss:    req.Signal.StopLoss,
		TakeProfit1: req.Signal.TakeProfit1,
		TakeProfit2: req.Signal.TakeProfit2,
		Confidence:  req.Signal.Confidence,
	}
	signal.RiskRewardRatio = usecase.RiskReward(signal.EntryPrice, signal.StopLoss, signal.TakeProfit1)

	pos := h.store.AddPosition(req.Crypto, signal, req.PatternAnalysis)
	h.logger.Info("position added",
		xlogger.String("position", pos.ID),
		xlogger.String("crypto", pos.CryptoID),
		xlogger.String("direction", string(signal.Direction)))
	return xhttp.CreatedResponse(c, pos)
}

func (h *PositionsEchoHandler) Get(c echo.Context) error {
	pos, ok := h.store.GetPosition(c.Param("id"))
	if !ok {
		return xhttp.NotFoundResponse(c, "position not found")
	}
	return xhttp.SuccessResponse(c, pos)
}

func (h *PositionsEchoHandler) Remove(c echo.Context) error {
	if !h.store.RemovePosition(c.Param("id")) {
		return xhttp.NotFoundResponse(c, "position not found")
	}
	return xhttp.NoContentResponse(c)
}

func (h *PositionsEchoHandler) UpdateStatus(c echo.Context) error {
	req := &models.UpdateStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	id := c.Param("id")
	target := models.TargetHit(req.TargetHit)
	if target == models.TargetNone {
		target = ""
	}
	if !h.store.UpdatePositionStatus(id, models.PositionStatus(req.Status), target) {
		if _, ok := h.store.GetPosition(id); !ok {
			return xhttp.NotFoundResponse(c, "position not found")
		}
		return xhttp.BadRequestResponse(c, "illegal status transition")
	}
	pos, _ := h.store.GetPosition(id)
	return xhttp.SuccessResponse(c, pos)
}

func (h *PositionsEchoHandler) UpdateNotes(c echo.Context) error {
	req := &models.UpdateNotesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	id := c.Param("id")
	if !h.store.UpdatePositionNotes(id, req.Notes) {
		return xhttp.NotFoundResponse(c, "position not found")
	}
	pos, _ := h.store.GetPosition(id)
	return xhttp.SuccessResponse(c, pos)
}

func (h *PositionsEchoHandler) UpdateSignal(c echo.Context) error {
	req := &models.UpdateSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	id := c.Param("id")
	signal := models.TradingSignal{
		Direction:   models.Direction(req.Direction),
		EntryPrice:  req.EntryPrice,
		StopLoss:    req.StopLoss,
		TakeProfit1: req.TakeProfit1,
		TakeProfit2: req.TakeProfit2,
		Confidence:  req.Confidence,
	}
	if !h.editor.EditSignal(id, signal) {
		return xhttp.NotFoundResponse(c, "position not found")
	}
	pos, _ := h.store.GetPosition(id)
	return xhttp.SuccessResponse(c, pos)
}

func (h *PositionsEchoHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.store.GetStats())
}

// CheckStatus evaluates one position against a caller-supplied price without
// mutating anything.
func (h *PositionsEchoHandler) CheckStatus(c echo.Context) error {
	req := &models.CheckStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pos, ok := h.store.GetPosition(c.Param("id"))
	if !ok {
		return xhttp.NotFoundResponse(c, "position not found")
	}
	return xhttp.SuccessResponse(c, usecase.CheckSignalStatus(pos, req.Price))
}
