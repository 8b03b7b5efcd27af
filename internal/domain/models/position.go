package models

import (
	"encoding/json"
	"time"
)

type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// PositionStatus is the lifecycle state of a trading position.
// Legal transitions: pending -> active -> closed, pending -> cancelled.
// closed and cancelled are terminal.
type PositionStatus string

const (
	PositionPending   PositionStatus = "pending"
	PositionActive    PositionStatus = "active"
	PositionClosed    PositionStatus = "closed"
	PositionCancelled PositionStatus = "cancelled"
)

// TargetHit tags a closed position with the level that closed it.
type TargetHit string

const (
	TargetNone TargetHit = "none"
	TargetTP1  TargetHit = "tp1"
	TargetTP2  TargetHit = "tp2"
	TargetSL   TargetHit = "sl"
)

// SignalStatus is the live evaluation of a position against the current price.
type SignalStatus string

const (
	StatusWaiting   SignalStatus = "waiting"
	StatusTP1Hit    SignalStatus = "tp1_hit"
	StatusTP2Hit    SignalStatus = "tp2_hit"
	StatusSLHit     SignalStatus = "sl_hit"
	StatusEntryZone SignalStatus = "entry_zone"
)

// TradingSignal is the priced trade setup embedded in a position.
type TradingSignal struct {
	Direction       Direction `json:"direction"`
	EntryPrice      float64   `json:"entryPrice"`
	StopLoss        float64   `json:"stopLoss"`
	TakeProfit1     float64   `json:"takeProfit1"`
	TakeProfit2     float64   `json:"takeProfit2"`
	Confidence      float64   `json:"confidence"` // 0-100
	RiskRewardRatio float64   `json:"riskRewardRatio"`
}

// CryptoAsset is the opaque subject metadata attached to a position.
type CryptoAsset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  string `json:"image"`
}

// TradingPosition is a persisted trading intent derived from a signal.
// The PositionStore is its sole writer; values returned by the store are
// snapshots and must be treated as read-only.
type TradingPosition struct {
	ID               string          `json:"id"`
	CryptoID         string          `json:"cryptoId"`
	CryptoSymbol     string          `json:"cryptoSymbol"`
	CryptoName       string          `json:"cryptoName"`
	CryptoImage      string          `json:"cryptoImage"`
	Signal           TradingSignal   `json:"signal"`
	PatternAnalysis  *AnalysisResult `json:"patternAnalysis,omitempty"`
	Status           PositionStatus  `json:"status"`
	TargetHit        TargetHit       `json:"targetHit"`
	Notes            string          `json:"notes,omitempty"`
	IsManuallyEdited bool            `json:"isManuallyEdited"`
	IsVerified       bool            `json:"isVerified"`
	AddedAt          time.Time       `json:"addedAt"`
}

// PositionStats aggregates the current position set.
type PositionStats struct {
	TotalPositions   int     `json:"totalPositions"`
	ActivePositions  int     `json:"activePositions"`
	PendingPositions int     `json:"pendingPositions"`
	WinRate          int     `json:"winRate"` // percent, integer-rounded
	AvgRiskReward    float64 `json:"avgRiskReward"`
}

// SignalCheck is the result of evaluating a position against a price.
type SignalCheck struct {
	Status        SignalStatus `json:"status"`
	PriceDistance float64      `json:"priceDistance"` // percent from entry
}

// Position event types emitted on every store mutation.
const (
	EventPositionAdded   = "position_added"
	EventPositionRemoved = "position_removed"
	EventStatusChanged   = "status_changed"
	EventNotesUpdated    = "notes_updated"
	EventSignalUpdated   = "signal_updated"
	EventPositionsClear  = "positions_cleared"
)

// PositionEvent is the change record published after each store mutation.
type PositionEvent struct {
	Type     string          `json:"type"`
	UserID   string          `json:"user_id"`
	Position TradingPosition `json:"-"`
	At       time.Time       `json:"at"`
}

// PositionRecord is the wire/persisted shape of a position: the same fields
// as TradingPosition, snake_case. Used for Kafka payloads and the ClickHouse
// archive.
type PositionRecord struct {
	ID               string    `json:"id"`
	CryptoID         string    `json:"crypto_id"`
	CryptoSymbol     string    `json:"crypto_symbol"`
	CryptoName       string    `json:"crypto_name"`
	CryptoImage      string    `json:"crypto_image"`
	Direction        string    `json:"direction"`
	EntryPrice       float64   `json:"entry_price"`
	StopLoss         float64   `json:"stop_loss"`
	TakeProfit1      float64   `json:"take_profit_1"`
	TakeProfit2      float64   `json:"take_profit_2"`
	Confidence       float64   `json:"confidence"`
	RiskRewardRatio  float64   `json:"risk_reward_ratio"`
	Status           string    `json:"status"`
	TargetHit        string    `json:"target_hit"`
	Notes            string    `json:"notes"`
	PatternAnalysis  string    `json:"pattern_analysis"` // JSON-encoded AnalysisResult, empty when absent
	IsManuallyEdited bool      `json:"is_manually_edited"`
	IsVerified       bool      `json:"is_verified"`
	AddedAt          time.Time `json:"added_at"`
}

// PositionEventRecord is the serialized form of PositionEvent.
type PositionEventRecord struct {
	Type     string         `json:"type"`
	UserID   string         `json:"user_id"`
	Position PositionRecord `json:"position"`
	At       time.Time      `json:"at"`
}

// Record converts a position to its wire/persisted shape.
func (p TradingPosition) Record() PositionRecord {
	var analysis string
	if p.PatternAnalysis != nil {
		if b, err := json.Marshal(p.PatternAnalysis); err == nil {
			analysis = string(b)
		}
	}
	return PositionRecord{
		ID:               p.ID,
		CryptoID:         p.CryptoID,
		CryptoSymbol:     p.CryptoSymbol,
		CryptoName:       p.CryptoName,
		CryptoImage:      p.CryptoImage,
		Direction:        string(p.Signal.Direction),
		EntryPrice:       p.Signal.EntryPrice,
		StopLoss:         p.Signal.StopLoss,
		TakeProfit1:      p.Signal.TakeProfit1,
		TakeProfit2:      p.Signal.TakeProfit2,
		Confidence:       p.Signal.Confidence,
		RiskRewardRatio:  p.Signal.RiskRewardRatio,
		Status:           string(p.Status),
		TargetHit:        string(p.TargetHit),
		Notes:            p.Notes,
		PatternAnalysis:  analysis,
		IsManuallyEdited: p.IsManuallyEdited,
		IsVerified:       p.IsVerified,
		AddedAt:          p.AddedAt,
	}
}

// Position converts a wire/persisted record back to the domain shape.
func (r PositionRecord) Position() TradingPosition {
	var analysis *AnalysisResult
	if r.PatternAnalysis != "" {
		var a AnalysisResult
		if err := json.Unmarshal([]byte(r.PatternAnalysis), &a); err == nil {
			analysis = &a
		}
	}
	return TradingPosition{
		ID:           r.ID,
		CryptoID:     r.CryptoID,
		CryptoSymbol: r.CryptoSymbol,
		CryptoName:   r.CryptoName,
		CryptoImage:  r.CryptoImage,
		Signal: TradingSignal{
			Direction:       Direction(r.Direction),
			EntryPrice:      r.EntryPrice,
			StopLoss:        r.StopLoss,
			TakeProfit1:     r.TakeProfit1,
			TakeProfit2:     r.TakeProfit2,
			Confidence:      r.Confidence,
			RiskRewardRatio: r.RiskRewardRatio,
		},
		PatternAnalysis:  analysis,
		Status:           PositionStatus(r.Status),
		TargetHit:        TargetHit(r.TargetHit),
		Notes:            r.Notes,
		IsManuallyEdited: r.IsManuallyEdited,
		IsVerified:       r.IsVerified,
		AddedAt:          r.AddedAt,
	}
}

// Record converts an event to its wire shape.
func (e PositionEvent) Record() PositionEventRecord {
	return PositionEventRecord{
		Type:     e.Type,
		UserID:   e.UserID,
		Position: e.Position.Record(),
		At:       e.At,
	}
}
