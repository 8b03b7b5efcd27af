package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Selection map[string]string `json:"selection" validate:"required,min=1"`
	Momentum  map[string]string `json:"momentum"`
}

type AddPositionRequest struct {
	Crypto CryptoAsset `json:"crypto" validate:"required"`
	Signal struct {
		Direction   string  `json:"direction" validate:"required,oneof=long short"`
		EntryPrice  float64 `json:"entryPrice" validate:"required,gt=0"`
		StopLoss    float64 `json:"stopLoss" validate:"required,gt=0"`
		TakeProfit1 float64 `json:"takeProfit1" validate:"required,gt=0"`
		TakeProfit2 float64 `json:"takeProfit2" validate:"required,gt=0"`
		Confidence  float64 `json:"confidence" validate:"gte=0,lte=100"`
	} `json:"signal" validate:"required"`
	PatternAnalysis *AnalysisResult `json:"patternAnalysis,omitempty"`
}

type UpdateStatusRequest struct {
	Status    string `json:"status" validate:"required,oneof=pending active closed cancelled"`
	TargetHit string `json:"targetHit" default:"none" validate:"oneof=none tp1 tp2 sl"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=4000"`
}

type UpdateSignalRequest struct {
	Direction   string  `json:"direction" validate:"required,oneof=long short"`
	EntryPrice  float64 `json:"entryPrice" validate:"required,gt=0"`
	StopLoss    float64 `json:"stopLoss" validate:"required,gt=0"`
	TakeProfit1 float64 `json:"takeProfit1" validate:"required,gt=0"`
	TakeProfit2 float64 `json:"takeProfit2" validate:"required,gt=0"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=100"`
}

type CheckStatusRequest struct {
	Price float64 `query:"price" validate:"required,gt=0"`
}

type ChartRequest struct {
	Coin string `param:"coin" validate:"required"`
}
