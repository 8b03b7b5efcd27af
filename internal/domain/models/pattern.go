package models

// Signal is the directional bias attached to a chart pattern or an analysis.
type Signal string

const (
	SignalBullish Signal = "Bullish"
	SignalBearish Signal = "Bearish"
	SignalNeutral Signal = "Neutre"
)

// Rarity classes carry a small multiplicative bonus when scoring.
type Rarity string

const (
	RarityCommon    Rarity = "Commune"
	RarityRare      Rarity = "Rare"
	RarityHistoric  Rarity = "Historique"
	RarityLegendary Rarity = "Légendaire"
)

// StructuralType classifies what a pattern does to the prevailing trend.
type StructuralType string

const (
	StructureReversal     StructuralType = "Retournement"
	StructureContinuation StructuralType = "Continuation"
	StructureUndecided    StructuralType = "Indécis"
)

// Momentum describes how a detected pattern relates to the higher-timeframe
// trend. Missing values default to MomentumNeutral.
type Momentum string

const (
	MomentumAligned      Momentum = "Continuation_alignée"
	MomentumReversalZone Momentum = "Retournement_zone"
	MomentumNeutral      Momentum = "Neutre"
	MomentumContra       Momentum = "Retournement_contra"
)

// PatternData is one static catalog row.
type PatternData struct {
	Signal Signal         `json:"signal"`
	Power  float64        `json:"power"` // base power on a 0-100 scale
	Rarity Rarity         `json:"rarity"`
	Type   StructuralType `json:"type"`
}

// PatternSelection maps a timeframe name (Monthly, Weekly, Daily, 4h, 1h) to
// the pattern observed there. Timeframes may be absent; pattern names not in
// the catalog are skipped during scoring.
type PatternSelection map[string]string

// MomentumContext maps a timeframe name to its momentum class.
type MomentumContext map[string]Momentum

// ProcessedPattern is the per-entry scoring diagnostic.
type ProcessedPattern struct {
	Timeframe string  `json:"timeframe"`
	Pattern   string  `json:"pattern"`
	Score     float64 `json:"score"`
	Signal    Signal  `json:"signal"`
}

// AnalysisDetails carries the diagnostic metadata of a scoring run.
type AnalysisDetails struct {
	TotalScore         float64           `json:"totalScore"`
	DominantTimeframes []string          `json:"dominantTimeframes"`
	StrongestPattern   string            `json:"strongestPattern"`
	Patterns           map[string]string `json:"patterns"`
	SkippedPatterns    []string          `json:"skippedPatterns,omitempty"`
}

// AnalysisResult is the outcome of a multi-timeframe pattern scoring run.
// Produced fresh per invocation and never mutated afterwards.
type AnalysisResult struct {
	Signal     Signal          `json:"signal"`
	Bull       float64         `json:"bull"`
	Bear       float64         `json:"bear"`
	Confidence float64         `json:"confidence"` // 0-100
	Details    AnalysisDetails `json:"details"`
}
