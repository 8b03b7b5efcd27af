package patterns

import (
	"sort"

	"CryptoBooster/internal/domain/models"
)

// Static pattern catalog. Names and classifications follow the classical
// French chartist nomenclature used by the analysis operators.
var catalog = map[string]models.PatternData{
	"Double Top":                 {Signal: models.SignalBearish, Power: 80, Rarity: models.RarityCommon, Type: models.StructureReversal},
	"Double Bottom (W)":          {Signal: models.SignalBullish, Power: 85, Rarity: models.RarityCommon, Type: models.StructureReversal},
	"Triple Top":                 {Signal: models.SignalBearish, Power: 75, Rarity: models.RarityRare, Type: models.StructureReversal},
	"Triple Bottom":              {Signal: models.SignalBullish, Power: 80, Rarity: models.RarityRare, Type: models.StructureReversal},
	"Tête et Épaules":            {Signal: models.SignalBearish, Power: 90, Rarity: models.RarityHistoric, Type: models.StructureReversal},
	"Tête et Épaules Inversée":   {Signal: models.SignalBullish, Power: 90, Rarity: models.RarityHistoric, Type: models.StructureReversal},
	"Range / Rectangle":          {Signal: models.SignalNeutral, Power: 70, Rarity: models.RarityCommon, Type: models.StructureContinuation},
	"Drapeau (Flag)":             {Signal: models.SignalBullish, Power: 85, Rarity: models.RarityCommon, Type: models.StructureContinuation},
	"Fanion (Pennant)":           {Signal: models.SignalBullish, Power: 85, Rarity: models.RarityCommon, Type: models.StructureContinuation},
	"Biseau Ascendant":           {Signal: models.SignalBearish, Power: 80, Rarity: models.RarityCommon, Type: models.StructureReversal},
	"Biseau Descendant":          {Signal: models.SignalBullish, Power: 80, Rarity: models.RarityCommon, Type: models.StructureReversal},
	"Triangle Symétrique":        {Signal: models.SignalNeutral, Power: 70, Rarity: models.RarityCommon, Type: models.StructureContinuation},
	"Triangle Ascendant":         {Signal: models.SignalBullish, Power: 85, Rarity: models.RarityCommon, Type: models.StructureContinuation},
	"Triangle Descendant":        {Signal: models.SignalBearish, Power: 85, Rarity: models.RarityCommon, Type: models.StructureContinuation},
	"Rounding Bottom (Soucoupe)": {Signal: models.SignalBullish, Power: 75, Rarity: models.RarityRare, Type: models.StructureReversal},
	"Rounding Top":               {Signal: models.SignalBearish, Power: 70, Rarity: models.RarityRare, Type: models.StructureReversal},
	"Cup & Handle":               {Signal: models.SignalBullish, Power: 90, Rarity: models.RarityLegendary, Type: models.StructureReversal},
	"Broadening Wedge":           {Signal: models.SignalNeutral, Power: 65, Rarity: models.RarityRare, Type: models.StructureUndecided},
	"Diamant":                    {Signal: models.SignalNeutral, Power: 95, Rarity: models.RarityLegendary, Type: models.StructureReversal},
}

// timeframeOrder fixes the processing order of selections, highest weight
// first, so diagnostics are deterministic across runs.
var timeframeOrder = []string{"Monthly", "Weekly", "Daily", "4h", "1h"}

// timeframeWeights weights entries by timeframe significance.
var timeframeWeights = map[string]float64{
	"Monthly": 4,
	"Weekly":  3,
	"Daily":   2,
	"4h":      1.5,
	"1h":      1,
}

// rarityBonus is a multiplicative bonus for rarer patterns.
var rarityBonus = map[models.Rarity]float64{
	models.RarityCommon:    1.00,
	models.RarityRare:      1.05,
	models.RarityHistoric:  1.10,
	models.RarityLegendary: 1.15,
}

// momentumBonus rewards patterns aligned with, or reversing at, key zones of
// the prevailing trend, and penalizes counter-trend reversals.
var momentumBonus = map[models.Momentum]float64{
	models.MomentumAligned:      1.20,
	models.MomentumReversalZone: 1.25,
	models.MomentumNeutral:      1.00,
	models.MomentumContra:       0.90,
}

// AvailablePatterns returns all catalog pattern names, sorted.
func AvailablePatterns() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PatternDetails returns the catalog row for a pattern name.
func PatternDetails(name string) (models.PatternData, bool) {
	d, ok := catalog[name]
	return d, ok
}

// Timeframes returns the supported analysis timeframes, highest weight first.
func Timeframes() []string {
	out := make([]string, len(timeframeOrder))
	copy(out, timeframeOrder)
	return out
}

// TimeframeWeight returns the weight of an analysis timeframe (1 if unknown).
func TimeframeWeight(tf string) float64 {
	if w, ok := timeframeWeights[tf]; ok {
		return w
	}
	return 1
}

// ExampleSelection returns a showcase selection/momentum pair.
func ExampleSelection() (models.PatternSelection, models.MomentumContext) {
	return models.PatternSelection{
			"Monthly": "Cup & Handle",
			"Weekly":  "Tête et Épaules Inversée",
			"Daily":   "Triangle Ascendant",
			"4h":      "Fanion (Pennant)",
			"1h":      "Double Bottom (W)",
		}, models.MomentumContext{
			"Monthly": models.MomentumReversalZone,
			"Weekly":  models.MomentumReversalZone,
			"Daily":   models.MomentumAligned,
			"4h":      models.MomentumAligned,
			"1h":      models.MomentumReversalZone,
		}
}
