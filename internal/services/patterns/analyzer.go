package patterns

import (
	"math"
	"sort"

	"CryptoBooster/internal/domain/models"
)

const noPatternDetected = "Aucun pattern détecté"

// AnalyzePatterns scores a multi-timeframe pattern selection into a
// directional signal with a confidence percentage.
//
// Each entry contributes basePower * rarityBonus * timeframeWeight *
// momentumBonus to the bull or bear total according to its catalog signal;
// neutral patterns are processed for diagnostics but score nothing. Unknown
// pattern names are skipped without error and reported in
// Details.SkippedPatterns. The function is pure and fully deterministic for
// a given input, which keeps every emitted signal replayable.
func AnalyzePatterns(selection models.PatternSelection, momentum models.MomentumContext) models.AnalysisResult {
	var bullScore, bearScore float64
	processed := make([]models.ProcessedPattern, 0, len(selection))
	byTimeframe := make(map[string]string, len(selection))
	var skipped []string

	for _, tf := range timeframeOrder {
		name, ok := selection[tf]
		if !ok || name == "" {
			continue
		}
		data, ok := catalog[name]
		if !ok {
			skipped = append(skipped, name)
			continue
		}

		power := data.Power
		power *= rarityBonus[data.Rarity]
		power *= TimeframeWeight(tf)

		m, ok := momentum[tf]
		if !ok {
			m = models.MomentumNeutral
		}
		bonus, ok := momentumBonus[m]
		if !ok {
			bonus = momentumBonus[models.MomentumNeutral]
		}
		power *= bonus

		processed = append(processed, models.ProcessedPattern{
			Timeframe: tf,
			Pattern:   name,
			Score:     power,
			Signal:    data.Signal,
		})
		byTimeframe[tf] = name

		switch data.Signal {
		case models.SignalBullish:
			bullScore += power
		case models.SignalBearish:
			bearScore += power
		}
		// neutral entries count for diagnostics only
	}

	total := bullScore + bearScore
	if total == 0 {
		return models.AnalysisResult{
			Signal:     models.SignalNeutral,
			Bull:       0,
			Bear:       0,
			Confidence: 0,
			Details: models.AnalysisDetails{
				TotalScore:         0,
				DominantTimeframes: []string{},
				StrongestPattern:   noPatternDetected,
				Patterns:           byTimeframe,
				SkippedPatterns:    skipped,
			},
		}
	}

	var orientation models.Signal
	var confidence float64
	switch {
	case bullScore > bearScore:
		orientation = models.SignalBullish
		confidence = round2(bullScore / total * 100)
	case bearScore > bullScore:
		orientation = models.SignalBearish
		confidence = round2(bearScore / total * 100)
	default:
		orientation = models.SignalNeutral
		confidence = 50
	}

	sort.SliceStable(processed, func(i, j int) bool { return processed[i].Score > processed[j].Score })

	dominant := make([]string, 0, 3)
	for _, p := range processed {
		if p.Signal != orientation {
			continue
		}
		dominant = append(dominant, p.Timeframe)
		if len(dominant) == 3 {
			break
		}
	}

	strongest := "Aucun"
	if len(processed) > 0 {
		strongest = processed[0].Pattern
	}

	return models.AnalysisResult{
		Signal:     orientation,
		Bull:       round2(bullScore),
		Bear:       round2(bearScore),
		Confidence: confidence,
		Details: models.AnalysisDetails{
			TotalScore:         round2(total),
			DominantTimeframes: dominant,
			StrongestPattern:   strongest,
			Patterns:           byTimeframe,
			SkippedPatterns:    skipped,
		},
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
