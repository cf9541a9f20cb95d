package outfits

import "strings"

const (
	baseConfidence        = 70
	relaxedBaseConfidence = 50
	harmonyBonus          = 10
	complementaryBonus    = 5
	weatherBonus          = 15
	occasionBonus         = 10
	materialSeasonBonus   = 5
)

// ScoreBonuses records which bonuses fired so the narrative layer can
// describe the result without re-deriving any of it.
type ScoreBonuses struct {
	Harmony        HarmonyClass
	WeatherMatch   bool
	OccasionMatch  bool
	MaterialSeason bool
}

type ScoreResult struct {
	Confidence int
	Harmony    HarmonyClass
	Bonuses    ScoreBonuses
}

// ClassifyHarmony classifies the color relationship across an item set.
// Monochromatic when every color is identical, then complementary pairs,
// then analogous groups, neutral otherwise.
func ClassifyHarmony(colors []string) HarmonyClass {
	if len(colors) == 0 {
		return HarmonyNeutral
	}
	normalized := make([]string, 0, len(colors))
	for _, c := range colors {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(c)))
	}

	mono := true
	for _, c := range normalized[1:] {
		if c != normalized[0] {
			mono = false
			break
		}
	}
	if mono {
		return HarmonyMonochromatic
	}

	has := map[string]bool{}
	for _, c := range normalized {
		has[c] = true
	}
	for _, pair := range complementaryPairs {
		if has[pair[0]] && has[pair[1]] {
			return HarmonyComplementary
		}
	}
	for _, group := range analogousGroups {
		matches := 0
		for _, member := range group {
			if has[member] {
				matches++
			}
		}
		if matches >= 2 {
			return HarmonyAnalogous
		}
	}
	return HarmonyNeutral
}

func clampConfidence(confidence int) int {
	if confidence > 100 {
		return 100
	}
	if confidence < 0 {
		return 0
	}
	return confidence
}

// Score computes the confidence of a draft from color harmony, weather fit,
// occasion fit and material seasonality agreement.
func Score(draft *Draft, occasion string, weather WeatherContext) ScoreResult {
	confidence := baseConfidence
	if draft.Relaxed {
		confidence = relaxedBaseConfidence
	}

	colors := make([]string, 0, len(draft.Items))
	for _, item := range draft.Items {
		colors = append(colors, item.Color)
	}
	harmony := ClassifyHarmony(colors)
	if harmony != HarmonyNeutral {
		confidence += harmonyBonus
	}
	if harmony == HarmonyComplementary {
		confidence += complementaryBonus
	}

	bonuses := ScoreBonuses{Harmony: harmony, WeatherMatch: true, OccasionMatch: true, MaterialSeason: true}
	for _, item := range draft.Items {
		if !ItemMatchesWeather(item, weather) {
			bonuses.WeatherMatch = false
		}
		if !ItemMatchesOccasion(item, occasion) {
			bonuses.OccasionMatch = false
		}
		if weather.Season != "" && !containsSeason(item.MaterialProps.Seasons, weather.Season) {
			bonuses.MaterialSeason = false
		}
	}
	if bonuses.WeatherMatch {
		confidence += weatherBonus
	}
	if bonuses.OccasionMatch {
		confidence += occasionBonus
	}
	if bonuses.MaterialSeason {
		confidence += materialSeasonBonus
	}

	return ScoreResult{
		Confidence: clampConfidence(confidence),
		Harmony:    harmony,
		Bonuses:    bonuses,
	}
}
