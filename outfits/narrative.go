package outfits

import (
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Presentation layer only: nothing here may influence confidence. The
// randomness is cosmetic, picking among equally valid template strings.

var harmonyDescriptions = map[HarmonyClass][]string{
	HarmonyMonochromatic: {
		"A clean monochromatic palette that reads intentional and polished.",
		"One color, head to toe — always a confident statement.",
	},
	HarmonyComplementary: {
		"Complementary colors that play off each other for natural contrast.",
		"Opposite-wheel colors giving this look real visual energy.",
	},
	HarmonyAnalogous: {
		"Neighboring tones that blend into an easy, harmonious palette.",
		"Analogous colors keep the look cohesive without being flat.",
	},
	HarmonyNeutral: {
		"A versatile neutral palette that pairs with anything.",
		"Neutral tones — understated and hard to get wrong.",
	},
}

var fitAdviceByOccasion = map[string]string{
	"casual":       "Keep the fit relaxed — roll the sleeves or cuff the hem for an effortless finish.",
	"smart-casual": "Aim for one tailored piece to sharpen the silhouette without losing comfort.",
	"work":         "Tuck in the top and keep lines clean for a put-together office silhouette.",
	"business":     "Structured shoulders and a straight hem project confidence in meetings.",
	"formal":       "Tailoring matters most here — fitted through the shoulders, gentle break at the shoe.",
	"date":         "Pick the fit that makes you feel most like yourself, slightly dressed up.",
	"party":        "A looser top over a slimmer bottom keeps the look fun but balanced.",
}

func pick(rng *rand.Rand, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[rng.Intn(len(options))]
}

// DescribeHarmony renders the harmony class as a display sentence.
func DescribeHarmony(harmony HarmonyClass, rng *rand.Rand) string {
	return pick(rng, harmonyDescriptions[harmony])
}

// StyleNotes derives at most three short notes from the weather band,
// occasion and material match.
func StyleNotes(bonuses ScoreBonuses, occasion string, weather WeatherContext, rng *rand.Rand) []string {
	notes := []string{}

	switch {
	case weather.Temperature <= 5:
		notes = append(notes, "Layer up — this one is built for properly cold days.")
	case weather.Temperature <= 15:
		notes = append(notes, "Cool-weather friendly; add a layer if the wind picks up.")
	case weather.Temperature <= 25:
		notes = append(notes, "Comfortable in mild weather from morning to evening.")
	default:
		notes = append(notes, "Light and breathable for a hot day.")
	}

	if bonuses.OccasionMatch {
		notes = append(notes, fmt.Sprintf("Every piece suits a %s setting.", strings.ToLower(occasion)))
	}
	if bonuses.MaterialSeason {
		notes = append(notes, pick(rng, []string{
			"The fabrics are right in season.",
			"Seasonally appropriate materials throughout.",
		}))
	}

	if len(notes) > 3 {
		notes = notes[:3]
	}
	return notes
}

// FitAdvice is a single string keyed by occasion.
func FitAdvice(occasion string) string {
	if advice, ok := fitAdviceByOccasion[strings.ToLower(occasion)]; ok {
		return advice
	}
	return "Balance the proportions — pair a looser piece with a slimmer one."
}

// WhyItWorks assembles three to five rationale strings from the fired
// scoring bonuses.
func WhyItWorks(draft *Draft, bonuses ScoreBonuses, occasion string, weather WeatherContext, rng *rand.Rand) []string {
	reasons := []string{}

	if bonuses.Harmony != HarmonyNeutral {
		reasons = append(reasons, DescribeHarmony(bonuses.Harmony, rng))
	}
	if bonuses.WeatherMatch {
		switch weather.Condition {
		case ConditionRainy:
			reasons = append(reasons, fmt.Sprintf("Every piece holds up in the rain at %d°C.", weather.Temperature))
		case ConditionSunny:
			reasons = append(reasons, fmt.Sprintf("Breathable picks for a sunny %d°C day.", weather.Temperature))
		default:
			reasons = append(reasons, fmt.Sprintf("Dressed right for %d°C and %s skies.", weather.Temperature, weather.Condition))
		}
	}
	if bonuses.OccasionMatch {
		reasons = append(reasons, fmt.Sprintf("%s-ready from top to bottom.", titleCaser.String(occasion)))
	}
	if bonuses.MaterialSeason {
		reasons = append(reasons, fmt.Sprintf("The fabrics belong in %s.", weather.Season))
	}

	// silhouette heuristics pad the list to the 3..5 band
	fillers := []string{
		"The proportions balance each other out.",
		"Easy to accessorize up or down.",
		"Pieces you can re-mix with the rest of your wardrobe.",
		"Textures vary just enough to keep the look interesting.",
	}
	for len(reasons) < 3 {
		filler := pick(rng, fillers)
		if !containsString(reasons, filler) {
			reasons = append(reasons, filler)
		}
	}
	if len(reasons) > 5 {
		reasons = reasons[:5]
	}
	return reasons
}

// BuildNarrative fills the presentation fields of a scored combination.
func BuildNarrative(combo *OutfitCombination, draft *Draft, result ScoreResult, occasion string, weather WeatherContext, rng *rand.Rand) {
	combo.ColorHarmony = DescribeHarmony(result.Harmony, rng)
	combo.StyleNotes = StyleNotes(result.Bonuses, occasion, weather, rng)
	combo.FitAdvice = FitAdvice(occasion)
	combo.WhyItWorks = WhyItWorks(draft, result.Bonuses, occasion, weather, rng)
}
