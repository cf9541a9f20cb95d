package outfits

import "math/rand"

// Draft is a combination before scoring. Relaxed marks drafts built from the
// unfiltered pool after the weather/occasion filter came back empty.
type Draft struct {
	Items   []CandidateGarment
	Relaxed bool
}

// Composer picks one garment per required category. Selection among equally
// eligible items is randomized on purpose, the rand source is injectable so
// tests can pin it.
type Composer struct {
	rng *rand.Rand
}

func NewComposer(rng *rand.Rand) *Composer {
	return &Composer{rng: rng}
}

// ItemMatchesWeather is the per-item half of the pool filter. The same rule
// is reused by the scorer for the weather bonus.
func ItemMatchesWeather(item CandidateGarment, weather WeatherContext) bool {
	if weather.Temperature < item.Weather.MinTemp || weather.Temperature > item.Weather.MaxTemp {
		return false
	}
	if weather.Season != "" && !containsSeason(item.Weather.Seasons, weather.Season) {
		return false
	}
	switch weather.Condition {
	case ConditionRainy:
		if item.MaterialProps.WaterResistance < 5 {
			return false
		}
	case ConditionSunny:
		if item.MaterialProps.Breathability < 6 {
			return false
		}
	}
	return true
}

func ItemMatchesOccasion(item CandidateGarment, occasion string) bool {
	return containsString(item.Occasions, occasion)
}

// FilterPool keeps items that fit both the weather context and the occasion.
func FilterPool(pool []CandidateGarment, occasion string, weather WeatherContext) []CandidateGarment {
	filtered := make([]CandidateGarment, 0, len(pool))
	for _, item := range pool {
		if ItemMatchesWeather(item, weather) && ItemMatchesOccasion(item, occasion) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// requiredSlots in fill order. Outerwear joins when the target item count
// asks for it, accessories last.
var requiredSlots = []Category{CategoryTop, CategoryBottom, CategoryShoes, CategoryOuterwear, CategoryAccessory}

// Compose builds one draft from the candidate pool. When the filtered pool is
// empty for every slot the composer relaxes to the unfiltered pool so a
// non-empty catalog always yields a best-effort draft. Returns nil when fewer
// than two slots can be filled at all.
func (c *Composer) Compose(pool []CandidateGarment, occasion string, weather WeatherContext, targetItems int) *Draft {
	if len(pool) == 0 {
		return nil
	}
	if targetItems < 3 {
		targetItems = 3
	}
	if targetItems > len(requiredSlots) {
		targetItems = len(requiredSlots)
	}

	filtered := FilterPool(pool, occasion, weather)
	relaxed := false
	if len(filtered) == 0 {
		filtered = pool
		relaxed = true
	}

	byCategory := map[Category][]CandidateGarment{}
	for _, item := range filtered {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}
	// dresses compete for the top slot
	if dresses := byCategory[CategoryDress]; len(dresses) > 0 {
		byCategory[CategoryTop] = append(byCategory[CategoryTop], dresses...)
	}

	used := map[string]bool{}
	draft := &Draft{Relaxed: relaxed}
	dressPicked := false

	for _, slot := range requiredSlots {
		if len(draft.Items) >= targetItems {
			break
		}
		if slot == CategoryBottom && dressPicked {
			continue
		}
		candidates := make([]CandidateGarment, 0, len(byCategory[slot]))
		for _, item := range byCategory[slot] {
			if !used[item.ID] {
				candidates = append(candidates, item)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		picked := candidates[c.rng.Intn(len(candidates))]
		used[picked.ID] = true
		draft.Items = append(draft.Items, picked)
		if picked.Category == CategoryDress {
			dressPicked = true
		}
	}

	if len(draft.Items) < 2 {
		return nil
	}
	return draft
}
