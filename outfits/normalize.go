package outfits

import (
	"fmt"
	"strings"
)

// categoryRule is one entry of the ordered classification table used when an
// item carries no usable category of its own. First match wins, so more
// specific keywords sit above the generic ones.
type categoryRule struct {
	keywords    []string
	category    Category
	subcategory string
}

var categoryRules = []categoryRule{
	{[]string{"blazer", "jacket", "coat", "overshirt", "duffle", "parka", "trench"}, CategoryOuterwear, "jacket"},
	{[]string{"dress", "gown", "sundress"}, CategoryDress, "dress"},
	{[]string{"sneaker", "shoe", "boot", "loafer", "heel", "slide", "sandal", "thong"}, CategoryShoes, "shoes"},
	{[]string{"jean", "chino", "trouser", "pant", "short", "skirt", "jogger", "legging", "track"}, CategoryBottom, "pants"},
	{[]string{"belt", "bag", "wallet", "tie", "scarf", "hat", "cap", "sock", "watch"}, CategoryAccessory, "accessory"},
	{[]string{"sweater", "knit", "jumper", "cardigan", "hoodie", "sweat"}, CategoryTop, "knitwear"},
	{[]string{"shirt", "t-shirt", "tee", "polo", "blouse", "top", "tank", "singlet", "henley", "crew"}, CategoryTop, "shirt"},
}

// classifyCategory resolves a category from the raw record. Explicit category
// values are taken verbatim when they match the taxonomy; otherwise the name
// and product URL are matched against the rule table. Unmatched items land in
// the tops/other bucket.
func classifyCategory(raw RawItem) (Category, string) {
	if category, ok := ParseCategory(raw.Category); ok {
		sub := raw.Subcategory
		if sub == "" {
			sub = string(category)
		}
		return category, sub
	}
	haystack := strings.ToLower(raw.Name + " " + raw.ProductURL)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(haystack, keyword) {
				return rule.category, rule.subcategory
			}
		}
	}
	return CategoryTop, "other"
}

// weatherDefaults derives a deterministic suitability range from category and
// color. Knits skew cold, jackets mid-range, light colors raise the ceiling,
// dark colors lower the floor.
func weatherDefaults(category Category, subcategory, color string) WeatherSuitability {
	suitability := WeatherSuitability{
		MinTemp:    5,
		MaxTemp:    30,
		Conditions: []Condition{ConditionSunny, ConditionCloudy, ConditionPartlyCloudy, ConditionWindy},
		Seasons:    append([]Season(nil), allSeasons...),
	}

	switch category {
	case CategoryTop:
		if subcategory == "knitwear" {
			suitability.MinTemp = -5
			suitability.MaxTemp = 15
			suitability.Conditions = []Condition{ConditionCloudy, ConditionRainy, ConditionPartlyCloudy, ConditionWindy}
			suitability.Seasons = []Season{SeasonAutumn, SeasonWinter, SeasonSpring}
		}
	case CategoryOuterwear:
		suitability.MinTemp = 0
		suitability.MaxTemp = 18
		suitability.Conditions = []Condition{ConditionCloudy, ConditionRainy, ConditionPartlyCloudy, ConditionWindy}
		suitability.Seasons = []Season{SeasonAutumn, SeasonWinter, SeasonSpring}
	case CategoryDress:
		suitability.MinTemp = 15
		suitability.MaxTemp = 35
		suitability.Seasons = []Season{SeasonSpring, SeasonSummer}
	case CategoryShoes, CategoryAccessory:
		suitability.MinTemp = -10
		suitability.MaxTemp = 40
		suitability.Conditions = []Condition{ConditionSunny, ConditionCloudy, ConditionRainy, ConditionPartlyCloudy, ConditionWindy}
	}

	if isLightColor(color) {
		if suitability.MaxTemp < 32 {
			suitability.MaxTemp = 32
		}
		if !containsSeason(suitability.Seasons, SeasonSummer) {
			suitability.Seasons = append(suitability.Seasons, SeasonSummer)
		}
	}
	if isDarkColor(color) {
		if suitability.MinTemp > -5 {
			suitability.MinTemp = -5
		}
		for _, s := range []Season{SeasonAutumn, SeasonWinter} {
			if !containsSeason(suitability.Seasons, s) {
				suitability.Seasons = append(suitability.Seasons, s)
			}
		}
	}
	return suitability
}

// occasionDefaults derives the occasion set from category, subcategory and
// color keyword rules.
func occasionDefaults(category Category, subcategory, name, color string) []string {
	occasions := map[string]bool{}
	add := func(values ...string) {
		for _, v := range values {
			occasions[v] = true
		}
	}
	lowerName := strings.ToLower(name)

	switch {
	case strings.Contains(lowerName, "blazer"), strings.Contains(lowerName, "suit"):
		add("work", "business", "formal")
	case category == CategoryDress:
		add("date", "party", "formal")
	case strings.Contains(lowerName, "jean"):
		add("casual", "smart-casual")
	case strings.Contains(lowerName, "t-shirt"), strings.Contains(lowerName, "tee"),
		strings.Contains(lowerName, "hoodie"), strings.Contains(lowerName, "sweat"):
		add("casual")
	case strings.Contains(lowerName, "shirt"), strings.Contains(lowerName, "polo"):
		add("work", "business", "smart-casual")
	default:
		add("casual")
	}

	lowerColor := strings.ToLower(color)
	if strings.Contains(lowerColor, "black") || strings.Contains(lowerColor, "navy") {
		add("formal", "business")
	}
	if strings.Contains(lowerColor, "white") {
		add("work", "business", "casual")
	}

	// shoes and accessories go anywhere the rest of the outfit goes
	if category == CategoryShoes || category == CategoryAccessory {
		add("casual", "smart-casual", "work", "business", "date")
	}

	result := make([]string, 0, len(occasions))
	for _, o := range []string{"casual", "smart-casual", "work", "business", "formal", "date", "party"} {
		if occasions[o] {
			result = append(result, o)
		}
	}
	return result
}

// Normalize converts a loosely typed record into a CandidateGarment. Items
// without a name or an image are unusable and reported as an error so the
// caller can drop them without failing the batch.
func Normalize(raw RawItem) (CandidateGarment, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return CandidateGarment{}, fmt.Errorf("item %q has no name", raw.ID)
	}
	if raw.ImageURL == "" {
		return CandidateGarment{}, fmt.Errorf("item %q (%s) has no image", raw.ID, name)
	}

	category, subcategory := classifyCategory(raw)
	color := strings.ToLower(strings.TrimSpace(raw.Color))
	if color == "" {
		color = inferColorFromName(name)
	}
	material := InferMaterial(name)
	props := MaterialPropertiesFor(material)

	origin := OriginWardrobe
	if strings.EqualFold(raw.Source, string(OriginRetail)) || raw.ProductURL != "" {
		origin = OriginRetail
	}
	id := raw.ID
	if id == "" {
		id = fmt.Sprintf("%s:%s", origin, strings.ToLower(strings.ReplaceAll(name, " ", "-")))
	}

	garment := CandidateGarment{
		ID:            id,
		Name:          name,
		ImageRef:      raw.ImageURL,
		Category:      category,
		Subcategory:   subcategory,
		Color:         color,
		Brand:         raw.Brand,
		Origin:        origin,
		Tags:          append([]string(nil), raw.Tags...),
		Material:      material,
		MaterialProps: props,
		Colors: ColorAnalysis{
			Primary:      color,
			Harmony:      HarmonyNeutral,
			Seasons:      ColorSeasonality(color),
			Formality:    ColorFormality(color),
			SkinToneHint: skinToneHint(color),
		},
		Weather:   weatherDefaults(category, subcategory, color),
		Occasions: occasionDefaults(category, subcategory, name, color),
	}
	return garment, nil
}

// NormalizeAll drops malformed records instead of failing the batch and
// reports how many were dropped.
func NormalizeAll(raws []RawItem) ([]CandidateGarment, int) {
	pool := make([]CandidateGarment, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		garment, err := Normalize(raw)
		if err != nil {
			dropped++
			continue
		}
		pool = append(pool, garment)
	}
	return pool, dropped
}

var knownColorWords = []string{
	"black", "white", "navy", "blue", "red", "green", "yellow", "orange",
	"purple", "pink", "teal", "brown", "beige", "cream", "grey", "gray",
	"charcoal", "camel", "burgundy", "olive", "magenta",
}

func inferColorFromName(name string) string {
	lower := strings.ToLower(name)
	for _, word := range knownColorWords {
		if strings.Contains(lower, word) {
			return word
		}
	}
	return "neutral"
}

func skinToneHint(color string) string {
	switch {
	case isLightColor(color):
		return "flatters deeper skin tones"
	case isDarkColor(color):
		return "works across skin tones"
	default:
		return "universally wearable"
	}
}
