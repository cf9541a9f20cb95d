package outfits

import (
	"fmt"
	"sort"
	"strings"
)

// Category is the fixed garment taxonomy. Everything the normalizer emits
// carries one of these values, never free text.
type Category string

const (
	CategoryTop       Category = "tops"
	CategoryBottom    Category = "bottoms"
	CategoryOuterwear Category = "outerwear"
	CategoryDress     Category = "dress"
	CategoryShoes     Category = "shoes"
	CategoryAccessory Category = "accessories"
)

func ParseCategory(value string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryTop:
		return CategoryTop, true
	case CategoryBottom:
		return CategoryBottom, true
	case CategoryOuterwear:
		return CategoryOuterwear, true
	case CategoryDress:
		return CategoryDress, true
	case CategoryShoes:
		return CategoryShoes, true
	case CategoryAccessory:
		return CategoryAccessory, true
	}
	return "", false
}

type Origin string

const (
	OriginWardrobe Origin = "wardrobe"
	OriginRetail   Origin = "retail"
)

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

type Condition string

const (
	ConditionSunny        Condition = "sunny"
	ConditionCloudy       Condition = "cloudy"
	ConditionRainy        Condition = "rainy"
	ConditionPartlyCloudy Condition = "partly-cloudy"
	ConditionWindy        Condition = "windy"
)

type Formality string

const (
	FormalityCasual      Formality = "casual"
	FormalitySmartCasual Formality = "smart-casual"
	FormalityFormal      Formality = "formal"
)

type HarmonyClass string

const (
	HarmonyNeutral       HarmonyClass = "neutral"
	HarmonyMonochromatic HarmonyClass = "monochromatic"
	HarmonyComplementary HarmonyClass = "complementary"
	HarmonyAnalogous     HarmonyClass = "analogous"
)

// MaterialProperties are fabric attributes on a 1-10 scale plus the seasons
// the fabric is comfortable in.
type MaterialProperties struct {
	Breathability   int       `json:"breathability"`
	Warmth          int       `json:"warmth"`
	WaterResistance int       `json:"water_resistance"`
	Seasons         []Season  `json:"seasons"`
	Formality       Formality `json:"formality"`
}

// ColorAnalysis for a single garment. Harmony is always neutral here,
// cross-item harmony is classified by the scorer.
type ColorAnalysis struct {
	Primary      string       `json:"primary"`
	Secondary    string       `json:"secondary"`
	Harmony      HarmonyClass `json:"harmony"`
	Seasons      []Season     `json:"seasons"`
	Formality    Formality    `json:"formality"`
	SkinToneHint string       `json:"skin_tone_hint"`
}

type WeatherSuitability struct {
	MinTemp    int         `json:"min_temp"`
	MaxTemp    int         `json:"max_temp"`
	Conditions []Condition `json:"conditions"`
	Seasons    []Season    `json:"seasons"`
}

// CandidateGarment is one wearable item available for composition. Built
// fresh on every generation request, immutable once built.
type CandidateGarment struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageRef    string   `json:"image_ref"`
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory"`
	Color       string   `json:"color"`
	Brand       string   `json:"brand"`
	Origin      Origin   `json:"origin"`
	Tags        []string `json:"tags"`

	Material      string             `json:"material"`
	MaterialProps MaterialProperties `json:"material_properties"`
	Colors        ColorAnalysis      `json:"color_analysis"`
	Weather       WeatherSuitability `json:"weather_suitability"`
	Occasions     []string           `json:"occasion_suitability"`
}

func (g CandidateGarment) HasTag(tags ...string) bool {
	for _, have := range g.Tags {
		for _, want := range tags {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// WeatherContext is supplied by the weather collaborator. Temperature is
// degrees Celsius.
type WeatherContext struct {
	Temperature int       `json:"temperature"`
	Condition   Condition `json:"condition"`
	Humidity    int       `json:"humidity"`
	Season      Season    `json:"season"`
}

func (w WeatherContext) DisplayString() string {
	return fmt.Sprintf("%d°C, %s", w.Temperature, w.Condition)
}

// NeutralWeather is substituted when the weather collaborator is unavailable.
func NeutralWeather() WeatherContext {
	return WeatherContext{
		Temperature: 20,
		Condition:   ConditionPartlyCloudy,
		Humidity:    50,
		Season:      SeasonSpring,
	}
}

// OutfitCombination is the produced recommendation. Items always hold at
// least two garments and confidence stays in [0,100].
type OutfitCombination struct {
	ID           string             `json:"id"`
	Items        []CandidateGarment `json:"items"`
	Occasion     string             `json:"occasion"`
	Weather      string             `json:"weather"`
	Confidence   int                `json:"confidence"`
	ColorHarmony string             `json:"color_harmony_description"`
	StyleNotes   []string           `json:"style_notes"`
	FitAdvice    string             `json:"fit_advice"`
	WhyItWorks   []string           `json:"why_it_works"`
	Fallback     bool               `json:"fallback,omitempty"`
}

// Signature identifies a combination by its garment id set, order independent.
func (o OutfitCombination) Signature() string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// RawItem is the loosely typed record coming from a wardrobe store or a
// retailer catalog. Any field may be empty.
type RawItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url"`
	ProductURL  string   `json:"product_url"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Color       string   `json:"color"`
	Brand       string   `json:"brand"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags"`
}

func containsSeason(seasons []Season, s Season) bool {
	for _, have := range seasons {
		if have == s {
			return true
		}
	}
	return false
}

func containsCondition(conditions []Condition, c Condition) bool {
	for _, have := range conditions {
		if have == c {
			return true
		}
	}
	return false
}

func containsString(items []string, lookFor string) bool {
	for _, have := range items {
		if strings.EqualFold(have, lookFor) {
			return true
		}
	}
	return false
}
