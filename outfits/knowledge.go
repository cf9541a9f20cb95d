package outfits

import "strings"

// Static fabric and color knowledge. Pure lookups, no I/O, safe for any
// number of concurrent callers.

var allSeasons = []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

var materialTable = map[string]MaterialProperties{
	"cotton": {
		Breathability:   8,
		Warmth:          4,
		WaterResistance: 2,
		Seasons:         []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter},
		Formality:       FormalityCasual,
	},
	"linen": {
		Breathability:   10,
		Warmth:          2,
		WaterResistance: 1,
		Seasons:         []Season{SeasonSpring, SeasonSummer},
		Formality:       FormalitySmartCasual,
	},
	"wool": {
		Breathability:   5,
		Warmth:          9,
		WaterResistance: 4,
		Seasons:         []Season{SeasonAutumn, SeasonWinter},
		Formality:       FormalitySmartCasual,
	},
	"cashmere": {
		Breathability:   6,
		Warmth:          8,
		WaterResistance: 2,
		Seasons:         []Season{SeasonAutumn, SeasonWinter},
		Formality:       FormalityFormal,
	},
	"silk": {
		Breathability:   7,
		Warmth:          3,
		WaterResistance: 1,
		Seasons:         []Season{SeasonSpring, SeasonSummer, SeasonAutumn},
		Formality:       FormalityFormal,
	},
	"denim": {
		Breathability:   6,
		Warmth:          6,
		WaterResistance: 3,
		Seasons:         []Season{SeasonSpring, SeasonAutumn, SeasonWinter},
		Formality:       FormalityCasual,
	},
	"leather": {
		Breathability:   2,
		Warmth:          7,
		WaterResistance: 8,
		Seasons:         []Season{SeasonAutumn, SeasonWinter},
		Formality:       FormalitySmartCasual,
	},
	"polyester": {
		Breathability:   4,
		Warmth:          5,
		WaterResistance: 6,
		Seasons:         []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter},
		Formality:       FormalityCasual,
	},
	"viscose": {
		Breathability:   7,
		Warmth:          3,
		WaterResistance: 2,
		Seasons:         []Season{SeasonSpring, SeasonSummer},
		Formality:       FormalitySmartCasual,
	},
}

// materialKeywords in lookup order: more specific fabrics before the generic
// ones so "cotton cashmere blend" resolves to cashmere.
var materialKeywords = []string{
	"cashmere", "denim", "leather", "linen", "silk", "wool", "polyester", "viscose", "cotton",
}

// MaterialPropertiesFor returns the fabric table entry for a material name.
// Unknown materials fall back to cotton.
func MaterialPropertiesFor(name string) MaterialProperties {
	if props, ok := materialTable[strings.ToLower(strings.TrimSpace(name))]; ok {
		return props
	}
	return materialTable["cotton"]
}

// InferMaterial scans an item name for a fabric keyword, cotton by default.
func InferMaterial(name string) string {
	lower := strings.ToLower(name)
	for _, keyword := range materialKeywords {
		if strings.Contains(lower, keyword) {
			return keyword
		}
	}
	// jeans are denim even when the fabric is not spelled out
	if strings.Contains(lower, "jean") {
		return "denim"
	}
	return "cotton"
}

// paletteSeasonTable maps palette keywords found in color strings to season
// buckets.
var paletteSeasonTable = []struct {
	keyword string
	seasons []Season
}{
	{"pastel", []Season{SeasonSpring, SeasonSummer}},
	{"bright", []Season{SeasonSpring, SeasonSummer}},
	{"light", []Season{SeasonSpring, SeasonSummer}},
	{"neon", []Season{SeasonSummer}},
	{"dark", []Season{SeasonAutumn, SeasonWinter}},
	{"deep", []Season{SeasonAutumn, SeasonWinter}},
	{"warm", []Season{SeasonAutumn}},
	{"earth", []Season{SeasonAutumn}},
}

var formalColors = map[string]bool{
	"black":    true,
	"navy":     true,
	"white":    true,
	"charcoal": true,
	"camel":    true,
}

var lightColors = map[string]bool{
	"white":  true,
	"cream":  true,
	"beige":  true,
	"yellow": true,
	"pink":   true,
	"pastel": true,
	"light":  true,
}

var darkColors = map[string]bool{
	"black":    true,
	"navy":     true,
	"charcoal": true,
	"brown":    true,
	"burgundy": true,
	"dark":     true,
}

// ColorSeasonality resolves the palette keywords of the given colors into a
// season set. Colors with no palette keyword contribute all seasons.
func ColorSeasonality(colors ...string) []Season {
	matched := map[Season]bool{}
	anyKeyword := false
	for _, color := range colors {
		lower := strings.ToLower(color)
		for _, entry := range paletteSeasonTable {
			if strings.Contains(lower, entry.keyword) {
				anyKeyword = true
				for _, s := range entry.seasons {
					matched[s] = true
				}
			}
		}
	}
	if !anyKeyword {
		return allSeasons
	}
	result := make([]Season, 0, len(matched))
	for _, s := range allSeasons {
		if matched[s] {
			result = append(result, s)
		}
	}
	return result
}

// ColorFormality is formal when every color is in the fixed formal set.
func ColorFormality(colors ...string) Formality {
	if len(colors) == 0 {
		return FormalityCasual
	}
	for _, color := range colors {
		if !formalColors[strings.ToLower(strings.TrimSpace(color))] {
			return FormalityCasual
		}
	}
	return FormalityFormal
}

func isLightColor(color string) bool {
	lower := strings.ToLower(color)
	for keyword := range lightColors {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func isDarkColor(color string) bool {
	lower := strings.ToLower(color)
	for keyword := range darkColors {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// complementaryPairs and analogousGroups back the scorer's cross-item harmony
// classification.
var complementaryPairs = [][2]string{
	{"red", "green"},
	{"blue", "orange"},
	{"yellow", "purple"},
	{"black", "white"},
	{"navy", "camel"},
}

var analogousGroups = [][]string{
	{"red", "orange", "yellow"},
	{"blue", "green", "teal"},
	{"purple", "pink", "magenta"},
	{"beige", "brown", "camel"},
}
