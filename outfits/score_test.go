package outfits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHarmony(t *testing.T) {
	assert.Equal(t, HarmonyMonochromatic, ClassifyHarmony([]string{"black", "black", "black"}))
	assert.Equal(t, HarmonyComplementary, ClassifyHarmony([]string{"black", "white", "grey"}))
	assert.Equal(t, HarmonyComplementary, ClassifyHarmony([]string{"navy", "camel"}))
	assert.Equal(t, HarmonyAnalogous, ClassifyHarmony([]string{"blue", "teal", "grey"}))
	assert.Equal(t, HarmonyNeutral, ClassifyHarmony([]string{"grey", "red"}))
	assert.Equal(t, HarmonyNeutral, ClassifyHarmony(nil))
}

func TestClassifyHarmonyIgnoresCaseAndSpacing(t *testing.T) {
	assert.Equal(t, HarmonyMonochromatic, ClassifyHarmony([]string{"Navy", " navy "}))
	assert.Equal(t, HarmonyComplementary, ClassifyHarmony([]string{"RED", "Green"}))
}

func sunnySummerWeather() WeatherContext {
	return WeatherContext{Temperature: 24, Condition: ConditionSunny, Humidity: 40, Season: SeasonSummer}
}

func sunnyCasualDraft(t *testing.T) *Draft {
	t.Helper()
	raws := []RawItem{
		{ID: "top", Name: "White Linen Shirt", ImageURL: "img.png", Category: "tops", Color: "white"},
		{ID: "bottom", Name: "White Cotton Shorts", ImageURL: "img.png", Category: "bottoms", Color: "white"},
		{ID: "shoes", Name: "White Canvas Sneakers", ImageURL: "img.png", Category: "shoes", Color: "white"},
	}
	items := make([]CandidateGarment, 0, len(raws))
	for _, raw := range raws {
		garment, err := Normalize(raw)
		require.NoError(t, err)
		items = append(items, garment)
	}
	return &Draft{Items: items}
}

func TestScoreAllBonusesClampTo100(t *testing.T) {
	draft := sunnyCasualDraft(t)

	result := Score(draft, "casual", sunnySummerWeather())

	// 70 base + harmony + weather + occasion + material season exceeds the
	// ceiling and must clamp
	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, HarmonyMonochromatic, result.Harmony)
	assert.True(t, result.Bonuses.WeatherMatch)
	assert.True(t, result.Bonuses.OccasionMatch)
	assert.True(t, result.Bonuses.MaterialSeason)
}

func TestScoreIsDeterministic(t *testing.T) {
	draft := sunnyCasualDraft(t)
	weather := sunnySummerWeather()

	first := Score(draft, "casual", weather)
	second := Score(draft, "casual", weather)
	assert.Equal(t, first, second)
}

func TestScoreRelaxedDraftStartsLower(t *testing.T) {
	draft := sunnyCasualDraft(t)
	weather := WeatherContext{Temperature: 2, Condition: ConditionRainy, Humidity: 80, Season: SeasonWinter}

	normal := Score(draft, "formal", weather)
	draft.Relaxed = true
	relaxed := Score(draft, "formal", weather)

	assert.Equal(t, normal.Confidence-20, relaxed.Confidence)
}

func TestScoreMissedBonusesStayAtBase(t *testing.T) {
	shirt, err := Normalize(RawItem{ID: "a", Name: "White Linen Shirt", ImageURL: "img.png", Category: "tops", Color: "white"})
	require.NoError(t, err)
	trousers, err := Normalize(RawItem{ID: "b", Name: "Red Wool Trousers", ImageURL: "img.png", Category: "bottoms", Color: "red"})
	require.NoError(t, err)
	draft := &Draft{Items: []CandidateGarment{shirt, trousers}}

	// freezing rain: linen fails the water resistance rule, wool is out of
	// season against summer, party is not an occasion either piece carries
	weather := WeatherContext{Temperature: 2, Condition: ConditionRainy, Humidity: 90, Season: SeasonSummer}
	result := Score(draft, "party", weather)

	assert.Equal(t, baseConfidence, result.Confidence)
	assert.False(t, result.Bonuses.WeatherMatch)
	assert.False(t, result.Bonuses.OccasionMatch)
	assert.False(t, result.Bonuses.MaterialSeason)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 100, clampConfidence(140))
	assert.Equal(t, 0, clampConfidence(-3))
	assert.Equal(t, 55, clampConfidence(55))
}
