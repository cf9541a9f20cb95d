package outfits

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, raw RawItem) CandidateGarment {
	t.Helper()
	garment, err := Normalize(raw)
	require.NoError(t, err)
	return garment
}

func TestFilterPoolSunnyDayExcludesHeavyKnits(t *testing.T) {
	pool := []CandidateGarment{
		mustNormalize(t, RawItem{ID: "knit", Name: "Chunky Wool Knit", ImageURL: "img.png"}),
		mustNormalize(t, RawItem{ID: "tee", Name: "White Cotton Tee", ImageURL: "img.png", Color: "white"}),
	}
	weather := WeatherContext{Temperature: 24, Condition: ConditionSunny, Season: SeasonSummer}

	filtered := FilterPool(pool, "casual", weather)

	require.Len(t, filtered, 1)
	assert.Equal(t, "tee", filtered[0].ID)
}

func TestFilterPoolRainRequiresWaterResistance(t *testing.T) {
	linen := mustNormalize(t, RawItem{ID: "linen", Name: "White Linen Shirt", ImageURL: "img.png", Category: "tops", Color: "white"})
	weather := WeatherContext{Temperature: 20, Condition: ConditionRainy, Season: SeasonSpring}

	assert.False(t, ItemMatchesWeather(linen, weather))

	raincoat := mustNormalize(t, RawItem{ID: "rc", Name: "Black Polyester Parka", ImageURL: "img.png", Color: "black"})
	weather.Temperature = 10
	assert.True(t, ItemMatchesWeather(raincoat, weather))
}

func TestComposeDressFillsTopAndSkipsBottoms(t *testing.T) {
	pool := []CandidateGarment{
		mustNormalize(t, RawItem{ID: "dress", Name: "Yellow Sundress", ImageURL: "img.png", Color: "yellow"}),
		mustNormalize(t, RawItem{ID: "shoes", Name: "White Canvas Sneakers", ImageURL: "img.png", Color: "white"}),
	}
	weather := WeatherContext{Temperature: 25, Condition: ConditionSunny, Season: SeasonSummer}
	composer := NewComposer(rand.New(rand.NewSource(7)))

	draft := composer.Compose(pool, "date", weather, 3)

	require.NotNil(t, draft)
	assert.False(t, draft.Relaxed)
	require.Len(t, draft.Items, 2)
	for _, item := range draft.Items {
		assert.NotEqual(t, CategoryBottom, item.Category)
	}
	assert.Equal(t, CategoryDress, draft.Items[0].Category)
}

func TestComposeRelaxesWhenNothingFits(t *testing.T) {
	pool := []CandidateGarment{
		mustNormalize(t, RawItem{ID: "shirt", Name: "White Linen Shirt", ImageURL: "img.png", Category: "tops", Color: "white"}),
		mustNormalize(t, RawItem{ID: "trousers", Name: "Red Wool Trousers", ImageURL: "img.png", Category: "bottoms", Color: "red"}),
	}
	// freezing rain fails every item, the composer must fall back to the
	// unfiltered pool instead of giving up
	weather := WeatherContext{Temperature: 2, Condition: ConditionRainy, Season: SeasonWinter}
	composer := NewComposer(rand.New(rand.NewSource(1)))

	draft := composer.Compose(pool, "casual", weather, 3)

	require.NotNil(t, draft)
	assert.True(t, draft.Relaxed)
	assert.Len(t, draft.Items, 2)
}

func TestComposeNilWhenFewerThanTwoSlots(t *testing.T) {
	pool := []CandidateGarment{
		mustNormalize(t, RawItem{ID: "shirt", Name: "Blue Oxford Shirt", ImageURL: "img.png", Category: "tops", Color: "blue"}),
	}
	composer := NewComposer(rand.New(rand.NewSource(1)))

	draft := composer.Compose(pool, "casual", NeutralWeather(), 3)
	assert.Nil(t, draft)

	assert.Nil(t, composer.Compose(nil, "casual", NeutralWeather(), 3))
}

func TestComposeNeverReusesAnItem(t *testing.T) {
	pool := []CandidateGarment{
		mustNormalize(t, RawItem{ID: "a", Name: "White Cotton Tee", ImageURL: "img.png", Category: "tops", Color: "white"}),
		mustNormalize(t, RawItem{ID: "b", Name: "Blue Cotton Shorts", ImageURL: "img.png", Category: "bottoms", Color: "blue"}),
		mustNormalize(t, RawItem{ID: "c", Name: "White Canvas Sneakers", ImageURL: "img.png", Category: "shoes", Color: "white"}),
		mustNormalize(t, RawItem{ID: "d", Name: "Beige Cotton Overshirt", ImageURL: "img.png", Category: "outerwear", Color: "beige"}),
		mustNormalize(t, RawItem{ID: "e", Name: "Woven Leather Belt", ImageURL: "img.png", Category: "accessories", Color: "brown"}),
	}
	composer := NewComposer(rand.New(rand.NewSource(3)))
	weather := WeatherContext{Temperature: 18, Condition: ConditionCloudy, Season: SeasonSpring}

	draft := composer.Compose(pool, "casual", weather, 5)

	require.NotNil(t, draft)
	seen := map[string]bool{}
	for _, item := range draft.Items {
		assert.False(t, seen[item.ID], "item %s picked twice", item.ID)
		seen[item.ID] = true
	}
	assert.GreaterOrEqual(t, len(draft.Items), 3)
}
