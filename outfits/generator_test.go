package outfits

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWardrobe struct {
	items []RawItem
	err   error
	delay time.Duration
}

func (s stubWardrobe) GetUserWardrobe(ctx context.Context, userID uint) ([]RawItem, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.items, s.err
}

type stubCatalog struct {
	items []RawItem
	err   error
}

func (s stubCatalog) GetItems(ctx context.Context, categoryFilter string) ([]RawItem, error) {
	return s.items, s.err
}

type stubWeather struct {
	weather WeatherContext
	err     error
}

func (s stubWeather) GetRealTimeWeather(ctx context.Context) (WeatherContext, error) {
	return s.weather, s.err
}

func whiteCasualPool() []RawItem {
	return []RawItem{
		{ID: "top", Name: "White Linen Shirt", ImageURL: "img.png", Category: "tops", Color: "white", Source: "wardrobe"},
		{ID: "bottom", Name: "White Cotton Shorts", ImageURL: "img.png", Category: "bottoms", Color: "white", Source: "wardrobe"},
		{ID: "shoes", Name: "White Canvas Sneakers", ImageURL: "img.png", Category: "shoes", Color: "white", Source: "wardrobe"},
	}
}

func seededGenerator(seed int64) *Generator {
	g := NewGenerator(stubWardrobe{}, stubCatalog{}, stubWeather{})
	g.NewRand = func() *rand.Rand {
		return rand.New(rand.NewSource(seed))
	}
	return g
}

func TestGenerateSunnyDayScoresFull(t *testing.T) {
	g := seededGenerator(1)
	weather := WeatherContext{Temperature: 24, Condition: ConditionSunny, Humidity: 40, Season: SeasonSummer}

	combos, err := g.Generate("casual", weather, whiteCasualPool(), nil, 1, NewTracker())

	require.NoError(t, err)
	require.Len(t, combos, 1)
	combo := combos[0]
	assert.Equal(t, 100, combo.Confidence)
	assert.False(t, combo.Fallback)
	assert.Equal(t, "24°C, sunny", combo.Weather)
	assert.Equal(t, "casual", combo.Occasion)
	assert.Len(t, combo.Items, 3)
	assert.NotEmpty(t, combo.ColorHarmony)
	assert.NotEmpty(t, combo.FitAdvice)
	assert.GreaterOrEqual(t, len(combo.WhyItWorks), 3)
	assert.LessOrEqual(t, len(combo.WhyItWorks), 5)
}

func TestGenerateRainyWinterServesFallback(t *testing.T) {
	g := seededGenerator(1)
	weather := WeatherContext{Temperature: 2, Condition: ConditionRainy, Humidity: 85, Season: SeasonWinter}
	pool := []RawItem{
		{ID: "dress", Name: "Yellow Sundress", ImageURL: "img.png", Source: "wardrobe"},
	}

	combos, err := g.Generate("date", weather, pool, nil, 3, NewTracker())

	require.NoError(t, err)
	require.Len(t, combos, 1)
	combo := combos[0]
	assert.True(t, combo.Fallback)
	assert.Equal(t, relaxedBaseConfidence, combo.Confidence)
	require.Len(t, combo.Items, 3)
	assert.Equal(t, "fallback-tee", combo.Items[0].ID)
	assert.Equal(t, "fallback-jeans", combo.Items[1].ID)
	assert.Equal(t, "fallback-sneakers", combo.Items[2].ID)
}

func TestGenerateInputValidation(t *testing.T) {
	g := seededGenerator(1)

	_, err := g.Generate("casual", NeutralWeather(), whiteCasualPool(), nil, -1, NewTracker())
	assert.Error(t, err)

	_, err = g.Generate("", NeutralWeather(), whiteCasualPool(), nil, 3, NewTracker())
	assert.Error(t, err)

	combos, err := g.Generate("casual", NeutralWeather(), whiteCasualPool(), nil, 0, NewTracker())
	require.NoError(t, err)
	assert.Empty(t, combos)
}

func TestGenerateEmptyPoolYieldsNoCombos(t *testing.T) {
	g := seededGenerator(1)

	combos, err := g.Generate("casual", NeutralWeather(), nil, nil, 3, NewTracker())

	require.NoError(t, err)
	assert.Empty(t, combos)
}

func TestGenerateConfidenceAlwaysInRange(t *testing.T) {
	g := seededGenerator(99)
	pool := append(whiteCasualPool(),
		RawItem{ID: "knit", Name: "Chunky Wool Knit", ImageURL: "img.png", Source: "wardrobe", Tags: []string{"new"}},
		RawItem{ID: "jeans", Name: "Blue Denim Jeans", ImageURL: "img.png", Source: "wardrobe", Tags: []string{"seasonal", "winter"}},
		RawItem{ID: "boots", Name: "Black Leather Boots", ImageURL: "img.png", Source: "wardrobe"},
	)
	weather := WeatherContext{Temperature: 8, Condition: ConditionCloudy, Humidity: 60, Season: SeasonWinter}

	combos, err := g.Generate("casual", weather, pool, nil, 5, NewTracker())

	require.NoError(t, err)
	require.NotEmpty(t, combos)
	for _, combo := range combos {
		assert.GreaterOrEqual(t, combo.Confidence, 0, combo.ID)
		assert.LessOrEqual(t, combo.Confidence, 100, combo.ID)
		assert.GreaterOrEqual(t, len(combo.Items), 2, combo.ID)
	}
}

func TestGenerateDeterministicWithSeededRand(t *testing.T) {
	pool := append(whiteCasualPool(),
		RawItem{ID: "top2", Name: "Blue Oxford Shirt", ImageURL: "img.png", Category: "tops", Color: "blue", Source: "wardrobe"},
		RawItem{ID: "bottom2", Name: "Beige Cotton Chino", ImageURL: "img.png", Category: "bottoms", Color: "beige", Source: "wardrobe"},
	)
	weather := WeatherContext{Temperature: 22, Condition: ConditionPartlyCloudy, Humidity: 50, Season: SeasonSummer}

	first, err := seededGenerator(42).Generate("casual", weather, pool, nil, 2, NewTracker())
	require.NoError(t, err)
	second, err := seededGenerator(42).Generate("casual", weather, pool, nil, 2, NewTracker())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Signature(), second[i].Signature())
		assert.Equal(t, first[i].Confidence, second[i].Confidence)
		assert.Equal(t, first[i].WhyItWorks, second[i].WhyItWorks)
	}
}

func TestGenerateTrackerSuppressesRepeats(t *testing.T) {
	g := seededGenerator(5)
	weather := WeatherContext{Temperature: 24, Condition: ConditionSunny, Humidity: 40, Season: SeasonSummer}
	tracker := NewTracker()

	// the pool admits exactly one combination, so the second call has
	// nothing fresh to offer and must serve the fallback set
	first, err := g.Generate("casual", weather, whiteCasualPool(), nil, 1, tracker)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.False(t, first[0].Fallback)

	second, err := g.Generate("casual", weather, whiteCasualPool(), nil, 1, tracker)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Fallback)

	tracker.Reset()
	third, err := g.Generate("casual", weather, whiteCasualPool(), nil, 1, tracker)
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.False(t, third[0].Fallback)
	assert.Equal(t, first[0].Signature(), third[0].Signature())
}

func TestGenerateForUserEmptyPools(t *testing.T) {
	g := seededGenerator(1)
	g.Wardrobe = stubWardrobe{}
	g.Catalog = stubCatalog{}
	g.Weather = stubWeather{weather: NeutralWeather()}

	combos, message, err := g.GenerateForUser(context.Background(), 1, "casual", 3)

	require.NoError(t, err)
	assert.Empty(t, combos)
	assert.Equal(t, EmptyPoolMessage, message)
}

func TestGenerateForUserWeatherFailureUsesNeutral(t *testing.T) {
	g := seededGenerator(1)
	g.Wardrobe = stubWardrobe{items: whiteCasualPool()}
	g.Catalog = stubCatalog{}
	g.Weather = stubWeather{err: errors.New("upstream down")}

	combos, message, err := g.GenerateForUser(context.Background(), 1, "casual", 1)

	require.NoError(t, err)
	assert.Empty(t, message)
	require.NotEmpty(t, combos)
	assert.Equal(t, NeutralWeather().DisplayString(), combos[0].Weather)
}

func TestGenerateForUserWardrobeFailureFallsBackToCatalog(t *testing.T) {
	g := seededGenerator(1)
	g.Wardrobe = stubWardrobe{err: errors.New("db down")}
	g.Catalog = stubCatalog{items: whiteCasualPool()}
	g.Weather = stubWeather{weather: WeatherContext{Temperature: 24, Condition: ConditionSunny, Humidity: 40, Season: SeasonSummer}}

	combos, message, err := g.GenerateForUser(context.Background(), 1, "casual", 1)

	require.NoError(t, err)
	assert.Empty(t, message)
	require.Len(t, combos, 1)
	assert.False(t, combos[0].Fallback)
}

func TestGenerateForUserSlowFetchTreatedAsEmpty(t *testing.T) {
	g := seededGenerator(1)
	g.FetchTimeout = 20 * time.Millisecond
	g.Wardrobe = stubWardrobe{items: whiteCasualPool(), delay: 300 * time.Millisecond}
	g.Catalog = stubCatalog{}
	g.Weather = stubWeather{weather: NeutralWeather()}

	combos, message, err := g.GenerateForUser(context.Background(), 1, "casual", 1)

	require.NoError(t, err)
	assert.Empty(t, combos)
	assert.Equal(t, EmptyPoolMessage, message)
}

func TestGenerateForUserBudgetExceededServesFallback(t *testing.T) {
	g := NewGenerator(
		stubWardrobe{items: whiteCasualPool()},
		stubCatalog{},
		stubWeather{weather: NeutralWeather()},
	)
	g.GenerationBudget = 20 * time.Millisecond
	g.NewRand = func() *rand.Rand {
		// stall the scored pipeline past its budget
		time.Sleep(300 * time.Millisecond)
		return rand.New(rand.NewSource(1))
	}

	combos, message, err := g.GenerateForUser(context.Background(), 1, "casual", 3)

	require.NoError(t, err)
	assert.Empty(t, message)
	require.NotEmpty(t, combos)
	assert.True(t, combos[0].Fallback)
}

func TestGenerateForUserCancelledContext(t *testing.T) {
	g := NewGenerator(
		stubWardrobe{items: whiteCasualPool()},
		stubCatalog{},
		stubWeather{weather: NeutralWeather()},
	)
	g.NewRand = func() *rand.Rand {
		time.Sleep(300 * time.Millisecond)
		return rand.New(rand.NewSource(1))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := g.GenerateForUser(ctx, 1, "casual", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrackersAreIsolatedPerUser(t *testing.T) {
	g := seededGenerator(1)

	first := g.TrackerFor(1)
	second := g.TrackerFor(2)
	require.NotSame(t, first, second)
	assert.Same(t, first, g.TrackerFor(1))

	require.True(t, first.Admit("shared-signature"))
	assert.True(t, second.Admit("shared-signature"))
	assert.False(t, first.Admit("shared-signature"))

	g.ResetTracker(1)
	assert.True(t, first.Admit("shared-signature"))
}
