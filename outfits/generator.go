package outfits

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// ErrDataFetchTimeout marks an upstream collaborator that did not answer
// within its bound. Callers substitute a fallback dataset, the end user never
// sees it.
var ErrDataFetchTimeout = errors.New("outfits: data fetch timed out")

// EmptyPoolMessage is the advisory the caller should display when
// normalization yields zero usable garments.
const EmptyPoolMessage = "Add items to your wardrobe to generate outfits"

const (
	defaultFetchTimeout     = 5 * time.Second
	defaultGenerationBudget = 8 * time.Second
	maxCombinationsPerCall  = 10
)

// WardrobeProvider, CatalogProvider and WeatherProvider are the external
// collaborators. All of them are expected to answer within a bounded time or
// be treated as failed.
type WardrobeProvider interface {
	GetUserWardrobe(ctx context.Context, userID uint) ([]RawItem, error)
}

type CatalogProvider interface {
	GetItems(ctx context.Context, categoryFilter string) ([]RawItem, error)
}

type WeatherProvider interface {
	GetRealTimeWeather(ctx context.Context) (WeatherContext, error)
}

// Generator orchestrates the normalize → compose → score → admit → narrate
// pipeline. Variety trackers are keyed per user so one user's history never
// contaminates another's.
type Generator struct {
	Wardrobe WardrobeProvider
	Catalog  CatalogProvider
	Weather  WeatherProvider

	FetchTimeout     time.Duration
	GenerationBudget time.Duration

	// NewRand makes the selection randomness seedable in tests.
	NewRand func() *rand.Rand

	trackerMu sync.Mutex
	trackers  map[uint]*Tracker
}

func NewGenerator(wardrobe WardrobeProvider, catalog CatalogProvider, weather WeatherProvider) *Generator {
	return &Generator{
		Wardrobe:         wardrobe,
		Catalog:          catalog,
		Weather:          weather,
		FetchTimeout:     defaultFetchTimeout,
		GenerationBudget: defaultGenerationBudget,
		NewRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		trackers: map[uint]*Tracker{},
	}
}

// TrackerFor returns the per-user variety tracker, creating it on first use.
func (g *Generator) TrackerFor(userID uint) *Tracker {
	g.trackerMu.Lock()
	defer g.trackerMu.Unlock()
	tracker, ok := g.trackers[userID]
	if !ok {
		tracker = NewTracker()
		g.trackers[userID] = tracker
	}
	return tracker
}

// ResetTracker clears one user's variety history.
func (g *Generator) ResetTracker(userID uint) {
	g.TrackerFor(userID).Reset()
}

// Generate is the pure pipeline: candidate pools in, scored combinations
// out. It never fails for data-quality reasons; bad records are dropped. The
// only error class is programmer misuse.
func (g *Generator) Generate(occasion string, weather WeatherContext, wardrobe, retail []RawItem, count int, tracker *Tracker) ([]OutfitCombination, error) {
	if count < 0 {
		return nil, fmt.Errorf("outfits: negative count %d", count)
	}
	if occasion == "" {
		return nil, errors.New("outfits: occasion is required")
	}
	if count == 0 {
		return []OutfitCombination{}, nil
	}
	if count > maxCombinationsPerCall {
		count = maxCombinationsPerCall
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	if weather.Season == "" {
		weather.Season = SeasonFromMonth(time.Now().Month())
	}

	pool, dropped := NormalizeAll(append(append([]RawItem{}, wardrobe...), retail...))
	if dropped > 0 {
		log.Printf("[Outfits] Dropped %d unusable raw items during normalization", dropped)
	}
	if len(pool) == 0 {
		return []OutfitCombination{}, nil
	}

	rng := g.NewRand()
	composer := NewComposer(rng)
	combos := make([]OutfitCombination, 0, count)
	seen := map[string]bool{}
	anyRelaxed := false

	// a few extra attempts beyond count absorb duplicate drafts and
	// variety rejections
	for attempt := 0; attempt < count*4 && len(combos) < count; attempt++ {
		draft := composer.Compose(pool, occasion, weather, 3+attempt%2)
		if draft == nil {
			break
		}
		if draft.Relaxed {
			anyRelaxed = true
		}
		combo := OutfitCombination{
			ID:       fmt.Sprintf("outfit-%d-%d", time.Now().UnixNano(), attempt),
			Items:    draft.Items,
			Occasion: occasion,
			Weather:  weather.DisplayString(),
		}
		signature := combo.Signature()
		if seen[signature] {
			continue
		}
		if !tracker.Admit(signature) {
			continue
		}
		seen[signature] = true

		result := Score(draft, occasion, weather)
		combo.Confidence = result.Confidence
		BuildNarrative(&combo, draft, result, occasion, weather, rng)
		tracker.ApplyBoosts(&combo, weather.Season)
		combos = append(combos, combo)
	}

	if len(combos) == 0 {
		// composition failed even relaxed: hand back the generic set so a
		// non-empty catalog never produces an error for the user
		log.Printf("[Outfits] Composition yielded nothing for occasion %q (relaxed=%v), using fallback set", occasion, anyRelaxed)
		fallback := FallbackCombinations(occasion, weather, rng)
		if count < len(fallback) {
			fallback = fallback[:count]
		}
		return fallback, nil
	}
	return combos, nil
}

// GenerateForUser runs the full orchestration: bounded fetches from every
// collaborator, neutral weather substitution, generation budget, fallback
// chain. The advisory message is non-empty only for the empty-pool case.
func (g *Generator) GenerateForUser(ctx context.Context, userID uint, occasion string, count int) ([]OutfitCombination, string, error) {
	if count < 0 {
		return nil, "", fmt.Errorf("outfits: negative count %d", count)
	}

	weather := g.fetchWeather(ctx)

	wardrobeRaw, err := fetchWithTimeout(ctx, g.FetchTimeout, func(ctx context.Context) ([]RawItem, error) {
		return g.Wardrobe.GetUserWardrobe(ctx, userID)
	})
	if err != nil {
		log.Printf("[Outfits %v] Wardrobe fetch failed: %v, continuing with empty wardrobe", userID, err)
		wardrobeRaw = nil
	}
	retailRaw, err := fetchWithTimeout(ctx, g.FetchTimeout, func(ctx context.Context) ([]RawItem, error) {
		return g.Catalog.GetItems(ctx, "")
	})
	if err != nil {
		log.Printf("[Outfits %v] Catalog fetch failed: %v, continuing with wardrobe only", userID, err)
		retailRaw = nil
	}

	if len(wardrobeRaw) == 0 && len(retailRaw) == 0 {
		return []OutfitCombination{}, EmptyPoolMessage, nil
	}

	type generated struct {
		combos []OutfitCombination
		err    error
	}
	done := make(chan generated, 1)
	go func() {
		combos, genErr := g.Generate(occasion, weather, wardrobeRaw, retailRaw, count, g.TrackerFor(userID))
		done <- generated{combos: combos, err: genErr}
	}()

	select {
	case result := <-done:
		if result.err != nil {
			return nil, "", result.err
		}
		if len(result.combos) == 0 {
			return result.combos, EmptyPoolMessage, nil
		}
		return result.combos, "", nil
	case <-time.After(g.GenerationBudget):
		// abandon the slow attempt, serve the generic set instead
		log.Printf("[Outfits %v] Generation exceeded %v budget, serving fallback set", userID, g.GenerationBudget)
		return FallbackCombinations(occasion, weather, g.NewRand()), "", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func (g *Generator) fetchWeather(ctx context.Context) WeatherContext {
	weather, err := fetchWithTimeout(ctx, g.FetchTimeout, func(ctx context.Context) (WeatherContext, error) {
		return g.Weather.GetRealTimeWeather(ctx)
	})
	if err != nil {
		log.Printf("[Outfits] Weather fetch failed: %v, substituting neutral default", err)
		return NeutralWeather()
	}
	if weather.Season == "" {
		weather.Season = SeasonFromMonth(time.Now().Month())
	}
	return weather
}

// fetchWithTimeout races fn against a timer. The underlying fetch is a pure
// read, so "stop waiting" without cancelling the work is acceptable.
func fetchWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := fn(ctx)
		done <- outcome{value: value, err: err}
	}()

	var zero T
	select {
	case result := <-done:
		return result.value, result.err
	case <-time.After(timeout):
		return zero, ErrDataFetchTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// FallbackCombinations is the rule-based generic set used when the scored
// pipeline yields nothing. Confidence sits at the relaxed base on purpose.
func FallbackCombinations(occasion string, weather WeatherContext, rng *rand.Rand) []OutfitCombination {
	tee := CandidateGarment{
		ID: "fallback-tee", Name: "White Cotton T-Shirt", Category: CategoryTop,
		Subcategory: "shirt", Color: "white", Origin: OriginRetail,
		Material: "cotton", MaterialProps: MaterialPropertiesFor("cotton"),
	}
	jeans := CandidateGarment{
		ID: "fallback-jeans", Name: "Blue Denim Jeans", Category: CategoryBottom,
		Subcategory: "pants", Color: "blue", Origin: OriginRetail,
		Material: "denim", MaterialProps: MaterialPropertiesFor("denim"),
	}
	sneakers := CandidateGarment{
		ID: "fallback-sneakers", Name: "White Sneakers", Category: CategoryShoes,
		Subcategory: "shoes", Color: "white", Origin: OriginRetail,
		Material: "cotton", MaterialProps: MaterialPropertiesFor("cotton"),
	}

	combo := OutfitCombination{
		ID:         fmt.Sprintf("outfit-fallback-%d", time.Now().UnixNano()),
		Items:      []CandidateGarment{tee, jeans, sneakers},
		Occasion:   occasion,
		Weather:    weather.DisplayString(),
		Confidence: relaxedBaseConfidence,
		Fallback:   true,
	}
	combo.ColorHarmony = DescribeHarmony(HarmonyNeutral, rng)
	combo.StyleNotes = []string{"A reliable go-to when nothing in the wardrobe fits the brief."}
	combo.FitAdvice = FitAdvice(occasion)
	combo.WhyItWorks = []string{
		"A white tee, jeans and sneakers work for almost any casual setting.",
		"Neutral colors pair with whatever you add on top.",
		"Comfortable across a wide range of weather.",
	}
	return []OutfitCombination{combo}
}
