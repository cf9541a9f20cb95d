package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"

	"stylemateapi/outfits"
)

const weatherCacheTTL = 10 * time.Minute

type WeatherServiceProvider interface {
	CurrentWeather(ctx context.Context, latitude, longitude float64) (outfits.WeatherContext, error)
}

// OpenMeteoWeatherService fetches current conditions from the Open-Meteo
// forecast API and caches them per coordinate pair.
type OpenMeteoWeatherService struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache[string]
}

type openMeteoCurrent struct {
	Temperature      float64 `json:"temperature_2m"`
	RelativeHumidity int     `json:"relative_humidity_2m"`
	WeatherCode      int     `json:"weather_code"`
}

type openMeteoResponse struct {
	Current openMeteoCurrent `json:"current"`
}

func NewOpenMeteoWeatherService() (*OpenMeteoWeatherService, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &OpenMeteoWeatherService{
		baseURL: GetEnv("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast"),
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache.New[string](ristretto_store.NewRistretto(ristrettoCache)),
	}, nil
}

func conditionFromCode(code int) outfits.Condition {
	switch {
	case code == 0:
		return outfits.ConditionSunny
	case code == 1 || code == 2:
		return outfits.ConditionPartlyCloudy
	case code == 3 || code == 45 || code == 48:
		return outfits.ConditionCloudy
	case code >= 51:
		// drizzle, rain and snow codes all call for water resistance
		return outfits.ConditionRainy
	default:
		return outfits.ConditionCloudy
	}
}

func (ws *OpenMeteoWeatherService) CurrentWeather(ctx context.Context, latitude, longitude float64) (outfits.WeatherContext, error) {
	cacheKey := fmt.Sprintf("weather:%.2f:%.2f", latitude, longitude)
	if cached, err := ws.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var weather outfits.WeatherContext
		if err := json.Unmarshal([]byte(cached), &weather); err == nil {
			return weather, nil
		}
	}

	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current=temperature_2m,relative_humidity_2m,weather_code",
		ws.baseURL, latitude, longitude)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return outfits.NeutralWeather(), fmt.Errorf("failed to create weather request: %v", err)
	}
	resp, err := ws.client.Do(req)
	if err != nil {
		return outfits.NeutralWeather(), fmt.Errorf("failed to fetch weather: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return outfits.NeutralWeather(), fmt.Errorf("weather API status code: %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return outfits.NeutralWeather(), fmt.Errorf("failed to decode weather response: %v", err)
	}

	weather := outfits.WeatherContext{
		Temperature: int(payload.Current.Temperature),
		Condition:   conditionFromCode(payload.Current.WeatherCode),
		Humidity:    payload.Current.RelativeHumidity,
		Season:      outfits.SeasonFromMonth(time.Now().Month()),
	}

	if encoded, err := json.Marshal(weather); err == nil {
		if err := ws.cache.Set(ctx, cacheKey, string(encoded), store.WithExpiration(weatherCacheTTL)); err != nil {
			log.Printf("Failed to cache weather for %s: %v", cacheKey, err)
		}
	}

	return weather, nil
}
