package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"stylemateapi/models"
	"stylemateapi/outfits"
	"stylemateapi/services"
)

const freePlanDailyGenerationLimit = 3

type GenerateOutfitsIn struct {
	Occasion string `json:"occasion" validate:"required,occasion"`
	Count    int    `json:"count" validate:"omitempty,min=1,max=10"`
}

type GenerateOutfitsOut struct {
	Combinations []outfits.OutfitCombination `json:"combinations"`
	Message      string                      `json:"message,omitempty"`
}

type GenerationHistoryOut struct {
	ID           uint     `json:"id"`
	Occasion     string   `json:"occasion"`
	Weather      string   `json:"weather"`
	Confidence   int      `json:"confidence"`
	ItemIDs      []string `json:"item_ids"`
	UsedFallback bool     `json:"used_fallback"`
	CreatedAt    string   `json:"created_at"`
}

// dbWardrobeProvider feeds processed closet items into the outfit engine.
type dbWardrobeProvider struct {
	db *gorm.DB
}

func (p dbWardrobeProvider) GetUserWardrobe(ctx context.Context, userID uint) ([]outfits.RawItem, error) {
	var items []models.WardrobeItem
	if err := p.db.WithContext(ctx).Where("owner_id = ? and status = ?", userID, "in_closet").Find(&items).Error; err != nil {
		return nil, err
	}
	raw := make([]outfits.RawItem, 0, len(items))
	for _, item := range items {
		rawItem := outfits.RawItem{
			ID:       fmt.Sprintf("w-%d", item.ID),
			Name:     item.Name,
			Category: item.Category,
			Source:   "wardrobe",
			Tags:     item.Tags,
		}
		if item.ImageURL != nil {
			rawItem.ImageURL = *item.ImageURL
		}
		if item.Subcategory != nil {
			rawItem.Subcategory = *item.Subcategory
		}
		if item.Color != nil {
			rawItem.Color = *item.Color
		}
		if item.Brand != nil {
			rawItem.Brand = *item.Brand
		}
		raw = append(raw, rawItem)
	}
	return raw, nil
}

// dbCatalogProvider feeds active scraped retailer products into the engine.
type dbCatalogProvider struct {
	db *gorm.DB
}

func (p dbCatalogProvider) GetItems(ctx context.Context, categoryFilter string) ([]outfits.RawItem, error) {
	query := p.db.WithContext(ctx).Where("active = true")
	if categoryFilter != "" {
		query = query.Where("category = ?", categoryFilter)
	}
	var products []models.RetailerProduct
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	raw := make([]outfits.RawItem, 0, len(products))
	for _, product := range products {
		raw = append(raw, outfits.RawItem{
			ID:          fmt.Sprintf("r-%s", product.ExternalID),
			Name:        product.Name,
			ImageURL:    product.ImageURL,
			ProductURL:  product.ProductURL,
			Category:    product.Category,
			Color:       product.Color,
			Brand:       product.Brand,
			Source:      "retail",
			Tags:        product.Tags,
			Subcategory: "",
		})
	}
	return raw, nil
}

// envLocationWeatherProvider adapts the weather service to the engine
// interface using the deployment's configured coordinates.
type envLocationWeatherProvider struct {
	weather services.WeatherServiceProvider
}

func (p envLocationWeatherProvider) GetRealTimeWeather(ctx context.Context) (outfits.WeatherContext, error) {
	latitude, err := strconv.ParseFloat(services.GetEnv("WEATHER_LATITUDE", "40.4093"), 64)
	if err != nil {
		latitude = 40.4093
	}
	longitude, err := strconv.ParseFloat(services.GetEnv("WEATHER_LONGITUDE", "49.8671"), 64)
	if err != nil {
		longitude = 49.8671
	}
	return p.weather.CurrentWeather(ctx, latitude, longitude)
}

type OutfitsController struct {
	Generator *outfits.Generator
}

func NewOutfitsController(db *gorm.DB, weatherService services.WeatherServiceProvider) *OutfitsController {
	return &OutfitsController{
		Generator: outfits.NewGenerator(
			dbWardrobeProvider{db: db},
			dbCatalogProvider{db: db},
			envLocationWeatherProvider{weather: weatherService},
		),
	}
}

func (controller *OutfitsController) OutfitsRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfits)
	g.GET("/history", controller.GenerationHistory)
	g.POST("/reset-variety", controller.ResetVariety)
}

func (controller *OutfitsController) GenerateOutfits(c echo.Context) error {
	var req GenerateOutfitsIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	dailyLimit := int64(freePlanDailyGenerationLimit)
	limitEnforced := string(user.Subscription) == "free"
	if user.EnforcedDailyGenerationLimit != nil {
		dailyLimit = int64(*user.EnforcedDailyGenerationLimit)
		limitEnforced = true
	}
	if limitEnforced {
		var dailyGenerationCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.OutfitGenerationRecord{}).Where("owner_id = ? AND DATE(created_at) = ?", user.ID, today).Count(&dailyGenerationCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get generation data"})
		}
		fmt.Printf("[User %v] Daily generation count: %v limit %v", user.ID, dailyGenerationCount, dailyLimit)
		if dailyGenerationCount >= dailyLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily generations. Please wait for the next day.", dailyLimit)})
		}
	}

	count := req.Count
	if count == 0 {
		count = 3
	}

	combos, message, err := controller.Generator.GenerateForUser(c.Request().Context(), user.ID, req.Occasion, count)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate outfits, please try again"})
	}

	if len(combos) > 0 {
		record := models.OutfitGenerationRecord{
			OwnerID:      user.ID,
			Occasion:     req.Occasion,
			Weather:      combos[0].Weather,
			Confidence:   combos[0].Confidence,
			UsedFallback: combos[0].Fallback,
		}
		var itemIds []string
		for _, item := range combos[0].Items {
			itemIds = append(itemIds, item.ID)
		}
		record.ItemIDs = pq.StringArray(itemIds)
		if encoded, encodeErr := json.Marshal(combos); encodeErr == nil {
			record.ResponseJSON = StrPointer(string(encoded))
		}
		if err := db.Create(&record).Error; err != nil {
			// history is best effort, the generated outfits still go out
			sentry.CaptureException(err)
			fmt.Println("Failed to persist generation record for user", user.ID, err)
		}
	}

	return c.JSON(http.StatusOK, GenerateOutfitsOut{
		Combinations: combos,
		Message:      message,
	})
}

func (controller *OutfitsController) GenerationHistory(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var records []models.OutfitGenerationRecord
	if err := db.Where("owner_id = ?", user.ID).Order("created_at desc").Limit(20).Find(&records).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch generation history"})
	}

	history := make([]GenerationHistoryOut, 0, len(records))
	for _, record := range records {
		history = append(history, GenerationHistoryOut{
			ID:           record.ID,
			Occasion:     record.Occasion,
			Weather:      record.Weather,
			Confidence:   record.Confidence,
			ItemIDs:      record.ItemIDs,
			UsedFallback: record.UsedFallback,
			CreatedAt:    record.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"history": history,
	})
}

func (controller *OutfitsController) ResetVariety(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	controller.Generator.ResetTracker(user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "variety history cleared",
	})
}
