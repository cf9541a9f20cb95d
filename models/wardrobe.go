package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator"
	"github.com/lib/pq"
)

type WardrobeItem struct {
	JsonModel
	Name        string         `json:"name"`
	Description *string        `gorm:"type:text" json:"description"`
	Category    string         `json:"category"` // tops, bottoms, outerwear, dress, shoes, accessories
	Subcategory *string        `json:"subcategory"`
	Color       *string        `json:"color"`
	Brand       *string        `json:"brand"`
	Material    *string        `json:"material"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Owner       UserAccount    `json:"-"`
	OwnerID     uint           `json:"-"`
	Status      string         `json:"status"`       // temporary, in_closet
	ImageStatus string         `json:"image_status"` // draft, uploaded
	// vision classification lifecycle
	ProcessingStatus    string  `json:"processing_status"` // idle, pending, completed, failed
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
	// file **key** in storage
	ImageURL           *string `json:"image_url"`
	AlertWhenProcessed bool    `json:"alert_when_processed"`
}

// RetailerProduct is one scraped catalog row, upserted by the worker keyed on
// the md5 of the product URL.
type RetailerProduct struct {
	JsonModel
	ExternalID   string         `gorm:"uniqueIndex" json:"external_id"`
	Name         string         `json:"name"`
	Brand        string         `json:"brand"`
	Price        *float64       `json:"price"`
	Currency     string         `json:"currency"`
	ImageURL     string         `json:"image_url"`
	ProductURL   string         `json:"product_url"`
	Category     string         `json:"category"`
	Color        string         `json:"color"`
	Tags         pq.StringArray `gorm:"type:text[]" json:"tags"`
	RetailerID   string         `json:"retailer_id"`
	RetailerName string         `json:"retailer_name"`
	ScrapedAt    time.Time      `json:"scraped_at"`
	Active       bool           `gorm:"default:true" json:"active"`
}

// OutfitGenerationRecord is the compact history row the API layer keeps per
// generation call. The engine itself persists nothing.
type OutfitGenerationRecord struct {
	JsonModel
	Owner        UserAccount    `json:"-"`
	OwnerID      uint           `json:"-"`
	Occasion     string         `json:"occasion"`
	Weather      string         `json:"weather"`
	Confidence   int            `json:"confidence"`
	ItemIDs      pq.StringArray `gorm:"type:text[]" json:"item_ids"`
	UsedFallback bool           `json:"used_fallback"`
	ResponseJSON *string        `gorm:"type:text" json:"-"`
}

func ValidateGarmentCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	matched, _ := regexp.MatchString("^(tops|bottoms|outerwear|dress|shoes|accessories)$", value)
	return matched
}

func ValidateOccasion(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	matched, _ := regexp.MatchString("^(casual|smart-casual|work|business|formal|date|party)$", value)
	return matched
}
