package tasks

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stylemateapi/models"
	"stylemateapi/services"
	"stylemateapi/telegram"
)

const (
	TypeWardrobeItemProcessing = "wardrobe:process_item"
	TypeCatalogRefresh         = "catalog:refresh"
)

type WardrobeItemProcessingPayload struct {
	ItemID uint `json:"item_id"`
}

type CatalogRefreshPayload struct {
	RetailerID string `json:"retailer_id"`
}

func NewWardrobeItemProcessingTask(itemId uint) (*asynq.Task, error) {
	payload, err := json.Marshal(WardrobeItemProcessingPayload{ItemID: itemId})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWardrobeItemProcessing, payload), nil
}

func NewCatalogRefreshTask(retailerId string) (*asynq.Task, error) {
	payload, err := json.Marshal(CatalogRefreshPayload{RetailerID: retailerId})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCatalogRefresh, payload), nil
}

func getFileForItem(awsService services.AWSServiceProvider, item models.WardrobeItem) ([]byte, string, error) {
	bucketName := os.Getenv("R2_BUCKET_NAME")
	fmt.Printf("[Item: %v] Request presigned download url..\n", item.ID)
	if item.ImageURL == nil {
		return nil, "", fmt.Errorf("[Item: %v] Image URL is nil", item.ID)
	}
	fileUrl, err := awsService.GetPresignedR2FileReadURL(context.TODO(), bucketName, *item.ImageURL)
	fileName := *item.ImageURL
	if idx := strings.LastIndex(fileName, "/"); idx >= 0 {
		fileName = fileName[idx+1:]
	}
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting presigned URL for file %s", item.ID, *item.ImageURL))
		return nil, fileName, err
	}
	fmt.Printf("Downloading... %s\n", fileUrl)
	fileBytes, err := services.ReadFileFromUrl(fileUrl)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on downloading file %s: %v", item.ID, *item.ImageURL, err))
		return nil, fileName, err
	}

	return fileBytes, fileName, nil
}

func saveItemProcessingFail(db *gorm.DB, item models.WardrobeItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	if !shouldRetry || item.ProcessRetryTimes >= 3 {
		item.ProcessingStatus = "failed"
	}
	tx := db.Omit("alert_when_processed").Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] Error on saving item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

// HandleProcessWardrobeItemTask runs the photo pipeline for one uploaded
// garment: download, whiten the background, classify with the vision model,
// fill the missing attributes, notify the user.
func HandleProcessWardrobeItemTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, vision services.VisionProvider,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	google_key := os.Getenv("GOOGLE_API_KEY")
	if google_key == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload WardrobeItemProcessingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Item: %v] Start Processing\n", payload.ItemID)
	var item models.WardrobeItem
	res := db.First(&item, payload.ItemID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving wardrobe item for processing %v", payload.ItemID))
		return res.Error
	}
	if item.ProcessingStatus == "completed" {
		fmt.Printf("[Item: %v] Already processed\n", payload.ItemID)
		return nil
	}

	fileBytes, fileName, err := getFileForItem(awsService, item)
	if err != nil {
		saveItemProcessingFail(db, item, "Failed to read item photo, please try to upload it again", true)
		return err
	}
	fmt.Printf("[Item: %v] Downloaded file size: %d bytes\n", payload.ItemID, len(fileBytes))

	whitenedBytes, err := services.WhitenGarmentBackground(fileBytes, 200, 240, 0.5)
	if err != nil {
		// classification still works on the original photo
		fmt.Printf("[Item: %v] Background whitening failed: %v, keeping original image\n", payload.ItemID, err)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Background whitening failed: %v", payload.ItemID, err))
		whitenedBytes = fileBytes
	} else {
		bucketName := services.GetEnv("R2_BUCKET_NAME", "")
		uploadUrl, presignErr := awsService.PresignLink(context.Background(), bucketName, *item.ImageURL)
		if presignErr != nil {
			sentry.CaptureException(presignErr)
		} else {
			respBody, statusCode, uploadErr := awsService.UploadToPresignedURL(context.Background(), bucketName, uploadUrl, whitenedBytes)
			fmt.Printf("[Item: %v] R2 re-upload whitened image size %v, response body: %s, status code: %d\n", payload.ItemID, len(whitenedBytes), respBody, statusCode)
			if uploadErr != nil || statusCode != 200 {
				sentry.CaptureException(fmt.Errorf("[Item: %v] Error re-uploading whitened image: %v", payload.ItemID, uploadErr))
			}
		}
	}

	filePath, err := services.CreateTempFile(whitenedBytes, fileName)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on creating temp file %s: %v", payload.ItemID, fileName, err))
		saveItemProcessingFail(db, item, "Failed to process item photo, please try again", true)
		return err
	}
	defer os.Remove(filePath)

	visionResult, err := vision.ClassifyGarment(filePath, services.Flash25)
	if err != nil {
		if strings.Contains(err.Error(), "content violation") {
			saveItemProcessingFail(db, item, "Sorry, it seems that this photo contains content that we cannot process.", false)
			sentry.CaptureException(fmt.Errorf("[Item: %v] Content violation on classifying photo %s: %v", payload.ItemID, *item.ImageURL, err))
			return nil
		}
		saveItemProcessingFail(db, item, "Failed to analyze item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on classifying photo %s: %v", payload.ItemID, *item.ImageURL, err))
		return err
	}
	if visionResult == nil {
		saveItemProcessingFail(db, item, "Failed to analyze item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Classification is nil but no error provided %s", payload.ItemID, *item.ImageURL))
		return fmt.Errorf("[Item: %v] Classification is nil but no error provided %s", payload.ItemID, *item.ImageURL)
	}
	if visionResult.Category == "other" {
		saveItemProcessingFail(db, item, "We couldn't find a clothing item on this photo, please try another one", false)
		return nil
	}

	// user-provided attributes win, the model fills the gaps
	if item.Name == "" {
		item.Name = visionResult.Name
	}
	if item.Category == "" {
		item.Category = visionResult.Category
	}
	if item.Subcategory == nil && visionResult.Subcategory != "" {
		item.Subcategory = services.StrPointer(visionResult.Subcategory)
	}
	if item.Color == nil && visionResult.Color != "" {
		item.Color = services.StrPointer(visionResult.Color)
	}
	if item.Material == nil && visionResult.Material != "" {
		item.Material = services.StrPointer(visionResult.Material)
	}
	if len(item.Tags) == 0 && len(visionResult.Tags) > 0 {
		item.Tags = pq.StringArray(visionResult.Tags)
	}
	item.ImageStatus = "uploaded"
	item.ProcessingStatus = "completed"
	item.ProcessErrorMessage = nil
	tx := db.Omit("alert_when_processed").Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving wardrobe item %v", payload.ItemID))
		return tx.Error
	}
	fmt.Printf("[Item: %v] Processing finished successfully..\n", payload.ItemID)
	if item.AlertWhenProcessed {
		fmt.Printf("[Item: %v] Sending notification to user %v\n", payload.ItemID, item.OwnerID)
		services.SendNotification(fbApp, db, item.OwnerID, "Item Added to Closet", fmt.Sprintf("Your item %s is ready for outfit suggestions", item.Name), map[string]string{"item_id": fmt.Sprintf("%d", item.ID), "type": "item_processed"})
	}
	return nil
}

// catalogFeedProduct is a single row of the retailer JSON feed.
type catalogFeedProduct struct {
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	Price      *float64 `json:"price"`
	Currency   string   `json:"currency"`
	ImageURL   string   `json:"image_url"`
	ProductURL string   `json:"product_url"`
	Color      string   `json:"color"`
	Tags       []string `json:"tags"`
}

// categoryKeywords maps feed subcategory paths onto the garment taxonomy.
// Order matters: outerwear keywords fire before the generic top ones.
var categoryKeywords = []struct {
	keywords []string
	category string
}{
	{[]string{"jacket", "coat", "blazer", "knitwear", "sweater", "cardigan", "hoodie"}, "outerwear"},
	{[]string{"dress"}, "dress"},
	{[]string{"shoe", "sneaker", "boot", "loafer", "heel", "sandal"}, "shoes"},
	{[]string{"jean", "pant", "trouser", "short", "skirt", "chino"}, "bottoms"},
	{[]string{"belt", "bag", "hat", "cap", "scarf", "sock", "accessor", "jewel", "sunglass"}, "accessories"},
	{[]string{"shirt", "tee", "top", "polo", "blouse"}, "tops"},
}

func categoryForSubcategory(subcategory string) string {
	lowered := strings.ToLower(subcategory)
	for _, rule := range categoryKeywords {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.category
			}
		}
	}
	return "tops"
}

func fetchCatalogPage(feedURL, subcategory string, page int) ([]catalogFeedProduct, error) {
	url := fmt.Sprintf("%s?subcategory=%s&page=%d", feedURL, subcategory, page)
	body, err := services.ReadFileFromUrl(url)
	if err != nil {
		return nil, err
	}
	var products []catalogFeedProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog feed page: %v", err)
	}
	return products, nil
}

// HandleCatalogRefreshTask walks every subcategory of the retailer feed page
// by page until an empty page, and upserts products keyed on the md5 of
// their product URL.
func HandleCatalogRefreshTask(ctx context.Context, t *asynq.Task, db *gorm.DB) error {
	var payload CatalogRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	feedURL := services.GetEnv("CATALOG_FEED_URL", "")
	if feedURL == "" {
		sentry.CaptureException(fmt.Errorf("[Catalog] CATALOG_FEED_URL is not set"))
		return fmt.Errorf("[Catalog] CATALOG_FEED_URL is not set")
	}
	retailerName := services.GetEnv("CATALOG_RETAILER_NAME", "Country Road")
	retailerId := payload.RetailerID
	if retailerId == "" {
		retailerId = "countryroad"
	}

	subcategories := []string{
		"shirts", "t-shirts", "polos", "knitwear", "jackets-coats",
		"jeans", "pants", "shorts", "dresses", "skirts", "shoes", "accessories",
	}

	totalUpserted := 0
	failedSubcategories := []string{}
	startedAt := time.Now()
	for _, subcategory := range subcategories {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		category := categoryForSubcategory(subcategory)
		for page := 1; ; page++ {
			products, err := fetchCatalogPage(feedURL, subcategory, page)
			if err != nil {
				fmt.Printf("[Catalog] %s page %d fetch failed: %v\n", subcategory, page, err)
				sentry.CaptureException(fmt.Errorf("[Catalog] %s page %d fetch failed: %v", subcategory, page, err))
				failedSubcategories = append(failedSubcategories, subcategory)
				break
			}
			if len(products) == 0 {
				break
			}
			for _, product := range products {
				if product.ProductURL == "" || product.Name == "" {
					continue
				}
				externalId := fmt.Sprintf("%x", md5.Sum([]byte(product.ProductURL)))
				row := models.RetailerProduct{
					ExternalID:   externalId,
					Name:         product.Name,
					Brand:        product.Brand,
					Price:        product.Price,
					Currency:     product.Currency,
					ImageURL:     product.ImageURL,
					ProductURL:   product.ProductURL,
					Category:     category,
					Color:        strings.ToLower(product.Color),
					Tags:         pq.StringArray(product.Tags),
					RetailerID:   retailerId,
					RetailerName: retailerName,
					ScrapedAt:    time.Now(),
					Active:       true,
				}
				result := db.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "external_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"name", "brand", "price", "currency", "image_url",
						"category", "color", "tags", "scraped_at", "active",
					}),
				}).Create(&row)
				if result.Error != nil {
					sentry.CaptureException(fmt.Errorf("[Catalog] Failed to upsert product %s: %v", externalId, result.Error))
					continue
				}
				totalUpserted++
			}
			fmt.Printf("[Catalog] %s page %d: %d products\n", subcategory, page, len(products))
		}
	}

	// products missing for a while are no longer on the retailer site
	stale := db.Model(&models.RetailerProduct{}).
		Where("retailer_id = ? and scraped_at < ?", retailerId, startedAt.Add(-72*time.Hour)).
		Update("active", false)
	if stale.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Catalog] Failed to deactivate stale products: %v", stale.Error))
	}

	summary := fmt.Sprintf("Catalog refresh %s: %d products upserted, %d deactivated in %v",
		retailerName, totalUpserted, stale.RowsAffected, time.Since(startedAt).Round(time.Second))
	if len(failedSubcategories) > 0 {
		summary += fmt.Sprintf(", failed subcategories: %s", strings.Join(failedSubcategories, ", "))
	}
	fmt.Println("[Catalog]", summary)
	telegram.SendAdminMessage(summary)
	return nil
}
