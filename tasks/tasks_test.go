package tasks

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"stylemateapi/dbhelper"
	"stylemateapi/models"
	"stylemateapi/services"
	"stylemateapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 120, B: 220, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessWardrobeItemTaskOk(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-key")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	imageBytes := testImageBytes(t)
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(imageBytes)
	}))
	defer mockServer.Close()

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
		ImageURL:         test.NewRefString(fmt.Sprintf("wardrobe/%v/test.png", user.ID)),
	}
	require.NoError(t, db.Create(&item).Error)

	fakeTask, err := NewWardrobeItemProcessingTask(item.ID)
	require.NoError(t, err)
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleProcessWardrobeItemTask(context.Background(), fakeTask, db, test.VisionMock{}, awsServiceMock, nil)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, "completed", updated.ProcessingStatus)
	assert.Equal(t, "uploaded", updated.ImageStatus)
	assert.Equal(t, "Blue Oxford Shirt", updated.Name)
	assert.Equal(t, "tops", updated.Category)
	require.NotNil(t, updated.Color)
	assert.Equal(t, "blue", *updated.Color)
	assert.Nil(t, updated.ProcessErrorMessage)
}

func TestProcessWardrobeItemKeepsUserAttributes(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-key")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	imageBytes := testImageBytes(t)
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer mockServer.Close()

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Name:             "My Favourite Shirt",
		Category:         "tops",
		Color:            test.NewRefString("washed indigo"),
		Status:           "in_closet",
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
		ImageURL:         test.NewRefString(fmt.Sprintf("wardrobe/%v/fav.png", user.ID)),
	}
	require.NoError(t, db.Create(&item).Error)

	fakeTask, err := NewWardrobeItemProcessingTask(item.ID)
	require.NoError(t, err)

	err = HandleProcessWardrobeItemTask(context.Background(), fakeTask, db, test.VisionMock{}, &test.AWSProviderMock{MockUrl: mockServer.URL}, nil)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, "My Favourite Shirt", updated.Name)
	assert.Equal(t, "washed indigo", *updated.Color)
	// gaps are still filled from the classification
	require.NotNil(t, updated.Material)
	assert.Equal(t, "cotton", *updated.Material)
}

func TestProcessWardrobeItemNoGarmentOnPhoto(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-key")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	imageBytes := testImageBytes(t)
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer mockServer.Close()

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
		ImageURL:         test.NewRefString(fmt.Sprintf("wardrobe/%v/cat.png", user.ID)),
	}
	require.NoError(t, db.Create(&item).Error)

	fakeTask, err := NewWardrobeItemProcessingTask(item.ID)
	require.NoError(t, err)
	visionMock := test.VisionMock{Result: &services.GarmentVisionResult{Name: "Cat", Category: "other"}}

	// no retry for a photo with no clothing on it
	err = HandleProcessWardrobeItemTask(context.Background(), fakeTask, db, visionMock, &test.AWSProviderMock{MockUrl: mockServer.URL}, nil)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, "failed", updated.ProcessingStatus)
	require.NotNil(t, updated.ProcessErrorMessage)
	assert.Contains(t, *updated.ProcessErrorMessage, "couldn't find a clothing item")
}

func TestProcessWardrobeItemRetryCap(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-key")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	imageBytes := testImageBytes(t)
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer mockServer.Close()

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
		ImageURL:         test.NewRefString(fmt.Sprintf("wardrobe/%v/flaky.png", user.ID)),
	}
	require.NoError(t, db.Create(&item).Error)

	fakeTask, err := NewWardrobeItemProcessingTask(item.ID)
	require.NoError(t, err)
	visionMock := test.VisionMock{Err: errors.New("model unavailable")}

	for i := 0; i < 2; i++ {
		err = HandleProcessWardrobeItemTask(context.Background(), fakeTask, db, visionMock, &test.AWSProviderMock{MockUrl: mockServer.URL}, nil)
		assert.Error(t, err)

		var updated models.WardrobeItem
		require.NoError(t, db.First(&updated, item.ID).Error)
		assert.Equal(t, "pending", updated.ProcessingStatus)
		assert.Equal(t, i+1, updated.ProcessRetryTimes)
	}

	err = HandleProcessWardrobeItemTask(context.Background(), fakeTask, db, visionMock, &test.AWSProviderMock{MockUrl: mockServer.URL}, nil)
	assert.Error(t, err)

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, "failed", updated.ProcessingStatus)
	assert.Equal(t, 3, updated.ProcessRetryTimes)
}

func TestProcessWardrobeItemMissingAPIKey(t *testing.T) {
	original := os.Getenv("GOOGLE_API_KEY")
	os.Unsetenv("GOOGLE_API_KEY")
	defer os.Setenv("GOOGLE_API_KEY", original)

	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	fakeTask, err := NewWardrobeItemProcessingTask(1)
	require.NoError(t, err)

	err = HandleProcessWardrobeItemTask(context.Background(), fakeTask, db, test.VisionMock{}, &test.AWSProviderMock{}, nil)
	assert.Error(t, err)
}

func TestCatalogRefreshTask(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	productURL := "https://shop.example.com/p/relaxed-oxford-shirt"
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subcategory := r.URL.Query().Get("subcategory")
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		if subcategory == "shirts" && page == "1" {
			json.NewEncoder(w).Encode([]catalogFeedProduct{
				{
					Name:       "Relaxed Oxford Shirt",
					Brand:      "Country Road",
					Currency:   "AUD",
					ImageURL:   "https://cdn.example.com/shirt.jpg",
					ProductURL: productURL,
					Color:      "White",
					Tags:       []string{"new"},
				},
				{
					// rows without a product URL are skipped
					Name: "Broken Row",
				},
			})
			return
		}
		w.Write([]byte("[]"))
	}))
	defer feedServer.Close()
	os.Setenv("CATALOG_FEED_URL", feedServer.URL)
	defer os.Unsetenv("CATALOG_FEED_URL")

	// a product no longer present in the feed goes inactive after 72h
	staleRow := models.RetailerProduct{
		ExternalID:   "stale-external-id",
		Name:         "Discontinued Chino",
		ProductURL:   "https://shop.example.com/p/discontinued-chino",
		Category:     "bottoms",
		RetailerID:   "countryroad",
		RetailerName: "Country Road",
		ScrapedAt:    time.Now().Add(-100 * time.Hour),
		Active:       true,
	}
	require.NoError(t, db.Create(&staleRow).Error)

	fakeTask, err := NewCatalogRefreshTask("countryroad")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, HandleCatalogRefreshTask(context.Background(), fakeTask, db))
	}

	var products []models.RetailerProduct
	expectedId := fmt.Sprintf("%x", md5.Sum([]byte(productURL)))
	require.NoError(t, db.Where("external_id = ?", expectedId).Find(&products).Error)
	require.Len(t, products, 1, "re-running the refresh must upsert, not duplicate")
	product := products[0]
	assert.Equal(t, "Relaxed Oxford Shirt", product.Name)
	assert.Equal(t, "tops", product.Category)
	assert.Equal(t, "white", product.Color)
	assert.True(t, product.Active)

	var stale models.RetailerProduct
	require.NoError(t, db.Where("external_id = ?", "stale-external-id").Take(&stale).Error)
	assert.False(t, stale.Active)
}

func TestCatalogRefreshRequiresFeedURL(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Unsetenv("CATALOG_FEED_URL")

	fakeTask, err := NewCatalogRefreshTask("")
	require.NoError(t, err)

	assert.Error(t, HandleCatalogRefreshTask(context.Background(), fakeTask, db))
}

func TestCategoryForSubcategory(t *testing.T) {
	assert.Equal(t, "tops", categoryForSubcategory("t-shirts"))
	assert.Equal(t, "outerwear", categoryForSubcategory("jackets-coats"))
	assert.Equal(t, "outerwear", categoryForSubcategory("knitwear"))
	assert.Equal(t, "bottoms", categoryForSubcategory("jeans"))
	assert.Equal(t, "dress", categoryForSubcategory("dresses"))
	assert.Equal(t, "shoes", categoryForSubcategory("shoes"))
	assert.Equal(t, "accessories", categoryForSubcategory("accessories"))
	assert.Equal(t, "tops", categoryForSubcategory("mystery"))
}
