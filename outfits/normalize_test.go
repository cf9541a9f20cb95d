package outfits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExplicitCategory(t *testing.T) {
	garment, err := Normalize(RawItem{
		ID:       "w-1",
		Name:     "Floral Midi",
		ImageURL: "wardrobe/1/floral.png",
		Category: "dress",
		Color:    "red",
	})
	require.NoError(t, err)
	assert.Equal(t, CategoryDress, garment.Category)
	assert.Equal(t, "dress", garment.Subcategory)
	assert.Equal(t, "red", garment.Color)
	assert.Equal(t, OriginWardrobe, garment.Origin)
}

func TestNormalizeKeywordClassification(t *testing.T) {
	cases := []struct {
		name        string
		category    Category
		subcategory string
	}{
		{"Navy Wool Blazer", CategoryOuterwear, "jacket"},
		{"Linen Shirt Dress", CategoryDress, "dress"},
		{"White Leather Sneakers", CategoryShoes, "shoes"},
		{"Slim Fit Chino", CategoryBottom, "pants"},
		{"Woven Leather Belt", CategoryAccessory, "accessory"},
		{"Merino Crew Knit", CategoryTop, "knitwear"},
		{"Classic Oxford Shirt", CategoryTop, "shirt"},
	}
	for _, c := range cases {
		garment, err := Normalize(RawItem{ID: "x", Name: c.name, ImageURL: "img.png"})
		require.NoError(t, err, c.name)
		assert.Equal(t, c.category, garment.Category, c.name)
		assert.Equal(t, c.subcategory, garment.Subcategory, c.name)
	}
}

func TestNormalizeOuterwearKeywordWinsOverBottom(t *testing.T) {
	// "track jacket" matches both the jacket and the track rule, the more
	// specific outerwear rule sits first
	garment, err := Normalize(RawItem{ID: "x", Name: "Retro Track Jacket", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.Equal(t, CategoryOuterwear, garment.Category)
}

func TestNormalizeUnmatchedLandsInTops(t *testing.T) {
	garment, err := Normalize(RawItem{ID: "x", Name: "Mystery Garment", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.Equal(t, CategoryTop, garment.Category)
	assert.Equal(t, "other", garment.Subcategory)
}

func TestNormalizeRejectsUnusableRecords(t *testing.T) {
	_, err := Normalize(RawItem{ID: "no-name", ImageURL: "img.png"})
	assert.Error(t, err)

	_, err = Normalize(RawItem{ID: "no-image", Name: "Nice Shirt"})
	assert.Error(t, err)
}

func TestNormalizeAllDropsAndCounts(t *testing.T) {
	pool, dropped := NormalizeAll([]RawItem{
		{ID: "ok", Name: "Blue Oxford Shirt", ImageURL: "img.png"},
		{ID: "bad", Name: ""},
		{ID: "bad2", Name: "No Image Shirt"},
	})
	assert.Len(t, pool, 1)
	assert.Equal(t, 2, dropped)
}

func TestNormalizeInfersColorFromName(t *testing.T) {
	garment, err := Normalize(RawItem{ID: "x", Name: "Forest Green Parka", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.Equal(t, "green", garment.Color)

	garment, err = Normalize(RawItem{ID: "y", Name: "Plain Overshirt", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.Equal(t, "neutral", garment.Color)
}

func TestNormalizeRetailOrigin(t *testing.T) {
	garment, err := Normalize(RawItem{
		ID:         "r-1",
		Name:       "Boxy Tee",
		ImageURL:   "img.png",
		ProductURL: "https://shop.example.com/boxy-tee",
	})
	require.NoError(t, err)
	assert.Equal(t, OriginRetail, garment.Origin)

	garment, err = Normalize(RawItem{ID: "r-2", Name: "Boxy Tee", ImageURL: "img.png", Source: "retail"})
	require.NoError(t, err)
	assert.Equal(t, OriginRetail, garment.Origin)
}

func TestNormalizeDeterministicWeatherDefaults(t *testing.T) {
	knit, err := Normalize(RawItem{ID: "k", Name: "Chunky Wool Knit", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.Equal(t, -5, knit.Weather.MinTemp)
	assert.Equal(t, 15, knit.Weather.MaxTemp)
	assert.False(t, containsSeason(knit.Weather.Seasons, SeasonSummer))

	sameAgain, err := Normalize(RawItem{ID: "k", Name: "Chunky Wool Knit", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.Equal(t, knit.Weather, sameAgain.Weather)
	assert.Equal(t, knit.Occasions, sameAgain.Occasions)
}

func TestNormalizeOccasionDefaults(t *testing.T) {
	blazer, err := Normalize(RawItem{ID: "b", Name: "Navy Wool Blazer", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.True(t, containsString(blazer.Occasions, "work"))
	assert.True(t, containsString(blazer.Occasions, "formal"))

	tee, err := Normalize(RawItem{ID: "t", Name: "Graphic Tee", ImageURL: "img.png"})
	require.NoError(t, err)
	assert.True(t, containsString(tee.Occasions, "casual"))
	assert.False(t, containsString(tee.Occasions, "formal"))

	shoes, err := Normalize(RawItem{ID: "s", Name: "Grey Suede Loafer", ImageURL: "img.png"})
	require.NoError(t, err)
	for _, occasion := range []string{"casual", "smart-casual", "work", "business", "date"} {
		assert.True(t, containsString(shoes.Occasions, occasion), occasion)
	}
}
