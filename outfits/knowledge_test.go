package outfits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterialPropertiesLookup(t *testing.T) {
	wool := MaterialPropertiesFor("wool")
	assert.Equal(t, 9, wool.Warmth)
	assert.False(t, containsSeason(wool.Seasons, SeasonSummer))

	// unknown fabrics read as cotton
	unknown := MaterialPropertiesFor("unobtanium")
	assert.Equal(t, MaterialPropertiesFor("cotton"), unknown)
}

func TestInferMaterial(t *testing.T) {
	assert.Equal(t, "cashmere", InferMaterial("Cotton Cashmere Jumper"))
	assert.Equal(t, "denim", InferMaterial("Slim Fit Jeans"))
	assert.Equal(t, "linen", InferMaterial("Relaxed Linen Shirt"))
	assert.Equal(t, "cotton", InferMaterial("Plain Overshirt"))
}

func TestColorFormality(t *testing.T) {
	assert.Equal(t, FormalityFormal, ColorFormality("black", "navy"))
	assert.Equal(t, FormalityCasual, ColorFormality("black", "red"))
	assert.Equal(t, FormalityCasual, ColorFormality())
}

func TestColorSeasonality(t *testing.T) {
	assert.Equal(t, []Season{SeasonSpring, SeasonSummer}, ColorSeasonality("pastel pink"))
	assert.Equal(t, []Season{SeasonAutumn, SeasonWinter}, ColorSeasonality("deep burgundy"))
	assert.Equal(t, allSeasons, ColorSeasonality("blue"))
}
