package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleamind/terroir/catalog"
)

func TestHoneyPredictor_RawVsProcessedDiastase(t *testing.T) {
	p := &HoneyPredictor{}

	raw, err := p.Predict(nil, Input{Category: catalog.CategoryHoney, Varietal: "manuka", IsRaw: true}, catalog.Profile{})
	require.NoError(t, err)
	processed, err := p.Predict(nil, Input{Category: catalog.CategoryHoney, Varietal: "manuka", IsRaw: false}, catalog.Profile{})
	require.NoError(t, err)

	assert.Equal(t, 13.0, raw.Primary.Value)    // 10 baseline + 3 raw bonus
	assert.Equal(t, 5.0, processed.Primary.Value) // 10 baseline - 5 processing penalty
	assert.Greater(t, raw.Primary.Value, processed.Primary.Value)
}

func TestHoneyPredictor_UnknownVarietalFallsBackToBlended(t *testing.T) {
	p := &HoneyPredictor{}
	res, err := p.Predict(nil, Input{Category: catalog.CategoryHoney, Varietal: "unheard-of", IsRaw: true}, catalog.Profile{})
	require.NoError(t, err)
	assert.Equal(t, 11.0, res.Primary.Value) // blended baseline 8 + 3 raw bonus
}

func TestHoneyPredictor_HighMoistureWarnsFermentationRisk(t *testing.T) {
	p := &HoneyPredictor{}
	res, err := p.Predict(nil, Input{Category: catalog.CategoryHoney, Varietal: "clover", MoisturePct: 21}, catalog.Profile{})
	require.NoError(t, err)
	assert.Contains(t, res.Info.Warnings, "fermentation risk: moisture at or above 20%")
}

func TestHoneyPredictor_TierThresholds(t *testing.T) {
	p := &HoneyPredictor{}

	sourwood, err := p.Predict(nil, Input{Category: catalog.CategoryHoney, Varietal: "sourwood", IsRaw: true}, catalog.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "artisan", sourwood.Tier) // 20 + 3 = 23 >= 20

	blended, err := p.Predict(nil, Input{Category: catalog.CategoryHoney, Varietal: "blended", IsRaw: false}, catalog.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "commodity", blended.Tier) // 8 - 5 = 3 < 8
}
