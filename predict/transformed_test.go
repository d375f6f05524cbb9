package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleamind/terroir/catalog"
)

func transformedCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		TransformationProfiles: map[string]catalog.TransformationProfile{
			"coffee_washed_light": {
				ID: "coffee_washed_light", PreservationStance: catalog.StancePreserves,
				FinalQualityLow: 80, FinalQualityHigh: 90,
			},
			"coffee_natural_light": {
				ID: "coffee_natural_light", PreservationStance: catalog.StanceEnhances,
				FinalQualityLow: 78, FinalQualityHigh: 92,
			},
			"coffee_dark_roast": {
				ID: "coffee_dark_roast", PreservationStance: catalog.StanceRisksMasking,
				FinalQualityLow: 70, FinalQualityHigh: 78,
			},
		},
	}
}

func highOriginProfile() catalog.Profile {
	low, high := 88.0, 95.0
	return catalog.Profile{OriginQualityLow: &low, OriginQualityHigh: &high}
}

func TestTransformedPredictor_EnhancesStancePassesOriginHighThrough(t *testing.T) {
	cat := transformedCatalog()
	p := &TransformedPredictor{}

	res, err := p.Predict(cat, Input{Category: catalog.CategoryTransformed, TransformationID: "coffee_natural_light"}, highOriginProfile())
	require.NoError(t, err)

	assert.Equal(t, 95.0, res.Primary.Value) // origin band's high end (95), transform range unused
}

func TestTransformedPredictor_PreservesStanceUsesOriginMidpoint(t *testing.T) {
	cat := transformedCatalog()
	p := &TransformedPredictor{}

	res, err := p.Predict(cat, Input{Category: catalog.CategoryTransformed, TransformationID: "coffee_washed_light"}, highOriginProfile())
	require.NoError(t, err)

	assert.InDelta(t, 91.5, res.Primary.Value, 0.0001) // (88+95)/2
}

func TestTransformedPredictor_RisksMaskingClipsToOriginLow(t *testing.T) {
	cat := transformedCatalog()
	p := &TransformedPredictor{}

	res, err := p.Predict(cat, Input{Category: catalog.CategoryTransformed, TransformationID: "coffee_dark_roast"}, highOriginProfile())
	require.NoError(t, err)

	assert.Equal(t, 88.0, res.Primary.Value) // clipped to origin band's own low end
	assert.Contains(t, res.Info.Warnings[0], "risks masking a premium origin")
}

func TestTransformedPredictor_UnknownTransformationFallsBackToOriginMidpoint(t *testing.T) {
	cat := transformedCatalog()
	p := &TransformedPredictor{}

	res, err := p.Predict(cat, Input{Category: catalog.CategoryTransformed, TransformationID: "ghost_method"}, highOriginProfile())
	require.NoError(t, err)

	assert.InDelta(t, 91.5, res.Primary.Value, 0.0001) // (88+95)/2
	assert.Equal(t, "artisan", res.Tier)
}
