package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oleamind/terroir/catalog"
)

func TestTierForBrix(t *testing.T) {
	table := catalog.BrixTierTable{Artisan: 14, Premium: 12, Standard: 10}
	assert.Equal(t, "artisan", TierForBrix(table, 14))
	assert.Equal(t, "premium", TierForBrix(table, 12))
	assert.Equal(t, "standard", TierForBrix(table, 10))
	assert.Equal(t, "commodity", TierForBrix(table, 5))
}

func TestTierDescending(t *testing.T) {
	assert.Equal(t, "artisan", TierDescending(3, 6, 13, 3))
	assert.Equal(t, "premium", TierDescending(3, 6, 13, 6))
	assert.Equal(t, "standard", TierDescending(3, 6, 13, 13))
	assert.Equal(t, "commodity", TierDescending(3, 6, 13, 20))
}

func TestQualityScoreFromTier(t *testing.T) {
	assert.Equal(t, 75.0, QualityScoreFromTier("artisan", 0))
	assert.Equal(t, 100.0, QualityScoreFromTier("artisan", 1))
	assert.Equal(t, 62.5, QualityScoreFromTier("premium", 0.5))
	assert.Equal(t, 0.0, QualityScoreFromTier("commodity", 0))
}

func TestQualityScoreFromTier_ClampsFraction(t *testing.T) {
	assert.Equal(t, 75.0, QualityScoreFromTier("artisan", -1))
	assert.Equal(t, 100.0, QualityScoreFromTier("artisan", 5))
}

func TestCompareUSDA(t *testing.T) {
	cat := &catalog.Catalog{USDAMinima: map[string]catalog.USDAMinimum{
		"orange": {Crop: "orange", MinValue: 10, GradeLevel: "grade_a"},
	}}

	exceeds, delta, ok := CompareUSDA(cat, "orange", 11.5)
	assert.True(t, ok)
	assert.True(t, exceeds)
	assert.InDelta(t, 1.5, delta, 0.0001)

	_, _, ok = CompareUSDA(cat, "unregistered", 5)
	assert.False(t, ok)
}
