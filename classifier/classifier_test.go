package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleamind/terroir/catalog"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return cat
}

func TestClassify_SilenceRoutesToMarketingGrass(t *testing.T) {
	c := New(loadCatalog(t))

	res, err := c.Classify(catalog.CategoryLivestock, []string{"grass-fed"})
	require.NoError(t, err)

	assert.Equal(t, "MARKETING_GRASS", res.Profile.Code)
	assert.Contains(t, res.Warnings, "says 'grass-fed' but no finishing claim")
}

func TestClassify_ExplicitCAFOExclusionRoutesToTrueGrass(t *testing.T) {
	c := New(loadCatalog(t))

	res, err := c.Classify(catalog.CategoryLivestock, []string{"100% grass-fed", "grass-finished"})
	require.NoError(t, err)

	assert.Equal(t, "TRUE_GRASS_FED", res.Profile.Code)
}

func TestClassify_PremiumMarketingDoesNotImplyHealth(t *testing.T) {
	c := New(loadCatalog(t))

	res, err := c.Classify(catalog.CategoryLivestock, []string{"American Wagyu", "Prime"})
	require.NoError(t, err)

	assert.Equal(t, "PREMIUM_CAFO", res.Profile.Code)
	assert.Contains(t, res.Warnings, "price does not imply health")
}

func TestClassify_NoClaimsReturnsDefault(t *testing.T) {
	c := New(loadCatalog(t))

	res, err := c.Classify(catalog.CategoryLivestock, nil)
	require.NoError(t, err)

	assert.True(t, res.Profile.IsDefault)
	assert.Equal(t, "CONVENTIONAL_CAFO", res.Profile.Code)
}

func TestClassify_OrganicWithoutGrassWarns(t *testing.T) {
	c := New(loadCatalog(t))

	res, err := c.Classify(catalog.CategoryLivestock, []string{"organic"})
	require.NoError(t, err)

	assert.Contains(t, res.Warnings, "organic does not imply grass-fed; it only constrains feed inputs")
}

func TestClassify_UnknownCategoryErrors(t *testing.T) {
	c := New(loadCatalog(t))

	_, err := c.Classify(catalog.Category("not-a-category"), []string{"anything"})
	assert.Error(t, err)
}
