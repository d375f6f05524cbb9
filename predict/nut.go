package predict

import "github.com/oleamind/terroir/catalog"

// NutPredictor implements §4.5.3: primary metric is oil content (%), tiered
// at artisan/premium/standard = 72/68/64. Heritage/native cultivars trend
// higher on oil content; modern cultivars trend higher on kernel percentage
// (a secondary trait surfaced as an insight, not a separate metric).
type NutPredictor struct{}

var _ Predictor = (*NutPredictor)(nil)

func (p *NutPredictor) CanHandle(c catalog.Category) bool { return c == catalog.CategoryNut }

func (p *NutPredictor) PrimaryMetricType() catalog.MetricType { return catalog.MetricOilContent }

const (
	nutArtisanThreshold  = 72.0
	nutPremiumThreshold  = 68.0
	nutStandardThreshold = 64.0
)

func (p *NutPredictor) Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error) {
	cv, known := cat.Cultivar(in.CultivarID)

	base := cv.BaseMetricValue
	if base == 0 {
		base = 62
	}

	var heritageBonus float64
	var kernelInsight string
	switch cv.HeritageIntent {
	case catalog.HeritageTrue, catalog.HeritageHeirloomQuality, catalog.HeritageHeirloomUtility:
		heritageBonus = 3
		kernelInsight = "heritage/native cultivar: higher oil content, lower kernel yield"
	case catalog.HeritageModernNutrient, catalog.HeritageModernFlavor, catalog.HeritageCommercial:
		heritageBonus = 0
		kernelInsight = "modern cultivar: higher kernel percentage, lower oil content"
	}

	oilContent := clamp(base+heritageBonus, 0, 100)

	var tier string
	switch {
	case oilContent >= nutArtisanThreshold:
		tier = "artisan"
	case oilContent >= nutPremiumThreshold:
		tier = "premium"
	case oilContent >= nutStandardThreshold:
		tier = "standard"
	default:
		tier = "commodity"
	}

	pillars := map[PillarKey]PillarContribution{
		PillarSoil:         {Confidence: 0.6, Details: "soil mineral content not separately modeled"},
		PillarHeritage:     {Modifier: heritageBonus, Confidence: boolConfidence(known), Details: kernelInsight},
		PillarAgricultural: {Confidence: 0.7, Details: "orchard practice folded into baseline"},
		PillarRipen:        {Confidence: 0.7, Details: "hull split / cure timing"},
		PillarEnrich:       {Confidence: 0.7, Details: "post-harvest drying and storage"},
	}

	return Result{
		QualityScore: QualityScoreFromTier(tier, 0.5),
		Tier:         tier,
		Confidence:   0.7,
		Primary: PrimaryMetric{
			Type:  catalog.MetricOilContent,
			Value: oilContent,
			Unit:  "%",
		},
		Pillars: pillars,
		Info: ModelInfo{
			PredictorVersion: "nut-v1",
			ProfileID:        profile.ID,
			ProfileCode:      profile.Code,
		},
	}, nil
}
