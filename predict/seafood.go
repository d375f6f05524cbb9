package predict

import "github.com/oleamind/terroir/catalog"

// SeafoodPredictor implements §4.5.5: ω3 content/ratio driven by catch
// method and water type, with oyster ("merroir") and stone crab (claw-only,
// sustainability gold standard) special cases.
type SeafoodPredictor struct{}

var _ Predictor = (*SeafoodPredictor)(nil)

func (p *SeafoodPredictor) CanHandle(c catalog.Category) bool { return c == catalog.CategorySeafood }

func (p *SeafoodPredictor) PrimaryMetricType() catalog.MetricType { return catalog.MetricOmegaRatio }

var catchMethodMidpoint = map[string]float64{
	"wild":              2.0,
	"sustainable_farmed": 4.0,
	"farmed":            8.0,
}

// merroirWaterTypeBonus adjusts the oyster baseline by the water body it
// came from: cold, nutrient-rich waters produce a better (lower) ratio.
var merroirWaterTypeBonus = map[string]float64{
	"cold_north_atlantic": -0.5,
	"gulf":                 0.5,
	"pacific_northwest":    -0.3,
}

func (p *SeafoodPredictor) Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error) {
	var predicted float64
	var detail string
	var sustainabilityInsight string

	switch {
	case in.IsStoneCrab:
		predicted = 1.8
		detail = "stone crab: claw-only harvest, animal released alive"
		sustainabilityInsight = "sustainability gold standard: renewable harvest, no animal mortality"
	case in.IsOyster:
		base := 2.5
		predicted = base + merroirWaterTypeBonus[in.WaterType]
		detail = "oyster merroir model: water-body-driven ω profile"
		sustainabilityInsight = "filter-feeder; no feed input to model"
	default:
		mid, ok := catchMethodMidpoint[in.CatchMethod]
		if !ok {
			mid = catchMethodMidpoint["farmed"]
		}
		predicted = mid
		detail = "catch method: " + in.CatchMethod
	}

	predicted = clamp(predicted, 0.5, 50)
	tier := TierDescending(omegaArtisanThreshold, omegaPremiumThreshold, omegaStandardThreshold, predicted)

	pillars := map[PillarKey]PillarContribution{
		PillarSoil:         {Confidence: 0.7, Details: "water type: " + in.WaterType},
		PillarHeritage:     {Confidence: 0.6, Details: "species: " + in.CultivarID},
		PillarAgricultural: {Confidence: 0.8, Details: detail, Insights: []string{sustainabilityInsight}},
		PillarRipen:        {Confidence: 0.6, Details: "freshness at landing not separately modeled"},
		PillarEnrich:       {Confidence: 0.6, Details: "handling/cold-chain not separately modeled"},
	}

	return Result{
		QualityScore: QualityScoreFromTier(tier, 0.5),
		Tier:         tier,
		Confidence:   0.7,
		Primary: PrimaryMetric{
			Type:          catalog.MetricOmegaRatio,
			Value:         predicted,
			Unit:          ":1",
			LowerIsBetter: true,
		},
		Pillars: pillars,
		Info: ModelInfo{
			PredictorVersion: "seafood-v1",
			ProfileID:        profile.ID,
			ProfileCode:      profile.Code,
		},
	}, nil
}
