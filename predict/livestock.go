package predict

import "github.com/oleamind/terroir/catalog"

// LivestockPredictor implements §4.5.4: covers livestock, eggs, and dairy
// (one predictor instance is registered for all three categories — they
// share the ω6:ω3 ratio metric, feeding-regime-driven midpoint, and
// poultry age-at-harvest pillar). Lower is better, so tiering runs in the
// opposite direction from Brix-style metrics.
type LivestockPredictor struct{}

var _ Predictor = (*LivestockPredictor)(nil)

func (p *LivestockPredictor) CanHandle(c catalog.Category) bool {
	return c == catalog.CategoryLivestock || c == catalog.CategoryEggs || c == catalog.CategoryDairy
}

func (p *LivestockPredictor) PrimaryMetricType() catalog.MetricType { return catalog.MetricOmegaRatio }

// feedingRegimeMidpoint is the §4.5.4 midpoint table.
var feedingRegimeMidpoint = map[string]float64{
	"grass_only":      2.5,
	"pasture_forage":   5,
	"grain_finished":   13,
	"grain_fed":        17,
}

const (
	omegaArtisanThreshold  = 3.0
	omegaPremiumThreshold  = 6.0
	omegaStandardThreshold = 13.0
)

func (p *LivestockPredictor) Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error) {
	regime := profile.FeedingRegime
	if regime == "" {
		if cv, ok := cat.Cultivar(in.CultivarID); ok && cv.FeedingRegime != "" {
			regime = cv.FeedingRegime
		}
	}
	if regime == "" {
		regime = "grain_fed"
	}

	var predicted float64
	if profile.OmegaRangeLow != nil && profile.OmegaRangeHigh != nil {
		predicted = (*profile.OmegaRangeLow + *profile.OmegaRangeHigh) / 2
	} else {
		predicted = feedingRegimeMidpoint[regime]
	}

	var ageModifier float64
	var ageDetail string
	if in.IsPoultry && in.AgeAtHarvestWeeks > 0 {
		optimalAge := 14.0
		if regime == "grain_fed" {
			optimalAge = 7.0
		}
		// Longer time on an appropriate feeding regime improves (lowers)
		// the ratio, up to a point; the adjustment is capped at ±1.5.
		ageModifier = clamp(0.15*(in.AgeAtHarvestWeeks-optimalAge), -1.5, 1.5)
		predicted -= ageModifier
		ageDetail = "poultry age-at-harvest relative to optimal window"
	}

	predicted = clamp(predicted, 0.5, 50)
	tier := TierDescending(omegaArtisanThreshold, omegaPremiumThreshold, omegaStandardThreshold, predicted)

	var warnings []string
	for _, w := range profile.Warnings {
		warnings = append(warnings, w)
	}

	pillars := map[PillarKey]PillarContribution{
		PillarSoil:         {Confidence: 0.7, Details: "pasture/feedlot classification from profile"},
		PillarHeritage:     {Confidence: boolConfidence(in.CultivarID != ""), Details: "breed: " + in.CultivarID},
		PillarAgricultural: {Confidence: 0.8, Details: "feeding regime: " + regime},
		PillarRipen:        {Modifier: ageModifier, Confidence: boolConfidence(in.IsPoultry), Details: ageDetail},
		PillarEnrich:       {Confidence: 0.6, Details: "finishing/processing not separately modeled"},
	}

	return Result{
		QualityScore: QualityScoreFromTier(tier, 0.5),
		Tier:         tier,
		Confidence:   0.75,
		Primary: PrimaryMetric{
			Type:          catalog.MetricOmegaRatio,
			Value:         predicted,
			Unit:          ":1",
			LowerIsBetter: true,
		},
		Pillars: pillars,
		Info: ModelInfo{
			PredictorVersion: "livestock-v1",
			ProfileID:        profile.ID,
			ProfileCode:      profile.Code,
			Warnings:         warnings,
		},
	}, nil
}
