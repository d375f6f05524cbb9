package predict

import (
	"math"

	"github.com/oleamind/terroir/catalog"
)

// VegetablePredictor implements §4.5.2: subcategory selects one of three
// sub-models (freshness, Brix, storage). Primary metric is a unitless 0-100
// freshness/storage score (or, for the Brix sub-model, Brix normalized onto
// the same 0-100 scale so the category's primary-metric contract stays
// uniform).
type VegetablePredictor struct{}

var _ Predictor = (*VegetablePredictor)(nil)

func (p *VegetablePredictor) CanHandle(c catalog.Category) bool {
	return c == catalog.CategoryVegetables
}

func (p *VegetablePredictor) PrimaryMetricType() catalog.MetricType {
	return catalog.MetricFreshnessScore
}

var freshnessK = map[string]float64{
	"leafy":       0.15,
	"cruciferous": 0.08,
	"legume":      0.12,
}

var storageFactor = map[string]float64{
	"ambient":      1.0,
	"refrigerated": 0.5,
	"cold":         0.3,
}

// brixVarietyBase is the §4.5.2 per-variety Brix baseline for the root /
// nightshade sub-model.
var brixVarietyBase = map[string]float64{
	"carrot":   8,
	"beet":     10,
	"tomato":   5,
	"parsnip":  9,
	"potato":   6,
}

// coldStorageWeeklyBonus is the per-week Brix gain under cold storage,
// capped at +3 total.
var coldStorageWeeklyBonus = map[string]float64{
	"carrot":  0.5,
	"parsnip": 0.8,
	"beet":    0.4,
	"tomato":  0.0,
	"potato":  0.2,
}

// cureStorageProfile gives the allium/squash sub-model's optimal cure-days
// and optimal-storage-months parameters per variety.
type cureStorageProfile struct {
	optimalCureDays     float64
	optimalStorageMonths float64
}

var cureStorageProfiles = map[string]cureStorageProfile{
	"onion":  {optimalCureDays: 14, optimalStorageMonths: 6},
	"garlic": {optimalCureDays: 21, optimalStorageMonths: 8},
	"squash": {optimalCureDays: 10, optimalStorageMonths: 4},
}

func (p *VegetablePredictor) Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error) {
	sub := resolveSubModel(cat, in)

	var score float64
	var detail, statusInsight string

	switch sub {
	case "brix":
		score, detail, statusInsight = predictVegetableBrix(in)
	case "storage":
		score, detail, statusInsight = predictVegetableStorage(in)
	default:
		score, detail, statusInsight = predictVegetableFreshness(cat, in)
	}

	score = clamp(score, 0, 100)
	tier := vegetableTier(score)

	pillars := map[PillarKey]PillarContribution{
		PillarSoil:         {Confidence: 0.6, Details: "growing conditions not separately modeled for vegetables"},
		PillarHeritage:     {Confidence: 0.6, Details: "variety baseline: " + in.VarietyID},
		PillarAgricultural: {Confidence: 0.7, Details: "practice inputs folded into base variety assumption"},
		PillarRipen:        {Modifier: score, Confidence: 0.8, Details: detail, Insights: []string{statusInsight}},
		PillarEnrich:       {Confidence: 0.75, Details: "storage regime: " + in.StorageCondition},
	}

	return Result{
		QualityScore: score,
		Tier:         tier,
		Confidence:   0.75,
		Primary: PrimaryMetric{
			Type:  catalog.MetricFreshnessScore,
			Value: score,
			Unit:  "score",
		},
		Pillars: pillars,
		Info: ModelInfo{
			PredictorVersion: "vegetable-v1-" + sub,
			ProfileID:        profile.ID,
			ProfileCode:      profile.Code,
		},
	}, nil
}

func resolveSubModel(cat *catalog.Catalog, in Input) string {
	info, ok := cat.Categories[catalog.CategoryVegetables]
	if !ok {
		return "freshness"
	}
	if sc, ok := info.Subcategories[in.Subcategory]; ok && sc.SubModel != "" {
		return sc.SubModel
	}
	return "freshness"
}

func predictVegetableFreshness(cat *catalog.Catalog, in Input) (score float64, detail, status string) {
	k, ok := freshnessK[in.Subcategory]
	if !ok {
		k = 0.12
	}
	factor, ok := storageFactor[in.StorageCondition]
	if !ok {
		factor = 1.0
	}
	effectiveDays := in.DaysSinceHarvest * factor
	score = 100 * math.Exp(-k*effectiveDays)

	optimalDays := 7.0
	if info, ok := cat.Categories[catalog.CategoryVegetables]; ok {
		if sc, ok := info.Subcategories[in.Subcategory]; ok {
			if od, ok := sc.TierThresholds["optimalDays"]; ok {
				optimalDays = od
			}
		}
	}

	switch {
	case effectiveDays <= optimalDays*0.3:
		status = "peak freshness"
	case effectiveDays <= optimalDays:
		status = "fresh"
	case effectiveDays <= optimalDays*2:
		status = "acceptable"
	default:
		status = "past prime"
	}
	detail = "freshness decay over " + status
	return score, detail, status
}

func predictVegetableBrix(in Input) (score float64, detail, status string) {
	base, ok := brixVarietyBase[in.VarietyID]
	if !ok {
		base = 6
	}
	weeks := in.DaysSinceHarvest / 7.0
	bonus := coldStorageWeeklyBonus[in.VarietyID] * weeks
	if in.StorageCondition != "cold" {
		bonus = 0
	}
	if bonus > 3 {
		bonus = 3
	}
	brix := base + bonus
	score = ((brix - 4) / 10) * 100
	status = "brix-normalized"
	detail = "variety Brix baseline with cold-storage bonus"
	return score, detail, status
}

func predictVegetableStorage(in Input) (score float64, detail, status string) {
	profile, ok := cureStorageProfiles[in.VarietyID]
	if !ok {
		profile = cureStorageProfile{optimalCureDays: 14, optimalStorageMonths: 5}
	}

	if in.CureDaysElapsed < profile.optimalCureDays {
		frac := in.CureDaysElapsed / profile.optimalCureDays
		score = 70 + frac*30
		status = "curing"
		return score, "curing-phase ramp", status
	}

	if in.StorageMonthsElapsed <= profile.optimalStorageMonths {
		status = "at peak storage quality"
		return 100, "post-cure plateau", status
	}

	overMonths := in.StorageMonthsElapsed - profile.optimalStorageMonths
	score = 100 - overMonths*10
	status = "post-peak storage decay"
	return score, "storage decay past optimal window", status
}

func vegetableTier(score float64) string {
	switch {
	case score >= 90:
		return "artisan"
	case score >= 70:
		return "premium"
	case score >= 40:
		return "standard"
	default:
		return "commodity"
	}
}
