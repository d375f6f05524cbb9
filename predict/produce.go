package predict

import (
	"math"

	"github.com/oleamind/terroir/apperrors"
	"github.com/oleamind/terroir/catalog"
)

// ProducePredictor implements §4.5.1: tree fruit, berries, melons, stone
// fruit, citrus. Primary metric is Brix; peak timing is the middle_50 of
// the harvest window. Grounded on the teacher's
// services/climate_profile_service.go GDD/phenology constants and
// structure (OliveGDDBase/OliveGDDFlowering/OliveGDDHarvest, the
// current-vs-target GDD accumulation it tracks per parcel), generalized
// from one crop (olive) to the cultivar-parametrized model §4.5.1 requires.
type ProducePredictor struct{}

var _ Predictor = (*ProducePredictor)(nil)

func (p *ProducePredictor) CanHandle(c catalog.Category) bool { return c == catalog.CategoryProduce }

func (p *ProducePredictor) PrimaryMetricType() catalog.MetricType { return catalog.MetricBrix }

// ageModifier implements the §4.5.1 piecewise age penalty, with the
// precocious-cultivar override (0 at all ages >= 2).
func ageModifier(cv catalog.Cultivar, treeAge float64) float64 {
	if cv.Precocious && treeAge >= 2 {
		return 0
	}
	switch {
	case treeAge < 3:
		return -0.8
	case treeAge < 5:
		return -0.5
	case treeAge < 8:
		return -0.2
	case treeAge < 18:
		return 0
	case treeAge < 25:
		return -0.2
	default:
		return -0.3
	}
}

// rootstockModifier is a small fixed table of common rootstock vigor
// effects on soluble-solids concentration: dwarfing/stress-inducing
// rootstocks concentrate sugars slightly, vigorous ones dilute them.
// Unlisted or absent rootstocks contribute 0.
func rootstockModifier(rootstock string) float64 {
	switch rootstock {
	case "trifoliate", "dwarfing":
		return 0.2
	case "sour_orange":
		return 0.1
	case "rough_lemon", "vigorous":
		return -0.3
	default:
		return 0
	}
}

// timingModifier implements the §4.5.1 GDD-progress curve and harvest
// status label.
func timingModifier(progress float64) (modifier float64, status string) {
	switch {
	case progress <= 0.5:
		return -0.5, "not_ready"
	case progress < 0.95:
		frac := (progress - 0.5) / (0.95 - 0.5)
		return -0.5 + frac*0.5, "early"
	case progress >= 0.99 && progress <= 1.01:
		return 0, "peak"
	case progress <= 1.05:
		return 0, "optimal"
	case progress < 1.5:
		frac := (progress - 1.05) / (1.5 - 1.05)
		return -frac * 0.5, "late"
	default:
		return -0.5, "past_peak"
	}
}

// practiceModifier implements the §4.5.1 additive practice bonuses.
func practiceModifier(in Input) float64 {
	var m float64
	switch in.FertilityApproach {
	case "mineralized_soil_science":
		m += 0.5
	case "soil_banking":
		m += 0.3
	}
	if in.PestManagement == "organic" || in.PestManagement == "no_spray" {
		m += 0.1
	}
	if in.CropLoadManaged {
		m += 0.2
	}
	return m
}

// heritageDefaultBrix stands in for a cultivar's researchAvgBrix when the
// catalog entry carries no BaseMetricValue: heritage/heirloom intents
// default higher than modern ones, per §4.5.1.
func heritageDefaultBrix(intent catalog.HeritageIntent) float64 {
	switch intent {
	case catalog.HeritageTrue, catalog.HeritageHeirloomQuality:
		return 13.0
	case catalog.HeritageHeirloomUtility:
		return 11.0
	case catalog.HeritageModernNutrient, catalog.HeritageModernFlavor:
		return 10.0
	default:
		return 9.0
	}
}

func (p *ProducePredictor) Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error) {
	cv, ok := cat.Cultivar(in.CultivarID)
	cultivarKnown := ok
	if !ok {
		cv = catalog.Cultivar{Category: catalog.CategoryProduce, HeritageIntent: catalog.HeritageCommercial}
	}

	base := cv.BaseMetricValue
	if base == 0 {
		base = heritageDefaultBrix(cv.HeritageIntent)
	}

	rootstockMod := rootstockModifier(in.Rootstock)
	ageMod := ageModifier(cv, in.TreeAge)

	progress := 1.0
	phenologyKnown := in.TargetGDD > 0
	if phenologyKnown {
		progress = in.CurrentGDD / in.TargetGDD
	}
	timingMod, harvestStatus := timingModifier(progress)

	practiceMod := practiceModifier(in)

	predicted := base + rootstockMod + ageMod + timingMod + practiceMod

	lo, hi := 4.0, 20.0
	if cv.ResearchMin != nil {
		lo = *cv.ResearchMin
	}
	if cv.ResearchMax != nil {
		hi = *cv.ResearchMax
	}
	predicted = clamp(predicted, lo, hi)

	tierTable := cat.EffectiveTierThresholds(cv.Crop, cv.Subcategory, catalog.CategoryProduce)
	tier := TierForBrix(tierTable, predicted)
	qualityScore := QualityScoreFromTier(tier, 0.5)

	confidence := produceConfidence(in, cultivarKnown, phenologyKnown)
	confidence = applyTemporalDecay(confidence, in)

	pillars := map[PillarKey]PillarContribution{
		PillarSoil: {
			Modifier:   rootstockMod,
			Confidence: 0.7,
			Details:    "rootstock vigor effect on soluble solids",
		},
		PillarHeritage: {
			Modifier:   0,
			Confidence: boolConfidence(cultivarKnown),
			Details:    "cultivar genetic baseline Brix: " + string(cv.HeritageIntent),
		},
		PillarAgricultural: {
			Modifier:   practiceMod,
			Confidence: 0.8,
			Details:    "fertility/pest/crop-load practice bonus",
		},
		PillarRipen: {
			Modifier:   timingMod,
			Confidence: boolConfidence(phenologyKnown),
			Details:    "GDD progress " + harvestStatus,
			Insights:   []string{"harvest status: " + harvestStatus},
		},
		PillarEnrich: {
			Modifier:   ageMod,
			Confidence: 0.75,
			Details:    "tree-age maturity curve",
		},
	}

	var warnings []string
	if !cultivarKnown && in.CultivarID != "" {
		warnings = append(warnings, "cultivar "+in.CultivarID+" not found in catalog; used heritage-intent default")
	}
	if in.TargetGDD == 0 && in.CurrentGDD > 0 {
		warnings = append(warnings, apperrors.New(apperrors.ValidationError, apperrors.CodeInconsistentData,
			"current_gdd provided without target_gdd").Message)
	}

	return Result{
		QualityScore: qualityScore,
		Tier:         tier,
		Confidence:   confidence,
		Primary: PrimaryMetric{
			Type:  catalog.MetricBrix,
			Value: predicted,
			Unit:  "°Bx",
		},
		Pillars: pillars,
		Info: ModelInfo{
			PredictorVersion: "produce-v1",
			ProfileID:        profile.ID,
			ProfileCode:      profile.Code,
			HarvestStatus:    harvestStatus,
			Warnings:         warnings,
		},
	}, nil
}

// produceConfidence implements the §4.5.1 weighted data-quality subscore
// sum: cultivar 30%, phenology 25%, measurement 20%, rootstock 10%, soil
// 10%, practices 5%. "Measurement" has no dedicated input field at the
// formula stage (it belongs to the validation layer once an actual reading
// is submitted), so it defaults to full confidence for a pure forecast.
func produceConfidence(in Input, cultivarKnown, phenologyKnown bool) float64 {
	const (
		wCultivar   = 0.30
		wPhenology  = 0.25
		wMeasurement = 0.20
		wRootstock  = 0.10
		wSoil       = 0.10
		wPractices  = 0.05
	)
	sCultivar := boolConfidence(cultivarKnown)
	sPhenology := boolConfidence(phenologyKnown)
	sMeasurement := 1.0
	sRootstock := boolConfidence(in.Rootstock != "")
	sSoil := boolConfidence(in.FertilityApproach != "")
	sPractices := boolConfidence(in.PestManagement != "")

	return wCultivar*sCultivar + wPhenology*sPhenology + wMeasurement*sMeasurement +
		wRootstock*sRootstock + wSoil*sSoil + wPractices*sPractices
}

func boolConfidence(known bool) float64 {
	if known {
		return 1.0
	}
	return 0.5
}

// applyTemporalDecay implements the §4.5.1/§9 forecast decay: minimal
// (x0.95) inside a 10-day forecast window, exponential with a 60-day
// half-life beyond it, floored at 30% of the undecayed value. Only applies
// to forward-looking (not-yet-harvested) forecast predictions — never to
// retrospective predictions used to generate training labels (§9's open
// question on temporal decay).
func applyTemporalDecay(confidence float64, in Input) float64 {
	if !in.IsForecast || in.DaysUntilHarvest <= 0 {
		return confidence
	}
	var decay float64
	if in.DaysUntilHarvest <= 10 {
		decay = 0.95
	} else {
		halfLives := (in.DaysUntilHarvest - 10) / 60.0
		decay = 0.95 * math.Pow(0.5, halfLives)
	}
	floor := 0.30
	if decay < floor {
		decay = floor
	}
	return confidence * decay
}
