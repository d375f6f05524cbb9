package predict

import "github.com/oleamind/terroir/catalog"

// HoneyPredictor implements §4.5.6: primary metric is the diastase number
// (DN), a heat-sensitive enzyme-activity measure. Moisture is a secondary
// gate for fermentation risk rather than part of the DN formula itself.
type HoneyPredictor struct{}

var _ Predictor = (*HoneyPredictor)(nil)

func (p *HoneyPredictor) CanHandle(c catalog.Category) bool { return c == catalog.CategoryHoney }

func (p *HoneyPredictor) PrimaryMetricType() catalog.MetricType { return catalog.MetricDiastase }

const (
	honeyArtisanThreshold  = 20.0
	honeyPremiumThreshold  = 12.0
	honeyStandardThreshold = 8.0
)

var varietalDiastaseBaseline = map[string]float64{
	"manuka":   10,
	"acacia":   14,
	"tupelo":   18,
	"sourwood": 20,
	"clover":   15,
	"blended":  8,
}

func (p *HoneyPredictor) Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error) {
	base, known := varietalDiastaseBaseline[in.Varietal]
	if !known {
		base = varietalDiastaseBaseline["blended"]
	}

	var processingMod float64
	var processingDetail string
	if in.IsRaw {
		processingMod = 3
		processingDetail = "raw: minimal heat processing preserves enzyme activity"
	} else {
		processingMod = -5
		processingDetail = "processed: heat treatment degrades diastase activity"
	}

	dn := clamp(base+processingMod, 0, 100)

	var tier string
	switch {
	case dn >= honeyArtisanThreshold:
		tier = "artisan"
	case dn >= honeyPremiumThreshold:
		tier = "premium"
	case dn >= honeyStandardThreshold:
		tier = "standard"
	default:
		tier = "commodity"
	}

	var warnings []string
	if in.MoisturePct >= 20 {
		warnings = append(warnings, "fermentation risk: moisture at or above 20%")
	}
	if profile.MoistureMax != nil && in.MoisturePct > *profile.MoistureMax {
		warnings = append(warnings, "moisture exceeds profile maximum")
	}

	pillars := map[PillarKey]PillarContribution{
		PillarSoil:         {Confidence: 0.7, Details: "forage source: " + in.Varietal},
		PillarHeritage:     {Confidence: boolConfidence(known), Details: "varietal baseline DN"},
		PillarAgricultural: {Confidence: 0.7, Details: "apiary practice not separately modeled"},
		PillarRipen:        {Modifier: processingMod, Confidence: 0.85, Details: processingDetail},
		PillarEnrich:       {Confidence: boolConfidence(in.MoisturePct > 0), Details: "moisture content gate"},
	}

	return Result{
		QualityScore: QualityScoreFromTier(tier, 0.5),
		Tier:         tier,
		Confidence:   0.75,
		Primary: PrimaryMetric{
			Type:  catalog.MetricDiastase,
			Value: dn,
			Unit:  "DN",
		},
		Pillars: pillars,
		Info: ModelInfo{
			PredictorVersion: "honey-v1",
			ProfileID:        profile.ID,
			ProfileCode:      profile.Code,
			Warnings:         warnings,
		},
	}, nil
}
