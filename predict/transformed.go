package predict

import "github.com/oleamind/terroir/catalog"

// TransformedPredictor implements §4.5.7: a two-stage origin-then-process
// model (coffee, tea, cacao). Stage one is an origin quality band carried
// on the profile; stage two is a transformation-profile lookup whose
// preservation stance decides how much of the origin's upside survives
// into the final cupping score. Grounded directly on the teacher's
// classifyOil/GetBatchTraceability two-stage shape in
// services/mill_service.go: a fixed-threshold mill-side classification
// plus a separately tracked provenance chain, generalized here to an
// origin band plus a transformation-profile lookup.
type TransformedPredictor struct{}

var _ Predictor = (*TransformedPredictor)(nil)

func (p *TransformedPredictor) CanHandle(c catalog.Category) bool {
	return c == catalog.CategoryTransformed
}

func (p *TransformedPredictor) PrimaryMetricType() catalog.MetricType {
	return catalog.MetricCuppingScore
}

func (p *TransformedPredictor) Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error) {
	originLow, originHigh := 70.0, 80.0
	originKnown := profile.OriginQualityLow != nil && profile.OriginQualityHigh != nil
	if originKnown {
		originLow = *profile.OriginQualityLow
		originHigh = *profile.OriginQualityHigh
	}

	transform, transformKnown := cat.TransformationProfiles[in.TransformationID]

	var predicted float64
	var warnings []string
	var stance catalog.PreservationStance

	if transformKnown {
		stance = transform.PreservationStance
		switch stance {
		case catalog.StanceEnhances:
			// enhances passes the origin's high end through unreduced.
			predicted = originHigh
		case catalog.StanceRisksMasking:
			// risks_masking clips to the origin band's own low end.
			predicted = originLow
			if originHigh >= 85 {
				warnings = append(warnings, "transformation "+in.TransformationID+" risks masking a premium origin")
			}
		default: // preserves, neutral: origin band's midpoint survives.
			predicted = (originLow + originHigh) / 2
		}
	} else {
		predicted = (originLow + originHigh) / 2
	}

	predicted = clamp(predicted, 0, 100)

	var tier string
	switch {
	case predicted >= 87:
		tier = "artisan"
	case predicted >= 82:
		tier = "premium"
	case predicted >= 75:
		tier = "standard"
	default:
		tier = "commodity"
	}

	pillars := map[PillarKey]PillarContribution{
		PillarSoil:         {Confidence: boolConfidence(originKnown), Details: "origin quality band"},
		PillarHeritage:     {Confidence: 0.6, Details: "varietal: " + in.VarietyID},
		PillarAgricultural: {Confidence: boolConfidence(transformKnown), Details: "transformation: " + string(stance)},
		PillarRipen:        {Confidence: boolConfidence(transformKnown), Details: "processing method: " + in.TransformationID},
		PillarEnrich:       {Confidence: 0.6, Details: "grading/lotting not separately modeled"},
	}

	return Result{
		QualityScore: QualityScoreFromTier(tier, 0.5),
		Tier:         tier,
		Confidence:   0.7,
		Primary: PrimaryMetric{
			Type:  catalog.MetricCuppingScore,
			Value: predicted,
			Unit:  "points",
		},
		Pillars: pillars,
		Info: ModelInfo{
			PredictorVersion: "transformed-v1",
			ProfileID:        profile.ID,
			ProfileCode:      profile.Code,
			Warnings:         warnings,
		},
	}, nil
}
