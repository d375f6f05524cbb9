package predict

import "github.com/oleamind/terroir/catalog"

// TierForBrix maps a measured/predicted Brix value to a qualitative tier
// using a crop's tier table: values at or above Artisan/Premium/Standard
// collapse upward; anything below Standard is "commodity".
func TierForBrix(t catalog.BrixTierTable, value float64) string {
	switch {
	case value >= t.Artisan:
		return "artisan"
	case value >= t.Premium:
		return "premium"
	case value >= t.Standard:
		return "standard"
	default:
		return "commodity"
	}
}

// TierDescending mirrors TierForBrix for metrics where lower is better (the
// ω6:ω3 ratio): values at or below each threshold collapse upward.
func TierDescending(artisan, premium, standard, value float64) string {
	switch {
	case value <= artisan:
		return "artisan"
	case value <= premium:
		return "premium"
	case value <= standard:
		return "standard"
	default:
		return "commodity"
	}
}

// QualityScoreFromTier maps a tier label onto the §9-adopted single
// monotone 0-100 quality-score mapping: each tier occupies an equal 25-point
// band, scaled by how far the raw metric sits within its own band relative
// to the next tier's threshold. Predictors that cannot cheaply compute a
// within-band fraction pass frac=0.5 (the band midpoint).
func QualityScoreFromTier(tier string, frac float64) float64 {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	base := map[string]float64{
		"artisan":   75,
		"premium":   50,
		"standard":  25,
		"commodity": 0,
	}[tier]
	return base + frac*25
}

// CompareUSDA reports whether value exceeds the crop's USDA minimum and by
// how much. ok is false when the crop has no registered minimum.
func CompareUSDA(cat *catalog.Catalog, crop string, value float64) (exceeds bool, delta float64, ok bool) {
	min, found := cat.USDAMinima[crop]
	if !found {
		return false, 0, false
	}
	delta = value - min.MinValue
	return delta >= 0, delta, true
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
