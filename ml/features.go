// Package ml implements the ML/A/B Layer (C8): feature extraction,
// consistent-hash A/B assignment, an optional external model call with a
// bounded timeout and safe fallback, a heuristic enhancement used when no
// external service is configured, and experiment-result aggregation.
package ml

import (
	"time"

	"github.com/oleamind/terroir/predict"
)

// FeatureVectorLength is the fixed §4.7 feature-vector size.
const FeatureVectorLength = 16

// FeatureNames names each slot of the canonical feature vector, in order.
var FeatureNames = [FeatureVectorLength]string{
	"base_brix", "current_gdd", "target_gdd", "gdd_progress", "days_from_peak",
	"season_month", "is_early_season", "is_late_season", "tree_age",
	"rootstock_modifier", "has_calibration", "calibration_offset",
	"calibration_sample_count", "fertility_approach", "pest_management",
	"crop_load_managed",
}

// fertilityEncoding and pestEncoding implement the §4.7 categorical
// encodings; an unrecognized or absent value encodes as -1.
var fertilityEncoding = map[string]float64{
	"annual":                   0,
	"soil_banking":              1,
	"mineralized_soil_science": 2,
}

var pestEncoding = map[string]float64{
	"conventional": 0,
	"ipm":          1,
	"organic":      2,
	"no_spray":     3,
}

// ExtractFeatures builds the canonical 16-element feature vector from a
// predictor input and its raw/calibrated result. now is injected so the
// season-month/early-late-season features are deterministic in tests.
func ExtractFeatures(in predict.Input, raw predict.Result, now time.Time) [FeatureVectorLength]float64 {
	var f [FeatureVectorLength]float64

	f[0] = raw.Primary.Value // base_brix stands in for the category's primary metric pre-ML
	f[1] = in.CurrentGDD
	f[2] = in.TargetGDD

	progress := -1.0
	if in.TargetGDD > 0 {
		progress = in.CurrentGDD / in.TargetGDD
	}
	f[3] = progress

	daysFromPeak := -1.0
	if progress >= 0 {
		daysFromPeak = (progress - 1.0) * 100 // coarse proxy absent an explicit calendar
	}
	f[4] = daysFromPeak

	month := float64(now.Month())
	f[5] = month
	f[6] = boolFeature(month >= 3 && month <= 5)
	f[7] = boolFeature(month >= 9 && month <= 11)

	f[8] = in.TreeAge
	f[9] = rootstockModifierFeature(in.Rootstock)

	f[10] = boolFeature(raw.Info.HasCalibration)
	f[11] = raw.Info.CalibrationOffset
	f[12] = float64(raw.Info.CalibrationSampleCount)

	f[13] = encodeOr(fertilityEncoding, in.FertilityApproach)
	f[14] = encodeOr(pestEncoding, in.PestManagement)
	f[15] = boolFeature(in.CropLoadManaged)

	return f
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func encodeOr(table map[string]float64, key string) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return -1
}

// rootstockModifierFeature mirrors predict.rootstockModifier's table so the
// feature vector and the formula prediction agree on the rootstock's
// numeric effect without ml importing predict's unexported helper.
func rootstockModifierFeature(rootstock string) float64 {
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
