// Package validation implements the Validation Engine (C4): physical
// constraint enforcement, anomaly z-score detection, and the data-quality
// score.
package validation

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/oleamind/terroir/apperrors"
)

// Severity grades a soft typical-range warning.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Warning is a non-fatal validation concern attached to a result.
type Warning struct {
	Code     string
	Message  string
	Severity Severity
}

// PhysicalRange is a hard floor/ceiling for one metric field.
type PhysicalRange struct {
	Min  float64
	Max  float64
	Unit string
}

// DefaultPhysicalRanges is the §4.3 table. A caller may pass its own table
// to New instead; config.Load does not populate
// config.ValidationConfig.PhysicalRanges, so no configured override reaches
// the engine.
func DefaultPhysicalRanges() map[string]PhysicalRange {
	return map[string]PhysicalRange{
		"brix":                {Min: 0, Max: 30, Unit: "°Bx"},
		"titratable_acidity":   {Min: 0, Max: 10, Unit: "%"},
		"omega_ratio":          {Min: 0.5, Max: 50, Unit: ":1"},
		"gdd":                  {Min: 0, Max: 10000, Unit: "°F-days"},
		"tree_age":             {Min: 0, Max: 150, Unit: "years"},
		"moisture":             {Min: 0, Max: 100, Unit: "%"},
		"ph":                   {Min: 0, Max: 14, Unit: ""},
	}
}

// Engine evaluates constraints against a configured range table and
// anomaly threshold.
type Engine struct {
	Ranges          map[string]PhysicalRange
	AnomalyZThresh  float64
}

// New builds an Engine, filling in defaults for a zero-value threshold.
func New(ranges map[string]PhysicalRange, anomalyZThreshold float64) *Engine {
	if ranges == nil {
		ranges = DefaultPhysicalRanges()
	}
	if anomalyZThreshold == 0 {
		anomalyZThreshold = 2.5
	}
	return &Engine{Ranges: ranges, AnomalyZThresh: anomalyZThreshold}
}

// CheckPhysicalRange validates one field's value against its hard floor and
// ceiling. A NaN value is reported as INVALID_FORMAT; an out-of-range
// in-bounds value returns an OUT_OF_PHYSICAL_RANGE error carrying the
// clamped CorrectedValue so a caller can choose to proceed with it.
func (e *Engine) CheckPhysicalRange(field string, value float64) (float64, error) {
	if math.IsNaN(value) {
		return 0, apperrors.New(apperrors.ValidationError, apperrors.CodeInvalidFormat,
			"field "+field+" is NaN").WithComponent("validation").WithContext("field", field)
	}
	r, ok := e.Ranges[field]
	if !ok {
		return value, nil
	}
	if value < r.Min || value > r.Max {
		corrected := Clamp(value, r.Min, r.Max)
		return corrected, apperrors.New(apperrors.ValidationError, apperrors.CodeOutOfPhysicalRange,
			field+" outside physical range ["+r.Unit+"]").
			WithComponent("validation").
			WithContext("field", field).
			WithContext("value", value).
			WithCorrectedValue(corrected)
	}
	return value, nil
}

// Clamp restricts x to [min, max].
func Clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// ZScore computes (x - mean) / stddev. Returns 0 when stddev is 0 (no
// meaningful deviation to measure).
func ZScore(x, mean, stddev float64) float64 {
	if stddev == 0 {
		return 0
	}
	return (x - mean) / stddev
}

// IsAnomaly reports whether the absolute z-score of x against (mean,
// stddev) exceeds the engine's threshold — testable invariant 3 in
// SPEC_FULL.md §8.
func (e *Engine) IsAnomaly(x, mean, stddev float64) bool {
	return math.Abs(ZScore(x, mean, stddev)) > e.AnomalyZThresh
}

// DetectOmegaAnomaly implements the claim-consistency anomaly check: a
// measured ω ratio that falls well outside the classified profile's
// expected range is flagged as an inconsistency even when it is within the
// category's overall physical bounds.
func (e *Engine) DetectOmegaAnomaly(measured, profileRangeLow, profileRangeHigh float64) (isAnomaly bool, reason string) {
	mean := (profileRangeLow + profileRangeHigh) / 2
	// Treat the half-width of the profile's expected range as one stddev
	// for the purpose of this check: a reading more than AnomalyZThresh
	// half-widths away from the profile's midpoint is inconsistent with
	// the claims that produced that profile.
	stddev := (profileRangeHigh - profileRangeLow) / 2
	if stddev <= 0 {
		stddev = 0.5
	}
	z := ZScore(measured, mean, stddev)
	if math.Abs(z) > e.AnomalyZThresh {
		direction := "worse"
		if z < 0 {
			direction = "better"
		}
		return true, fmt.Sprintf("measured value %g:1 %s than expected range [%g–%g:1]",
			measured, direction, profileRangeLow, profileRangeHigh)
	}
	return false, ""
}

// MeanStdDev computes mean/stddev over a finite slice using
// montanaflynn/stats rather than a hand-rolled loop — the one place in
// this engine where the inputs are already fully materialized (unlike the
// streaming Welford update in the calibration store).
func MeanStdDev(xs []float64) (mean, stddev float64, err error) {
	mean, err = stats.Mean(xs)
	if err != nil {
		return 0, 0, err
	}
	stddev, err = stats.StandardDeviation(xs)
	if err != nil {
		return 0, 0, err
	}
	return mean, stddev, nil
}

// DataQualityInputs bundles the factors that feed the §4.3 data-quality
// formula.
type DataQualityInputs struct {
	MissingBrix      bool
	MissingSource    bool
	MissingTimestamp bool
	ErrorCount       int
	WarningCount     int
	Source           string // "lab" | "consumer" | "farm"
}

// DataQualityScore implements:
//
//	score = 1.0 − 0.3·missing_brix − 0.1·missing_source − 0.1·missing_timestamp
//	      − 0.2·|errors| − 0.05·|warnings| ± source_adjustment
//
// clamped to [0, 1].
func DataQualityScore(in DataQualityInputs) float64 {
	score := 1.0
	if in.MissingBrix {
		score -= 0.3
	}
	if in.MissingSource {
		score -= 0.1
	}
	if in.MissingTimestamp {
		score -= 0.1
	}
	score -= 0.2 * float64(in.ErrorCount)
	score -= 0.05 * float64(in.WarningCount)

	switch in.Source {
	case "lab":
		score += 0.1
	case "consumer":
		score -= 0.1
	}

	return Clamp(score, 0, 1)
}
