// Package calibration implements the Calibration Store (C5): per-(cultivar,
// region, season-or-all-time) running mean/stddev/count of (actual −
// predicted) deltas, behind a repository interface so tests can substitute
// an in-memory implementation for the optional Postgres-backed one (see
// calibration/gormstore).
package calibration

import (
	"context"
	"time"
)

// Constants from SPEC_FULL.md §4.4.
const (
	MinSamplesForCalibration = 5
	MaxConfidenceBoost       = 0.10
	SamplesForMaxConfidence  = 50
)

// AllSeasons is the sentinel season value for the all-time row.
const AllSeasons = 0

// Key identifies one calibration row.
type Key struct {
	CultivarID string
	RegionID   string
	Season     int // AllSeasons for the all-time row
}

// Calibration is one (cultivar, region, season) running-statistics row.
type Calibration struct {
	Key             Key
	SampleCount     int
	OffsetMean      float64
	OffsetStdDev    float64
	OffsetMin       float64
	OffsetMax       float64
	MAEBefore       float64
	MAEAfter        float64
	ConfidenceBoost float64
	IsActive        bool
	LastUpdated     time.Time
}

// Actual is a submitted measurement, per §3's Actual entity.
type Actual struct {
	CultivarID     string
	RegionID       string
	Season         int
	MetricValue    float64
	Source         string // consumer | farm | lab
	Timestamp      time.Time
	PredictionID   string
	PredictedValue *float64 // present when linked to a prior prediction
}

// ApplyResult is the outcome of Store.Apply.
type ApplyResult struct {
	Calibrated      float64
	Offset          float64
	ConfidenceBoost float64
	SampleCount     int
	CalibrationID   string
}

// Store is the calibration repository contract. The in-memory
// implementation (memory.go) is canonical and used by every test; the
// gorm/Postgres implementation (gormstore/) is an optional durable backend
// that a caller constructs directly; no code in this module selects it from
// config.CalibrationConfig.Backend.
type Store interface {
	// Get returns the effective calibration row for (cultivar, region,
	// season): the season-specific row when it meets the sample threshold,
	// else the all-time row, else (nil, false).
	Get(ctx context.Context, cultivarID, regionID string, season int) (*Calibration, bool, error)

	// Apply calibrates a raw prediction: clamp(predicted + offsetMean, 0,
	// 30) when an effective calibration exists, else predicted unchanged.
	Apply(ctx context.Context, predicted float64, cultivarID, regionID string, season int) (ApplyResult, error)

	// SubmitActual folds a measurement's delta (when a prediction is
	// linked) into the running statistics via Welford's algorithm and
	// returns a generated id for the actual. The gorm-backed store also
	// persists the actual itself; MemoryStore keeps no log of actuals.
	SubmitActual(ctx context.Context, actual Actual) (string, error)
}

// ConfidenceBoost implements the §4.4 boost curve: 0 below the sample
// threshold, linear from 0 to MaxConfidenceBoost across
// [MinSamplesForCalibration, SamplesForMaxConfidence].
func ConfidenceBoost(sampleCount int) float64 {
	if sampleCount < MinSamplesForCalibration {
		return 0
	}
	if sampleCount >= SamplesForMaxConfidence {
		return MaxConfidenceBoost
	}
	span := float64(SamplesForMaxConfidence - MinSamplesForCalibration)
	progress := float64(sampleCount-MinSamplesForCalibration) / span
	return MaxConfidenceBoost * progress
}

// ClampBrix restricts a calibrated value to the produce physical range.
// Other categories clamp via validation.Engine after calibration; this
// helper exists because §4.4's contract names the [0,30] Brix range
// explicitly as the calibrated-value clamp.
func ClampBrix(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 30 {
		return 30
	}
	return x
}
