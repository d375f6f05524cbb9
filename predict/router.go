package predict

import (
	"context"

	"github.com/oleamind/terroir/apperrors"
	"github.com/oleamind/terroir/calibration"
	"github.com/oleamind/terroir/catalog"
	"github.com/oleamind/terroir/classifier"
	"github.com/oleamind/terroir/logging"
	"github.com/oleamind/terroir/validation"
)

// Enhancer is the C8 ML/A/B layer's contract as seen by the router: given
// the original input and the raw (formula) result, it decides whether this
// request is in the A/B treatment group and, if so, attempts an
// ML-enhanced prediction, falling back to raw on any failure. Defined here
// rather than in package ml to avoid a dependency cycle (ml needs predict's
// Input/Result types; predict must not need ml's types back).
type Enhancer interface {
	Enhance(ctx context.Context, in Input, raw Result) (Result, error)
}

// Router implements the Prediction Router (C7): predict_unified dispatches
// to the registered C6 predictor, merges in the classified profile's
// defaults, wraps with calibration, clamps to the category's physical
// range, and optionally routes through the A/B/ML layer. Temporal
// confidence decay is not a router step: ProducePredictor applies it
// inside Predict.
type Router struct {
	catalog    *catalog.Catalog
	registry   *Registry
	classifier *classifier.Classifier
	calib      calibration.Store
	validator  *validation.Engine
	enhancer   Enhancer
	log        *logging.Logger
}

// New builds a Router. enhancer may be nil, in which case step 7 (A/B/ML
// routing) is always skipped regardless of input.UserID.
func New(cat *catalog.Catalog, reg *Registry, cls *classifier.Classifier, calib calibration.Store, validator *validation.Engine, enhancer Enhancer, log *logging.Logger) *Router {
	if log == nil {
		log = logging.Nop()
	}
	return &Router{catalog: cat, registry: reg, classifier: cls, calib: calib, validator: validator, enhancer: enhancer, log: log}
}

// Predict implements predict_unified (§4.6): steps 1-4, 6 and 7 here, with
// step 5 (temporal decay) done inside ProducePredictor.
func (r *Router) Predict(ctx context.Context, in Input) (Result, error) {
	predictor, ok := r.registry.For(in.Category)
	if !ok {
		return Result{}, apperrors.New(apperrors.PredictionError, apperrors.CodeUnknownCategory,
			"no predictor registered for category "+string(in.Category)).WithComponent("predict")
	}

	// Step 2: classify claims (if present) and merge profile defaults.
	var profile catalog.Profile
	var classifyWarnings []string
	if len(in.Claims) > 0 {
		result, err := r.classifier.Classify(in.Category, in.Claims)
		if err != nil {
			return Result{}, apperrors.Wrap(err, "classifying claims")
		}
		profile = result.Profile
		classifyWarnings = result.Warnings
	} else if def, ok := r.catalog.DefaultProfile(in.Category); ok {
		profile = def
	}
	// Profile defaults (feeding regime, base metric ranges) are merged by
	// passing profile straight into the predictor rather than copying
	// fields onto Input: each predictor reads what it needs off profile
	// directly (e.g. LivestockPredictor.Predict reads profile.FeedingRegime).

	// Step 3: invoke the predictor.
	raw, err := predictor.Predict(r.catalog, in, profile)
	if err != nil {
		return Result{}, apperrors.Wrap(err, "predictor failed")
	}
	raw.Info.Warnings = append(raw.Info.Warnings, classifyWarnings...)

	// Step 4: calibration.
	calibrated := raw
	if in.CultivarID != "" && in.RegionID != "" && r.calib != nil {
		applied, err := r.calib.Apply(ctx, raw.Primary.Value, in.CultivarID, in.RegionID, in.Season)
		if err != nil {
			r.log.Warn("calibration lookup failed, serving uncalibrated prediction")
			calibrated.Info.Warnings = append(calibrated.Info.Warnings, "calibration unavailable: "+err.Error())
		} else {
			calibrated.Primary.Value = applied.Calibrated
			calibrated.Confidence = clamp(calibrated.Confidence+applied.ConfidenceBoost, 0, 1)
			calibrated.Info.HasCalibration = applied.SampleCount > 0
			calibrated.Info.CalibrationOffset = applied.Offset
			calibrated.Info.CalibrationSampleCount = applied.SampleCount
		}
	}

	// Step 6: physical-constraint clamping.
	if r.validator != nil {
		if field, ok := metricFieldName(calibrated.Primary.Type); ok {
			if corrected, err := r.validator.CheckPhysicalRange(field, calibrated.Primary.Value); err != nil {
				if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.CodeOutOfPhysicalRange {
					calibrated.Primary.Value = corrected
					calibrated.Info.Warnings = append(calibrated.Info.Warnings, appErr.Message)
				}
			}
		}
	}

	// Step 7: A/B / ML routing.
	if r.enhancer != nil && in.UserID != "" {
		enhanced, err := r.enhancer.Enhance(ctx, in, calibrated)
		if err != nil {
			r.log.Warn("ml enhancement failed, serving formula prediction")
			calibrated.Info.Warnings = append(calibrated.Info.Warnings, "ml enhancement unavailable: "+err.Error())
		} else {
			calibrated = enhanced
		}
	}

	return calibrated, nil
}

// metricFieldName maps a primary-metric type onto the validation engine's
// physical-range field key. Metrics with no registered physical-range entry
// (oil content, freshness score, cupping score, diastase) return false —
// the router skips clamping for those and relies on each predictor's own
// [0,100]-style clamp.
func metricFieldName(t catalog.MetricType) (string, bool) {
	switch t {
	case catalog.MetricBrix:
		return "brix", true
	case catalog.MetricOmegaRatio:
		return "omega_ratio", true
	default:
		return "", false
	}
}

// ClassifyClaims exposes the C3 classify_claims inbound operation directly
// (§6): returns the matched profile id, reasoning, and warnings without
// running a full prediction.
func (r *Router) ClassifyClaims(category catalog.Category, claims []string) (classifier.Result, error) {
	return r.classifier.Classify(category, claims)
}

// SubmitActual exposes the submit_actual inbound operation (§6).
func (r *Router) SubmitActual(ctx context.Context, actual calibration.Actual) (string, error) {
	return r.calib.SubmitActual(ctx, actual)
}
