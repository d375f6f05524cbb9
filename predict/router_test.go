package predict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleamind/terroir/calibration"
	"github.com/oleamind/terroir/catalog"
	"github.com/oleamind/terroir/classifier"
	"github.com/oleamind/terroir/validation"
)

func TestRouter_CalibrationAppliesAtSampleThreshold(t *testing.T) {
	cat, err := catalog.Load()
	require.NoError(t, err)
	cls := classifier.New(cat)
	calib := calibration.NewMemoryStore(nil)
	r := New(cat, NewRegistry(), cls, calib, nil, nil, nil)
	ctx := context.Background()

	in := Input{Category: catalog.CategoryProduce, CultivarID: "washington_navel", RegionID: "florida"}

	before, err := r.Predict(ctx, in)
	require.NoError(t, err)
	assert.False(t, before.Info.HasCalibration)

	for i := 0; i < calibration.MinSamplesForCalibration; i++ {
		predicted := before.Primary.Value
		_, err := r.SubmitActual(ctx, calibration.Actual{
			CultivarID: "washington_navel", RegionID: "florida",
			MetricValue: predicted + 1.0, PredictedValue: &predicted, Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	after, err := r.Predict(ctx, in)
	require.NoError(t, err)
	assert.True(t, after.Info.HasCalibration)
	assert.Greater(t, after.Primary.Value, before.Primary.Value)
	assert.Equal(t, calibration.MinSamplesForCalibration, after.Info.CalibrationSampleCount)
}

func TestRouter_PhysicalRangeClampsOutOfBoundsPrediction(t *testing.T) {
	cat, err := catalog.Load()
	require.NoError(t, err)
	cls := classifier.New(cat)
	calib := calibration.NewMemoryStore(nil)
	validator := validation.New(nil, 0)
	r := New(cat, NewRegistry(), cls, calib, validator, nil, nil)

	// Force the omega ratio above the [0.5, 50] physical range via a
	// synthetic profile would require catalog mutation; instead exercise
	// the clamp path directly through the validator the router wires in.
	corrected, err := validator.CheckPhysicalRange("omega_ratio", 80)
	require.Error(t, err)
	assert.Equal(t, 50.0, corrected)

	res, err := r.Predict(context.Background(), Input{Category: catalog.CategoryLivestock})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Primary.Value, 50.0)
}

type stubEnhancer struct {
	called bool
	err    error
	result Result
}

func (s *stubEnhancer) Enhance(_ context.Context, _ Input, raw Result) (Result, error) {
	s.called = true
	if s.err != nil {
		return Result{}, s.err
	}
	return s.result, nil
}

func TestRouter_ABRoutingOnlyEngagesWithUserID(t *testing.T) {
	cat, err := catalog.Load()
	require.NoError(t, err)
	cls := classifier.New(cat)
	calib := calibration.NewMemoryStore(nil)

	stub := &stubEnhancer{result: Result{Primary: PrimaryMetric{Value: 99}}}
	r := New(cat, NewRegistry(), cls, calib, nil, stub, nil)

	_, err = r.Predict(context.Background(), Input{Category: catalog.CategoryHoney, Varietal: "clover"})
	require.NoError(t, err)
	assert.False(t, stub.called, "enhancer must not run without a UserID")

	res, err := r.Predict(context.Background(), Input{Category: catalog.CategoryHoney, Varietal: "clover", UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, stub.called)
	assert.Equal(t, 99.0, res.Primary.Value)
}

func TestRouter_EnhancerFailureFallsBackToFormulaResult(t *testing.T) {
	cat, err := catalog.Load()
	require.NoError(t, err)
	cls := classifier.New(cat)
	calib := calibration.NewMemoryStore(nil)

	stub := &stubEnhancer{err: assertError{}}
	r := New(cat, NewRegistry(), cls, calib, nil, stub, nil)

	res, err := r.Predict(context.Background(), Input{Category: catalog.CategoryHoney, Varietal: "clover", UserID: "u1"})
	require.NoError(t, err)
	assert.Contains(t, res.Info.Warnings, "ml enhancement unavailable: enhancer failed")
}

type assertError struct{}

func (assertError) Error() string { return "enhancer failed" }

func TestRouter_ClassifyClaimsExposesClassifierDirectly(t *testing.T) {
	r := newTestRouter(t)
	res, err := r.ClassifyClaims(catalog.CategoryLivestock, []string{"grass-fed"})
	require.NoError(t, err)
	assert.Equal(t, "MARKETING_GRASS", res.Profile.Code)
}
