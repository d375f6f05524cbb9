package calibration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predictedPtr(v float64) *float64 { return &v }

func TestMemoryStore_BelowThresholdServesUncalibrated(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	for i := 0; i < MinSamplesForCalibration-1; i++ {
		_, err := s.SubmitActual(ctx, Actual{
			CultivarID: "washington_navel", RegionID: "florida",
			MetricValue: 12.0, PredictedValue: predictedPtr(11.0), Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	res, err := s.Apply(ctx, 11.0, "washington_navel", "florida", AllSeasons)
	require.NoError(t, err)
	assert.Equal(t, 11.0, res.Calibrated)
	assert.Equal(t, 0.0, res.ConfidenceBoost)
}

func TestMemoryStore_AtThresholdCalibrates(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	for i := 0; i < MinSamplesForCalibration; i++ {
		_, err := s.SubmitActual(ctx, Actual{
			CultivarID: "washington_navel", RegionID: "florida",
			MetricValue: 12.0, PredictedValue: predictedPtr(11.0), Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	res, err := s.Apply(ctx, 11.0, "washington_navel", "florida", AllSeasons)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, res.Calibrated, 0.001)
	assert.Equal(t, MinSamplesForCalibration, res.SampleCount)
	// Exactly at the threshold the boost curve sits at its floor (0);
	// it only climbs strictly above MinSamplesForCalibration.
	assert.Equal(t, 0.0, res.ConfidenceBoost)
}

func TestMemoryStore_AboveThresholdBoostsConfidence(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	for i := 0; i < MinSamplesForCalibration+5; i++ {
		_, err := s.SubmitActual(ctx, Actual{
			CultivarID: "washington_navel", RegionID: "florida",
			MetricValue: 12.0, PredictedValue: predictedPtr(11.0), Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	res, err := s.Apply(ctx, 11.0, "washington_navel", "florida", AllSeasons)
	require.NoError(t, err)
	assert.Greater(t, res.ConfidenceBoost, 0.0)
}

func TestMemoryStore_ConfidenceBoostCapsAtMaxSamples(t *testing.T) {
	assert.Equal(t, 0.0, ConfidenceBoost(MinSamplesForCalibration-1))
	assert.Equal(t, MaxConfidenceBoost, ConfidenceBoost(SamplesForMaxConfidence))
	assert.Equal(t, MaxConfidenceBoost, ConfidenceBoost(SamplesForMaxConfidence+100))
	assert.Greater(t, ConfidenceBoost(SamplesForMaxConfidence-1), 0.0)
}

func TestMemoryStore_NoCalibrationReturnsUnchanged(t *testing.T) {
	s := NewMemoryStore(nil)
	res, err := s.Apply(context.Background(), 10.5, "unseen_cultivar", "unseen_region", AllSeasons)
	require.NoError(t, err)
	assert.Equal(t, 10.5, res.Calibrated)
	assert.Equal(t, 0, res.SampleCount)
}

func TestMemoryStore_SubmitActualWithoutPredictionIsRecordedNotFolded(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	id, err := s.SubmitActual(ctx, Actual{CultivarID: "x", RegionID: "y", MetricValue: 9.0})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, ok, err := s.Get(ctx, "x", "y", AllSeasons)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClampBrix(t *testing.T) {
	assert.Equal(t, 0.0, ClampBrix(-5))
	assert.Equal(t, 30.0, ClampBrix(45))
	assert.Equal(t, 15.0, ClampBrix(15))
}
