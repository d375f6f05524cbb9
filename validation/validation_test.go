package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleamind/terroir/apperrors"
)

func TestCheckPhysicalRange(t *testing.T) {
	e := New(nil, 0)

	corrected, err := e.CheckPhysicalRange("brix", 15)
	require.NoError(t, err)
	assert.Equal(t, 15.0, corrected)

	corrected, err = e.CheckPhysicalRange("brix", 45)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeOutOfPhysicalRange, appErr.Code)
	require.NotNil(t, appErr.CorrectedValue)
	assert.Equal(t, 30.0, *appErr.CorrectedValue)
	assert.Equal(t, 30.0, corrected)

	_, err = e.CheckPhysicalRange("unregistered_field", 999)
	assert.NoError(t, err)
}

func TestCheckPhysicalRange_NaN(t *testing.T) {
	e := New(nil, 0)
	_, err := e.CheckPhysicalRange("brix", nanValue())
	require.Error(t, err)
	appErr := err.(*apperrors.AppError)
	assert.Equal(t, apperrors.CodeInvalidFormat, appErr.Code)
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestIsAnomaly(t *testing.T) {
	e := New(nil, 2.5)
	assert.False(t, e.IsAnomaly(11, 10, 2))
	assert.True(t, e.IsAnomaly(20, 10, 2))
}

func TestZScore_ZeroStdDev(t *testing.T) {
	assert.Equal(t, 0.0, ZScore(5, 5, 0))
}

func TestDetectOmegaAnomaly(t *testing.T) {
	e := New(nil, 2.5)

	isAnomaly, reason := e.DetectOmegaAnomaly(3, 2, 3)
	assert.False(t, isAnomaly)
	assert.Empty(t, reason)

	isAnomaly, reason = e.DetectOmegaAnomaly(25, 2, 3)
	assert.True(t, isAnomaly)
	assert.NotEmpty(t, reason)
}

func TestMeanStdDev(t *testing.T) {
	mean, stddev, err := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, mean, 0.001)
	assert.InDelta(t, 2.0, stddev, 0.001)
}

func TestDataQualityScore(t *testing.T) {
	tests := []struct {
		name string
		in   DataQualityInputs
		want float64
	}{
		{"perfect lab reading", DataQualityInputs{Source: "lab"}, 1.0},
		{"missing brix", DataQualityInputs{MissingBrix: true}, 0.7},
		{"consumer submission with one warning", DataQualityInputs{Source: "consumer", WarningCount: 1}, 0.85},
		{"many errors clamp to zero", DataQualityInputs{ErrorCount: 10}, 0.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, DataQualityScore(tc.in), 0.001)
		})
	}
}
