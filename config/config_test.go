package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Calibration.Backend)
	assert.Equal(t, 5, cfg.Calibration.MinSamples)
	assert.Equal(t, 50, cfg.Calibration.MaxConfidenceSamples)
	assert.Equal(t, 0.10, cfg.Calibration.MaxConfidenceBoost)
	assert.Equal(t, 2.5, cfg.Validation.AnomalyZThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.ML.APITimeout)
	assert.Equal(t, 0.1, cfg.ML.ABTrafficSplit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("TERROIR_CALIBRATION_BACKEND", "postgres")
	t.Setenv("TERROIR_ML_API_URL", "http://ml.internal/predict")
	t.Setenv("TERROIR_AB_TRAFFIC_SPLIT", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Calibration.Backend)
	assert.Equal(t, "http://ml.internal/predict", cfg.ML.APIURL)
	assert.Equal(t, 0.5, cfg.ML.ABTrafficSplit)
}
