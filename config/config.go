// Package config loads runtime configuration for the inference engine from
// environment variables (prefixed TERROIR_), an optional config.yaml, and
// built-in defaults, in that order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CalibrationConfig holds the Calibration Store (C5) settings read by Load.
// No code in this module applies them: the calibration package uses its own
// constants, and no code selects a store by Backend.
type CalibrationConfig struct {
	Backend             string // memory | postgres
	MinSamples          int
	MaxConfidenceSamples int
	MaxConfidenceBoost  float64
	DSN                 string // postgres connection string, when Backend == "postgres"
}

// ValidationConfig configures the Validation Engine (C4). Load fills
// AnomalyZThreshold only; PhysicalRanges is left nil.
type ValidationConfig struct {
	AnomalyZThreshold float64
	PhysicalRanges    map[string][2]float64
}

// MLConfig configures the ML/AB layer (C8).
type MLConfig struct {
	APIURL           string
	APITimeout       time.Duration
	ABTrafficSplit   float64
}

// LoggingConfig configures the logging package.
type LoggingConfig struct {
	Level      string
	Format     string
	Output     string
	FilePath   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// Config aggregates every sub-config the engine needs.
type Config struct {
	Calibration CalibrationConfig
	Validation  ValidationConfig
	ML          MLConfig
	Logging     LoggingConfig
}

// Load reads configuration from the environment, an optional config.yaml in
// the working directory or ./config, and falls back to defaults. Grounded
// on the pack's viper-based config loaders (enhanced.go / hft-bot / cli),
// which follow the identical New -> SetEnvPrefix -> AutomaticEnv ->
// SetEnvKeyReplacer -> SetDefault -> ReadInConfig shape.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("TERROIR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	cfg := &Config{
		Calibration: CalibrationConfig{
			Backend:              v.GetString("calibration.backend"),
			MinSamples:           v.GetInt("calibration.min_samples"),
			MaxConfidenceSamples: v.GetInt("calibration.max_confidence_samples"),
			MaxConfidenceBoost:   v.GetFloat64("calibration.max_confidence_boost"),
			DSN:                  v.GetString("calibration.dsn"),
		},
		Validation: ValidationConfig{
			AnomalyZThreshold: v.GetFloat64("validation.anomaly_z_threshold"),
		},
		ML: MLConfig{
			APIURL:         v.GetString("ml.api_url"),
			APITimeout:     v.GetDuration("ml.api_timeout"),
			ABTrafficSplit: v.GetFloat64("ab.traffic_split"),
		},
		Logging: LoggingConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			FilePath:   v.GetString("log.file_path"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			MaxBackups: v.GetInt("log.max_backups"),
			Compress:   v.GetBool("log.compress"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calibration.backend", "memory")
	v.SetDefault("calibration.min_samples", 5)
	v.SetDefault("calibration.max_confidence_samples", 50)
	v.SetDefault("calibration.max_confidence_boost", 0.10)

	v.SetDefault("validation.anomaly_z_threshold", 2.5)

	v.SetDefault("ml.api_url", "")
	v.SetDefault("ml.api_timeout", "250ms")
	v.SetDefault("ab.traffic_split", 0.1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.compress", true)
}
