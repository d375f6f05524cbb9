// Package gormstore is the optional Postgres-backed implementation of
// calibration.Store and modelregistry.Registry (C12). A caller constructs
// it with NewStore/NewRegistry; nothing in this module selects it from
// config.CalibrationConfig.Backend. The in-memory
// implementations remain canonical for tests; this package exists so the
// teacher's gorm/Postgres stack has a concrete, exercised home in this
// domain rather than being dropped outright. Grounded on the teacher's
// services/mill_service.go CreateOilBatch path: read the current aggregate
// row (or start a zero-value one), recompute it in place, Save — the same
// read-modify-write-then-persist shape used here for the Welford update.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oleamind/terroir/calibration"
	"github.com/oleamind/terroir/modelregistry"
)

// CalibrationRow is the gorm model backing one calibration.Calibration row.
type CalibrationRow struct {
	ID              uint `gorm:"primarykey"`
	CultivarID      string `gorm:"index:idx_calibration_key,unique"`
	RegionID        string `gorm:"index:idx_calibration_key,unique"`
	Season          int    `gorm:"index:idx_calibration_key,unique"`
	SampleCount     int
	OffsetMean      float64
	OffsetM2        float64 // Welford running sum-of-squared-deviations, not exported on the domain type
	OffsetStdDev    float64
	OffsetMin       float64
	OffsetMax       float64
	MAEBefore       float64
	MAEAfter        float64
	IsActive        bool
	UpdatedAt       time.Time
}

func (CalibrationRow) TableName() string { return "calibration_rows" }

// ActualRow is the append-only log of submitted measurements.
type ActualRow struct {
	ID             uint `gorm:"primarykey"`
	CultivarID     string
	RegionID       string
	Season         int
	MetricValue    float64
	Source         string
	PredictionID   string
	HasPrediction  bool
	PredictedValue float64
	CreatedAt      time.Time
}

func (ActualRow) TableName() string { return "actual_rows" }

// ModelVersionRow is the gorm model backing modelregistry.ModelVersion.
type ModelVersionRow struct {
	Version           string `gorm:"primarykey"`
	IsActive          bool
	IsProduction      bool
	IsRollbackTarget  bool
	MAE               float64
	SampleCount       int
	FeaturesCSV       string
	TrafficPercentage float64
	UpdatedAt         time.Time
}

func (ModelVersionRow) TableName() string { return "model_versions" }

// Store is a gorm-backed calibration.Store.
type Store struct {
	db         *gorm.DB
	minSamples int
}

// NewStore wraps db, auto-migrating the two tables it owns.
func NewStore(db *gorm.DB, minSamples int) (*Store, error) {
	if err := db.AutoMigrate(&CalibrationRow{}, &ActualRow{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrating calibration tables: %w", err)
	}
	if minSamples <= 0 {
		minSamples = calibration.MinSamplesForCalibration
	}
	return &Store{db: db, minSamples: minSamples}, nil
}

var _ calibration.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, cultivarID, regionID string, season int) (*calibration.Calibration, bool, error) {
	if season != calibration.AllSeasons {
		if row, ok, err := s.find(ctx, cultivarID, regionID, season); err != nil {
			return nil, false, err
		} else if ok && row.SampleCount >= s.minSamples {
			c := toCalibration(row)
			return &c, true, nil
		}
	}
	row, ok, err := s.find(ctx, cultivarID, regionID, calibration.AllSeasons)
	if err != nil {
		return nil, false, err
	}
	if !ok || row.SampleCount < s.minSamples {
		return nil, false, nil
	}
	c := toCalibration(row)
	return &c, true, nil
}

func (s *Store) find(ctx context.Context, cultivarID, regionID string, season int) (CalibrationRow, bool, error) {
	var row CalibrationRow
	err := s.db.WithContext(ctx).
		Where("cultivar_id = ? AND region_id = ? AND season = ?", cultivarID, regionID, season).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CalibrationRow{}, false, nil
	}
	if err != nil {
		return CalibrationRow{}, false, err
	}
	return row, true, nil
}

func (s *Store) Apply(ctx context.Context, predicted float64, cultivarID, regionID string, season int) (calibration.ApplyResult, error) {
	calib, ok, err := s.Get(ctx, cultivarID, regionID, season)
	if err != nil {
		return calibration.ApplyResult{}, err
	}
	if !ok {
		return calibration.ApplyResult{Calibrated: predicted}, nil
	}
	calibrated := calibration.ClampBrix(predicted + calib.OffsetMean)
	return calibration.ApplyResult{
		Calibrated:      calibrated,
		Offset:          calib.OffsetMean,
		ConfidenceBoost: calibration.ConfidenceBoost(calib.SampleCount),
		SampleCount:     calib.SampleCount,
		CalibrationID:   fmt.Sprintf("%s|%s|%d", cultivarID, regionID, season),
	}, nil
}

// SubmitActual implements the read-modify-write-then-persist Welford update
// inside a transaction, mirroring CreateOilBatch's recompute-then-Save
// shape in the teacher. Concurrent writers racing on the same key each read
// their own snapshot and Save; per §5, exact convergence under concurrent
// updates is not required for this smoothing signal.
func (s *Store) SubmitActual(ctx context.Context, actual calibration.Actual) (string, error) {
	actualRow := ActualRow{
		CultivarID:  actual.CultivarID,
		RegionID:    actual.RegionID,
		Season:      actual.Season,
		MetricValue: actual.MetricValue,
		Source:      actual.Source,
		PredictionID: actual.PredictionID,
	}
	if actual.PredictedValue != nil {
		actualRow.HasPrediction = true
		actualRow.PredictedValue = *actual.PredictedValue
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&actualRow).Error; err != nil {
			return err
		}
		if actual.PredictedValue == nil {
			return nil
		}
		delta := actual.MetricValue - *actual.PredictedValue

		var row CalibrationRow
		err := tx.Where("cultivar_id = ? AND region_id = ? AND season = ?",
			actual.CultivarID, actual.RegionID, actual.Season).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = CalibrationRow{
				CultivarID: actual.CultivarID,
				RegionID:   actual.RegionID,
				Season:     actual.Season,
				OffsetMin:  delta,
				OffsetMax:  delta,
			}
		case err != nil:
			return err
		}

		welfordUpdateRow(&row, delta)
		row.IsActive = row.SampleCount >= s.minSamples
		row.UpdatedAt = time.Now()
		return tx.Save(&row).Error
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("actual-%d", actualRow.ID), nil
}

func welfordUpdateRow(row *CalibrationRow, x float64) {
	row.SampleCount++
	n := float64(row.SampleCount)
	delta := x - row.OffsetMean
	row.OffsetMean += delta / n
	delta2 := x - row.OffsetMean
	row.OffsetM2 += delta * delta2
	if n > 1 {
		row.OffsetStdDev = math.Sqrt(row.OffsetM2 / n)
	}
	if x < row.OffsetMin || row.SampleCount == 1 {
		row.OffsetMin = x
	}
	if x > row.OffsetMax || row.SampleCount == 1 {
		row.OffsetMax = x
	}
}

func toCalibration(row CalibrationRow) calibration.Calibration {
	return calibration.Calibration{
		Key:             calibration.Key{CultivarID: row.CultivarID, RegionID: row.RegionID, Season: row.Season},
		SampleCount:     row.SampleCount,
		OffsetMean:      row.OffsetMean,
		OffsetStdDev:    row.OffsetStdDev,
		OffsetMin:       row.OffsetMin,
		OffsetMax:       row.OffsetMax,
		MAEBefore:       row.MAEBefore,
		MAEAfter:        row.MAEAfter,
		ConfidenceBoost: calibration.ConfidenceBoost(row.SampleCount),
		IsActive:        row.IsActive,
		LastUpdated:     row.UpdatedAt,
	}
}

// Registry is a gorm-backed modelregistry.Registry, using the same
// transaction-guarded "clear old production, set new production" shape
// Promote requires for the §5 "at most one row has is_production=true"
// discipline.
type Registry struct {
	db *gorm.DB
}

// NewRegistry wraps db, auto-migrating the model_versions table.
func NewRegistry(db *gorm.DB) (*Registry, error) {
	if err := db.AutoMigrate(&ModelVersionRow{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrating model_versions: %w", err)
	}
	return &Registry{db: db}, nil
}

var _ modelregistry.Registry = (*Registry)(nil)

func (r *Registry) Get(ctx context.Context, version string) (modelregistry.ModelVersion, bool, error) {
	var row ModelVersionRow
	err := r.db.WithContext(ctx).Where("version = ?", version).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return modelregistry.ModelVersion{}, false, nil
	}
	if err != nil {
		return modelregistry.ModelVersion{}, false, err
	}
	return toModelVersion(row), true, nil
}

func (r *Registry) List(ctx context.Context) ([]modelregistry.ModelVersion, error) {
	var rows []ModelVersionRow
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]modelregistry.ModelVersion, 0, len(rows))
	for _, row := range rows {
		out = append(out, toModelVersion(row))
	}
	return out, nil
}

func (r *Registry) Register(ctx context.Context, mv modelregistry.ModelVersion) error {
	row := fromModelVersion(mv)
	row.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *Registry) Promote(ctx context.Context, version string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target ModelVersionRow
		if err := tx.Where("version = ?", version).First(&target).Error; err != nil {
			return err
		}

		if err := tx.Model(&ModelVersionRow{}).
			Where("is_production = ? AND version <> ?", true, version).
			Updates(map[string]any{"is_production": false, "is_rollback_target": true, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		return tx.Model(&target).Updates(map[string]any{
			"is_production":      true,
			"is_active":          true,
			"is_rollback_target": false,
			"updated_at":         time.Now(),
		}).Error
	})
}

func (r *Registry) Rollback(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rollbackTarget ModelVersionRow
		err := tx.Where("is_rollback_target = ?", true).First(&rollbackTarget).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&ModelVersionRow{}).
			Where("is_production = ?", true).
			Updates(map[string]any{"is_production": false, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		return tx.Model(&rollbackTarget).Updates(map[string]any{
			"is_production":      true,
			"is_rollback_target": false,
			"updated_at":         time.Now(),
		}).Error
	})
}

func (r *Registry) RecordOutcome(ctx context.Context, version string, mae float64, sampleCount int) error {
	return r.db.WithContext(ctx).Model(&ModelVersionRow{}).
		Where("version = ?", version).
		Updates(map[string]any{"mae": mae, "sample_count": sampleCount, "updated_at": time.Now()}).Error
}

func toModelVersion(row ModelVersionRow) modelregistry.ModelVersion {
	return modelregistry.ModelVersion{
		Version:           row.Version,
		IsActive:          row.IsActive,
		IsProduction:      row.IsProduction,
		IsRollbackTarget:  row.IsRollbackTarget,
		MAE:               row.MAE,
		SampleCount:       row.SampleCount,
		Features:          splitFeatures(row.FeaturesCSV),
		TrafficPercentage: row.TrafficPercentage,
		UpdatedAt:         row.UpdatedAt,
	}
}

func fromModelVersion(mv modelregistry.ModelVersion) ModelVersionRow {
	return ModelVersionRow{
		Version:           mv.Version,
		IsActive:          mv.IsActive,
		IsProduction:      mv.IsProduction,
		IsRollbackTarget:  mv.IsRollbackTarget,
		MAE:               mv.MAE,
		SampleCount:       mv.SampleCount,
		FeaturesCSV:       strings.Join(mv.Features, ","),
		TrafficPercentage: mv.TrafficPercentage,
	}
}

func splitFeatures(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
