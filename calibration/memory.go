package calibration

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oleamind/terroir/logging"
)

// row is the internal mutable state for one calibration key. M2 is
// Welford's running sum of squared deviations, kept alongside the exported
// Calibration snapshot so OffsetStdDev can be derived without revisiting
// history.
type row struct {
	calib Calibration
	m2    float64
}

// MemoryStore is the canonical Store implementation: a mutex-guarded map,
// grounded directly on the other_examples CatsMeow492-mev calibration
// system's sync.RWMutex-guarded map[Strategy][]*HistoricalResult shape,
// adapted from an append-only history to Welford running statistics (the
// spec requires O(1) incremental updates, not a recomputed batch).
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[Key]*row

	minSamples int
	maxBoost   float64
	maxSamples int

	actualSeq atomic.Int64
	log       *logging.Logger
}

// NewMemoryStore builds an empty in-memory calibration store.
func NewMemoryStore(log *logging.Logger) *MemoryStore {
	if log == nil {
		log = logging.Nop()
	}
	return &MemoryStore{
		rows:       make(map[Key]*row),
		minSamples: MinSamplesForCalibration,
		maxBoost:   MaxConfidenceBoost,
		maxSamples: SamplesForMaxConfidence,
		log:        log,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, cultivarID, regionID string, season int) (*Calibration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if season != AllSeasons {
		if r, ok := s.rows[Key{cultivarID, regionID, season}]; ok && r.calib.SampleCount >= s.minSamples {
			c := r.calib
			return &c, true, nil
		}
	}
	if r, ok := s.rows[Key{cultivarID, regionID, AllSeasons}]; ok && r.calib.SampleCount >= s.minSamples {
		c := r.calib
		return &c, true, nil
	}
	return nil, false, nil
}

func (s *MemoryStore) Apply(ctx context.Context, predicted float64, cultivarID, regionID string, season int) (ApplyResult, error) {
	calib, ok, err := s.Get(ctx, cultivarID, regionID, season)
	if err != nil {
		return ApplyResult{}, err
	}
	if !ok {
		return ApplyResult{Calibrated: predicted, Offset: 0, ConfidenceBoost: 0}, nil
	}
	calibrated := ClampBrix(predicted + calib.OffsetMean)
	return ApplyResult{
		Calibrated:      calibrated,
		Offset:          calib.OffsetMean,
		ConfidenceBoost: ConfidenceBoost(calib.SampleCount),
		SampleCount:     calib.SampleCount,
		CalibrationID:   calibrationID(calib.Key),
	}, nil
}

func (s *MemoryStore) SubmitActual(_ context.Context, actual Actual) (string, error) {
	if actual.PredictedValue == nil {
		// No linked prediction: there is no delta to fold into the running
		// statistics. The in-memory store keeps no log of actuals, so only
		// an id is issued.
		id := fmt.Sprintf("actual-%d", s.actualSeq.Add(1))
		return id, nil
	}

	delta := actual.MetricValue - *actual.PredictedValue
	key := Key{actual.CultivarID, actual.RegionID, actual.Season}

	s.mu.Lock()
	r, ok := s.rows[key]
	if !ok {
		r = &row{calib: Calibration{Key: key, OffsetMin: delta, OffsetMax: delta}}
		s.rows[key] = r
	}
	welfordUpdate(r, delta, actual.Timestamp)
	r.calib.ConfidenceBoost = ConfidenceBoost(r.calib.SampleCount)
	r.calib.IsActive = r.calib.SampleCount >= s.minSamples
	snapshot := r.calib
	s.mu.Unlock()

	s.log.Debug("calibration updated",
	)
	_ = snapshot
	id := fmt.Sprintf("actual-%d", s.actualSeq.Add(1))
	return id, nil
}

// welfordUpdate applies one step of Welford's online mean/variance
// algorithm to r, in place. count_{n+1} = count_n + 1; mean_{n+1} = mean_n
// + (x - mean_n) / count_{n+1}; M2 accumulates the matching squared-
// deviation term so stddev stays numerically stable without revisiting
// prior samples.
func welfordUpdate(r *row, x float64, ts time.Time) {
	r.calib.SampleCount++
	n := float64(r.calib.SampleCount)

	delta := x - r.calib.OffsetMean
	r.calib.OffsetMean += delta / n
	delta2 := x - r.calib.OffsetMean
	r.m2 += delta * delta2

	if n > 1 {
		r.calib.OffsetStdDev = math.Sqrt(r.m2 / n)
	}
	if x < r.calib.OffsetMin || r.calib.SampleCount == 1 {
		r.calib.OffsetMin = x
	}
	if x > r.calib.OffsetMax || r.calib.SampleCount == 1 {
		r.calib.OffsetMax = x
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	r.calib.LastUpdated = ts
}

func calibrationID(k Key) string {
	return fmt.Sprintf("%s|%s|%d", k.CultivarID, k.RegionID, k.Season)
}
