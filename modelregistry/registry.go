// Package modelregistry tracks ML model versions for the C8 ML/A/B layer:
// which version is active, which is in production, which is the rollback
// target, and each version's measured MAE/sample count/traffic share.
// Promotion and rollback are the two operations requiring the "at most one
// production row" discipline called out in SPEC_FULL.md §5.
package modelregistry

import (
	"context"
	"sync"
	"time"
)

// ModelVersion is one row in the registry.
type ModelVersion struct {
	Version           string
	IsActive          bool
	IsProduction      bool
	IsRollbackTarget  bool
	MAE               float64
	SampleCount       int
	Features          []string
	TrafficPercentage float64
	UpdatedAt         time.Time
}

// Registry is the repository contract: an in-memory implementation
// (below) is canonical; calibration/gormstore provides an optional
// Postgres-backed implementation.
type Registry interface {
	Get(ctx context.Context, version string) (ModelVersion, bool, error)
	List(ctx context.Context) ([]ModelVersion, error)
	Register(ctx context.Context, mv ModelVersion) error
	// Promote marks version as production, first marking whatever was
	// previously production as a rollback target, then clearing its
	// production flag — so a subsequent Rollback is idempotent even if
	// called twice.
	Promote(ctx context.Context, version string) error
	// Rollback promotes the current rollback-target version back to
	// production. A no-op (not an error) when there is no rollback target.
	Rollback(ctx context.Context) error
	RecordOutcome(ctx context.Context, version string, mae float64, sampleCount int) error
}

// MemoryRegistry is a mutex-guarded in-memory Registry.
type MemoryRegistry struct {
	mu       sync.Mutex
	versions map[string]*ModelVersion
}

// NewMemoryRegistry builds an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{versions: make(map[string]*ModelVersion)}
}

var _ Registry = (*MemoryRegistry)(nil)

func (r *MemoryRegistry) Get(_ context.Context, version string) (ModelVersion, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mv, ok := r.versions[version]
	if !ok {
		return ModelVersion{}, false, nil
	}
	return *mv, true, nil
}

func (r *MemoryRegistry) List(_ context.Context) ([]ModelVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ModelVersion, 0, len(r.versions))
	for _, mv := range r.versions {
		out = append(out, *mv)
	}
	return out, nil
}

func (r *MemoryRegistry) Register(_ context.Context, mv ModelVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mv.UpdatedAt = timeNow()
	r.versions[mv.Version] = &mv
	return nil
}

func (r *MemoryRegistry) Promote(_ context.Context, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.versions[version]
	if !ok {
		return errUnknownVersion(version)
	}

	for v, mv := range r.versions {
		if mv.IsProduction && v != version {
			mv.IsRollbackTarget = true
			mv.IsProduction = false
			mv.UpdatedAt = timeNow()
		}
	}

	target.IsProduction = true
	target.IsActive = true
	target.IsRollbackTarget = false
	target.UpdatedAt = timeNow()
	return nil
}

func (r *MemoryRegistry) Rollback(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rollbackTarget *ModelVersion
	for _, mv := range r.versions {
		if mv.IsRollbackTarget {
			rollbackTarget = mv
			break
		}
	}
	if rollbackTarget == nil {
		return nil
	}

	for _, mv := range r.versions {
		if mv.IsProduction {
			mv.IsProduction = false
			mv.UpdatedAt = timeNow()
		}
	}
	rollbackTarget.IsProduction = true
	rollbackTarget.IsRollbackTarget = false
	rollbackTarget.UpdatedAt = timeNow()
	return nil
}

func (r *MemoryRegistry) RecordOutcome(_ context.Context, version string, mae float64, sampleCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mv, ok := r.versions[version]
	if !ok {
		return errUnknownVersion(version)
	}
	mv.MAE = mae
	mv.SampleCount = sampleCount
	mv.UpdatedAt = timeNow()
	return nil
}

type errUnknownVersion string

func (e errUnknownVersion) Error() string { return "modelregistry: unknown version " + string(e) }

func timeNow() time.Time { return time.Now() }
