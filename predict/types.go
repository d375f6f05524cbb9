// Package predict implements the Category Predictors (C6) and the
// Prediction Router (C7): a registry of category-dispatched predictors that
// share one contract (produce, vegetable, nut, livestock/eggs/dairy,
// seafood, honey, transformed), plus predict_unified, which wraps a raw
// predictor result with profile classification, calibration, and
// physical-constraint clamping (temporal decay is applied by the produce
// predictor itself).
package predict

import (
	"github.com/oleamind/terroir/catalog"
)

// PrimaryMetric carries the category's headline quality number.
type PrimaryMetric struct {
	Type          catalog.MetricType
	Value         float64
	Unit          string
	LowerIsBetter bool
}

// PillarKey names one of the five interpretive pillars.
type PillarKey string

const (
	PillarSoil         PillarKey = "soil"
	PillarHeritage     PillarKey = "heritage"
	PillarAgricultural PillarKey = "agricultural"
	PillarRipen        PillarKey = "ripen"
	PillarEnrich       PillarKey = "enrich"
)

// PillarContribution is one pillar's share of the explanation behind a
// prediction: a signed modifier (or, for non-additive pillars, a qualitative
// indicator string), a confidence in that pillar's own read, supporting
// detail, and zero or more short insight strings a narrative layer could
// surface verbatim.
type PillarContribution struct {
	Modifier  float64
	Indicator string
	Confidence float64
	Details   string
	Insights  []string
}

// ModelInfo carries provenance the caller may want to surface: which
// predictor ran, what profile informed it, and any non-fatal warnings
// collected along the way (§7: warnings are attached, never fatal).
type ModelInfo struct {
	PredictorVersion string
	ProfileID        string
	ProfileCode      string
	HarvestStatus    string
	Warnings         []string

	// Calibration provenance, populated by the router's step 4 (§4.6) so
	// the C8 feature extractor doesn't need its own calibration lookup.
	HasCalibration         bool
	CalibrationOffset      float64
	CalibrationSampleCount int
}

// Result is the Prediction Result entity from §3: a quality score, tier,
// confidence, the primary metric, and the five pillar contributions. Not
// persisted unless the A/B layer is logging experiment outcomes.
type Result struct {
	QualityScore float64
	Tier         string
	Confidence   float64
	Primary      PrimaryMetric
	Pillars      map[PillarKey]PillarContribution
	Info         ModelInfo
}

// Input is the tagged union described in §6: category selects which fields
// below are meaningful. Required: Category. Everything else is optional and
// category-appropriate; predictors ignore fields that don't apply to them.
type Input struct {
	Category    catalog.Category
	Subcategory string
	Claims      []string
	CultivarID  string
	VarietyID   string
	RegionID    string
	UserID      string
	Season      int // calibration.AllSeasons when unset

	// Produce / vegetable timing.
	CurrentGDD       float64
	TargetGDD        float64
	TreeAge          float64
	DaysSinceHarvest float64
	DaysUntilHarvest float64 // >0 for forecast-based (not-yet-occurred) predictions
	IsForecast       bool

	// Produce practice inputs.
	Rootstock      string
	FertilityApproach string // annual | soil_banking | mineralized_soil_science
	PestManagement string    // conventional | ipm | organic | no_spray
	CropLoadManaged bool

	// Vegetable.
	StorageCondition string // ambient | refrigerated | cold
	CureDaysElapsed  float64
	StorageMonthsElapsed float64

	// Livestock / eggs / dairy.
	AgeAtHarvestWeeks float64
	IsPoultry         bool

	// Seafood.
	CatchMethod string // wild | sustainable_farmed | farmed
	WaterType   string
	IsOyster    bool
	IsStoneCrab bool

	// Honey.
	Varietal    string
	IsRaw       bool
	MoisturePct float64

	// Transformed.
	TransformationID string

	// Measurements carries any raw measurement fields a caller already has
	// on hand (e.g. a lab Brix reading), keyed by the same field names
	// validation.DefaultPhysicalRanges uses. Predictors don't read this
	// directly; it exists for callers that want to validate alongside a
	// prediction.
	Measurements map[string]float64
}
