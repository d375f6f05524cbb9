package predict

import "github.com/oleamind/terroir/catalog"

// Predictor is the shared capability every category implementation
// provides — the polymorphism-over-categories design from SPEC_FULL.md §9:
// a registry map replaces dynamic dispatch, and each predictor is a value
// implementing this small interface rather than a subclass.
type Predictor interface {
	// CanHandle reports whether this predictor owns category.
	CanHandle(category catalog.Category) bool

	// PrimaryMetricType names the metric this predictor reports.
	PrimaryMetricType() catalog.MetricType

	// Predict computes the raw (uncalibrated) prediction for in, given the
	// loaded catalog and the profile the router resolved: the classifier's
	// match when in.Claims is non-empty, else the category's default
	// profile. ProducePredictor applies temporal confidence decay itself;
	// the other predictors apply none.
	Predict(cat *catalog.Catalog, in Input, profile catalog.Profile) (Result, error)
}

// Registry maps a category to the predictor responsible for it.
type Registry struct {
	predictors map[catalog.Category]Predictor
}

// NewRegistry builds the registry wired with every C6 predictor.
func NewRegistry() *Registry {
	r := &Registry{predictors: make(map[catalog.Category]Predictor)}

	produce := &ProducePredictor{}
	vegetable := &VegetablePredictor{}
	nut := &NutPredictor{}
	livestock := &LivestockPredictor{}
	seafood := &SeafoodPredictor{}
	honey := &HoneyPredictor{}
	transformed := &TransformedPredictor{}

	r.register(catalog.CategoryProduce, produce)
	r.register(catalog.CategoryVegetables, vegetable)
	r.register(catalog.CategoryNut, nut)
	r.register(catalog.CategoryLivestock, livestock)
	r.register(catalog.CategoryEggs, livestock)
	r.register(catalog.CategoryDairy, livestock)
	r.register(catalog.CategorySeafood, seafood)
	r.register(catalog.CategoryHoney, honey)
	r.register(catalog.CategoryTransformed, transformed)

	return r
}

func (r *Registry) register(category catalog.Category, p Predictor) {
	r.predictors[category] = p
}

// For returns the predictor registered for category, or (nil, false) when
// the category is unknown — the §7 "unknown category" fatal case.
func (r *Registry) For(category catalog.Category) (Predictor, bool) {
	p, ok := r.predictors[category]
	return p, ok
}
