// Command terroir-demo is the small demonstration entrypoint §6 allows: it
// wires the catalog, classifier, validation engine, calibration store, and
// prediction router together and runs a handful of predictions end to end.
// It owns no wire protocol and no HTTP surface — those are explicit
// non-goals of the core (§1).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oleamind/terroir/calibration"
	"github.com/oleamind/terroir/catalog"
	"github.com/oleamind/terroir/classifier"
	"github.com/oleamind/terroir/config"
	"github.com/oleamind/terroir/logging"
	"github.com/oleamind/terroir/ml"
	"github.com/oleamind/terroir/predict"
	"github.com/oleamind/terroir/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "terroir-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer log.Sync() //nolint:errcheck // best-effort flush on process exit

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	cls := classifier.New(cat)
	calib := calibration.NewMemoryStore(log)
	validator := validation.New(nil, cfg.Validation.AnomalyZThreshold)
	registry := predict.NewRegistry()

	var enhancer predict.Enhancer
	if cfg.ML.ABTrafficSplit > 0 {
		enhancer = ml.NewService(ml.Config{
			APIURL:         cfg.ML.APIURL,
			APITimeout:     cfg.ML.APITimeout,
			ABTrafficSplit: cfg.ML.ABTrafficSplit,
			ExperimentID:   "brix-v2-rollout",
			ModelVersion:   "v2",
		}, log)
	}

	router := predict.New(cat, registry, cls, calib, validator, enhancer, log)

	ctx := context.Background()

	fmt.Println("=== Silence routes to marketing-grass ===")
	printResult(router.Predict(ctx, predict.Input{
		Category: catalog.CategoryLivestock,
		Claims:   []string{"grass-fed"},
	}))

	fmt.Println("=== Explicit CAFO-exclusion routes to true grass ===")
	printResult(router.Predict(ctx, predict.Input{
		Category: catalog.CategoryLivestock,
		Claims:   []string{"100% grass-fed", "grass-finished"},
	}))

	fmt.Println("=== Produce at GDD peak ===")
	printResult(router.Predict(ctx, predict.Input{
		Category:   catalog.CategoryProduce,
		CultivarID: "washington_navel",
		RegionID:   "florida",
		CurrentGDD: 3200,
		TargetGDD:  3200,
		TreeAge:    10,
	}))

	fmt.Println("=== Honey, raw manuka ===")
	printResult(router.Predict(ctx, predict.Input{
		Category: catalog.CategoryHoney,
		Varietal: "manuka",
		IsRaw:    true,
	}))

	return nil
}

func printResult(res predict.Result, err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("  primary=%s value=%.2f%s tier=%s score=%.1f confidence=%.2f\n",
		res.Primary.Type, res.Primary.Value, res.Primary.Unit, res.Tier, res.QualityScore, res.Confidence)
	for _, w := range res.Info.Warnings {
		fmt.Println("  warning:", w)
	}
	fmt.Println()
}
