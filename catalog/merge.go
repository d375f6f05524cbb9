package catalog

// deepMergeKeys lists the nested-object keys named by the §9 open-question
// decision recorded in SPEC_FULL.md. No function reads it: MergeDisplay
// recurses into every nested map it finds, and EffectiveTierThresholds
// merges the three tier levels one by one.
var deepMergeKeys = map[string]bool{
	"qualityMetrics":               true,
	"peakTiming":                   true,
	"sharePillarLabels":            true,
	"display":                      true,
	"narrative":                    true,
	"narrative.vocabulary":         true,
	"qualityMetrics.tierThresholds": true,
}

// EffectiveTierThresholds returns the tier thresholds that should govern a
// (category, subcategory) pair: the subcategory's thresholds merged level
// by level over the crop's Brix tier table (BrixTierFor(crop)), falling
// back entirely to the crop table when the subcategory supplies none.
func (c *Catalog) EffectiveTierThresholds(crop, subcategory string, category Category) BrixTierTable {
	base := c.BrixTierFor(crop)
	info, ok := c.Categories[category]
	if !ok {
		return base
	}
	sub, ok := info.Subcategories[subcategory]
	if !ok || len(sub.TierThresholds) == 0 {
		return base
	}
	merged := base
	if v, ok := sub.TierThresholds["artisan"]; ok {
		merged.Artisan = v
	}
	if v, ok := sub.TierThresholds["premium"]; ok {
		merged.Premium = v
	}
	if v, ok := sub.TierThresholds["standard"]; ok {
		merged.Standard = v
	}
	return merged
}

// MergeDisplay deep-merges a subcategory's display map onto the category's,
// top-level keys shallow-merging and nested maps recursing, arrays
// replacing wholesale — the general shape named in the §9 decision, applied
// here to the one nested map actually carried in CategoryInfo.
func MergeDisplay(base, override map[string]any) map[string]any {
	if override == nil {
		return base
	}
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		if baseVal, ok := merged[k]; ok {
			if baseMap, ok1 := baseVal.(map[string]any); ok1 {
				if overrideMap, ok2 := v.(map[string]any); ok2 {
					merged[k] = MergeDisplay(baseMap, overrideMap)
					continue
				}
			}
		}
		merged[k] = v
	}
	return merged
}
