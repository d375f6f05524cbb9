package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/*.json
var dataFS embed.FS

// Load parses the embedded catalog JSON files into a Catalog. It is called
// once at process start (see cmd/terroir-demo); the result is never
// mutated afterward.
func Load() (*Catalog, error) {
	cat := &Catalog{
		Categories:             make(map[Category]CategoryInfo),
		Cultivars:              make(map[string]Cultivar),
		USDAMinima:             make(map[string]USDAMinimum),
		BrixTiers:              make(map[string]BrixTierTable),
		Profiles:               make(map[Category][]Profile),
		TransformationProfiles: make(map[string]TransformationProfile),
	}

	var categories []CategoryInfo
	if err := readJSON("data/categories.json", &categories); err != nil {
		return nil, err
	}
	for _, c := range categories {
		cat.Categories[c.Category] = c
	}

	var cultivars []Cultivar
	if err := readJSON("data/cultivars.json", &cultivars); err != nil {
		return nil, err
	}
	for _, c := range cultivars {
		cat.Cultivars[c.ID] = c
	}

	var minima []USDAMinimum
	if err := readJSON("data/usda_minima.json", &minima); err != nil {
		return nil, err
	}
	for _, m := range minima {
		cat.USDAMinima[m.Crop] = m
	}

	var tiers []BrixTierTable
	if err := readJSON("data/brix_tiers.json", &tiers); err != nil {
		return nil, err
	}
	for _, t := range tiers {
		cat.BrixTiers[t.Crop] = t
	}

	var profiles []Profile
	if err := readJSON("data/profiles.json", &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		cat.Profiles[p.Category] = append(cat.Profiles[p.Category], p)
	}

	var transforms []TransformationProfile
	if err := readJSON("data/transformation_profiles.json", &transforms); err != nil {
		return nil, err
	}
	for _, t := range transforms {
		cat.TransformationProfiles[t.ID] = t
	}

	if err := cat.validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func readJSON(path string, v any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	return nil
}

// validate enforces the §3 invariants that are cheap to check at load time:
// every category has exactly one default profile, required/excluded claim
// sets are disjoint.
func (c *Catalog) validate() error {
	for category := range c.Categories {
		found := 0
		for _, p := range c.Profiles[category] {
			if p.IsDefault {
				found++
			}
			for _, req := range p.RequiredClaims {
				for _, exc := range p.ExcludedClaims {
					if req == exc {
						return fmt.Errorf("catalog: profile %s has claim %q in both required and excluded", p.ID, req)
					}
				}
			}
		}
		if found != 1 {
			return fmt.Errorf("catalog: category %s must have exactly one default profile, found %d", category, found)
		}
	}
	return nil
}
