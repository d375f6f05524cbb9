// Package classifier implements the Profile Classifier (C3): given a
// category and a set of free-text claims, it scores every profile
// registered for that category and returns the single best
// non-disqualified match, or the category's commodity default.
package classifier

import (
	"strconv"
	"strings"
	"sync"

	"github.com/oleamind/terroir/apperrors"
	"github.com/oleamind/terroir/catalog"
	"github.com/oleamind/terroir/claims"
)

// Result is the outcome of one classify call.
type Result struct {
	Profile   catalog.Profile
	Score     int
	Warnings  []string
	Reasoning string
}

// Classifier holds a per-category term-table cache so repeated
// classifications don't re-intern the same profile vocabulary. Safe for
// concurrent use; the catalog it wraps is itself immutable.
type Classifier struct {
	cat *catalog.Catalog

	mu     sync.Mutex
	tables map[catalog.Category]*claims.TermTable
}

// New builds a Classifier over an already-loaded catalog.
func New(cat *catalog.Catalog) *Classifier {
	return &Classifier{cat: cat, tables: make(map[catalog.Category]*claims.TermTable)}
}

// Classify implements the C3 algorithm described in SPEC_FULL.md §4.2.
func (c *Classifier) Classify(category catalog.Category, rawClaims []string) (Result, error) {
	profiles := c.cat.ProfilesFor(category)
	if len(profiles) == 0 {
		return Result{}, apperrors.New(apperrors.ClassificationError, apperrors.CodeUnknownCategory,
			"no profiles registered for category "+string(category)).WithComponent("classifier")
	}

	normalized := claims.NormalizeAll(rawClaims)
	table := c.tableFor(category, profiles)
	submitted := table.BuildSubmittedSet(normalized)

	type candidate struct {
		profile catalog.Profile
		score   int
	}
	var candidates []candidate

	for _, p := range profiles {
		required := table.SetFromPhrases(p.RequiredClaims)
		excluded := table.SetFromPhrases(p.ExcludedClaims)
		optional := table.SetFromPhrases(p.OptionalClaims)

		if !claims.RequiredSatisfied(required, submitted) {
			continue
		}
		if claims.ExcludedTriggered(excluded, submitted) {
			continue
		}
		score := 10*claims.RequiredMatchCount(required, submitted) + 5*claims.OptionalMatchCount(optional, submitted)
		candidates = append(candidates, candidate{profile: p, score: score})
	}

	var best catalog.Profile
	var bestScore int
	reasoning := "no claims matched; returned category default"

	if len(candidates) == 0 {
		def, ok := c.cat.DefaultProfile(category)
		if !ok {
			return Result{}, apperrors.New(apperrors.InternalError, "", "category missing default profile").
				WithComponent("classifier").WithContext("category", category)
		}
		best = def
	} else {
		best = candidates[0].profile
		bestScore = candidates[0].score
		for _, cand := range candidates[1:] {
			if cand.score > bestScore ||
				(cand.score == bestScore && tieBreakBetter(cand.profile, best)) {
				best = cand.profile
				bestScore = cand.score
			}
		}
		reasoning = "matched profile " + best.Code + " with score " + strconv.Itoa(bestScore)
	}

	warnings := append([]string{}, best.Warnings...)
	warnings = append(warnings, organicWarning(category, normalized)...)

	return Result{Profile: best, Score: bestScore, Warnings: warnings, Reasoning: reasoning}, nil
}

// tieBreakBetter reports whether candidate beats current on the §4.2 tie
// break: lower qualityRank wins, then lower sortOrder.
func tieBreakBetter(candidate, current catalog.Profile) bool {
	if candidate.QualityRank != current.QualityRank {
		return candidate.QualityRank < current.QualityRank
	}
	return candidate.SortOrder < current.SortOrder
}

func (c *Classifier) tableFor(category catalog.Category, profiles []catalog.Profile) *claims.TermTable {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tables[category]; ok {
		return t
	}
	t := claims.NewTermTable()
	for _, p := range profiles {
		for _, phrase := range p.RequiredClaims {
			t.Intern(phrase) //nolint:errcheck // catalog vocabulary is well under the 64-term budget
		}
		for _, phrase := range p.ExcludedClaims {
			t.Intern(phrase) //nolint:errcheck
		}
		for _, phrase := range p.OptionalClaims {
			t.Intern(phrase) //nolint:errcheck
		}
	}
	c.tables[category] = t
	return t
}

// animalCategories is the set for which the CAFO-silence and
// organic-without-grass rules apply.
var animalCategories = map[catalog.Category]bool{
	catalog.CategoryLivestock: true,
	catalog.CategoryEggs:      true,
	catalog.CategoryDairy:     true,
}

// organicWarning implements the §4.2 "organic-meat warning": organic
// without any grass claim is flagged because organic constrains feed
// inputs only, not confinement.
func organicWarning(category catalog.Category, normalized []string) []string {
	if !animalCategories[category] {
		return nil
	}
	hasOrganic := false
	hasGrass := false
	for _, c := range normalized {
		if strings.Contains(c, "organic") {
			hasOrganic = true
		}
		if strings.Contains(c, "grass-fed") || strings.Contains(c, "grass-finished") || strings.Contains(c, "pasture-raised") {
			hasGrass = true
		}
	}
	if hasOrganic && !hasGrass {
		return []string{"organic does not imply grass-fed; it only constrains feed inputs"}
	}
	return nil
}
