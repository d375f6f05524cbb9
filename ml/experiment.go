package ml

import "sync"

// groupStats accumulates an A/B group's outcome distribution using the same
// Welford running-mean update the calibration store uses, so experiment
// evidence stays numerically stable without retaining every observation.
type groupStats struct {
	count int
	mean  float64
}

func (g *groupStats) add(x float64) {
	g.count++
	g.mean += (x - g.mean) / float64(g.count)
}

// ExperimentResult is the A/B evidence surfaced for one experiment: each
// group's sample count and running mean outcome, ready for a caller to
// compare control against treatment.
type ExperimentResult struct {
	ExperimentID string
	ControlCount int
	ControlMean  float64
	TreatmentCount int
	TreatmentMean  float64
}

// ExperimentAggregator folds per-request outcomes into running per-
// (experiment, group) statistics for later comparison.
type ExperimentAggregator struct {
	mu    sync.Mutex
	stats map[string]map[Group]*groupStats
}

// NewExperimentAggregator builds an empty aggregator.
func NewExperimentAggregator() *ExperimentAggregator {
	return &ExperimentAggregator{stats: make(map[string]map[Group]*groupStats)}
}

// Record folds one outcome into the running statistics for
// (assignment.ExperimentID, assignment.Group).
func (a *ExperimentAggregator) Record(assignment Assignment, outcome float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	byGroup, ok := a.stats[assignment.ExperimentID]
	if !ok {
		byGroup = make(map[Group]*groupStats)
		a.stats[assignment.ExperimentID] = byGroup
	}
	g, ok := byGroup[assignment.Group]
	if !ok {
		g = &groupStats{}
		byGroup[assignment.Group] = g
	}
	g.add(outcome)
}

// Result returns the current A/B evidence for one experiment.
func (a *ExperimentAggregator) Result(experimentID string) ExperimentResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := ExperimentResult{ExperimentID: experimentID}
	byGroup, ok := a.stats[experimentID]
	if !ok {
		return res
	}
	if c, ok := byGroup[GroupControl]; ok {
		res.ControlCount, res.ControlMean = c.count, c.mean
	}
	if t, ok := byGroup[GroupTreatment]; ok {
		res.TreatmentCount, res.TreatmentMean = t.count, t.mean
	}
	return res
}
