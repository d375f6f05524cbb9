package ml

import "hash/fnv"

// Group is one arm of an A/B experiment.
type Group string

const (
	GroupControl   Group = "control"
	GroupTreatment Group = "treatment"
)

// Assignment is the AB Assignment entity from §3.
type Assignment struct {
	UserID       string
	ExperimentID string
	Group        Group
	ModelVersion string
}

// Assign implements the §4.7 stable A/B assignment: a deterministic hash of
// userID||experimentID, treatment when (hash mod 100)/100 < trafficSplit.
// The same user always lands in the same group for the same experiment,
// independent of call order or process restart (invariant 3 of §8's
// round-trip properties).
func Assign(userID, experimentID string, trafficSplit float64) Group {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID + "||" + experimentID))
	bucket := float64(h.Sum32()%100) / 100.0
	if bucket < trafficSplit {
		return GroupTreatment
	}
	return GroupControl
}
