package types

import "time"

// CoordinationPattern selects the multi-party execution protocol for a
// collaboration session.
type CoordinationPattern string

const (
	PatternPeerToPeer   CoordinationPattern = "peer_to_peer"
	PatternHierarchical CoordinationPattern = "hierarchical"
	PatternConsensus    CoordinationPattern = "consensus"
	PatternCompetitive  CoordinationPattern = "competitive"
	PatternCooperative  CoordinationPattern = "cooperative"
	PatternPipeline     CoordinationPattern = "pipeline"
)

// Sequential reports whether the pattern is inherently sequential and must
// not be parallelized beyond its protocol structure.
func (p CoordinationPattern) Sequential() bool {
	return p == PatternHierarchical || p == PatternPipeline
}

// DelegationStrategy selects how the final team is built from ranked
// candidates.
type DelegationStrategy string

const (
	StrategyCapability  DelegationStrategy = "capability_based"
	StrategyWorkload    DelegationStrategy = "workload_based"
	StrategyPerformance DelegationStrategy = "performance_based"
	StrategyCost        DelegationStrategy = "cost_based"
	StrategyQuality     DelegationStrategy = "quality_based"
	StrategyHybrid      DelegationStrategy = "hybrid"
)

// Task is one unit of work submitted to the orchestration layer.
// Tasks are immutable once submitted; the engine never mutates them.
type Task struct {
	ID                      string              `json:"id"`
	Description             string              `json:"description"`
	RequiredSpecializations []Specialization    `json:"required_specializations"`
	RequiredSkills          []string            `json:"required_skills,omitempty"`
	Pattern                 CoordinationPattern `json:"pattern"`
	Strategy                DelegationStrategy  `json:"strategy"`
	Complexity              float64             `json:"complexity"` // [0,1]
	Priority                int                 `json:"priority"`
	Deadline                time.Time           `json:"deadline"` // zero = none
	Context                 map[string]any      `json:"context,omitempty"`
}

// HasDeadline reports whether the task carries a deadline.
func (t *Task) HasDeadline() bool {
	return !t.Deadline.IsZero()
}
