// Package expertise derives per-agent, per-domain proficiency from
// historical performance records and computes agent-task fitness.
package expertise

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nexalytics/taskforce/types"
)

// ProfileSource resolves an agent id to its specialization profile.
// Implemented by the registry; decoupled here to avoid a package cycle.
type ProfileSource interface {
	Profile(agentID string) (*types.SpecializationProfile, bool)
}

// Weights control the fitness blend. They should sum to 1.
type Weights struct {
	Specialization float64
	Skill          float64
	Availability   float64
}

// DefaultWeights returns the standard 0.4/0.4/0.2 fitness blend.
func DefaultWeights() Weights {
	return Weights{Specialization: 0.4, Skill: 0.4, Availability: 0.2}
}

// Candidate is one agent with its computed fitness score for a task.
type Candidate struct {
	AgentID string
	Score   float64
}

// Engine assesses expertise and scores agent-task fitness. It never returns
// errors: unknown agents score 0 and sort last.
type Engine struct {
	profiles ProfileSource
	matrix   *Matrix
	weights  Weights
	logger   *zap.Logger
}

// NewEngine creates an assessment engine over the given profile source and
// matrix store.
func NewEngine(profiles ProfileSource, matrix *Matrix, weights Weights, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matrix == nil {
		matrix = NewMatrix()
	}
	return &Engine{
		profiles: profiles,
		matrix:   matrix,
		weights:  weights,
		logger:   logger.With(zap.String("component", "expertise_engine")),
	}
}

// Matrix exposes the underlying store, mainly for report snapshots.
func (e *Engine) Matrix() *Matrix {
	return e.matrix
}

// Assess recomputes the agent's per-domain expertise from its performance
// records and overwrites the agent's matrix row.
//
// Each record contributes mean(success, quality, efficiency) to every domain
// its task type maps to, and every domain sum is divided by the TOTAL record
// count, not just the records touching that domain. An agent whose strong
// records are a small fraction of its history therefore scores low.
// Zero records yield an empty map.
func (e *Engine) Assess(agentID string, records map[string]types.PerformanceRecord) map[string]float64 {
	scores := make(map[string]float64)
	total := len(records)
	if total == 0 {
		e.matrix.SetRow(agentID, scores)
		return scores
	}

	sums := make(map[string]float64)
	for taskType, rec := range records {
		mean := (rec.SuccessRate + rec.QualityScore + rec.EfficiencyScore) / 3
		for _, domain := range taskTypeDomains[taskType] {
			sums[domain] += mean
		}
	}
	for domain, sum := range sums {
		scores[domain] = clamp01(sum / float64(total))
	}

	e.matrix.SetRow(agentID, scores)
	e.logger.Debug("expertise assessed",
		zap.String("agent_id", agentID),
		zap.Int("records", total),
		zap.Int("domains", len(scores)),
	)
	return scores
}

// Level maps the agent's domain score to a proficiency level.
func (e *Engine) Level(agentID, domain string) types.ProficiencyLevel {
	return LevelForScore(e.matrix.Score(agentID, domain))
}

// LevelForScore maps a score in [0,1] to a proficiency level.
func LevelForScore(score float64) types.ProficiencyLevel {
	switch {
	case score >= 0.9:
		return types.LevelMaster
	case score >= 0.8:
		return types.LevelExpert
	case score >= 0.6:
		return types.LevelAdvanced
	case score >= 0.4:
		return types.LevelIntermediate
	default:
		return types.LevelNovice
	}
}

// Fitness computes the agent-task match quality in [0,1] as a weighted sum
// of specialization fit, skill fit and workload availability.
func (e *Engine) Fitness(agentID string, task *types.Task) float64 {
	profile, ok := e.profiles.Profile(agentID)
	if !ok || profile == nil {
		return 0
	}

	specFit := e.specializationFit(agentID, task)
	skillFit := skillFit(profile, task.RequiredSkills)
	availability := profile.Availability()

	score := e.weights.Specialization*specFit +
		e.weights.Skill*skillFit +
		e.weights.Availability*availability
	return clamp01(score)
}

// specializationFit is the mean mapped-domain score over the task's
// required specializations. Unmapped specializations contribute 0; a task
// with no required specializations fits everyone equally.
func (e *Engine) specializationFit(agentID string, task *types.Task) float64 {
	if len(task.RequiredSpecializations) == 0 {
		return 1
	}
	var sum float64
	for _, spec := range task.RequiredSpecializations {
		if domain, ok := specializationDomains[spec]; ok {
			sum += e.matrix.Score(agentID, domain)
		}
	}
	return sum / float64(len(task.RequiredSpecializations))
}

// skillFit is the required-skill overlap ratio. An empty required-skill set
// is treated as a perfect fit rather than a division by zero.
func skillFit(profile *types.SpecializationProfile, required []string) float64 {
	if len(required) == 0 {
		return 1
	}
	matched := 0
	for _, skill := range required {
		if profile.HasSkill(skill) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// Rank scores every candidate and orders them by descending fitness, ties
// broken by ascending agent id. The ordering is deterministic across
// repeated calls on identical input.
func (e *Engine) Rank(task *types.Task, agentIDs []string) []Candidate {
	ranked := make([]Candidate, 0, len(agentIDs))
	for _, id := range agentIDs {
		ranked = append(ranked, Candidate{AgentID: id, Score: e.Fitness(id, task)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].AgentID < ranked[j].AgentID
	})
	return ranked
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
