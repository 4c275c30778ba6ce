package delegation

import (
	"sort"

	"github.com/nexalytics/taskforce/expertise"
	"github.com/nexalytics/taskforce/types"
)

// Strategy builds the final team from ranked candidates. One implementation
// exists per delegation strategy so dispatch stays exhaustive and each
// policy is testable in isolation.
type Strategy interface {
	Name() types.DelegationStrategy
	Select(task *types.Task, ranked []expertise.Candidate) []expertise.Candidate
}

const defaultTeamSize = 3

// capabilityStrategy picks the top N candidates where N is the number of
// required specializations (at least 1).
type capabilityStrategy struct{}

func (capabilityStrategy) Name() types.DelegationStrategy { return types.StrategyCapability }

func (capabilityStrategy) Select(task *types.Task, ranked []expertise.Candidate) []expertise.Candidate {
	n := len(task.RequiredSpecializations)
	if n < 1 {
		n = 1
	}
	return topN(ranked, n)
}

// workloadStrategy re-scores candidates by their workload slack so lightly
// loaded agents win over marginally better-fitting busy ones.
type workloadStrategy struct {
	profiles expertise.ProfileSource
}

func (workloadStrategy) Name() types.DelegationStrategy { return types.StrategyWorkload }

func (s workloadStrategy) Select(task *types.Task, ranked []expertise.Candidate) []expertise.Candidate {
	rescored := make([]expertise.Candidate, 0, len(ranked))
	for _, c := range ranked {
		availability := 0.0
		if p, ok := s.profiles.Profile(c.AgentID); ok {
			availability = p.Availability()
		}
		rescored = append(rescored, expertise.Candidate{AgentID: c.AgentID, Score: c.Score * availability})
	}
	sortCandidates(rescored)
	return topN(rescored, defaultTeamSize)
}

// performanceStrategy takes the top candidates by raw fitness.
type performanceStrategy struct{}

func (performanceStrategy) Name() types.DelegationStrategy { return types.StrategyPerformance }

func (performanceStrategy) Select(_ *types.Task, ranked []expertise.Candidate) []expertise.Candidate {
	return topN(ranked, defaultTeamSize)
}

// costStrategy re-scores candidates by fitness per cost unit. A missing or
// non-positive cost factor counts as 1.
type costStrategy struct {
	profiles expertise.ProfileSource
}

func (costStrategy) Name() types.DelegationStrategy { return types.StrategyCost }

func (s costStrategy) Select(task *types.Task, ranked []expertise.Candidate) []expertise.Candidate {
	rescored := make([]expertise.Candidate, 0, len(ranked))
	for _, c := range ranked {
		cost := 1.0
		if p, ok := s.profiles.Profile(c.AgentID); ok && p.CostFactor > 0 {
			cost = p.CostFactor
		}
		rescored = append(rescored, expertise.Candidate{AgentID: c.AgentID, Score: c.Score / cost})
	}
	sortCandidates(rescored)
	return topN(rescored, defaultTeamSize)
}

// qualityStrategy grants a 0.2 bonus per required specialization where the
// agent is expert or master in the mapped domain, clamped to 1.0.
type qualityStrategy struct {
	expertise *expertise.Engine
}

func (qualityStrategy) Name() types.DelegationStrategy { return types.StrategyQuality }

func (s qualityStrategy) Select(task *types.Task, ranked []expertise.Candidate) []expertise.Candidate {
	rescored := make([]expertise.Candidate, 0, len(ranked))
	for _, c := range ranked {
		score := c.Score
		for _, spec := range task.RequiredSpecializations {
			domain, ok := expertise.DomainFor(spec)
			if !ok {
				continue
			}
			if s.expertise.Level(c.AgentID, domain) >= types.LevelExpert {
				score += 0.2
			}
		}
		if score > 1 {
			score = 1
		}
		rescored = append(rescored, expertise.Candidate{AgentID: c.AgentID, Score: score})
	}
	sortCandidates(rescored)
	return topN(rescored, defaultTeamSize)
}

// hybridStrategy runs the capability, performance and quality strategies
// and combines them: per agent, each strategy that ranked it contributes
// score divided by its 1-based rank position, unranked strategies
// contribute 0, and the sum is divided by the number of strategies.
type hybridStrategy struct {
	inner []Strategy
}

func (hybridStrategy) Name() types.DelegationStrategy { return types.StrategyHybrid }

func (s hybridStrategy) Select(task *types.Task, ranked []expertise.Candidate) []expertise.Candidate {
	combined := make(map[string]float64)
	for _, strat := range s.inner {
		for pos, c := range strat.Select(task, ranked) {
			combined[c.AgentID] += c.Score / float64(pos+1)
		}
	}

	rescored := make([]expertise.Candidate, 0, len(combined))
	for id, sum := range combined {
		rescored = append(rescored, expertise.Candidate{
			AgentID: id,
			Score:   sum / float64(len(s.inner)),
		})
	}
	sortCandidates(rescored)
	return topN(rescored, defaultTeamSize)
}

func topN(ranked []expertise.Candidate, n int) []expertise.Candidate {
	if n > len(ranked) {
		n = len(ranked)
	}
	return append([]expertise.Candidate(nil), ranked[:n]...)
}

func sortCandidates(cs []expertise.Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].AgentID < cs[j].AgentID
	})
}
