// Package delegation selects the final team assigned to a task from ranked
// candidates and records an auditable decision per delegation.
package delegation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexalytics/taskforce/expertise"
	"github.com/nexalytics/taskforce/types"
)

// Decision is the immutable, auditable outcome of one delegation. A decision
// with an empty team and confidence 0 is a valid non-error outcome that
// callers must check for.
type Decision struct {
	ID               string                   `json:"id"`
	TaskID           string                   `json:"task_id"`
	RequestingAgent  string                   `json:"requesting_agent"`
	Agents           []string                 `json:"agents"` // ordered team
	Selected         []expertise.Candidate    `json:"selected"`
	Rationale        string                   `json:"rationale"`
	Confidence       float64                  `json:"confidence"` // [0,1]
	Strategy         types.DelegationStrategy `json:"strategy"`
	Alternatives     []string                 `json:"alternatives,omitempty"`
	ExpectedBenefits []string                 `json:"expected_benefits,omitempty"`
	Risks            []string                 `json:"risks,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

const maxAlternatives = 5

// Engine applies the task's delegation strategy to ranked candidates and
// keeps an append-only decision history.
type Engine struct {
	expertise  *expertise.Engine
	strategies map[types.DelegationStrategy]Strategy

	mu      sync.Mutex
	history []*Decision

	logger *zap.Logger
}

// NewEngine creates a delegation engine with all six strategies wired.
func NewEngine(exp *expertise.Engine, profiles expertise.ProfileSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	capability := capabilityStrategy{}
	performance := performanceStrategy{}
	quality := qualityStrategy{expertise: exp}

	strategies := map[types.DelegationStrategy]Strategy{
		types.StrategyCapability:  capability,
		types.StrategyWorkload:    workloadStrategy{profiles: profiles},
		types.StrategyPerformance: performance,
		types.StrategyCost:        costStrategy{profiles: profiles},
		types.StrategyQuality:     quality,
		types.StrategyHybrid:      hybridStrategy{inner: []Strategy{capability, performance, quality}},
	}

	return &Engine{
		expertise:  exp,
		strategies: strategies,
		logger:     logger.With(zap.String("component", "delegation_engine")),
	}
}

// Delegate ranks the candidates, applies the task's strategy and records the
// resulting decision. It never returns an error; an empty candidate list
// yields a degenerate decision with confidence 0.
func (e *Engine) Delegate(task *types.Task, candidateIDs []string, requestingAgent string) *Decision {
	decision := &Decision{
		ID:              uuid.New().String(),
		TaskID:          task.ID,
		RequestingAgent: requestingAgent,
		Strategy:        task.Strategy,
		CreatedAt:       time.Now(),
	}

	if len(candidateIDs) == 0 {
		decision.Rationale = "no suitable agents found"
		e.record(decision)
		return decision
	}

	strategy, ok := e.strategies[task.Strategy]
	if !ok {
		// Unknown strategies fall back to capability-based selection.
		strategy = e.strategies[types.StrategyCapability]
		decision.Strategy = types.StrategyCapability
	}

	ranked := e.expertise.Rank(task, candidateIDs)
	selected := strategy.Select(task, ranked)

	decision.Selected = selected
	decision.Agents = make([]string, 0, len(selected))
	for _, c := range selected {
		decision.Agents = append(decision.Agents, c.AgentID)
	}
	decision.Confidence = confidence(selected, task.Complexity)
	decision.Rationale = rationale(strategy.Name(), selected)
	decision.Alternatives = alternatives(ranked, decision.Agents)
	decision.ExpectedBenefits = benefits(strategy.Name(), selected)
	decision.Risks = risks(task, selected)

	e.record(decision)
	e.logger.Info("delegation decided",
		zap.String("task_id", task.ID),
		zap.String("strategy", string(decision.Strategy)),
		zap.Strings("agents", decision.Agents),
		zap.Float64("confidence", decision.Confidence),
	)
	return decision
}

// History returns a copy of the append-only decision history.
func (e *Engine) History() []*Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Decision(nil), e.history...)
}

func (e *Engine) record(d *Decision) {
	e.mu.Lock()
	e.history = append(e.history, d)
	e.mu.Unlock()
}

// confidence is the mean selected score damped by task complexity:
// mean(scores) * max(0.5, 1-(complexity-0.5)*0.5), clamped to [0,1].
func confidence(selected []expertise.Candidate, complexity float64) float64 {
	if len(selected) == 0 {
		return 0
	}
	var sum float64
	for _, c := range selected {
		sum += c.Score
	}
	mean := sum / float64(len(selected))

	penalty := 1 - (complexity-0.5)*0.5
	if penalty < 0.5 {
		penalty = 0.5
	}

	conf := mean * penalty
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

func rationale(strategy types.DelegationStrategy, selected []expertise.Candidate) string {
	if len(selected) == 0 {
		return "no suitable agents found"
	}
	top := selected[0]
	msg := fmt.Sprintf("%s strategy selected %s (score %.2f) as top pick", strategy, top.AgentID, top.Score)
	if len(selected) > 1 {
		rest := make([]string, 0, len(selected)-1)
		for _, c := range selected[1:] {
			rest = append(rest, c.AgentID)
		}
		msg += fmt.Sprintf("; supporting agents: %s", strings.Join(rest, ", "))
	}
	return msg
}

// alternatives lists up to 5 next-ranked candidates that were not selected.
func alternatives(ranked []expertise.Candidate, selected []string) []string {
	chosen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}
	var alts []string
	for _, c := range ranked {
		if _, ok := chosen[c.AgentID]; ok {
			continue
		}
		alts = append(alts, c.AgentID)
		if len(alts) == maxAlternatives {
			break
		}
	}
	return alts
}

func benefits(strategy types.DelegationStrategy, selected []expertise.Candidate) []string {
	var out []string
	if len(selected) > 1 {
		out = append(out, fmt.Sprintf("workload distributed across %d agents", len(selected)))
	}
	if len(selected) > 0 && selected[0].Score >= 0.8 {
		out = append(out, "high-fitness lead assignment")
	}
	switch strategy {
	case types.StrategyWorkload:
		out = append(out, "selection favors available capacity")
	case types.StrategyCost:
		out = append(out, "selection favors cost efficiency")
	case types.StrategyQuality:
		out = append(out, "selection favors proven domain expertise")
	case types.StrategyHybrid:
		out = append(out, "selection balances capability, performance and quality")
	}
	return out
}

// risks derives risk strings from fixed heuristics on team shape, deadline,
// fit and complexity.
func risks(task *types.Task, selected []expertise.Candidate) []string {
	var out []string
	if len(selected) > 3 {
		out = append(out, "coordination overhead: team larger than 3 agents")
	}
	if task.HasDeadline() {
		out = append(out, "time pressure: task carries a deadline")
	}
	for _, c := range selected {
		if c.Score < 0.5 {
			out = append(out, fmt.Sprintf("low fit: %s scored %.2f", c.AgentID, c.Score))
		}
	}
	if task.Complexity > 0.8 {
		out = append(out, "task complexity may exceed team capability")
	}
	return out
}
