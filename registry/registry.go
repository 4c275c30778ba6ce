// Package registry is the composition root of the delegation engine. It
// owns the known specialization profiles, wires the expertise, delegation
// and collaboration components together and exposes the platform-facing
// operations: register a specialization and orchestrate a task end to end.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nexalytics/taskforce/collaboration"
	"github.com/nexalytics/taskforce/delegation"
	"github.com/nexalytics/taskforce/expertise"
	"github.com/nexalytics/taskforce/internal/metrics"
	"github.com/nexalytics/taskforce/types"
)

// DefaultMinLevel is the minimum mapped-domain proficiency an agent needs
// to be considered for a task.
const DefaultMinLevel = types.LevelIntermediate

// DefaultMaxParticipants caps the team size of one collaboration session.
const DefaultMaxParticipants = 5

// Registry owns the specialization profiles and drives orchestration.
// Profile reads and writes are serialized; sessions and decisions are owned
// by the orchestration that created them and need no registry locking.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*types.SpecializationProfile

	expertise   *expertise.Engine
	delegation  *delegation.Engine
	coordinator *collaboration.Coordinator

	maxParticipants int
	metrics         *metrics.Collector
	logger          *zap.Logger
}

// Option configures a Registry.
type Option func(*config)

type config struct {
	weights         expertise.Weights
	maxParticipants int
	metrics         *metrics.Collector
	coordinatorOpts []collaboration.Option
	logger          *zap.Logger
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithFitnessWeights overrides the fitness blend.
func WithFitnessWeights(w expertise.Weights) Option {
	return func(c *config) { c.weights = w }
}

// WithMaxParticipants overrides the session team-size cap.
func WithMaxParticipants(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxParticipants = n
		}
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *config) { c.metrics = m }
}

// WithCoordinatorOptions passes options through to the collaboration
// coordinator (similarity measure, consensus tuning, pipeline order).
func WithCoordinatorOptions(opts ...collaboration.Option) Option {
	return func(c *config) { c.coordinatorOpts = append(c.coordinatorOpts, opts...) }
}

// NewRegistry creates a fully wired registry around the participant work
// callback.
func NewRegistry(work types.WorkFunc, opts ...Option) (*Registry, error) {
	if work == nil {
		return nil, types.NewError(types.ErrConfiguration, "participant work callback is required")
	}

	cfg := config{
		weights:         expertise.DefaultWeights(),
		maxParticipants: DefaultMaxParticipants,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	r := &Registry{
		profiles:        make(map[string]*types.SpecializationProfile),
		maxParticipants: cfg.maxParticipants,
		metrics:         cfg.metrics,
		logger:          cfg.logger.With(zap.String("component", "specialization_registry")),
	}

	r.expertise = expertise.NewEngine(r, expertise.NewMatrix(), cfg.weights, cfg.logger)
	r.delegation = delegation.NewEngine(r.expertise, r, cfg.logger)

	coordOpts := append([]collaboration.Option{
		collaboration.WithLogger(cfg.logger),
		collaboration.WithMetrics(cfg.metrics),
		collaboration.WithFitness(func(agentID string, task *types.Task) float64 {
			return r.expertise.Fitness(agentID, task)
		}),
	}, cfg.coordinatorOpts...)
	r.coordinator = collaboration.NewCoordinator(work, coordOpts...)

	return r, nil
}

// Register upserts a specialization profile. Re-registration by agent id is
// idempotent. The agent's expertise matrix row is recomputed from the
// profile's embedded performance records, so the matrix is always current
// after registration.
func (r *Registry) Register(profile *types.SpecializationProfile) error {
	if profile == nil || profile.AgentID == "" {
		return fmt.Errorf("agent id is required")
	}
	if profile.Capacity < 0 {
		return fmt.Errorf("agent %s: capacity must not be negative", profile.AgentID)
	}
	if profile.CurrentLoad > profile.Capacity {
		return fmt.Errorf("agent %s: current load %d exceeds capacity %d",
			profile.AgentID, profile.CurrentLoad, profile.Capacity)
	}

	stored := profile.Clone()
	if stored.CostFactor <= 0 {
		stored.CostFactor = 1
	}

	r.mu.Lock()
	r.profiles[stored.AgentID] = stored
	total := len(r.profiles)
	r.mu.Unlock()

	r.expertise.Assess(stored.AgentID, stored.Performance)

	r.metrics.SetRegisteredAgents(total)
	r.metrics.SetWorkloadUtilization(r.utilization())
	r.logger.Info("specialization registered",
		zap.String("agent_id", stored.AgentID),
		zap.String("specialization", string(stored.Specialization)),
		zap.String("level", stored.Level.String()),
	)
	return nil
}

// Profile returns a clone of the agent's stored profile. It implements
// expertise.ProfileSource.
func (r *Registry) Profile(agentID string) (*types.SpecializationProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[agentID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// FindAgents returns the de-duplicated union, across the required
// specializations, of agents whose specialization matches and whose
// mapped-domain expertise level is at least minLevel. The result is sorted
// by agent id for determinism.
func (r *Registry) FindAgents(required []types.Specialization, minLevel types.ProficiencyLevel) []string {
	seen := make(map[string]struct{})

	r.mu.RLock()
	for id, p := range r.profiles {
		for _, spec := range required {
			if p.Specialization != spec {
				continue
			}
			domain, ok := expertise.DomainFor(spec)
			if !ok {
				continue
			}
			if r.expertise.Level(id, domain) >= minLevel {
				seen[id] = struct{}{}
			}
		}
	}
	r.mu.RUnlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Orchestrate runs a task end to end: find candidates, delegate a team,
// open a collaboration session and execute its protocol. It returns the
// session even when the protocol fails internally; only a configuration
// problem or an empty candidate set raises an error, and both are raised
// before any session is created.
func (r *Registry) Orchestrate(ctx context.Context, task *types.Task) (*collaboration.Session, error) {
	found := r.FindAgents(task.RequiredSpecializations, DefaultMinLevel)
	available := r.withSpareCapacity(found)
	if len(available) == 0 {
		return nil, types.NewError(types.ErrNoCandidates,
			fmt.Sprintf("no suitable agents for task %s", task.ID))
	}

	var coordinatorID string
	if task.Pattern == types.PatternHierarchical || task.Pattern == types.PatternPipeline {
		coordinatorID = r.resolveCoordinator(task, available)
		if coordinatorID == "" {
			return nil, types.NewError(types.ErrConfiguration,
				fmt.Sprintf("no resolvable coordinator for %s task %s", task.Pattern, task.ID))
		}
	}

	requesting := "orchestrator"
	if v, ok := task.Context["requesting_agent"].(string); ok && v != "" {
		requesting = v
	}
	decision := r.delegation.Delegate(task, available, requesting)
	r.metrics.RecordDelegation(string(decision.Strategy), decision.Confidence)

	team := append([]string(nil), decision.Agents...)
	if len(team) > r.maxParticipants {
		team = team[:r.maxParticipants]
	}
	if coordinatorID != "" && !contains(team, coordinatorID) {
		if len(team) == r.maxParticipants {
			team[len(team)-1] = coordinatorID
		} else {
			team = append(team, coordinatorID)
		}
	}

	r.acquireWorkload(team)
	defer r.releaseWorkload(team)

	session := collaboration.NewSession(task, team, coordinatorID)
	r.logger.Info("orchestration started",
		zap.String("task_id", task.ID),
		zap.String("session_id", session.ID),
		zap.Strings("team", team),
	)
	r.coordinator.Execute(ctx, session)
	return session, nil
}

// DecisionHistory returns the append-only delegation decision history.
func (r *Registry) DecisionHistory() []*delegation.Decision {
	return r.delegation.History()
}

// withSpareCapacity filters out agents already at full workload, enforcing
// the load-never-exceeds-capacity invariant at assignment time.
func (r *Registry) withSpareCapacity(ids []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok && p.CurrentLoad < p.Capacity {
			out = append(out, id)
		}
	}
	return out
}

// resolveCoordinator prefers a coordinator-specialized agent over any raw
// fitness ranking; only when none is registered does the top-ranked
// candidate take the role.
func (r *Registry) resolveCoordinator(task *types.Task, candidates []string) string {
	r.mu.RLock()
	var coords []string
	for id, p := range r.profiles {
		if p.Specialization == types.SpecCoordinator && p.CurrentLoad < p.Capacity {
			coords = append(coords, id)
		}
	}
	r.mu.RUnlock()

	if len(coords) > 0 {
		return r.expertise.Rank(task, coords)[0].AgentID
	}
	ranked := r.expertise.Rank(task, candidates)
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0].AgentID
}

func (r *Registry) acquireWorkload(team []string) {
	r.mu.Lock()
	for _, id := range team {
		if p, ok := r.profiles[id]; ok && p.CurrentLoad < p.Capacity {
			p.CurrentLoad++
		}
	}
	r.mu.Unlock()
	r.metrics.SetWorkloadUtilization(r.utilization())
}

func (r *Registry) releaseWorkload(team []string) {
	r.mu.Lock()
	for _, id := range team {
		if p, ok := r.profiles[id]; ok && p.CurrentLoad > 0 {
			p.CurrentLoad--
		}
	}
	r.mu.Unlock()
	r.metrics.SetWorkloadUtilization(r.utilization())
}

func (r *Registry) utilization() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var load, capacity int
	for _, p := range r.profiles {
		load += p.CurrentLoad
		capacity += p.Capacity
	}
	if capacity == 0 {
		return 0
	}
	return float64(load) / float64(capacity)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
