// Package testutil provides shared fixtures for the engine's tests:
// canned participant work callbacks and a fluent profile builder.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexalytics/taskforce/types"
)

// StaticWorker returns a work callback that always succeeds with the given
// content template (the agent id is appended) and confidence.
func StaticWorker(content string, confidence float64) types.WorkFunc {
	return func(_ context.Context, agentID string, _ map[string]any) (*types.Contribution, error) {
		return &types.Contribution{
			AgentID:    agentID,
			Content:    fmt.Sprintf("%s from %s", content, agentID),
			Confidence: confidence,
			Timestamp:  time.Now(),
		}, nil
	}
}

// EchoWorker returns a work callback that echoes the step phase and, for
// pipeline stages, the chained input. Useful for asserting protocol wiring.
func EchoWorker() types.WorkFunc {
	return func(_ context.Context, agentID string, taskCtx map[string]any) (*types.Contribution, error) {
		content := fmt.Sprintf("%s:%v", agentID, taskCtx["phase"])
		if input, ok := taskCtx["input"]; ok && input != nil {
			content = fmt.Sprintf("%s<-%v", content, input)
		}
		return &types.Contribution{
			AgentID:    agentID,
			Content:    content,
			Confidence: 0.9,
			Timestamp:  time.Now(),
		}, nil
	}
}

// FailingWorker returns a work callback that fails for the listed agents
// and succeeds for everyone else.
func FailingWorker(err error, failFor ...string) types.WorkFunc {
	failing := make(map[string]struct{}, len(failFor))
	for _, id := range failFor {
		failing[id] = struct{}{}
	}
	ok := StaticWorker("result", 0.8)
	return func(ctx context.Context, agentID string, taskCtx map[string]any) (*types.Contribution, error) {
		if _, fail := failing[agentID]; fail || len(failing) == 0 {
			return nil, err
		}
		return ok(ctx, agentID, taskCtx)
	}
}

// CountingWorker wraps a work callback and counts invocations per agent.
type CountingWorker struct {
	mu     sync.Mutex
	counts map[string]int
	inner  types.WorkFunc
}

// NewCountingWorker wraps inner with per-agent invocation counting.
func NewCountingWorker(inner types.WorkFunc) *CountingWorker {
	return &CountingWorker{counts: make(map[string]int), inner: inner}
}

// Work is the wrapped callback.
func (w *CountingWorker) Work(ctx context.Context, agentID string, taskCtx map[string]any) (*types.Contribution, error) {
	w.mu.Lock()
	w.counts[agentID]++
	w.mu.Unlock()
	return w.inner(ctx, agentID, taskCtx)
}

// Count returns how often the agent was invoked.
func (w *CountingWorker) Count(agentID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[agentID]
}

// Total returns the total invocation count.
func (w *CountingWorker) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for _, n := range w.counts {
		total += n
	}
	return total
}

// ProfileBuilder builds specialization profiles fluently for tests.
type ProfileBuilder struct {
	profile *types.SpecializationProfile
}

// NewProfile starts a builder with sane defaults: capacity 5, no load,
// cost factor 1.
func NewProfile(agentID string, spec types.Specialization, level types.ProficiencyLevel) *ProfileBuilder {
	return &ProfileBuilder{profile: &types.SpecializationProfile{
		AgentID:        agentID,
		Specialization: spec,
		Level:          level,
		Capacity:       5,
		CostFactor:     1,
		Performance:    make(map[string]types.PerformanceRecord),
	}}
}

// WithSkills sets the skill tags.
func (b *ProfileBuilder) WithSkills(skills ...string) *ProfileBuilder {
	b.profile.Skills = skills
	return b
}

// WithCapacity sets capacity and current load.
func (b *ProfileBuilder) WithCapacity(capacity, load int) *ProfileBuilder {
	b.profile.Capacity = capacity
	b.profile.CurrentLoad = load
	return b
}

// WithCostFactor sets the cost factor.
func (b *ProfileBuilder) WithCostFactor(cost float64) *ProfileBuilder {
	b.profile.CostFactor = cost
	return b
}

// WithRecord adds one performance record, using the same value for
// success, quality and efficiency.
func (b *ProfileBuilder) WithRecord(taskType string, score float64) *ProfileBuilder {
	b.profile.Performance[taskType] = types.PerformanceRecord{
		SuccessRate:     score,
		QualityScore:    score,
		EfficiencyScore: score,
	}
	return b
}

// Build returns the assembled profile.
func (b *ProfileBuilder) Build() *types.SpecializationProfile {
	return b.profile
}
