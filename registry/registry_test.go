package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexalytics/taskforce/collaboration"
	"github.com/nexalytics/taskforce/testutil"
	"github.com/nexalytics/taskforce/types"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(testutil.EchoWorker(), opts...)
	require.NoError(t, err)
	return r
}

// analyst builds a data analyst whose single strong record puts it at master
// level in the data_analysis domain.
func analyst(id string) *types.SpecializationProfile {
	return testutil.NewProfile(id, types.SpecDataAnalyst, types.LevelExpert).
		WithRecord("data_analysis", 0.9).
		Build()
}

func analysisTask(pattern types.CoordinationPattern) *types.Task {
	return &types.Task{
		ID:                      "t1",
		Description:             "analyze churn drivers",
		RequiredSpecializations: []types.Specialization{types.SpecDataAnalyst},
		Pattern:                 pattern,
		Strategy:                types.StrategyPerformance,
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewRegistry_RequiresWorker(t *testing.T) {
	t.Parallel()
	_, err := NewRegistry(nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrConfiguration))
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&types.SpecializationProfile{}))

	negative := analyst("a1")
	negative.Capacity = -1
	assert.Error(t, r.Register(negative))

	overloaded := analyst("a1")
	overloaded.Capacity = 2
	overloaded.CurrentLoad = 3
	assert.Error(t, r.Register(overloaded))
}

func TestRegister_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	require.NoError(t, r.Register(analyst("a1")))
	require.NoError(t, r.Register(analyst("a1")))

	assert.Equal(t, 1, r.GetOverview().TotalAgents)
}

func TestRegister_StoresClone(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	p := analyst("a1")
	require.NoError(t, r.Register(p))
	p.Skills = append(p.Skills, "mutated-after-register")

	stored, ok := r.Profile("a1")
	require.True(t, ok)
	assert.NotContains(t, stored.Skills, "mutated-after-register")
}

func TestRegister_RecomputesExpertise(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	require.NoError(t, r.Register(analyst("a1")))

	report, err := r.GetPerformanceReport("a1")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, report.Expertise["data_analysis"], 1e-9)
	assert.Equal(t, "master", report.Levels["data_analysis"])
}

func TestRegister_DefaultsNonPositiveCostFactor(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	p := analyst("a1")
	p.CostFactor = 0
	require.NoError(t, r.Register(p))

	stored, ok := r.Profile("a1")
	require.True(t, ok)
	assert.InDelta(t, 1.0, stored.CostFactor, 1e-9)
}

// ---------------------------------------------------------------------------
// FindAgents
// ---------------------------------------------------------------------------

func TestFindAgents_FiltersByLevelAndSpecialization(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	require.NoError(t, r.Register(analyst("strong")))
	weak := testutil.NewProfile("weak", types.SpecDataAnalyst, types.LevelNovice).
		WithRecord("data_analysis", 0.3). // novice in the mapped domain
		Build()
	require.NoError(t, r.Register(weak))
	other := testutil.NewProfile("other", types.SpecValidator, types.LevelExpert).
		WithRecord("data_validation", 0.9).
		Build()
	require.NoError(t, r.Register(other))

	found := r.FindAgents([]types.Specialization{types.SpecDataAnalyst}, DefaultMinLevel)
	assert.Equal(t, []string{"strong"}, found)
}

func TestFindAgents_UnionAcrossSpecializations(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	require.NoError(t, r.Register(analyst("a1")))
	validator := testutil.NewProfile("v1", types.SpecValidator, types.LevelExpert).
		WithRecord("data_validation", 0.9).
		Build()
	require.NoError(t, r.Register(validator))

	found := r.FindAgents(
		[]types.Specialization{types.SpecDataAnalyst, types.SpecValidator},
		DefaultMinLevel,
	)
	assert.Equal(t, []string{"a1", "v1"}, found, "sorted union of both specializations")
}

// ---------------------------------------------------------------------------
// Orchestrate
// ---------------------------------------------------------------------------

func TestOrchestrate_PeerToPeerEndToEnd(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	require.NoError(t, r.Register(analyst("a1")))
	require.NoError(t, r.Register(analyst("a2")))

	session, err := r.Orchestrate(context.Background(), analysisTask(types.PatternPeerToPeer))
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, collaboration.StateCompleted, session.State())
	assert.ElementsMatch(t, []string{"a1", "a2"}, session.Participants)
	assert.Len(t, session.Contributions(), 2)

	history := r.DecisionHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "t1", history[0].TaskID)
	assert.Equal(t, "orchestrator", history[0].RequestingAgent)
}

func TestOrchestrate_NoCandidates(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	require.NoError(t, r.Register(analyst("a1")))

	task := analysisTask(types.PatternPeerToPeer)
	task.RequiredSpecializations = []types.Specialization{types.SpecOptimizer}

	session, err := r.Orchestrate(context.Background(), task)
	assert.Nil(t, session)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNoCandidates))
}

func TestOrchestrate_AtCapacityAgentsExcluded(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	full := analyst("full")
	full.Capacity = 2
	full.CurrentLoad = 2
	require.NoError(t, r.Register(full))

	_, err := r.Orchestrate(context.Background(), analysisTask(types.PatternPeerToPeer))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNoCandidates))
}

func TestOrchestrate_HierarchicalPrefersRegisteredCoordinator(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	require.NoError(t, r.Register(analyst("a1")))
	require.NoError(t, r.Register(analyst("a2")))

	coord := testutil.NewProfile("coord", types.SpecCoordinator, types.LevelExpert).
		WithRecord("workflow_coordination", 0.9).
		Build()
	require.NoError(t, r.Register(coord))

	session, err := r.Orchestrate(context.Background(), analysisTask(types.PatternHierarchical))
	require.NoError(t, err)

	assert.Equal(t, "coord", session.CoordinatorID)
	assert.Contains(t, session.Participants, "coord")
	assert.Equal(t, collaboration.StateCompleted, session.State())
}

func TestOrchestrate_HierarchicalFallsBackToTopCandidate(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	require.NoError(t, r.Register(analyst("a1")))
	require.NoError(t, r.Register(analyst("a2")))

	session, err := r.Orchestrate(context.Background(), analysisTask(types.PatternHierarchical))
	require.NoError(t, err)

	// No coordinator specialization registered; the top-ranked candidate
	// takes the role. Ties break by ascending id.
	assert.Equal(t, "a1", session.CoordinatorID)
}

func TestOrchestrate_ProtocolFailureDoesNotEscape(t *testing.T) {
	t.Parallel()
	r, err := NewRegistry(testutil.FailingWorker(errors.New("boom")))
	require.NoError(t, err)
	require.NoError(t, r.Register(analyst("a1")))

	session, err := r.Orchestrate(context.Background(), analysisTask(types.PatternPeerToPeer))
	require.NoError(t, err, "protocol failures are captured in the session")
	require.NotNil(t, session)

	assert.Equal(t, collaboration.StateFailed, session.State())
	v, ok := session.Shared("error")
	require.True(t, ok)
	assert.Contains(t, v, "boom")
}

func TestOrchestrate_WorkloadReleasedAfterSession(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	require.NoError(t, r.Register(analyst("a1")))

	_, err := r.Orchestrate(context.Background(), analysisTask(types.PatternPeerToPeer))
	require.NoError(t, err)

	p, ok := r.Profile("a1")
	require.True(t, ok)
	assert.Zero(t, p.CurrentLoad)
}

func TestOrchestrate_TeamCappedAtMaxParticipants(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, WithMaxParticipants(2))
	for i := 0; i < 4; i++ {
		require.NoError(t, r.Register(analyst(fmt.Sprintf("a%d", i))))
	}

	session, err := r.Orchestrate(context.Background(), analysisTask(types.PatternPeerToPeer))
	require.NoError(t, err)
	assert.Len(t, session.Participants, 2)
}

func TestOrchestrate_RequestingAgentFromTaskContext(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	require.NoError(t, r.Register(analyst("a1")))

	task := analysisTask(types.PatternPeerToPeer)
	task.Context = map[string]any{"requesting_agent": "supervisor-7"}

	_, err := r.Orchestrate(context.Background(), task)
	require.NoError(t, err)

	history := r.DecisionHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "supervisor-7", history[0].RequestingAgent)
}
