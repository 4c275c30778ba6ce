package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexalytics/taskforce/testutil"
	"github.com/nexalytics/taskforce/types"
)

func TestGetOverview(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	require.NoError(t, r.Register(analyst("a1")))
	require.NoError(t, r.Register(analyst("a2")))
	validator := testutil.NewProfile("v1", types.SpecValidator, types.LevelAdvanced).
		WithCapacity(4, 2).
		Build()
	require.NoError(t, r.Register(validator))

	o := r.GetOverview()
	assert.Equal(t, 3, o.TotalAgents)
	assert.Equal(t, 2, o.BySpecialization[types.SpecDataAnalyst])
	assert.Equal(t, 1, o.BySpecialization[types.SpecValidator])
	assert.Equal(t, 2, o.ByLevel["expert"])
	assert.Equal(t, 1, o.ByLevel["advanced"])
	// 2 of 14 capacity slots in use.
	assert.InDelta(t, 2.0/14, o.WorkloadUtilization, 1e-9)
}

func TestGetOverview_Empty(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	o := r.GetOverview()
	assert.Zero(t, o.TotalAgents)
	assert.Zero(t, o.WorkloadUtilization)
	assert.Empty(t, o.BySpecialization)
}

func TestGetPerformanceReport(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	p := testutil.NewProfile("a1", types.SpecDataAnalyst, types.LevelExpert).
		WithRecord("data_analysis", 0.9).
		WithRecord("visualization", 0.6).
		Build()
	require.NoError(t, r.Register(p))

	report, err := r.GetPerformanceReport("a1")
	require.NoError(t, err)

	assert.Equal(t, "a1", report.Profile.AgentID)
	// Each domain sum is diluted by the total record count of 2.
	assert.InDelta(t, 0.45, report.Expertise["data_analysis"], 1e-9)
	assert.InDelta(t, 0.30, report.Expertise["visualization"], 1e-9)
	assert.Equal(t, "intermediate", report.Levels["data_analysis"])
	assert.Equal(t, "novice", report.Levels["visualization"])
}

func TestGetPerformanceReport_UnknownAgent(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	_, err := r.GetPerformanceReport("ghost")
	assert.Error(t, err)
}
