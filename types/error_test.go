package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Formatting(t *testing.T) {
	t.Parallel()

	plain := NewError(ErrNoCandidates, "no suitable agents for task t1")
	assert.Equal(t, "[NO_CANDIDATES] no suitable agents for task t1", plain.Error())

	caused := NewError(ErrProtocolExecution, "protocol execution failed").
		WithCause(errors.New("boom"))
	assert.Equal(t, "[PROTOCOL_EXECUTION] protocol execution failed: boom", caused.Error())
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewError(ErrTimeout, "task deadline exceeded").WithCause(cause)

	assert.ErrorIs(t, err, cause)
}

func TestGetErrorCode(t *testing.T) {
	t.Parallel()

	err := NewError(ErrConfiguration, "bad setup")
	assert.Equal(t, ErrConfiguration, GetErrorCode(err))

	wrapped := fmt.Errorf("while orchestrating: %w", err)
	assert.Equal(t, ErrConfiguration, GetErrorCode(wrapped))

	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := NewError(ErrNoCandidates, "empty search")
	assert.True(t, IsCode(err, ErrNoCandidates))
	assert.False(t, IsCode(err, ErrTimeout))
	assert.False(t, IsCode(nil, ErrNoCandidates))
}

func TestProfile_CloneIsDeep(t *testing.T) {
	t.Parallel()

	p := &SpecializationProfile{
		AgentID:        "a1",
		Specialization: SpecDataAnalyst,
		Skills:         []string{"python"},
		Performance: map[string]PerformanceRecord{
			"data_analysis": {SuccessRate: 0.9, QualityScore: 0.9, EfficiencyScore: 0.9},
		},
	}

	clone := p.Clone()
	clone.Skills[0] = "mutated"
	clone.Performance["data_analysis"] = PerformanceRecord{}

	assert.Equal(t, "python", p.Skills[0])
	assert.InDelta(t, 0.9, p.Performance["data_analysis"].SuccessRate, 1e-9)
}

func TestProfile_Availability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		capacity, load int
		want           float64
	}{
		{4, 1, 0.75},
		{4, 0, 1},
		{4, 4, 0},
		{4, 9, 0}, // over capacity clamps to fully loaded
		{0, 0, 0}, // no capacity means no availability
	}
	for _, tt := range tests {
		p := &SpecializationProfile{Capacity: tt.capacity, CurrentLoad: tt.load}
		assert.InDelta(t, tt.want, p.Availability(), 1e-9,
			"capacity %d load %d", tt.capacity, tt.load)
	}
}

func TestProficiencyLevel_Ordering(t *testing.T) {
	t.Parallel()

	require.True(t, LevelNovice < LevelIntermediate)
	require.True(t, LevelIntermediate < LevelAdvanced)
	require.True(t, LevelAdvanced < LevelExpert)
	require.True(t, LevelExpert < LevelMaster)

	assert.Equal(t, "master", LevelMaster.String())
	assert.Equal(t, "novice", ProficiencyLevel(-3).String())
}
