package types

import (
	"context"
	"time"
)

// Contribution is the result of one participant work step.
type Contribution struct {
	AgentID    string    `json:"agent_id"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"` // [0,1]
	Timestamp  time.Time `json:"timestamp"`
}

// WorkFunc is the outbound seam to the host system: it performs one unit of
// participant work. The real platform plugs its prediction and
// response-generation subsystems in here; this engine never calls them
// directly.
type WorkFunc func(ctx context.Context, agentID string, taskCtx map[string]any) (*Contribution, error)
