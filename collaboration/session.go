package collaboration

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexalytics/taskforce/types"
)

// State is the lifecycle state of a collaboration session.
type State string

const (
	StateInitialized State = "initialized"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Decision is one entry in the session's append-only decision history.
type Decision struct {
	AgentID     string    `json:"agent_id,omitempty"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Conflict is one entry in the session's append-only conflict history.
type Conflict struct {
	AgentIDs    []string  `json:"agent_ids"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Session is the mutable runtime record of one collaborative task
// execution. It is owned exclusively by the orchestration that created it;
// the internal mutex only serializes the protocol's own fan-out goroutines.
type Session struct {
	ID            string
	Task          *types.Task
	Participants  []string
	Pattern       types.CoordinationPattern
	CoordinatorID string
	CreatedAt     time.Time

	mu            sync.Mutex
	state         State
	shared        map[string]any
	contributions []*types.Contribution
	decisions     []Decision
	progress      map[string]float64
	conflicts     []Conflict
}

// NewSession creates a session in the initialized state with zeroed
// per-participant progress.
func NewSession(task *types.Task, participants []string, coordinatorID string) *Session {
	progress := make(map[string]float64, len(participants))
	for _, id := range participants {
		progress[id] = 0
	}
	return &Session{
		ID:            uuid.New().String(),
		Task:          task,
		Participants:  append([]string(nil), participants...),
		Pattern:       task.Pattern,
		CoordinatorID: coordinatorID,
		CreatedAt:     time.Now(),
		state:         StateInitialized,
		shared:        make(map[string]any),
		progress:      progress,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) begin() {
	s.transition(StateRunning)
}

func (s *Session) complete() {
	s.transition(StateCompleted)
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.state = StateFailed
		s.shared["error"] = err.Error()
	}
	s.mu.Unlock()
}

// transition moves to the next state unless a terminal state was reached.
func (s *Session) transition(next State) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.state = next
	}
	s.mu.Unlock()
}

// SetShared stores one key in the shared context. Ignored once terminal,
// so a finished session can no longer be mutated by stray goroutines.
func (s *Session) SetShared(key string, value any) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.shared[key] = value
	}
	s.mu.Unlock()
}

// Shared reads one key from the shared context.
func (s *Session) Shared(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.shared[key]
	return v, ok
}

// SharedSnapshot returns a copy of the whole shared context.
func (s *Session) SharedSnapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[string]any, len(s.shared))
	for k, v := range s.shared {
		snap[k] = v
	}
	return snap
}

// Result returns the session result contribution, if the protocol set one.
func (s *Session) Result() (*types.Contribution, bool) {
	v, ok := s.Shared("result")
	if !ok {
		return nil, false
	}
	c, ok := v.(*types.Contribution)
	return c, ok
}

// AppendContribution appends to the session's contribution log.
func (s *Session) AppendContribution(c *types.Contribution) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.contributions = append(s.contributions, c)
	}
	s.mu.Unlock()
}

// Contributions returns a copy of the contribution log.
func (s *Session) Contributions() []*types.Contribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.Contribution(nil), s.contributions...)
}

// AddProgress adds delta to a participant's progress, clamped to [0,1].
func (s *Session) AddProgress(agentID string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	p := s.progress[agentID] + delta
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	s.progress[agentID] = p
}

// Progress returns a copy of the per-participant progress map.
func (s *Session) Progress() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.progress))
	for id, p := range s.progress {
		out[id] = p
	}
	return out
}

// RecordDecision appends to the session's decision history.
func (s *Session) RecordDecision(agentID, description string) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.decisions = append(s.decisions, Decision{
			AgentID:     agentID,
			Description: description,
			Timestamp:   time.Now(),
		})
	}
	s.mu.Unlock()
}

// Decisions returns a copy of the decision history.
func (s *Session) Decisions() []Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Decision(nil), s.decisions...)
}

// RecordConflict appends to the session's conflict history.
func (s *Session) RecordConflict(agentIDs []string, description string) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.conflicts = append(s.conflicts, Conflict{
			AgentIDs:    append([]string(nil), agentIDs...),
			Description: description,
			Timestamp:   time.Now(),
		})
	}
	s.mu.Unlock()
}

// Conflicts returns a copy of the conflict history.
func (s *Session) Conflicts() []Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Conflict(nil), s.conflicts...)
}
