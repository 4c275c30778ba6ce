package expertise

import "sync"

// Matrix stores derived expertise scores per agent and domain. It is an
// explicit store object injected into the engine rather than a process-wide
// singleton, so concurrent orchestrations can be tested in isolation.
//
// All scores are in [0, 1]. Rows are replaced wholesale on assessment;
// reads return copies.
type Matrix struct {
	mu   sync.RWMutex
	rows map[string]map[string]float64
}

// NewMatrix creates an empty expertise matrix.
func NewMatrix() *Matrix {
	return &Matrix{rows: make(map[string]map[string]float64)}
}

// SetRow replaces the agent's row with a copy of scores.
func (m *Matrix) SetRow(agentID string, scores map[string]float64) {
	row := make(map[string]float64, len(scores))
	for d, s := range scores {
		row[d] = s
	}
	m.mu.Lock()
	m.rows[agentID] = row
	m.mu.Unlock()
}

// Row returns a copy of the agent's row. Unknown agents yield an empty map.
func (m *Matrix) Row(agentID string) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row := make(map[string]float64, len(m.rows[agentID]))
	for d, s := range m.rows[agentID] {
		row[d] = s
	}
	return row
}

// Score returns the agent's score for one domain; unknown agent or domain
// defaults to 0.
func (m *Matrix) Score(agentID, domain string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows[agentID][domain]
}
