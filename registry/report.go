package registry

import (
	"fmt"

	"github.com/nexalytics/taskforce/types"
)

// Overview summarizes the registered agent population.
type Overview struct {
	TotalAgents         int                          `json:"total_agents"`
	BySpecialization    map[types.Specialization]int `json:"by_specialization"`
	ByLevel             map[string]int               `json:"by_level"`
	WorkloadUtilization float64                      `json:"workload_utilization"`
}

// PerformanceReport is a point-in-time snapshot of one agent: its profile
// plus its derived expertise matrix row.
type PerformanceReport struct {
	Profile   *types.SpecializationProfile `json:"profile"`
	Expertise map[string]float64           `json:"expertise"`
	Levels    map[string]string            `json:"levels"`
}

// GetOverview returns counts by specialization and declared level plus the
// aggregate workload utilization (total load over total capacity).
func (r *Registry) GetOverview() *Overview {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o := &Overview{
		TotalAgents:      len(r.profiles),
		BySpecialization: make(map[types.Specialization]int),
		ByLevel:          make(map[string]int),
	}
	var load, capacity int
	for _, p := range r.profiles {
		o.BySpecialization[p.Specialization]++
		o.ByLevel[p.Level.String()]++
		load += p.CurrentLoad
		capacity += p.Capacity
	}
	if capacity > 0 {
		o.WorkloadUtilization = float64(load) / float64(capacity)
	}
	return o
}

// GetPerformanceReport returns the agent's profile and expertise snapshot.
func (r *Registry) GetPerformanceReport(agentID string) (*PerformanceReport, error) {
	profile, ok := r.Profile(agentID)
	if !ok {
		return nil, fmt.Errorf("unknown agent: %s", agentID)
	}

	row := r.expertise.Matrix().Row(agentID)
	levels := make(map[string]string, len(row))
	for domain := range row {
		levels[domain] = r.expertise.Level(agentID, domain).String()
	}

	return &PerformanceReport{
		Profile:   profile,
		Expertise: row,
		Levels:    levels,
	}, nil
}
