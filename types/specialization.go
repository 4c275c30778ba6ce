package types

// Specialization is an agent's primary role within the platform.
type Specialization string

const (
	SpecDomainExpert   Specialization = "domain_expert"
	SpecTaskSpecialist Specialization = "task_specialist"
	SpecDataAnalyst    Specialization = "data_analyst"
	SpecModelExpert    Specialization = "model_expert"
	SpecVisualization  Specialization = "visualization_specialist"
	SpecCoordinator    Specialization = "coordinator"
	SpecValidator      Specialization = "validator"
	SpecOptimizer      Specialization = "optimizer"
)

// Specializations lists all known specialization categories.
func Specializations() []Specialization {
	return []Specialization{
		SpecDomainExpert,
		SpecTaskSpecialist,
		SpecDataAnalyst,
		SpecModelExpert,
		SpecVisualization,
		SpecCoordinator,
		SpecValidator,
		SpecOptimizer,
	}
}

// ProficiencyLevel is an ordered proficiency scale. The zero value is
// LevelNovice, so an unknown agent or domain naturally maps to novice.
type ProficiencyLevel int

const (
	LevelNovice ProficiencyLevel = iota
	LevelIntermediate
	LevelAdvanced
	LevelExpert
	LevelMaster
)

// String returns the canonical name of the level.
func (l ProficiencyLevel) String() string {
	switch l {
	case LevelMaster:
		return "master"
	case LevelExpert:
		return "expert"
	case LevelAdvanced:
		return "advanced"
	case LevelIntermediate:
		return "intermediate"
	default:
		return "novice"
	}
}

// PerformanceRecord summarizes an agent's historical outcomes for one
// task type. All three components are in [0, 1].
type PerformanceRecord struct {
	SuccessRate     float64 `json:"success_rate"`
	QualityScore    float64 `json:"quality_score"`
	EfficiencyScore float64 `json:"efficiency_score"`
}

// SpecializationProfile describes one agent's role, skills and capacity.
// The registry owns the stored copy; callers always work on clones.
type SpecializationProfile struct {
	AgentID        string                       `json:"agent_id"`
	Specialization Specialization               `json:"specialization"`
	Level          ProficiencyLevel             `json:"level"`
	Capabilities   []string                     `json:"capabilities,omitempty"`
	Skills         []string                     `json:"skills,omitempty"`
	Capacity       int                          `json:"capacity"`
	CurrentLoad    int                          `json:"current_load"`
	CostFactor     float64                      `json:"cost_factor,omitempty"`
	Performance    map[string]PerformanceRecord `json:"performance,omitempty"`
}

// Clone returns a deep copy of the profile.
func (p *SpecializationProfile) Clone() *SpecializationProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Capabilities = append([]string(nil), p.Capabilities...)
	cp.Skills = append([]string(nil), p.Skills...)
	if p.Performance != nil {
		cp.Performance = make(map[string]PerformanceRecord, len(p.Performance))
		for k, v := range p.Performance {
			cp.Performance[k] = v
		}
	}
	return &cp
}

// HasSkill reports whether the profile lists the given skill tag.
func (p *SpecializationProfile) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// Availability returns the bounded workload slack (capacity-load)/capacity,
// clamped to [0, 1]. Zero or negative capacity counts as fully loaded.
func (p *SpecializationProfile) Availability() float64 {
	if p.Capacity <= 0 {
		return 0
	}
	slack := float64(p.Capacity-p.CurrentLoad) / float64(p.Capacity)
	if slack < 0 {
		return 0
	}
	if slack > 1 {
		return 1
	}
	return slack
}
