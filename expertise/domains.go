package expertise

import "github.com/nexalytics/taskforce/types"

// Domain names used to aggregate performance records. Domains are abstract
// skill areas; a task type can touch more than one.
const (
	DomainDataAnalysis    = "data_analysis"
	DomainModeling        = "modeling"
	DomainVisualization   = "visualization"
	DomainDomainKnowledge = "domain_knowledge"
	DomainTaskExecution   = "task_execution"
	DomainCoordination    = "coordination"
	DomainValidation      = "validation"
	DomainOptimization    = "optimization"
)

// taskTypeDomains maps a historical task type to the domains it exercises.
// Task types not listed here still count toward an agent's total record
// count during assessment but contribute to no domain.
var taskTypeDomains = map[string][]string{
	"data_analysis":         {DomainDataAnalysis},
	"statistical_analysis":  {DomainDataAnalysis},
	"data_preparation":      {DomainDataAnalysis, DomainTaskExecution},
	"prediction":            {DomainModeling},
	"model_training":        {DomainModeling},
	"model_evaluation":      {DomainModeling, DomainValidation},
	"forecasting":           {DomainModeling, DomainDataAnalysis},
	"visualization":         {DomainVisualization},
	"dashboard_design":      {DomainVisualization},
	"reporting":             {DomainVisualization, DomainDomainKnowledge},
	"domain_research":       {DomainDomainKnowledge},
	"data_validation":       {DomainValidation},
	"quality_review":        {DomainValidation},
	"hyperparameter_tuning": {DomainOptimization, DomainModeling},
	"optimization":          {DomainOptimization},
	"workflow_coordination": {DomainCoordination},
	"task_planning":         {DomainCoordination, DomainTaskExecution},
	"task_execution":        {DomainTaskExecution},
}

// specializationDomains maps each specialization category to its primary
// domain, used for specialization fitness and minimum-level filtering.
var specializationDomains = map[types.Specialization]string{
	types.SpecDomainExpert:   DomainDomainKnowledge,
	types.SpecTaskSpecialist: DomainTaskExecution,
	types.SpecDataAnalyst:    DomainDataAnalysis,
	types.SpecModelExpert:    DomainModeling,
	types.SpecVisualization:  DomainVisualization,
	types.SpecCoordinator:    DomainCoordination,
	types.SpecValidator:      DomainValidation,
	types.SpecOptimizer:      DomainOptimization,
}

// DomainFor returns the primary domain mapped to a specialization. The
// second return is false for unknown specializations.
func DomainFor(spec types.Specialization) (string, bool) {
	d, ok := specializationDomains[spec]
	return d, ok
}

// DomainsForTaskType returns the domains a task type maps to, or nil when
// the task type is unmapped.
func DomainsForTaskType(taskType string) []string {
	return taskTypeDomains[taskType]
}
