// Package taskforce provides a top-level convenience entry point for creating
// a fully wired specialization registry with minimal boilerplate.
//
// Usage:
//
//	import "github.com/nexalytics/taskforce"
//
//	reg, err := taskforce.New(taskforce.WithWorker(myWork))
//	reg, err := taskforce.New(taskforce.WithWorker(myWork), taskforce.WithConfigFile("taskforce.yaml"))
//
// This is a thin wrapper around [registry.NewRegistry] that maps a loaded
// [config.Config] onto the registry, delegation and collaboration options.
// Use the registry package directly when you need finer control.
package taskforce

import (
	"go.uber.org/zap"

	"github.com/nexalytics/taskforce/collaboration"
	"github.com/nexalytics/taskforce/config"
	"github.com/nexalytics/taskforce/expertise"
	"github.com/nexalytics/taskforce/internal/metrics"
	"github.com/nexalytics/taskforce/registry"
	"github.com/nexalytics/taskforce/types"
)

// Option configures the registry created by [New].
type Option func(*builder)

type builder struct {
	work       types.WorkFunc
	cfg        *config.Config
	configPath string
	similarity collaboration.SimilarityFunc
	logger     *zap.Logger
}

// WithWorker sets the participant work callback. It is required.
func WithWorker(work types.WorkFunc) Option {
	return func(b *builder) { b.work = work }
}

// WithConfig uses an already loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(b *builder) { b.cfg = cfg }
}

// WithConfigFile loads the configuration from a YAML file, with TASKFORCE_
// environment overrides applied on top.
func WithConfigFile(path string) Option {
	return func(b *builder) { b.configPath = path }
}

// WithSimilarity overrides the consensus similarity measure.
func WithSimilarity(fn collaboration.SimilarityFunc) Option {
	return func(b *builder) { b.similarity = fn }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// New creates a fully wired [registry.Registry]. At minimum, a work callback
// must be supplied via [WithWorker].
func New(opts ...Option) (*registry.Registry, error) {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	cfg := b.cfg
	if cfg == nil {
		loaded, err := config.Load(b.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	regOpts := []registry.Option{
		registry.WithFitnessWeights(expertise.Weights{
			Specialization: cfg.Fitness.SpecializationWeight,
			Skill:          cfg.Fitness.SkillWeight,
			Availability:   cfg.Fitness.AvailabilityWeight,
		}),
		registry.WithMaxParticipants(cfg.Delegation.MaxParticipants),
		registry.WithCoordinatorOptions(
			collaboration.WithConsensusRounds(cfg.Collaboration.ConsensusMaxRounds),
			collaboration.WithConsensusThreshold(cfg.Collaboration.ConsensusThreshold),
			collaboration.WithProgressIncrement(cfg.Collaboration.ProgressIncrement),
		),
	}
	if b.logger != nil {
		regOpts = append(regOpts, registry.WithLogger(b.logger))
	}
	if cfg.Metrics.Enabled {
		regOpts = append(regOpts, registry.WithMetrics(metrics.NewCollector(cfg.Metrics.Namespace, b.logger)))
	}
	if b.similarity != nil {
		regOpts = append(regOpts, registry.WithCoordinatorOptions(collaboration.WithSimilarity(b.similarity)))
	}

	return registry.NewRegistry(b.work, regOpts...)
}
