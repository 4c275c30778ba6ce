package collaboration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nexalytics/taskforce/internal/metrics"
	"github.com/nexalytics/taskforce/types"
)

// Default consensus tuning: at most five rounds against a 0.8 agreement
// threshold.
const (
	DefaultMaxRounds         = 5
	DefaultThreshold         = 0.8
	DefaultProgressIncrement = 0.25
)

// Coordinator executes collaboration sessions. Running begins synchronously
// with Execute; there is no separate externally observable start step.
type Coordinator struct {
	protocols map[types.CoordinationPattern]Protocol
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// Option configures a Coordinator.
type Option func(*coordinatorConfig)

type coordinatorConfig struct {
	similarity SimilarityFunc
	fitness    FitnessFunc
	maxRounds  int
	threshold  float64
	increment  float64
	reorder    func(*Session) []string
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *coordinatorConfig) { c.logger = logger }
}

// WithSimilarity overrides the consensus similarity measure.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(c *coordinatorConfig) { c.similarity = fn }
}

// WithFitness supplies the fitness tie-breaker for competitive evaluation.
func WithFitness(fn FitnessFunc) Option {
	return func(c *coordinatorConfig) { c.fitness = fn }
}

// WithConsensusRounds overrides the consensus round limit.
func WithConsensusRounds(n int) Option {
	return func(c *coordinatorConfig) {
		if n > 0 {
			c.maxRounds = n
		}
	}
}

// WithConsensusThreshold overrides the consensus agreement threshold.
func WithConsensusThreshold(t float64) Option {
	return func(c *coordinatorConfig) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithProgressIncrement overrides the per-contribution progress step used
// by the peer-to-peer protocol.
func WithProgressIncrement(inc float64) Option {
	return func(c *coordinatorConfig) {
		if inc > 0 && inc <= 1 {
			c.increment = inc
		}
	}
}

// WithPipelineOrder installs a stage-reordering hook for the pipeline
// protocol. The default order is the participant list order.
func WithPipelineOrder(fn func(*Session) []string) Option {
	return func(c *coordinatorConfig) { c.reorder = fn }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *coordinatorConfig) { c.metrics = m }
}

// NewCoordinator creates a coordinator around the participant work
// callback, with all six protocols wired.
func NewCoordinator(work types.WorkFunc, opts ...Option) *Coordinator {
	cfg := coordinatorConfig{
		similarity: DefaultSimilarity,
		maxRounds:  DefaultMaxRounds,
		threshold:  DefaultThreshold,
		increment:  DefaultProgressIncrement,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	deps := &protocolDeps{
		work:       work,
		similarity: cfg.similarity,
		fitness:    cfg.fitness,
		maxRounds:  cfg.maxRounds,
		threshold:  cfg.threshold,
		increment:  cfg.increment,
		reorder:    cfg.reorder,
		logger:     cfg.logger,
	}

	protocols := make(map[types.CoordinationPattern]Protocol)
	for _, p := range []Protocol{
		peerToPeerProtocol{deps},
		hierarchicalProtocol{deps},
		consensusProtocol{deps},
		competitiveProtocol{deps},
		cooperativeProtocol{deps},
		pipelineProtocol{deps},
	} {
		protocols[p.Pattern()] = p
	}

	return &Coordinator{
		protocols: protocols,
		metrics:   cfg.metrics,
		logger:    cfg.logger.With(zap.String("component", "collaboration_coordinator")),
	}
}

// Execute drives the session through its protocol to a terminal state. Any
// protocol error, including a task-deadline expiry, is captured into the
// session and never propagated; the session ends completed or failed.
func (c *Coordinator) Execute(ctx context.Context, s *Session) {
	start := time.Now()
	s.begin()
	c.logger.Info("collaboration started",
		zap.String("session_id", s.ID),
		zap.String("pattern", string(s.Pattern)),
		zap.Int("participants", len(s.Participants)),
	)

	if s.Task.HasDeadline() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, s.Task.Deadline)
		defer cancel()
	}

	if err := c.run(ctx, s); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = types.NewError(types.ErrTimeout, "task deadline exceeded").WithCause(err)
		} else if types.GetErrorCode(err) == "" {
			err = types.NewError(types.ErrProtocolExecution, "protocol execution failed").WithCause(err)
		}
		s.fail(err)
		c.logger.Warn("collaboration failed",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
	} else {
		s.complete()
		c.logger.Info("collaboration completed",
			zap.String("session_id", s.ID),
			zap.Duration("duration", time.Since(start)),
		)
	}

	c.metrics.RecordOrchestration(string(s.Pattern), string(s.State()), time.Since(start))
	if v, ok := s.Shared("consensus_rounds"); ok {
		if rounds, ok := v.(int); ok {
			c.metrics.RecordConsensusRounds(rounds)
		}
	}
}

// run dispatches to the session's protocol with panic containment, so a
// faulty work callback cannot take down the orchestration.
func (c *Coordinator) run(ctx context.Context, s *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.ErrProtocolExecution, fmt.Sprintf("protocol panic: %v", r))
		}
	}()

	if len(s.Participants) == 0 {
		return types.NewError(types.ErrConfiguration, "session has no participants")
	}
	proto, ok := c.protocols[s.Pattern]
	if !ok {
		return types.NewError(types.ErrConfiguration,
			fmt.Sprintf("unknown coordination pattern %q", s.Pattern))
	}
	return proto.Run(ctx, s)
}
