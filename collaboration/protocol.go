package collaboration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nexalytics/taskforce/types"
)

// Protocol executes one coordination pattern against a running session.
// One implementation exists per pattern so dispatch stays exhaustive.
type Protocol interface {
	Pattern() types.CoordinationPattern
	Run(ctx context.Context, s *Session) error
}

// SimilarityFunc scores how close a round of proposals is to agreement,
// in [0,1]. Pluggable so the host can swap in an embedding-based measure.
type SimilarityFunc func(proposals []*types.Contribution) float64

// FitnessFunc resolves an agent's fitness for a task, used to break ties in
// competitive evaluation.
type FitnessFunc func(agentID string, task *types.Task) float64

// protocolDeps carries the shared execution hooks every protocol needs.
type protocolDeps struct {
	work       types.WorkFunc
	similarity SimilarityFunc
	fitness    FitnessFunc
	maxRounds  int
	threshold  float64
	increment  float64
	reorder    func(*Session) []string
	logger     *zap.Logger
}

// invoke runs one participant work step under the protocol context. The
// step never blocks past context cancellation even if the callback ignores
// its context.
func (d *protocolDeps) invoke(ctx context.Context, agentID string, stepCtx map[string]any) (*types.Contribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type outcome struct {
		c   *types.Contribution
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		// A panicking callback must surface as a step error, not kill the
		// process; the coordinator's recover cannot see this goroutine.
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		c, err := d.work(ctx, agentID, stepCtx)
		ch <- outcome{c: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		if out.c == nil {
			return nil, fmt.Errorf("participant %s returned no contribution", agentID)
		}
		return out.c, nil
	}
}

// fanOut runs one independent work step per participant concurrently and
// joins all of them before returning. Results keep participant order.
func (d *protocolDeps) fanOut(ctx context.Context, ids []string, stepCtx func(agentID string) map[string]any) ([]*types.Contribution, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]*types.Contribution, len(ids))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			c, err := d.invoke(ctx, id, stepCtx(id))
			if err != nil {
				return fmt.Errorf("participant %s: %w", id, err)
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// baseContext builds the task context handed to a participant work step.
func baseContext(s *Session, phase string) map[string]any {
	ctx := make(map[string]any, len(s.Task.Context)+4)
	for k, v := range s.Task.Context {
		ctx[k] = v
	}
	ctx["task_id"] = s.Task.ID
	ctx["description"] = s.Task.Description
	ctx["pattern"] = string(s.Pattern)
	ctx["phase"] = phase
	return ctx
}

func contents(cs []*types.Contribution) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Content)
	}
	return out
}

// merge folds a round of proposals into a single contribution with the mean
// confidence of its inputs.
func merge(proposals []*types.Contribution) *types.Contribution {
	var b strings.Builder
	var conf float64
	for i, p := range proposals {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Content)
		conf += p.Confidence
	}
	if len(proposals) > 0 {
		conf /= float64(len(proposals))
	}
	return &types.Contribution{
		AgentID:    "merged",
		Content:    b.String(),
		Confidence: conf,
		Timestamp:  time.Now(),
	}
}

// DefaultSimilarity is the built-in convergence heuristic: the mean
// pairwise Jaccard similarity of the proposals' lowercase word sets. It is
// a heuristic, not a semantic measure; hosts with embeddings should
// override it.
func DefaultSimilarity(proposals []*types.Contribution) float64 {
	if len(proposals) <= 1 {
		return 1
	}
	sets := make([]map[string]struct{}, len(proposals))
	for i, p := range proposals {
		sets[i] = wordSet(p.Content)
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sum += jaccard(sets[i], sets[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func wordSet(content string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(content)) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
