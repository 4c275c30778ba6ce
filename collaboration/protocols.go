package collaboration

import (
	"context"
	"fmt"

	"github.com/nexalytics/taskforce/types"
)

// peerToPeerProtocol: every participant independently produces one
// contribution; no ordering constraints, no synthesis.
type peerToPeerProtocol struct {
	*protocolDeps
}

func (peerToPeerProtocol) Pattern() types.CoordinationPattern { return types.PatternPeerToPeer }

func (p peerToPeerProtocol) Run(ctx context.Context, s *Session) error {
	contributions, err := p.fanOut(ctx, s.Participants, func(string) map[string]any {
		return baseContext(s, "contribute")
	})
	if err != nil {
		return err
	}
	for _, c := range contributions {
		s.AppendContribution(c)
		s.AddProgress(c.AgentID, p.increment)
	}
	return nil
}

// hierarchicalProtocol: the coordinator decomposes the task into one
// subtask per worker, workers execute sequentially, the coordinator
// synthesizes the final result.
type hierarchicalProtocol struct {
	*protocolDeps
}

func (hierarchicalProtocol) Pattern() types.CoordinationPattern { return types.PatternHierarchical }

func (p hierarchicalProtocol) Run(ctx context.Context, s *Session) error {
	if s.CoordinatorID == "" {
		return types.NewError(types.ErrConfiguration, "hierarchical pattern requires a coordinator")
	}

	workers := make([]string, 0, len(s.Participants))
	for _, id := range s.Participants {
		if id != s.CoordinatorID {
			workers = append(workers, id)
		}
	}

	planCtx := baseContext(s, "decompose")
	planCtx["workers"] = workers
	plan, err := p.invoke(ctx, s.CoordinatorID, planCtx)
	if err != nil {
		return fmt.Errorf("coordinator decomposition: %w", err)
	}
	s.SetShared("plan", plan.Content)
	s.RecordDecision(s.CoordinatorID, fmt.Sprintf("decomposed task into %d subtasks", len(workers)))

	for i, id := range workers {
		subCtx := baseContext(s, "execute_subtask")
		subCtx["plan"] = plan.Content
		subCtx["subtask_index"] = i
		subCtx["subtask_total"] = len(workers)
		out, err := p.invoke(ctx, id, subCtx)
		if err != nil {
			return fmt.Errorf("subtask %d (%s): %w", i+1, id, err)
		}
		s.AppendContribution(out)
		s.AddProgress(id, 1)
	}

	synthCtx := baseContext(s, "synthesize")
	synthCtx["contributions"] = contents(s.Contributions())
	result, err := p.invoke(ctx, s.CoordinatorID, synthCtx)
	if err != nil {
		return fmt.Errorf("coordinator synthesis: %w", err)
	}
	s.SetShared("result", result)
	s.AddProgress(s.CoordinatorID, 1)
	s.RecordDecision(s.CoordinatorID, "synthesized final result")
	return nil
}

// consensusProtocol: up to maxRounds rounds of concurrent proposals; a
// similarity score above the threshold terminates with a merged solution,
// otherwise a peer-review adjustment feeds the next round. Exhausting all
// rounds still completes with the last round's output.
type consensusProtocol struct {
	*protocolDeps
}

func (consensusProtocol) Pattern() types.CoordinationPattern { return types.PatternConsensus }

func (p consensusProtocol) Run(ctx context.Context, s *Session) error {
	var last []*types.Contribution
	var feedback []string

	for round := 1; round <= p.maxRounds; round++ {
		proposals, err := p.fanOut(ctx, s.Participants, func(string) map[string]any {
			stepCtx := baseContext(s, "propose")
			stepCtx["round"] = round
			if feedback != nil {
				stepCtx["feedback"] = feedback
			}
			return stepCtx
		})
		if err != nil {
			return err
		}
		last = proposals

		score := p.similarity(proposals)
		s.RecordDecision("", fmt.Sprintf("round %d consensus score %.2f", round, score))

		if score > p.threshold {
			s.SetShared("result", merge(proposals))
			s.SetShared("consensus_rounds", round)
			s.SetShared("consensus_reached", true)
			finishProgress(s)
			return nil
		}
		s.RecordConflict(s.Participants,
			fmt.Sprintf("consensus %.2f below threshold %.2f in round %d", score, p.threshold, round))
		if round == p.maxRounds {
			break
		}

		reviews, err := p.fanOut(ctx, s.Participants, func(string) map[string]any {
			stepCtx := baseContext(s, "peer_review")
			stepCtx["round"] = round
			stepCtx["proposals"] = contents(proposals)
			return stepCtx
		})
		if err != nil {
			return err
		}
		feedback = contents(reviews)
	}

	// Round exhaustion is still a completion, not a failure.
	s.SetShared("result", merge(last))
	s.SetShared("consensus_rounds", p.maxRounds)
	s.SetShared("consensus_reached", false)
	finishProgress(s)
	return nil
}

// competitiveProtocol: every participant proposes a full solution and an
// evaluation step picks exactly one winner; no merging.
type competitiveProtocol struct {
	*protocolDeps
}

func (competitiveProtocol) Pattern() types.CoordinationPattern { return types.PatternCompetitive }

func (p competitiveProtocol) Run(ctx context.Context, s *Session) error {
	proposals, err := p.fanOut(ctx, s.Participants, func(string) map[string]any {
		return baseContext(s, "propose_solution")
	})
	if err != nil {
		return err
	}

	winner := proposals[0]
	for _, c := range proposals[1:] {
		if p.better(c, winner, s.Task) {
			winner = c
		}
	}

	for _, c := range proposals {
		s.AppendContribution(c)
	}
	s.SetShared("result", winner)
	s.SetShared("winner", winner.AgentID)
	s.SetShared("contenders", len(proposals))
	s.RecordDecision(winner.AgentID,
		fmt.Sprintf("won competitive evaluation among %d contenders", len(proposals)))
	finishProgress(s)
	return nil
}

// better ranks proposals by confidence, then task fitness, then agent id.
func (p competitiveProtocol) better(a, b *types.Contribution, task *types.Task) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if p.fitness != nil {
		fa, fb := p.fitness(a.AgentID, task), p.fitness(b.AgentID, task)
		if fa != fb {
			return fa > fb
		}
	}
	return a.AgentID < b.AgentID
}

// cooperativeProtocol: phase 1 shares knowledge concurrently, phase 2 runs
// one joint problem-solving step over everything shared.
type cooperativeProtocol struct {
	*protocolDeps
}

func (cooperativeProtocol) Pattern() types.CoordinationPattern { return types.PatternCooperative }

func (p cooperativeProtocol) Run(ctx context.Context, s *Session) error {
	knowledge, err := p.fanOut(ctx, s.Participants, func(string) map[string]any {
		return baseContext(s, "share_knowledge")
	})
	if err != nil {
		return err
	}
	for _, c := range knowledge {
		s.AppendContribution(c)
		s.AddProgress(c.AgentID, 0.5)
	}

	solver := s.Participants[0]
	jointCtx := baseContext(s, "joint_solve")
	jointCtx["knowledge"] = contents(knowledge)
	result, err := p.invoke(ctx, solver, jointCtx)
	if err != nil {
		return fmt.Errorf("joint problem solving: %w", err)
	}
	s.SetShared("result", result)
	s.RecordDecision(solver, "produced collaborative solution")
	finishProgress(s)
	return nil
}

// pipelineProtocol: participants run as sequential stages, each receiving
// the prior stage's output. The first stage receives no input; the last
// stage's output becomes the session result.
type pipelineProtocol struct {
	*protocolDeps
}

func (pipelineProtocol) Pattern() types.CoordinationPattern { return types.PatternPipeline }

func (p pipelineProtocol) Run(ctx context.Context, s *Session) error {
	order := s.Participants
	if p.reorder != nil {
		if custom := p.reorder(s); len(custom) > 0 {
			order = custom
		}
	}

	var prev *types.Contribution
	for i, id := range order {
		stepCtx := baseContext(s, "stage")
		stepCtx["stage_index"] = i
		stepCtx["stage_total"] = len(order)
		if prev != nil {
			stepCtx["input"] = prev.Content
		} else {
			stepCtx["input"] = nil
		}

		out, err := p.invoke(ctx, id, stepCtx)
		if err != nil {
			return fmt.Errorf("pipeline stage %d (%s): %w", i+1, id, err)
		}
		s.AppendContribution(out)
		s.AddProgress(id, 1)
		prev = out
	}
	s.SetShared("result", prev)
	return nil
}

func finishProgress(s *Session) {
	for _, id := range s.Participants {
		s.AddProgress(id, 1)
	}
}
