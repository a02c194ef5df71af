package phase

import (
	"context"

	"github.com/debtflow/engine/pkg/debate"
	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/runner"
)

type debateOutput struct {
	manager *debate.Manager
	reviews map[identity.ID]runner.CriticReview
	byFind  map[identity.ID]*models.Debate
	errs    []error
}

// runDebate is Phase 2: run the Critic over the union of discovery
// findings; for each challenge, start a debate. With no autonomous
// defender configured (spec.md §9 Open Question, resolved: not
// implemented), a debate has only the critic's initial challenge
// message when resolved here, so the Debate Manager's vote path treats
// it as an empty vote set — "the critic's challenge acts as a no-vote"
// (spec.md §4.7).
func (c *Controller) runDebate(ctx context.Context, in discoveryOutput) debateOutput {
	out := debateOutput{
		manager: debate.New(c.cfg.DebateConfig),
		reviews: make(map[identity.ID]runner.CriticReview, len(in.all)),
		byFind:  make(map[identity.ID]*models.Debate),
	}
	if c.deps.CriticClient == nil || len(in.all) == 0 {
		return out
	}

	producer := make(map[identity.ID]models.AgentRole, len(in.all))
	for _, f := range in.scannerFindings {
		producer[f.ID] = models.RoleScanner
	}
	for _, f := range in.architectFindings {
		producer[f.ID] = models.RoleArchitect
	}
	for _, f := range in.historianFindings {
		producer[f.ID] = models.RoleHistorian
	}

	cr := runner.NewCriticRunner(c.deps.CriticClient, c.deps.Prompts, c.cfg.CriticConfig)
	results := cr.Run(ctx, in.all)

	for _, res := range results {
		if res.Err != nil {
			out.errs = append(out.errs, res.Err)
			continue
		}
		out.reviews[res.Finding.ID] = res.Review
		if c.deps.Bus != nil {
			c.deps.Bus.Publish(models.AgentMessage{
				From:    models.RoleCritic,
				To:      models.RoleBroadcast,
				Type:    models.MessageEvidence,
				Content: models.MessageContent{Finding: &res.Finding, Confidence: &res.Review.Confidence},
			})
		}
		if res.Challenge == nil {
			continue
		}

		initiator := producer[res.Finding.ID]
		d, err := out.manager.StartDebate(res.Finding, initiator, models.RoleCritic, res.Review.Reason, nil)
		if err != nil {
			out.errs = append(out.errs, err)
			continue
		}
		if c.deps.Bus != nil {
			c.deps.Bus.Publish(*res.Challenge)
		}
		if d.IsActive() {
			d, _ = out.manager.ResolveDebate(d.ID)
		}
		out.byFind[res.Finding.ID] = d
	}

	return out
}
