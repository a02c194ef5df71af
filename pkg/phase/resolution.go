package phase

import (
	"context"

	"github.com/debtflow/engine/pkg/conflict"
	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
)

type resolutionOutput struct {
	validated []models.Finding
	rejected  []models.Finding
	merged    []models.Finding
	errs      []error
}

// runResolution is Phase 3: resolve any debate left active after Phase
// 2 (spec.md §4.7's ≤2-messages vs arbiter-path split), categorize
// every discovery finding per the three-step rule — rejecting an
// undisputed finding whose confidence falls below cfg.ConfidenceThreshold
// rather than letting every undebated finding through — run the
// Conflict Detector/Resolver over the two discovery streams, and apply
// resulting merges.
func (c *Controller) runResolution(ctx context.Context, in discoveryOutput, deb debateOutput) resolutionOutput {
	c.resolveStillActive(ctx, deb)

	var out resolutionOutput
	validated := make(map[identity.ID]models.Finding, len(in.all))

	for _, f := range in.all {
		d, hasDebate := deb.byFind[f.ID]
		switch {
		case hasDebate && d != nil && d.Resolution != nil:
			res := *d.Resolution
			if res.Accepted {
				accepted := f.WithConfidence(res.FinalConfidence)
				if res.AdjustedSeverity != nil {
					accepted = accepted.WithSeverity(*res.AdjustedSeverity)
				}
				validated[f.ID] = accepted
			} else {
				out.rejected = append(out.rejected, f)
			}
		case deb.reviews[f.ID].Accepted || !hasReview(deb, f.ID):
			if f.Confidence < c.cfg.ConfidenceThreshold {
				out.rejected = append(out.rejected, f)
				continue
			}
			validated[f.ID] = f
		default:
			out.rejected = append(out.rejected, f)
		}
	}

	resolutions := c.resolveConflicts(ctx, in.scannerFindings, in.architectFindings)
	for _, rc := range resolutions {
		applyResolution(validated, rc)
		if rc.Decision == models.DecisionMerge && rc.ResultingFinding != nil {
			out.merged = append(out.merged, *rc.ResultingFinding)
		}
	}

	for _, f := range validated {
		out.validated = append(out.validated, f)
	}
	return out
}

func hasReview(deb debateOutput, id identity.ID) bool {
	_, ok := deb.reviews[id]
	return ok
}

func (c *Controller) resolveStillActive(ctx context.Context, deb debateOutput) {
	// With no autonomous defender (spec.md §9 Open Question, resolved:
	// unimplemented), every debate Phase 2 started was already resolved
	// there. This loop exists for the general case where a future
	// defender leaves a debate active past Phase 2.
	for _, d := range deb.byFind {
		if d == nil || !d.IsActive() {
			continue
		}
		_, _ = deb.manager.ResolveDebate(d.ID)
	}
}

// resolvedConflict pairs a models.Resolution with the two claims it
// adjudicated, in the fixed scanner-first order Detect always produces.
type resolvedConflict struct {
	models.Resolution
	first, second models.Finding
}

func (c *Controller) resolveConflicts(ctx context.Context, scannerFindings, architectFindings []models.Finding) []resolvedConflict {
	conflicts := conflict.Detect(scannerFindings, architectFindings)
	if len(conflicts) == 0 {
		return nil
	}

	resolver := conflict.NewResolver(c.deps.Arbiter)
	out := make([]resolvedConflict, len(conflicts))
	c.withPool(ctx, len(conflicts), func(ctx context.Context, i int) error {
		cf := conflicts[i]
		res := resolver.Resolve(ctx, cf)
		out[i] = resolvedConflict{Resolution: res, first: cf.Claims[0].Finding, second: cf.Claims[1].Finding}
		return nil
	})
	return out
}

// applyResolution mutates validated per a conflict's decision (spec.md
// §4.4): merge replaces both claimants with the merged finding,
// accept_first/accept_second keeps the winning claimant and evicts the
// other, reject_both evicts both.
func applyResolution(validated map[identity.ID]models.Finding, rc resolvedConflict) {
	switch rc.Decision {
	case models.DecisionMerge:
		if rc.ResultingFinding == nil {
			return
		}
		delete(validated, rc.first.ID)
		delete(validated, rc.second.ID)
		validated[rc.ResultingFinding.ID] = *rc.ResultingFinding
	case models.DecisionAcceptFirst:
		delete(validated, rc.second.ID)
		validated[rc.first.ID] = rc.first
	case models.DecisionAcceptSecond:
		delete(validated, rc.first.ID)
		validated[rc.second.ID] = rc.second
	case models.DecisionRejectBoth:
		delete(validated, rc.first.ID)
		delete(validated, rc.second.ID)
	}
}
