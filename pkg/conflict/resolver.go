package conflict

import (
	"context"
	"fmt"
	"strings"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
)

// Arbiter serializes a Conflict to the LLM with a neutral prompt and
// parses back one of the four ResolutionDecision values. Implementations
// live outside this package; Resolver only depends on the interface.
type Arbiter interface {
	Arbitrate(ctx context.Context, c models.Conflict) (models.ResolutionDecision, error)
}

// Resolver implements the Conflict Resolver (C4): evidence-based scoring
// by default, with an optional LLM arbiter path.
type Resolver struct {
	arbiter Arbiter
}

// NewResolver constructs a Resolver. arbiter may be nil, in which case
// every conflict is resolved by the evidence-based path.
func NewResolver(arbiter Arbiter) *Resolver {
	return &Resolver{arbiter: arbiter}
}

// Resolve produces a Resolution for c. When an arbiter is configured, it
// is consulted first; on arbiter error or parse failure it falls back to
// evidence-based scoring (spec.md §4.4).
func (r *Resolver) Resolve(ctx context.Context, c models.Conflict) models.Resolution {
	if r.arbiter != nil {
		if decision, err := r.arbiter.Arbitrate(ctx, c); err == nil {
			return r.fromArbiterDecision(c, decision)
		}
	}
	return r.evidenceBased(c)
}

func (r *Resolver) fromArbiterDecision(c models.Conflict, decision models.ResolutionDecision) models.Resolution {
	res := models.Resolution{
		ConflictID: c.ID,
		Decision:   decision,
		Reasoning:  "arbiter decision",
		ResolvedBy: models.ResolvedByArbiter,
	}
	if decision == models.DecisionMerge && len(c.Claims) >= 2 {
		merged := Merge(c.Claims[0].Finding, c.Claims[1].Finding)
		res.ResultingFinding = &merged
	}
	return res
}

// evidenceBased implements spec.md §4.4.1: per agent, accumulate
// confidence + sum(evidence.weight) supporting that agent's claim; the
// higher total wins.
func (r *Resolver) evidenceBased(c models.Conflict) models.Resolution {
	if len(c.Claims) < 2 {
		return models.Resolution{
			ConflictID: c.ID,
			Decision:   models.DecisionRejectBoth,
			Reasoning:  "fewer than two claims to adjudicate",
			ResolvedBy: models.ResolvedByEvidence,
		}
	}

	totals := make(map[models.AgentRole]float64, len(c.Claims))
	for _, claim := range c.Claims {
		totals[claim.Agent] += claim.Confidence
	}
	for _, ev := range c.Evidence {
		totals[ev.Supports] += ev.Weight
	}

	first, second := c.Claims[0], c.Claims[1]
	decision := models.DecisionAcceptFirst
	if totals[second.Agent] > totals[first.Agent] {
		decision = models.DecisionAcceptSecond
	}

	reasoning := fmt.Sprintf("evidence totals: %s=%.2f %s=%.2f", first.Agent, totals[first.Agent], second.Agent, totals[second.Agent])
	return models.Resolution{
		ConflictID: c.ID,
		Decision:   decision,
		Reasoning:  reasoning,
		ResolvedBy: models.ResolvedByEvidence,
	}
}

// Merge implements spec.md §4.4.1's finding-merge semantics. The finding
// with the higher confidence is treated as f1; ties are broken by
// lexicographic id.
func Merge(a, b models.Finding) models.Finding {
	f1, f2 := a, b
	if f2.Confidence > f1.Confidence || (f2.Confidence == f1.Confidence && f2.ID < f1.ID) {
		f1, f2 = f2, f1
	}

	merged := models.Finding{
		ID:           identity.Prefixed("fnd"),
		DebtType:     f1.DebtType,
		FilePath:     f1.FilePath,
		Severity:     models.MaxSeverity(f1.Severity, f2.Severity),
		Confidence:   (f1.Confidence + f2.Confidence) / 2,
		Title:        f1.Title,
		Evidence:     dedupPreserveOrder(append(append([]string{}, f1.Evidence...), f2.Evidence...)),
		SuggestedFix: firstNonEmpty(f1.SuggestedFix, f2.SuggestedFix),
		Description:  mergeDescription(f1.Description, f2.Description),
	}

	if start, ok := minDefined(f1.StartLine, f2.StartLine); ok {
		merged.StartLine = start
	}
	if end, ok := maxDefined(f1.EndLine, f2.EndLine); ok {
		merged.EndLine = end
	}

	spanOrTitle := merged.Title
	if merged.HasSpan() {
		spanOrTitle = fmt.Sprintf("%d-%d", *merged.StartLine, *merged.EndLine)
	}
	merged.Fingerprint = identity.Fingerprint(string(merged.DebtType), merged.FilePath, spanOrTitle)

	return merged
}

func dedupPreserveOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// mergeDescription implements: if f2's first 50 chars appear in f1, keep
// f1; else append f2 as "Additional context: ...".
func mergeDescription(d1, d2 string) string {
	prefix := d2
	if len(prefix) > 50 {
		prefix = prefix[:50]
	}
	if prefix != "" && strings.Contains(d1, prefix) {
		return d1
	}
	if d2 == "" {
		return d1
	}
	if d1 == "" {
		return d2
	}
	return d1 + " Additional context: " + d2
}

func minDefined(a, b *int) (*int, bool) {
	switch {
	case a == nil && b == nil:
		return nil, false
	case a == nil:
		v := *b
		return &v, true
	case b == nil:
		v := *a
		return &v, true
	default:
		v := *a
		if *b < v {
			v = *b
		}
		return &v, true
	}
}

func maxDefined(a, b *int) (*int, bool) {
	switch {
	case a == nil && b == nil:
		return nil, false
	case a == nil:
		v := *b
		return &v, true
	case b == nil:
		v := *a
		return &v, true
	default:
		v := *a
		if *b > v {
			v = *b
		}
		return &v, true
	}
}
