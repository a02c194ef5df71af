// Package conflict implements the Conflict Detector (C3) and Conflict
// Resolver (C4): surfacing and then adjudicating structural
// disagreements between the Scanner and Architect discovery streams
// (spec.md §4.3, §4.4).
package conflict

import (
	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
)

// mutuallyExclusivePairs is the closed set of debt-type pairs that
// trigger a classification_dispute when found overlapping in the same
// file with differing types (spec.md §4.3).
var mutuallyExclusivePairs = map[[2]models.DebtType]bool{
	{models.DebtDeadCode, models.DebtMissingTests}: true,
	{models.DebtMissingTests, models.DebtDeadCode}: true,
	{models.DebtGodClass, models.DebtFeatureEnvy}:   true,
	{models.DebtFeatureEnvy, models.DebtGodClass}:   true,
}

// Detect runs the three detection rules, in order, over the cartesian
// product of findings from the two discovery streams that share a file.
// At most one conflict is emitted per pair, and cross-file pairs are
// never compared. Detection is symmetric (detect(A,B) == detect(B,A) up
// to claim order, invariant 5, spec.md §8): each pair is examined once
// regardless of which stream it is drawn from, and a conflict's claims
// are always recorded in a fixed (scanner-first) order when both
// streams are represented, independent of argument order.
func Detect(scannerFindings, architectFindings []models.Finding) []models.Conflict {
	var conflicts []models.Conflict
	for _, a := range scannerFindings {
		for _, b := range architectFindings {
			if a.FilePath != b.FilePath {
				continue
			}
			if c, ok := detectPair(a, b); ok {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

func detectPair(scannerFinding, architectFinding models.Finding) (models.Conflict, bool) {
	if !scannerFinding.Overlaps(architectFinding) {
		if ct, ok := scopeDisagreement(scannerFinding, architectFinding); ok {
			return ct, true
		}
		return models.Conflict{}, false
	}

	if c, ok := classificationDispute(scannerFinding, architectFinding); ok {
		return c, true
	}
	if c, ok := severityDisagreement(scannerFinding, architectFinding); ok {
		return c, true
	}
	if c, ok := scopeDisagreement(scannerFinding, architectFinding); ok {
		return c, true
	}
	return models.Conflict{}, false
}

func classificationDispute(a, b models.Finding) (models.Conflict, bool) {
	if a.DebtType == b.DebtType {
		return models.Conflict{}, false
	}
	if !mutuallyExclusivePairs[[2]models.DebtType{a.DebtType, b.DebtType}] {
		return models.Conflict{}, false
	}
	return newConflict(models.ConflictClassificationDispute, a, b), true
}

func severityDisagreement(a, b models.Finding) (models.Conflict, bool) {
	if a.DebtType != b.DebtType {
		return models.Conflict{}, false
	}
	gap := a.Severity.Rank() - b.Severity.Rank()
	if gap < 0 {
		gap = -gap
	}
	if gap < 2 {
		return models.Conflict{}, false
	}
	return newConflict(models.ConflictSeverityDisagreement, a, b), true
}

func scopeDisagreement(a, b models.Finding) (models.Conflict, bool) {
	if a.DebtType != b.DebtType {
		return models.Conflict{}, false
	}
	sizeA, sizeB := a.SpanSize(), b.SpanSize()
	if sizeA == 0 || sizeB == 0 {
		return models.Conflict{}, false
	}
	larger, smaller := float64(sizeA), float64(sizeB)
	if larger < smaller {
		larger, smaller = smaller, larger
	}
	if smaller == 0 || larger/smaller <= 2 {
		return models.Conflict{}, false
	}
	return newConflict(models.ConflictScopeDisagreement, a, b), true
}

func newConflict(typ models.ConflictType, scannerFinding, architectFinding models.Finding) models.Conflict {
	return models.Conflict{
		ID:      identity.Prefixed("cfl"),
		Type:    typ,
		Parties: []models.AgentRole{models.RoleScanner, models.RoleArchitect},
		Claims: []models.Claim{
			{Agent: models.RoleScanner, Finding: scannerFinding, Confidence: scannerFinding.Confidence},
			{Agent: models.RoleArchitect, Finding: architectFinding, Confidence: architectFinding.Confidence},
		},
	}
}
