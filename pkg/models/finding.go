package models

import (
	"fmt"

	"github.com/debtflow/engine/pkg/identity"
)

// Finding is a single reported piece of technical debt. Findings are
// immutable once published on the bus; adjustments (e.g. after a debate)
// produce a copy via WithConfidence/WithSeverity, never an in-place edit.
type Finding struct {
	ID           identity.ID
	DebtType     DebtType
	Severity     Severity
	Confidence   float64
	Title        string
	Description  string
	FilePath     string
	StartLine    *int
	EndLine      *int
	Evidence     []string
	SuggestedFix string
	Fingerprint  string
}

// HasSpan reports whether the finding carries a line range.
func (f Finding) HasSpan() bool {
	return f.StartLine != nil && f.EndLine != nil
}

// Validate checks the invariants spec.md §3 assigns to a Finding:
// startLine <= endLine when both are present, severity/debtType known,
// and confidence within [0,1].
func (f Finding) Validate() error {
	if !f.DebtType.Valid() {
		return fmt.Errorf("finding %s: invalid debt type %q", f.ID, f.DebtType)
	}
	if !f.Severity.Valid() {
		return fmt.Errorf("finding %s: invalid severity %q", f.ID, f.Severity)
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("finding %s: confidence %f out of [0,1]", f.ID, f.Confidence)
	}
	if (f.StartLine == nil) != (f.EndLine == nil) {
		return fmt.Errorf("finding %s: startLine and endLine must both be present or both absent", f.ID)
	}
	if f.HasSpan() && *f.StartLine > *f.EndLine {
		return fmt.Errorf("finding %s: startLine %d > endLine %d", f.ID, *f.StartLine, *f.EndLine)
	}
	return nil
}

// WithConfidence returns a copy of f with Confidence replaced. Used to
// carry a debate's finalConfidence onto the accepted finding without
// mutating the original.
func (f Finding) WithConfidence(c float64) Finding {
	f.Confidence = c
	return f
}

// WithSeverity returns a copy of f with Severity replaced. Used when a
// DebateResolution carries an adjustedSeverity (spec open question,
// resolved: applied to the emitted finding).
func (f Finding) WithSeverity(s Severity) Finding {
	f.Severity = s
	return f
}

// Overlaps reports whether the line spans of f and other overlap, per
// the rule `!(b1 < a2 || b2 < a1)`. A finding with no span is treated as
// overlapping everything.
func (f Finding) Overlaps(other Finding) bool {
	if !f.HasSpan() || !other.HasSpan() {
		return true
	}
	a1, b1 := *f.StartLine, *f.EndLine
	a2, b2 := *other.StartLine, *other.EndLine
	return !(b1 < a2 || b2 < a1)
}

// SpanSize returns the inclusive line count of the span, or 0 if absent.
func (f Finding) SpanSize() int {
	if !f.HasSpan() {
		return 0
	}
	return *f.EndLine - *f.StartLine + 1
}

func intPtr(v int) *int { return &v }
