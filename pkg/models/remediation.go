package models

import "github.com/debtflow/engine/pkg/identity"

// RemediationTask is one unit of suggested work synthesized from one or
// more surviving findings that share a file and debt type.
type RemediationTask struct {
	ID                 identity.ID
	Title              string
	Description        string
	RelatedDebtIDs     []identity.ID
	EstimatedEffort    Effort
	Priority           int
	Dependencies       []identity.ID
	SuggestedApproach  string
	Risks              []string
	AcceptanceCriteria []string

	// FilePath is carried for deterministic sort tie-breaking
	// (priority, then filePath, then first RelatedDebtID); it is not
	// part of the public spec fields but is needed to reproduce the
	// synthesizer's sort order.
	FilePath string
}

// RemediationPlan is the final output of the pipeline: a prioritized,
// bucketed set of remediation tasks.
type RemediationPlan struct {
	ScanID          string
	Summary         string
	TotalDebtItems  int
	PrioritizedTasks []RemediationTask
	QuickWins       []RemediationTask
	StrategicWork   []RemediationTask
	Deferrable      []RemediationTask
}
