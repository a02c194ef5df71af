package models

import "github.com/debtflow/engine/pkg/identity"

// Resolution is the Conflict Resolver's verdict on a Conflict.
type Resolution struct {
	ConflictID       identity.ID
	Decision         ResolutionDecision
	Reasoning        string
	ResultingFinding *Finding
	ResolvedBy       ResolvedBy
}
