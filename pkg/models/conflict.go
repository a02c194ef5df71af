package models

import "github.com/debtflow/engine/pkg/identity"

// Claim is one agent's assertion about a finding, as recorded on a
// Conflict.
type Claim struct {
	Agent      AgentRole
	Finding    Finding
	Rationale  string
	Confidence float64
}

// Evidence is a piece of supporting (or refuting) material attached to a
// Conflict, used by the evidence-based resolution path.
type Evidence struct {
	Agent    AgentRole
	Kind     string
	Content  string
	Supports AgentRole
	Weight   float64
}

// Conflict is a structural disagreement between two discovery agents
// about overlapping findings. Conflicts are created by the Conflict
// Detector and consumed, never mutated, by the Conflict Resolver.
type Conflict struct {
	ID       identity.ID
	Type     ConflictType
	Parties  []AgentRole
	Claims   []Claim
	Evidence []Evidence
}
