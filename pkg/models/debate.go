package models

import (
	"fmt"
	"time"

	"github.com/debtflow/engine/pkg/identity"
)

// VoteMap records each agent's recorded vote in a debate resolution.
type VoteMap map[AgentRole]bool

// DebateResolution is the outcome attached to a Debate once resolved.
type DebateResolution struct {
	Accepted         bool
	Reason           string
	Votes            VoteMap
	FinalConfidence  float64
	AdjustedSeverity *Severity
}

// Validate enforces the invariant that a rejected resolution carries
// zero final confidence.
func (r DebateResolution) Validate() error {
	if !r.Accepted && r.FinalConfidence != 0 {
		return fmt.Errorf("debate resolution: accepted=false requires finalConfidence=0, got %f", r.FinalConfidence)
	}
	return nil
}

// Debate is a bounded exchange of typed messages about whether a finding
// should be accepted. Once Status != active, Messages is frozen: callers
// must not append further messages (the Debate Manager enforces this at
// the addMessage boundary, not here).
type Debate struct {
	ID         identity.ID
	Topic      Finding
	Initiator  AgentRole
	Challenger AgentRole
	Messages   []AgentMessage
	Status     DebateStatus
	StartedAt  time.Time
	ResolvedAt *time.Time
	Resolution *DebateResolution
}

// IsActive reports whether the debate can still accept messages.
func (d Debate) IsActive() bool {
	return d.Status == DebateActive
}

// RoundCount returns floor(len(messages)/2), the round-limit metric used
// by the Debate Manager's termination check.
func (d Debate) RoundCount() int {
	return len(d.Messages) / 2
}
