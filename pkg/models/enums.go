package models

// DebtType is one of the closed taxonomy of technical-debt categories a
// finding may carry.
type DebtType string

const (
	DebtCodeSmell            DebtType = "code_smell"
	DebtComplexity           DebtType = "complexity"
	DebtDuplication          DebtType = "duplication"
	DebtDeadCode             DebtType = "dead_code"
	DebtCircularDependency   DebtType = "circular_dependency"
	DebtLayerViolation       DebtType = "layer_violation"
	DebtGodClass             DebtType = "god_class"
	DebtFeatureEnvy          DebtType = "feature_envy"
	DebtOutdatedDependency   DebtType = "outdated_dependency"
	DebtVulnerableDependency DebtType = "vulnerable_dependency"
	DebtMissingLockFile      DebtType = "missing_lock_file"
	DebtLowCoverage          DebtType = "low_coverage"
	DebtMissingTests         DebtType = "missing_tests"
	DebtFlakyTests           DebtType = "flaky_tests"
	DebtMissingDocs          DebtType = "missing_docs"
	DebtOutdatedDocs         DebtType = "outdated_docs"
	DebtHardcodedConfig      DebtType = "hardcoded_config"
	DebtSecurityIssue        DebtType = "security_issue"
)

// Valid reports whether d is one of the recognized debt types.
func (d DebtType) Valid() bool {
	switch d {
	case DebtCodeSmell, DebtComplexity, DebtDuplication, DebtDeadCode,
		DebtCircularDependency, DebtLayerViolation, DebtGodClass, DebtFeatureEnvy,
		DebtOutdatedDependency, DebtVulnerableDependency, DebtMissingLockFile,
		DebtLowCoverage, DebtMissingTests, DebtFlakyTests, DebtMissingDocs,
		DebtOutdatedDocs, DebtHardcodedConfig, DebtSecurityIssue:
		return true
	}
	return false
}

// Severity ranks a finding's impact. Ordering matters: Rank provides the
// numeric scale used for severity-gap and max/min comparisons.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank maps severity to the integer scale used for gap and ordering
// computations: critical=4, high=3, medium=2, low=1, info=0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0
	}
	return 0
}

// Valid reports whether s is one of the recognized severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// MaxSeverity returns whichever of a, b ranks higher.
func MaxSeverity(a, b Severity) Severity {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// PriorityFor maps a severity to the task-priority scale defined by the
// synthesizer: critical:1, high:3, medium:5, low:7, info:9.
func (s Severity) PriorityFor() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 5
	case SeverityLow:
		return 7
	case SeverityInfo:
		return 9
	}
	return 5
}

// AgentRole identifies one of the five specialist agents, or the
// distinguished Broadcast pseudo-role used as a message recipient.
type AgentRole string

const (
	RoleScanner   AgentRole = "scanner"
	RoleArchitect AgentRole = "architect"
	RoleHistorian AgentRole = "historian"
	RoleCritic    AgentRole = "critic"
	RolePlanner   AgentRole = "planner"

	RoleBroadcast AgentRole = "broadcast"
)

// MessageType enumerates the kinds of message that flow across the bus
// and within debates.
type MessageType string

const (
	MessageFinding    MessageType = "finding"
	MessageChallenge  MessageType = "challenge"
	MessageEvidence   MessageType = "evidence"
	MessageConcede    MessageType = "concede"
	MessageDefend     MessageType = "defend"
	MessageEscalate   MessageType = "escalate"
	MessageConsensus  MessageType = "consensus"
	MessageVote       MessageType = "vote"
)

// DebateStatus is the lifecycle state of a Debate.
type DebateStatus string

const (
	DebateActive    DebateStatus = "active"
	DebateResolved  DebateStatus = "resolved"
	DebateEscalated DebateStatus = "escalated"
)

// ConflictType enumerates the structural disagreements the Conflict
// Detector can surface.
type ConflictType string

const (
	ConflictContradictoryFindings ConflictType = "contradictory_findings"
	ConflictSeverityDisagreement  ConflictType = "severity_disagreement"
	ConflictClassificationDispute ConflictType = "classification_dispute"
	ConflictScopeDisagreement     ConflictType = "scope_disagreement"
)

// ResolutionDecision is the outcome the Conflict Resolver reaches for a
// Conflict.
type ResolutionDecision string

const (
	DecisionAcceptFirst  ResolutionDecision = "accept_first"
	DecisionAcceptSecond ResolutionDecision = "accept_second"
	DecisionMerge        ResolutionDecision = "merge"
	DecisionRejectBoth   ResolutionDecision = "reject_both"
)

// ResolvedBy records which mechanism produced a Resolution.
type ResolvedBy string

const (
	ResolvedByVote      ResolvedBy = "vote"
	ResolvedByArbiter   ResolvedBy = "arbiter"
	ResolvedByEvidence  ResolvedBy = "evidence"
)

// Effort is the coarse-grained estimate of remediation work for a task.
type Effort string

const (
	EffortTrivial Effort = "trivial"
	EffortSmall   Effort = "small"
	EffortMedium  Effort = "medium"
	EffortLarge   Effort = "large"
	EffortXLarge  Effort = "xlarge"
)

// VotingStrategy selects the weighted-voting aggregation rule.
type VotingStrategy string

const (
	StrategyMajority     VotingStrategy = "majority"
	StrategyWeighted     VotingStrategy = "weighted"
	StrategyConservative VotingStrategy = "conservative"
	StrategyUnanimous    VotingStrategy = "unanimous"
)
