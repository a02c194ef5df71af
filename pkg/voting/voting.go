// Package voting implements the weighted-voting aggregation strategies
// the Debate Manager uses when no concede or consensus message settles a
// debate outright (spec.md §4.5).
package voting

import "github.com/debtflow/engine/pkg/models"

// WeightRow maps agent role to a vote weight in [0,1]. Weights in a row
// should sum to at most 1; this is a configuration-time concern, not
// enforced here.
type WeightRow map[models.AgentRole]float64

// Table maps debt type to its weight row; "default" (via DefaultRow) is
// used for types with no explicit row.
type Table struct {
	rows       map[models.DebtType]WeightRow
	defaultRow WeightRow
}

// NewTable constructs a Table. defaultRow is used for any debt type not
// present in rows.
func NewTable(rows map[models.DebtType]WeightRow, defaultRow WeightRow) Table {
	return Table{rows: rows, defaultRow: defaultRow}
}

// DefaultTable returns the built-in weight table from spec.md §6: rows
// for code_smell, circular_dependency, security_issue, and a default row
// for every other debt type.
func DefaultTable() Table {
	return NewTable(map[models.DebtType]WeightRow{
		models.DebtCodeSmell: {
			models.RoleScanner: 0.4, models.RoleArchitect: 0.2,
			models.RoleHistorian: 0.1, models.RoleCritic: 0.2, models.RolePlanner: 0.1,
		},
		models.DebtCircularDependency: {
			models.RoleScanner: 0.1, models.RoleArchitect: 0.5,
			models.RoleHistorian: 0.1, models.RoleCritic: 0.2, models.RolePlanner: 0.1,
		},
		models.DebtSecurityIssue: {
			models.RoleScanner: 0.3, models.RoleArchitect: 0.2,
			models.RoleHistorian: 0.1, models.RoleCritic: 0.3, models.RolePlanner: 0.1,
		},
	}, WeightRow{
		models.RoleScanner: 0.25, models.RoleArchitect: 0.25,
		models.RoleHistorian: 0.2, models.RoleCritic: 0.2, models.RolePlanner: 0.1,
	})
}

// RowFor returns the weight row for debtType, falling back to the
// default row when no explicit row is configured.
func (t Table) RowFor(debtType models.DebtType) WeightRow {
	if row, ok := t.rows[debtType]; ok {
		return row
	}
	return t.defaultRow
}

// unknownAgentWeight is the magnitude contributed by a vote from an
// agent role absent from the weight row, per spec.md §4.5.
const unknownAgentWeight = 0.1

// Votes maps agent role to its recorded yes/no vote.
type Votes map[models.AgentRole]bool

// Decide applies strategy to votes for the given debt type using table,
// returning whether the outcome is acceptance.
func Decide(strategy models.VotingStrategy, votes Votes, debtType models.DebtType, table Table) bool {
	switch strategy {
	case models.StrategyMajority:
		return decideMajority(votes)
	case models.StrategyWeighted:
		return decideWeighted(votes, table.RowFor(debtType)) > 0
	case models.StrategyConservative:
		return decideConservative(votes)
	case models.StrategyUnanimous:
		return decideUnanimous(votes)
	default:
		return decideMajority(votes)
	}
}

// Score returns the weighted acceptance score (used by tests asserting
// monotonicity): sum of +weight for yes votes, -weight for no votes.
func Score(votes Votes, row WeightRow) float64 {
	return decideWeighted(votes, row)
}

func decideMajority(votes Votes) bool {
	yes, no := tally(votes)
	return yes > no
}

func decideWeighted(votes Votes, row WeightRow) float64 {
	var score float64
	for agent, v := range votes {
		w, ok := row[agent]
		if !ok {
			w = unknownAgentWeight
		}
		if v {
			score += w
		} else {
			score -= w
		}
	}
	return score
}

func decideConservative(votes Votes) bool {
	if v, ok := votes[models.RoleCritic]; ok {
		return v
	}
	return decideMajority(votes)
}

func decideUnanimous(votes Votes) bool {
	if len(votes) == 0 {
		return false
	}
	for _, v := range votes {
		if !v {
			return false
		}
	}
	return true
}

func tally(votes Votes) (yes, no int) {
	for _, v := range votes {
		if v {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}
