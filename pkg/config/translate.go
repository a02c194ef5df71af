package config

import (
	"fmt"
	"regexp"

	"github.com/debtflow/engine/pkg/debate"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/phase"
	"github.com/debtflow/engine/pkg/runner"
	"github.com/debtflow/engine/pkg/voting"
)

// roleNames maps the YAML-friendly role keys accepted in
// PipelineConfig.AgentWeights to the enum the voting package keys on.
var roleNames = map[string]models.AgentRole{
	"scanner":   models.RoleScanner,
	"architect": models.RoleArchitect,
	"historian": models.RoleHistorian,
	"critic":    models.RoleCritic,
	"planner":   models.RolePlanner,
}

var strategyNames = map[string]models.VotingStrategy{
	"majority":     models.StrategyMajority,
	"weighted":     models.StrategyWeighted,
	"conservative": models.StrategyConservative,
	"unanimous":    models.StrategyUnanimous,
}

// BuildVotingTable turns cfg.AgentWeights into a voting.Table. A nil or
// empty AgentWeights keeps voting.DefaultTable() rather than repeating
// its literals in this package; "default" is the row used for debt
// types absent from the map.
func BuildVotingTable(cfg PipelineConfig) voting.Table {
	if len(cfg.AgentWeights) == 0 {
		return voting.DefaultTable()
	}
	rows := make(map[models.DebtType]voting.WeightRow, len(cfg.AgentWeights))
	var defaultRow voting.WeightRow
	for debtType, weights := range cfg.AgentWeights {
		row := make(voting.WeightRow, len(weights))
		for roleName, w := range weights {
			if role, ok := roleNames[roleName]; ok {
				row[role] = w
			}
		}
		if debtType == "default" {
			defaultRow = row
			continue
		}
		rows[models.DebtType(debtType)] = row
	}
	if defaultRow == nil {
		defaultRow = voting.DefaultTable().RowFor("default")
	}
	return voting.NewTable(rows, defaultRow)
}

// votingStrategy resolves cfg.ResolutionStrategy, falling back to
// weighted voting (spec.md §6's default) for an unrecognized or empty
// value.
func votingStrategy(cfg PipelineConfig) models.VotingStrategy {
	if s, ok := strategyNames[cfg.ResolutionStrategy]; ok {
		return s
	}
	return models.StrategyWeighted
}

// BuildLayerRules turns the level-tagged layerPatterns list into the
// From/To pattern pairs runner.DetectLayerViolations operates on: for
// every two patterns at different levels, the lower-level (more inner)
// side may not import the higher-level (more outer) side. Patterns at
// the same level are peers and produce no rule between them.
func BuildLayerRules(patterns []LayerPattern) ([]runner.LayerRule, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("config: layer pattern %q: %w", p.Name, err)
		}
		compiled[i] = re
	}

	var rules []runner.LayerRule
	for i, from := range patterns {
		for j, to := range patterns {
			if from.Level >= to.Level {
				continue
			}
			rules = append(rules, runner.LayerRule{
				Name:        fmt.Sprintf("%s-no-%s", from.Name, to.Name),
				FromPattern: compiled[i],
				ToPattern:   compiled[j],
			})
		}
	}
	return rules, nil
}

// BuildPhaseConfig translates a PipelineConfig (and the import patterns
// the Architect's dependency graph uses, which stay code-configured
// rather than YAML-configured) into the phase.Config the Phase
// Controller is constructed with.
func BuildPhaseConfig(cfg PipelineConfig, importPatterns []runner.ImportPattern) (phase.Config, error) {
	layerRules, err := BuildLayerRules(cfg.LayerPatterns)
	if err != nil {
		return phase.Config{}, err
	}

	return phase.Config{
		WorkerPoolSize:      cfg.WorkerPoolSize,
		MaxFilesPerBatch:    cfg.MaxFilesPerBatch,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		DiscoveryConfig:     runner.Config{MaxTokensPerFile: cfg.MaxTokensPerFile},
		CriticConfig:        runner.CriticConfig{ChallengeThreshold: cfg.ChallengeThreshold},
		DebateConfig: debate.Config{
			MaxRounds:          cfg.MaxDebateRounds,
			TimeoutMs:          int64(cfg.DebateTimeoutMs),
			ResolutionStrategy: votingStrategy(cfg),
			WeightTable:        BuildVotingTable(cfg),
		},
		ImportPatterns: importPatterns,
		LayerRules:     layerRules,
	}, nil
}
