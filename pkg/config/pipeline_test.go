package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debtflow/engine/pkg/models"
)

func TestDefaultPipelineConfigBoundsWorkerPoolAtTwo(t *testing.T) {
	cfg := DefaultPipelineConfig(1)
	require.Equal(t, 2, cfg.WorkerPoolSize)

	cfg = DefaultPipelineConfig(8)
	require.Equal(t, 8, cfg.WorkerPoolSize)
}

func TestLoadPipelineConfigReturnsDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadPipelineConfig(filepath.Join(t.TempDir(), "missing.yaml"), 4)
	require.NoError(t, err)
	require.Equal(t, DefaultPipelineConfig(4), cfg)
}

func TestLoadPipelineConfigOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	content := []byte(`
max_debate_rounds: 5
challenge_threshold: 0.9
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadPipelineConfig(path, 4)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.MaxDebateRounds)
	require.Equal(t, 0.9, cfg.ChallengeThreshold)
	// Untouched fields keep their defaults.
	require.Equal(t, "weighted", cfg.ResolutionStrategy)
	require.Equal(t, 8_000, cfg.MaxTokensPerFile)
}

func TestLoadPipelineConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("DEBTFLOW_TEST_ROUNDS", "7")
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	content := []byte("max_debate_rounds: ${DEBTFLOW_TEST_ROUNDS}\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadPipelineConfig(path, 4)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.MaxDebateRounds)
}

func TestBuildVotingTableFallsBackToDefaultWhenUnset(t *testing.T) {
	cfg := DefaultPipelineConfig(4)
	table := BuildVotingTable(cfg)
	require.Equal(t, 0.4, table.RowFor(models.DebtCodeSmell)[models.RoleScanner])
}

func TestBuildVotingTableUsesConfiguredWeights(t *testing.T) {
	cfg := DefaultPipelineConfig(4)
	cfg.AgentWeights = map[string]AgentWeight{
		"dead_code": {"scanner": 0.9, "architect": 0.1},
		"default":   {"scanner": 0.5, "architect": 0.5},
	}
	table := BuildVotingTable(cfg)
	require.Equal(t, 0.9, table.RowFor(models.DebtDeadCode)[models.RoleScanner])
	require.Equal(t, 0.5, table.RowFor(models.DebtMissingTests)[models.RoleScanner])
}

func TestBuildLayerRulesOrdersLowerLevelAgainstHigher(t *testing.T) {
	patterns := []LayerPattern{
		{Regex: `^internal/domain/`, Level: 0, Name: "domain"},
		{Regex: `^internal/infra/`, Level: 1, Name: "infra"},
	}
	rules, err := BuildLayerRules(patterns)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, "domain-no-infra", rules[0].Name)
	require.True(t, rules[0].FromPattern.MatchString("internal/domain/user.go"))
	require.True(t, rules[0].ToPattern.MatchString("internal/infra/db.go"))
}

func TestBuildLayerRulesSkipsSameLevelPeers(t *testing.T) {
	patterns := []LayerPattern{
		{Regex: `^internal/svc_a/`, Level: 0, Name: "svc_a"},
		{Regex: `^internal/svc_b/`, Level: 0, Name: "svc_b"},
	}
	rules, err := BuildLayerRules(patterns)
	require.NoError(t, err)
	require.Empty(t, rules)
}

func TestBuildLayerRulesRejectsInvalidRegex(t *testing.T) {
	_, err := BuildLayerRules([]LayerPattern{{Regex: "(", Level: 0, Name: "broken"}})
	require.Error(t, err)
}

func TestBuildPhaseConfigCarriesThresholdsThrough(t *testing.T) {
	cfg := DefaultPipelineConfig(4)
	cfg.ConfidenceThreshold = 0.6
	cfg.MaxFilesPerBatch = 3

	phaseCfg, err := BuildPhaseConfig(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 0.6, phaseCfg.ConfidenceThreshold)
	require.Equal(t, 3, phaseCfg.MaxFilesPerBatch)
	require.Equal(t, 0.7, phaseCfg.CriticConfig.ChallengeThreshold)
	require.Equal(t, models.StrategyWeighted, phaseCfg.DebateConfig.ResolutionStrategy)
}
