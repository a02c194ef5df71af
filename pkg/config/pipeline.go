package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// LayerPattern is one entry in the layerPatterns list the Architect's
// layer-violation check is built from (spec.md §6).
type LayerPattern struct {
	Regex string `yaml:"regex"`
	Level int    `yaml:"level"`
	Name  string `yaml:"name"`
}

// AgentWeight is one role's weight for one debt type, used by the
// Voting Subsystem (spec.md §6's agentWeights table). Keyed by role
// name (e.g. "scanner") rather than models.AgentRole so it round-trips
// through YAML without a custom unmarshaler.
type AgentWeight map[string]float64

// PipelineConfig is the pipeline-level configuration spec.md §6
// recognizes. AgentWeights left nil means "use voting.DefaultTable()"
// (see BuildVotingTable) rather than repeating that table's literals
// here.
type PipelineConfig struct {
	MaxDebateRounds     int                    `yaml:"max_debate_rounds"`
	DebateTimeoutMs     int                    `yaml:"debate_timeout_ms"`
	ChallengeThreshold  float64                `yaml:"challenge_threshold"`
	ResolutionStrategy  string                 `yaml:"resolution_strategy"`
	MaxFilesPerBatch    int                    `yaml:"max_files_per_batch"`
	MaxTokensPerFile    int                    `yaml:"max_tokens_per_file"`
	ConfidenceThreshold float64                `yaml:"confidence_threshold"`
	WorkerPoolSize      int                    `yaml:"worker_pool_size"`
	AgentWeights        map[string]AgentWeight `yaml:"agent_weights"`
	LayerPatterns       []LayerPattern         `yaml:"layer_patterns"`
}

// DefaultPipelineConfig matches spec.md §6's literal defaults.
func DefaultPipelineConfig(ncpu int) PipelineConfig {
	pool := ncpu
	if pool < 2 {
		pool = 2
	}
	return PipelineConfig{
		MaxDebateRounds:     3,
		DebateTimeoutMs:     30_000,
		ChallengeThreshold:  0.7,
		ResolutionStrategy:  "weighted",
		MaxFilesPerBatch:    5,
		MaxTokensPerFile:    8_000,
		ConfidenceThreshold: 0.5,
		WorkerPoolSize:      pool,
	}
}

// LoadPipelineConfig reads a pipeline.yaml at path and merges it over
// DefaultPipelineConfig(ncpu): any field the file sets overrides the
// default, anything left zero-valued keeps the default (defaults
// first, user config layered on with mergo.WithOverride). Environment
// variables referenced as ${VAR} or $VAR are expanded before parsing,
// so e.g. a worker_pool_size can be injected per-deployment without
// templating the file itself. A missing file is not an error — the
// pure default is returned.
func LoadPipelineConfig(path string, ncpu int) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig(ncpu)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, NewLoadError(path, err)
	}
	raw = ExpandEnv(raw)

	var user PipelineConfig
	if err := yaml.Unmarshal(raw, &user); err != nil {
		return cfg, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	if err := mergo.Merge(&cfg, user, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("config: merge %s over defaults: %w", path, err)
	}
	return cfg, nil
}
