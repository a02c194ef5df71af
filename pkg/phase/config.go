// Package phase implements the Phase Controller (C7): the four-phase
// state machine that drives discovery, debate, resolution, and planning
// over a repository snapshot.
package phase

import (
	"runtime"

	"github.com/debtflow/engine/pkg/debate"
	"github.com/debtflow/engine/pkg/runner"
)

// State is the Phase Controller's position in its linear state machine.
type State string

const (
	StateDiscovery State = "discovery"
	StateDebate    State = "debate"
	StateResolution State = "resolution"
	StatePlanning  State = "planning"
	StateComplete  State = "complete"
)

// Config bounds a pipeline run (spec.md §6).
type Config struct {
	WorkerPoolSize      int
	MaxFilesPerBatch    int
	ConfidenceThreshold float64
	EnableHistorian     bool
	DiscoveryConfig     runner.Config
	CriticConfig        runner.CriticConfig
	DebateConfig        debate.Config
	ImportPatterns      []runner.ImportPattern
	LayerRules          []runner.LayerRule
}

// DefaultConfig applies spec.md §6's default worker pool sizing: number
// of CPUs, bounded below at 2.
func DefaultConfig() Config {
	pool := runtime.NumCPU()
	if pool < 2 {
		pool = 2
	}
	return Config{
		WorkerPoolSize:      pool,
		MaxFilesPerBatch:    5,
		ConfidenceThreshold: 0.5,
		DiscoveryConfig:     runner.DefaultConfig(),
		CriticConfig:        runner.DefaultCriticConfig(),
		DebateConfig:        debate.DefaultConfig(),
		ImportPatterns:      runner.DefaultImportPatterns(),
	}
}
