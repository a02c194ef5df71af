// Package roster implements the Agent Roster: the (role, promptBundle,
// toolSet, model) configuration each specialist agent is defined by
// (spec.md §9's redesign note: "agents as polymorphic workers, not
// inheritance hierarchies" — adding an agent means adding a row here
// plus, where needed, a new tool handler, never a new agent class).
package roster

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/debtflow/engine/pkg/models"
)

// Entry is one roster row.
type Entry struct {
	Role         models.AgentRole `yaml:"role"`
	PromptBundle string           `yaml:"prompt_bundle"`
	Tools        []string         `yaml:"tools"`
	Model        string           `yaml:"model"`
	// Enabled matches spec.md §9's Historian note: a roster entry can
	// exist and still be excluded from a given run.
	Enabled bool `yaml:"enabled"`
}

// Roster is the configured set of agents, thread-safe for concurrent
// reads during a scan.
type Roster struct {
	mu      sync.RWMutex
	entries map[models.AgentRole]Entry
}

// New builds a Roster from entries, keyed by role.
func New(entries []Entry) *Roster {
	r := &Roster{entries: make(map[models.AgentRole]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.Role] = e
	}
	return r
}

// Default is the roster spec.md §4.12/Glossary describes out of the
// box: Scanner, Architect, and Critic enabled; Historian present but
// disabled per §9 ("defined in the roster but not executed"); Planner
// has no LLM-backed runner of its own (it is the Task Synthesizer).
func Default() *Roster {
	return New([]Entry{
		{Role: models.RoleScanner, PromptBundle: "scanner/v1", Tools: []string{"report_debt"}, Model: "default", Enabled: true},
		{Role: models.RoleArchitect, PromptBundle: "architect/v1", Tools: []string{"report_debt"}, Model: "default", Enabled: true},
		{Role: models.RoleHistorian, PromptBundle: "historian/v1", Tools: []string{"report_debt"}, Model: "default", Enabled: false},
		{Role: models.RoleCritic, PromptBundle: "critic/v1", Tools: []string{"validate_finding", "reject_finding"}, Model: "default", Enabled: true},
		{Role: models.RolePlanner, PromptBundle: "", Tools: nil, Model: "", Enabled: true},
	})
}

// Load parses a YAML roster file, one entry per document-list item:
//
//	- role: scanner
//	  prompt_bundle: scanner/v1
//	  tools: [report_debt]
//	  model: gpt-4o
//	  enabled: true
func Load(path string) (*Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("roster: parse %s: %w", path, err)
	}
	return New(entries), nil
}

// Get returns the entry configured for role, and whether one exists.
func (r *Roster) Get(role models.AgentRole) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[role]
	return e, ok
}

// Enabled reports whether role is both present in the roster and
// enabled for this run.
func (r *Roster) Enabled(role models.AgentRole) bool {
	e, ok := r.Get(role)
	return ok && e.Enabled
}

// All returns every roster entry.
func (r *Roster) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}
