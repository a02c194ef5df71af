package runner

import "github.com/debtflow/engine/pkg/models"

// SourceFile is one unit of discovery input: a file's content as seen
// in the repository snapshot.
type SourceFile struct {
	Path    string
	Content string
}

// PromptBuilder supplies the externally-configured system/user prompt
// text for a role (spec.md §1: "Prompt text for each agent — externally
// supplied configuration"). The core never hardcodes prompt copy.
type PromptBuilder interface {
	SystemPrompt(role models.AgentRole) string
	DiscoveryUserPrompt(role models.AgentRole, file SourceFile) string
	ReviewUserPrompt(finding models.Finding) string
}
