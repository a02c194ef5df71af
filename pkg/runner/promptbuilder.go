package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/debtflow/engine/pkg/models"
)

// defaultSystemPrompts are the built-in prompt text spec.md §4.12
// expects every role to ship with, used whenever no override file is
// present under a FilePromptBuilder's directory (spec.md §1: "Prompt
// text for each agent — externally supplied configuration", not
// hardcoded into the agent logic itself).
var defaultSystemPrompts = map[models.AgentRole]string{
	models.RoleScanner: "You are the Scanner agent. Read the given file and report " +
		"concrete technical-debt findings (code smells, complexity, duplication, dead code, " +
		"missing tests, hardcoded config) via the report_debt tool. Do not report structural " +
		"or cross-file concerns; that is the Architect's job.",
	models.RoleArchitect: "You are the Architect agent. Read the given file for " +
		"structural and cross-cutting debt (god classes, feature envy, layering concerns) " +
		"and report findings via the report_debt tool. Circular dependencies and layer " +
		"violations are detected separately from your own structural analysis.",
	models.RoleHistorian: "You are the Historian agent. Use the file's commit history " +
		"to report debt whose severity depends on change frequency or churn (flaky tests, " +
		"outdated docs trailing behind frequently-changed code) via the report_debt tool.",
	models.RoleCritic: "You are the Critic agent. Review the given finding skeptically: " +
		"call validate_finding if the evidence supports it, or reject_finding with your " +
		"reasoning and a confidence score if it does not.",
}

// FilePromptBuilder implements PromptBuilder by reading prompt text
// from <Dir>/<role>.system.txt, falling back to defaultSystemPrompts
// when no such file exists. User-turn prompts are templated from the
// system prompt's role rather than externally configured, since they
// carry per-call data (file content, finding fields) the bundle text
// can't pre-compose.
type FilePromptBuilder struct {
	Dir string
}

// NewFilePromptBuilder constructs a FilePromptBuilder rooted at dir.
func NewFilePromptBuilder(dir string) *FilePromptBuilder {
	return &FilePromptBuilder{Dir: dir}
}

// NewStaticPromptBuilder returns a FilePromptBuilder with no backing
// directory: every role falls back to its built-in default prompt.
func NewStaticPromptBuilder() *FilePromptBuilder {
	return &FilePromptBuilder{}
}

// SystemPrompt implements PromptBuilder.
func (b *FilePromptBuilder) SystemPrompt(role models.AgentRole) string {
	if b.Dir != "" {
		path := filepath.Join(b.Dir, fmt.Sprintf("%s.system.txt", role))
		if content, err := os.ReadFile(path); err == nil {
			return string(content)
		}
	}
	return defaultSystemPrompts[role]
}

// DiscoveryUserPrompt implements PromptBuilder.
func (b *FilePromptBuilder) DiscoveryUserPrompt(role models.AgentRole, file SourceFile) string {
	return fmt.Sprintf("File: %s\n\n%s", file.Path, file.Content)
}

// ReviewUserPrompt implements PromptBuilder.
func (b *FilePromptBuilder) ReviewUserPrompt(finding models.Finding) string {
	return fmt.Sprintf(
		"Finding to review:\nType: %s\nSeverity: %s\nConfidence: %.2f\nFile: %s\nTitle: %s\nDescription: %s",
		finding.DebtType, finding.Severity, finding.Confidence, finding.FilePath, finding.Title, finding.Description,
	)
}
