// Package runner implements the Agent Runner (C6): one runner per
// discovery agent (Scanner, Architect) and one for the Critic, each
// iterating an input stream, calling the LLM, and collecting typed
// tool-call outputs (spec.md §4.6).
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/redact"
	"github.com/debtflow/engine/pkg/vectorsearch"
)

// Config bounds a discovery run.
type Config struct {
	MaxTokensPerFile int
}

// DefaultConfig matches spec.md §6's defaults relevant to the runner.
func DefaultConfig() Config {
	return Config{MaxTokensPerFile: 8_000}
}

// DiscoveryRunner drives Scanner, Architect or Historian over a stream
// of files. VectorSearch is consulted only for the Historian role: it
// surfaces prior similar context for a file before the Historian
// reports findings, and is nil-safe (a nil Search degrades to running
// without that context, per pkg/vectorsearch's doc comment).
type DiscoveryRunner struct {
	Role         models.AgentRole
	Client       llm.Client
	Prompts      PromptBuilder
	Redactor     *redact.Redactor
	Config       Config
	VectorSearch vectorsearch.Search
	RepositoryID string
}

// NewDiscoveryRunner constructs a DiscoveryRunner for role.
func NewDiscoveryRunner(role models.AgentRole, client llm.Client, prompts PromptBuilder, redactor *redact.Redactor, cfg Config) *DiscoveryRunner {
	return &DiscoveryRunner{Role: role, Client: client, Prompts: prompts, Redactor: redactor, Config: cfg}
}

// WithVectorSearch attaches a similarity-search backend and the
// repository it should be scoped to, returning r for chaining.
func (r *DiscoveryRunner) WithVectorSearch(search vectorsearch.Search, repositoryID string) *DiscoveryRunner {
	r.VectorSearch = search
	r.RepositoryID = repositoryID
	return r
}

// Result is the outcome of running a discovery pass: findings
// in tool-call parse order, plus accumulated recoverable/non-recoverable
// errors. FatalErr is set when a fatal transport error terminated the
// runner early (spec.md §4.6's failure semantics); Findings still holds
// whatever was collected before that point.
type Result struct {
	Findings []models.Finding
	Errors   []AgentError
	FatalErr error
}

// Run iterates files in order. A single file's failure never aborts the
// run; a fatal transport error (authentication/quota) terminates early
// with partial results, per spec.md §4.6.
func (r *DiscoveryRunner) Run(ctx context.Context, files []SourceFile) Result {
	var result Result

	for _, file := range files {
		select {
		case <-ctx.Done():
			return result
		default:
		}

		findings, err := r.processFile(ctx, file)
		if err != nil {
			var rec llm.Recoverable
			if errors.As(err, &rec) {
				result.Errors = append(result.Errors, newTransportError(file.Path, err))
				continue
			}
			result.Errors = append(result.Errors, newFatalError(file.Path, err))
			result.FatalErr = err
			return result
		}
		result.Findings = append(result.Findings, findings...)
	}

	return result
}

func (r *DiscoveryRunner) processFile(ctx context.Context, file SourceFile) ([]models.Finding, error) {
	truncated := truncateContent(file.Content, r.Config.MaxTokensPerFile)

	userPrompt := r.Prompts.DiscoveryUserPrompt(r.Role, SourceFile{Path: file.Path, Content: truncated})
	if r.Role == models.RoleHistorian && r.VectorSearch != nil {
		userPrompt += r.similarContextSection(ctx, file)
	}

	req := llm.Request{
		SystemPrompt: r.Prompts.SystemPrompt(r.Role),
		Messages: []llm.Message{
			{Role: "user", Content: userPrompt},
		},
		Tools: []llm.ToolDefinition{reportDebtTool()},
	}

	resp, err := r.Client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var findings []models.Finding
	for _, tc := range resp.ToolCalls {
		if tc.Name != llm.ToolReportDebt {
			continue
		}
		finding, ok := r.buildFinding(file.Path, tc.Args)
		if !ok {
			slog.Debug("runner: discarding report_debt call with invalid arguments", "file", file.Path, "role", r.Role)
			continue
		}
		findings = append(findings, finding)
	}
	return findings, nil
}

// similarContextSection queries VectorSearch for prior content similar
// to file and renders it as an appended prompt section, or an empty
// string if the search errors or turns up nothing (the Historian
// then reports on the file content alone, per pkg/vectorsearch's doc
// comment on graceful degradation).
func (r *DiscoveryRunner) similarContextSection(ctx context.Context, file SourceFile) string {
	matches, err := r.VectorSearch.SearchSimilar(ctx, vectorsearch.Query{
		Text:         file.Content,
		RepositoryID: r.RepositoryID,
		Limit:        5,
		Threshold:    0.5,
	})
	if err != nil {
		slog.Debug("runner: vector search failed, continuing without prior context", "file", file.Path, "error", err)
		return ""
	}
	if len(matches) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nPrior similar context found elsewhere in the repository:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s:%d-%d (similarity %.2f): %s\n", m.FilePath, m.StartLine, m.EndLine, m.Similarity, truncateContent(m.Content, 200))
	}
	return b.String()
}

// truncateContent estimates tokens as ceil(len/4) and truncates content
// beyond maxTokens, appending a truncation marker, per spec.md §4.6
// step 1.
func truncateContent(content string, maxTokens int) string {
	maxChars := maxTokens * 4
	if len(content) <= maxChars {
		return content
	}
	return content[:maxChars] + "\n... [truncated]"
}

func reportDebtTool() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        llm.ToolReportDebt,
		Description: "Report one piece of technical debt found in the file under review.",
		ParametersSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"debt_type":     map[string]any{"type": "string"},
				"severity":      map[string]any{"type": "string"},
				"confidence":    map[string]any{"type": "number"},
				"title":         map[string]any{"type": "string"},
				"description":   map[string]any{"type": "string"},
				"start_line":    map[string]any{"type": "integer"},
				"end_line":      map[string]any{"type": "integer"},
				"evidence":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"suggested_fix": map[string]any{"type": "string"},
			},
			"required": []string{"debt_type", "severity", "confidence", "title"},
		},
	}
}

// buildFinding constructs a Finding from report_debt tool-call
// arguments, rejecting silently (returning ok=false) if required fields
// are missing or out of range, per spec.md §4.6 step 4.
func (r *DiscoveryRunner) buildFinding(filePath string, args map[string]any) (models.Finding, bool) {
	title, hasTitle := asString(args["title"])
	if !hasTitle || title == "" {
		return models.Finding{}, false
	}
	confidence, hasConfidence := asFloat(args["confidence"])
	if !hasConfidence {
		return models.Finding{}, false
	}
	debtType, _ := asString(args["debt_type"])
	severity, _ := asString(args["severity"])
	description, _ := asString(args["description"])
	suggestedFix, _ := asString(args["suggested_fix"])
	evidence := asStringSlice(args["evidence"])
	if r.Redactor != nil {
		evidence = r.Redactor.Evidence(evidence)
		suggestedFix = r.Redactor.String(suggestedFix)
	}

	f := models.Finding{
		ID:           identity.Prefixed("fnd"),
		DebtType:     models.DebtType(debtType),
		Severity:     models.Severity(severity),
		Confidence:   confidence,
		Title:        title,
		Description:  description,
		FilePath:     filePath,
		Evidence:     evidence,
		SuggestedFix: suggestedFix,
	}
	if startLine, hasStart := asInt(args["start_line"]); hasStart {
		if endLine, hasEnd := asInt(args["end_line"]); hasEnd {
			s, e := startLine, endLine
			f.StartLine, f.EndLine = &s, &e
		}
	}
	f.Fingerprint = computeFingerprint(f)

	if err := f.Validate(); err != nil {
		return models.Finding{}, false
	}
	return f, true
}

// computeFingerprint hashes debtType/filePath against the finding's
// title, per spec.md §4.9's fallback branch: the runner sees tool-call
// arguments, not raw source lines, so it never has the span text the
// full formula prefers and always falls back to title.
func computeFingerprint(f models.Finding) string {
	return identity.Fingerprint(string(f.DebtType), f.FilePath, f.Title)
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
