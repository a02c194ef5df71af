package phase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debtflow/engine/pkg/bus"
	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/runner"
)

type fakeClient struct {
	toolCalls []llm.ToolCall
}

func (c *fakeClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{ToolCalls: c.toolCalls}, nil
}
func (c *fakeClient) CompleteStructured(ctx context.Context, req llm.Request, schema map[string]any, out any) error {
	return nil
}
func (c *fakeClient) Stream(ctx context.Context, req llm.Request) (<-chan llm.StreamEvent, <-chan error) {
	return nil, nil
}

func emptyClient() *fakeClient { return &fakeClient{} }

func reportDebt(args map[string]any) llm.ToolCall {
	return llm.ToolCall{Name: llm.ToolReportDebt, Args: args}
}

type fixedPrompts struct{}

func (fixedPrompts) SystemPrompt(role models.AgentRole) string { return "sys" }
func (fixedPrompts) DiscoveryUserPrompt(role models.AgentRole, file runner.SourceFile) string {
	return "discover:" + file.Path
}
func (fixedPrompts) ReviewUserPrompt(finding models.Finding) string { return "review" }

func TestControllerNoDebtProducesEmptyPlan(t *testing.T) {
	cfg := DefaultConfig()
	ctrl := New(cfg, Deps{
		Bus:             bus.New(),
		ScannerClient:   emptyClient(),
		ArchitectClient: emptyClient(),
		Prompts:         fixedPrompts{},
	})

	result := ctrl.Run(context.Background(), []runner.SourceFile{{Path: "a.go", Content: "package a"}})
	require.Equal(t, StateComplete, result.FinalState)
	require.Empty(t, result.Findings)
	require.Equal(t, "Found 0 items. Organized into 0 tasks with 0 quick wins.", result.Plan.Summary)
}

func TestControllerSingleCriticalAcceptedWithoutCritic(t *testing.T) {
	scanner := &fakeClient{toolCalls: []llm.ToolCall{reportDebt(map[string]any{
		"debt_type": "security_issue", "severity": "critical", "confidence": 0.9, "title": "sql injection",
	})}}
	cfg := DefaultConfig()
	ctrl := New(cfg, Deps{
		Bus:             bus.New(),
		ScannerClient:   scanner,
		ArchitectClient: emptyClient(),
		Prompts:         fixedPrompts{},
	})

	result := ctrl.Run(context.Background(), []runner.SourceFile{{Path: "a.go", Content: "x"}})
	require.Len(t, result.Findings, 1)
	require.Equal(t, models.SeverityCritical, result.Findings[0].Severity)
	require.Len(t, result.Plan.PrioritizedTasks, 1)
	require.Equal(t, 1, result.Plan.PrioritizedTasks[0].Priority)
}

func TestControllerCriticRejectionStartsDebateAndRejectsOnEmptyVotes(t *testing.T) {
	scanner := &fakeClient{toolCalls: []llm.ToolCall{reportDebt(map[string]any{
		"debt_type": "code_smell", "severity": "low", "confidence": 0.3, "title": "maybe smell",
	})}}
	critic := &fakeClient{toolCalls: []llm.ToolCall{
		{Name: llm.ToolRejectFinding, Args: map[string]any{"confidence": 0.2, "reason": "not convincing"}},
	}}
	cfg := DefaultConfig()
	ctrl := New(cfg, Deps{
		Bus:             bus.New(),
		ScannerClient:   scanner,
		ArchitectClient: emptyClient(),
		CriticClient:    critic,
		Prompts:         fixedPrompts{},
	})

	result := ctrl.Run(context.Background(), []runner.SourceFile{{Path: "a.go", Content: "x"}})
	require.Empty(t, result.Findings)
	require.Empty(t, result.Plan.PrioritizedTasks)
}

func TestControllerSeverityDisagreementMergesToHigherSeverity(t *testing.T) {
	s1, e1 := 1, 50
	scanner := &fakeClient{toolCalls: []llm.ToolCall{reportDebt(map[string]any{
		"debt_type": "complexity", "severity": "low", "confidence": 0.8, "title": "complex fn",
		"start_line": float64(s1), "end_line": float64(e1),
	})}}
	architect := &fakeClient{toolCalls: []llm.ToolCall{reportDebt(map[string]any{
		"debt_type": "complexity", "severity": "critical", "confidence": 0.85, "title": "complex fn",
		"start_line": float64(s1), "end_line": float64(e1),
	})}}
	cfg := DefaultConfig()
	ctrl := New(cfg, Deps{
		Bus:             bus.New(),
		ScannerClient:   scanner,
		ArchitectClient: architect,
		Prompts:         fixedPrompts{},
	})

	result := ctrl.Run(context.Background(), []runner.SourceFile{{Path: "x.ts", Content: "x"}})
	require.Len(t, result.Findings, 1)
	require.Equal(t, models.SeverityCritical, result.Findings[0].Severity)
	require.Len(t, result.Plan.PrioritizedTasks, 1)
	require.Equal(t, 1, result.Plan.PrioritizedTasks[0].Priority)
}

func TestControllerCycleDetectionProducesCircularDependencyTask(t *testing.T) {
	files := []runner.SourceFile{
		{Path: "a", Content: "import (\n\t\"b\"\n)"},
		{Path: "b", Content: "import (\n\t\"c\"\n)"},
		{Path: "c", Content: "import (\n\t\"a\"\n)"},
	}
	cfg := DefaultConfig()
	ctrl := New(cfg, Deps{
		Bus:             bus.New(),
		ScannerClient:   emptyClient(),
		ArchitectClient: emptyClient(),
		Prompts:         fixedPrompts{},
	})

	result := ctrl.Run(context.Background(), files)

	var cycleTasks int
	for _, task := range result.Plan.PrioritizedTasks {
		if task.EstimatedEffort == models.EffortLarge {
			cycleTasks++
			require.Equal(t, 3, task.Priority)
		}
	}
	require.Equal(t, 1, cycleTasks)
}
