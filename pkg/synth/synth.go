// Package synth implements the Task Synthesizer (C8, spec.md §4.8):
// grouping validated findings into prioritized remediation tasks and
// bucketing them into quick wins, deferrable, and strategic work.
package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
)

var effortByDebtType = map[models.DebtType]models.Effort{
	models.DebtSecurityIssue:        models.EffortXLarge,
	models.DebtCircularDependency:   models.EffortLarge,
	models.DebtLayerViolation:       models.EffortLarge,
	models.DebtGodClass:             models.EffortLarge,
	models.DebtComplexity:           models.EffortMedium,
	models.DebtDuplication:         models.EffortMedium,
	models.DebtMissingTests:         models.EffortMedium,
	models.DebtFeatureEnvy:          models.EffortMedium,
	models.DebtCodeSmell:            models.EffortSmall,
	models.DebtDeadCode:             models.EffortSmall,
	models.DebtMissingDocs:          models.EffortSmall,
	models.DebtHardcodedConfig:      models.EffortTrivial,
}

func effortFor(t models.DebtType) models.Effort {
	if e, ok := effortByDebtType[t]; ok {
		return e
	}
	return models.EffortMedium
}

type group struct {
	filePath string
	debtType models.DebtType
	findings []models.Finding
}

func groupKey(f models.Finding) [2]string { return [2]string{f.FilePath, string(f.DebtType)} }

// Synthesize groups validated by (filePath, debtType), computes each
// task's effort/priority/relationships, buckets them, and builds the
// plan summary.
func Synthesize(scanID string, validated []models.Finding) models.RemediationPlan {
	if len(validated) == 0 {
		return models.RemediationPlan{
			ScanID:  scanID,
			Summary: emptySummary(),
		}
	}

	groups := groupFindings(validated)
	tasks := make([]models.RemediationTask, 0, len(groups))
	for _, g := range groups {
		tasks = append(tasks, buildTask(g))
	}

	sortTasks(tasks)
	computeDependencies(tasks)

	quickWins, strategic, deferrable := bucket(tasks)

	plan := models.RemediationPlan{
		ScanID:           scanID,
		Summary:          summarize(validated, tasks, quickWins),
		TotalDebtItems:   len(validated),
		PrioritizedTasks: tasks,
		QuickWins:        quickWins,
		StrategicWork:    strategic,
		Deferrable:       deferrable,
	}
	return plan
}

func groupFindings(findings []models.Finding) []group {
	index := make(map[[2]string]int)
	var groups []group
	for _, f := range findings {
		key := groupKey(f)
		if i, ok := index[key]; ok {
			groups[i].findings = append(groups[i].findings, f)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, group{filePath: f.FilePath, debtType: f.DebtType, findings: []models.Finding{f}})
	}
	return groups
}

func buildTask(g group) models.RemediationTask {
	highest := g.findings[0]
	for _, f := range g.findings[1:] {
		if f.Severity.Rank() > highest.Severity.Rank() {
			highest = f
		}
	}

	ids := make([]identity.ID, 0, len(g.findings))
	titles := make([]string, 0, len(g.findings))
	suggestedFix := ""
	for _, f := range g.findings {
		ids = append(ids, f.ID)
		titles = append(titles, f.Title)
		if suggestedFix == "" && f.SuggestedFix != "" {
			suggestedFix = f.SuggestedFix
		}
	}
	if suggestedFix == "" {
		suggestedFix = "Review and refactor the affected code."
	}

	return models.RemediationTask{
		ID:                 identity.Prefixed("tsk"),
		Title:              fmt.Sprintf("%s: %s", g.filePath, g.debtType),
		Description:        strings.Join(titles, "; "),
		RelatedDebtIDs:     ids,
		EstimatedEffort:     effortFor(g.debtType),
		Priority:           highest.Severity.PriorityFor(),
		SuggestedApproach:  suggestedFix,
		Risks:              []string{"Regression in related functionality"},
		AcceptanceCriteria: []string{"Issue no longer present in code analysis"},
		FilePath:           g.filePath,
	}
}

// sortTasks orders ascending by priority, tie-break by filePath then by
// first relatedDebtId (spec.md §4.8).
func sortTasks(tasks []models.RemediationTask) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return firstID(a) < firstID(b)
	})
}

func firstID(t models.RemediationTask) identity.ID {
	if len(t.RelatedDebtIDs) == 0 {
		return ""
	}
	return t.RelatedDebtIDs[0]
}

// computeDependencies sets each task's Dependencies to the ids of tasks
// in the same file with strictly lower priority number (higher
// severity), excluding itself.
func computeDependencies(tasks []models.RemediationTask) {
	for i := range tasks {
		var deps []identity.ID
		for j := range tasks {
			if i == j {
				continue
			}
			if tasks[j].FilePath == tasks[i].FilePath && tasks[j].Priority < tasks[i].Priority {
				deps = append(deps, tasks[j].ID)
			}
		}
		tasks[i].Dependencies = deps
	}
}

// bucket partitions tasks into quickWins, strategicWork, and deferrable
// per spec.md §4.8's rules: the quick-win test first, then deferrable
// (priority > 7), with strategic work taking the rest, so the partition
// is total and exclusive.
func bucket(tasks []models.RemediationTask) (quickWins, strategic, deferrable []models.RemediationTask) {
	for _, t := range tasks {
		switch {
		case isQuickWin(t):
			quickWins = append(quickWins, t)
		case t.Priority > 7:
			deferrable = append(deferrable, t)
		default:
			strategic = append(strategic, t)
		}
	}
	return
}

func isQuickWin(t models.RemediationTask) bool {
	isTrivialOrSmall := t.EstimatedEffort == models.EffortTrivial || t.EstimatedEffort == models.EffortSmall
	return isTrivialOrSmall && len(t.Dependencies) == 0
}

func emptySummary() string {
	return "Found 0 items. Organized into 0 tasks with 0 quick wins."
}

// summarize builds the deterministic template from spec.md §4.8,
// omitting sections whose count is zero.
func summarize(validated []models.Finding, tasks []models.RemediationTask, quickWins []models.RemediationTask) string {
	critical, high := 0, 0
	for _, f := range validated {
		switch f.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityHigh:
			high++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d items. ", len(validated))
	if critical > 0 {
		fmt.Fprintf(&b, "%d critical need immediate attention. ", critical)
	}
	if high > 0 {
		fmt.Fprintf(&b, "%d high-priority should be addressed soon. ", high)
	}
	fmt.Fprintf(&b, "Organized into %d tasks with %d quick wins.", len(tasks), len(quickWins))
	return b.String()
}
