package synth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debtflow/engine/pkg/models"
)

func TestSynthesizeEmptyValidatedProducesEmptyPlan(t *testing.T) {
	plan := Synthesize("scan1", nil)
	require.Equal(t, "Found 0 items. Organized into 0 tasks with 0 quick wins.", plan.Summary)
	require.Equal(t, 0, plan.TotalDebtItems)
	require.Empty(t, plan.PrioritizedTasks)
}

func TestSynthesizeGroupsByFileAndDebtType(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", FilePath: "a.go", DebtType: models.DebtCodeSmell, Severity: models.SeverityLow, Title: "t1"},
		{ID: "f2", FilePath: "a.go", DebtType: models.DebtCodeSmell, Severity: models.SeverityHigh, Title: "t2"},
		{ID: "f3", FilePath: "a.go", DebtType: models.DebtComplexity, Severity: models.SeverityMedium, Title: "t3"},
	}
	plan := Synthesize("scan1", findings)
	require.Len(t, plan.PrioritizedTasks, 2)

	var codeSmellTask models.RemediationTask
	for _, t2 := range plan.PrioritizedTasks {
		if len(t2.RelatedDebtIDs) == 2 {
			codeSmellTask = t2
		}
	}
	require.Equal(t, models.SeverityHigh.PriorityFor(), codeSmellTask.Priority)
	require.Contains(t, codeSmellTask.Description, "t1")
	require.Contains(t, codeSmellTask.Description, "t2")
}

func TestSynthesizeEffortLookupPerDebtType(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", FilePath: "a.go", DebtType: models.DebtSecurityIssue, Severity: models.SeverityCritical, Title: "t1"},
	}
	plan := Synthesize("scan1", findings)
	require.Equal(t, models.EffortXLarge, plan.PrioritizedTasks[0].EstimatedEffort)
}

func TestSynthesizeBucketsPartitionAllTasks(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", FilePath: "a.go", DebtType: models.DebtHardcodedConfig, Severity: models.SeverityInfo, Title: "trivial"},
		{ID: "f2", FilePath: "b.go", DebtType: models.DebtSecurityIssue, Severity: models.SeverityCritical, Title: "big"},
		{ID: "f3", FilePath: "c.go", DebtType: models.DebtMissingDocs, Severity: models.SeverityLow, Title: "docs"},
	}
	plan := Synthesize("scan1", findings)

	total := len(plan.QuickWins) + len(plan.StrategicWork) + len(plan.Deferrable)
	require.Equal(t, len(plan.PrioritizedTasks), total)

	seen := make(map[string]bool)
	for _, bucket := range [][]models.RemediationTask{plan.QuickWins, plan.StrategicWork, plan.Deferrable} {
		for _, task := range bucket {
			require.False(t, seen[string(task.ID)], "task counted in more than one bucket")
			seen[string(task.ID)] = true
		}
	}
}

func TestSynthesizeEachFindingAppearsInExactlyOneTask(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", FilePath: "a.go", DebtType: models.DebtCodeSmell, Severity: models.SeverityLow, Title: "t1"},
		{ID: "f2", FilePath: "b.go", DebtType: models.DebtComplexity, Severity: models.SeverityMedium, Title: "t2"},
	}
	plan := Synthesize("scan1", findings)

	count := make(map[string]int)
	for _, task := range plan.PrioritizedTasks {
		for _, id := range task.RelatedDebtIDs {
			count[string(id)]++
		}
	}
	for _, f := range findings {
		require.Equal(t, 1, count[string(f.ID)])
	}
}

func TestSynthesizeDependenciesAreSameFileHigherPriorityTasks(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", FilePath: "a.go", DebtType: models.DebtSecurityIssue, Severity: models.SeverityCritical, Title: "t1"},
		{ID: "f2", FilePath: "a.go", DebtType: models.DebtCodeSmell, Severity: models.SeverityLow, Title: "t2"},
	}
	plan := Synthesize("scan1", findings)
	require.Len(t, plan.PrioritizedTasks, 2)

	var low models.RemediationTask
	for _, task := range plan.PrioritizedTasks {
		if task.Priority == models.SeverityLow.PriorityFor() {
			low = task
		}
	}
	require.Len(t, low.Dependencies, 1)
}

func TestSynthesizeSortOrderByPriorityThenFilePath(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", FilePath: "z.go", DebtType: models.DebtCodeSmell, Severity: models.SeverityMedium, Title: "t1"},
		{ID: "f2", FilePath: "a.go", DebtType: models.DebtCodeSmell, Severity: models.SeverityMedium, Title: "t2"},
	}
	plan := Synthesize("scan1", findings)
	require.Equal(t, "a.go", plan.PrioritizedTasks[0].FilePath)
	require.Equal(t, "z.go", plan.PrioritizedTasks[1].FilePath)
}

func TestSynthesizeSummaryOmitsZeroCountSections(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", FilePath: "a.go", DebtType: models.DebtCodeSmell, Severity: models.SeverityLow, Title: "t1"},
	}
	plan := Synthesize("scan1", findings)
	require.NotContains(t, plan.Summary, "critical")
	require.NotContains(t, plan.Summary, "high-priority")
}
