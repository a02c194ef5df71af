package conflict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debtflow/engine/pkg/models"
)

func span(s, e int) (*int, *int) {
	start, end := s, e
	return &start, &end
}

func TestClassificationDisputeOnMutuallyExclusivePair(t *testing.T) {
	s1, e1 := span(5, 20)
	s2, e2 := span(1, 30)
	scannerFindings := []models.Finding{{ID: "f1", DebtType: models.DebtDeadCode, FilePath: "f.ts", StartLine: s1, EndLine: e1, Severity: models.SeverityMedium}}
	architectFindings := []models.Finding{{ID: "f2", DebtType: models.DebtMissingTests, FilePath: "f.ts", StartLine: s2, EndLine: e2, Severity: models.SeverityMedium}}

	conflicts := Detect(scannerFindings, architectFindings)
	require.Len(t, conflicts, 1)
	require.Equal(t, models.ConflictClassificationDispute, conflicts[0].Type)
}

func TestSeverityDisagreementOnGapOfTwoOrMore(t *testing.T) {
	s, e := span(1, 50)
	scannerFindings := []models.Finding{{ID: "f1", DebtType: models.DebtComplexity, FilePath: "x.ts", StartLine: s, EndLine: e, Severity: models.SeverityLow, Confidence: 0.8}}
	architectFindings := []models.Finding{{ID: "f2", DebtType: models.DebtComplexity, FilePath: "x.ts", StartLine: s, EndLine: e, Severity: models.SeverityCritical, Confidence: 0.85}}

	conflicts := Detect(scannerFindings, architectFindings)
	require.Len(t, conflicts, 1)
	require.Equal(t, models.ConflictSeverityDisagreement, conflicts[0].Type)
}

func TestNoConflictWhenGapBelowTwo(t *testing.T) {
	s, e := span(1, 50)
	scannerFindings := []models.Finding{{ID: "f1", DebtType: models.DebtComplexity, FilePath: "x.ts", StartLine: s, EndLine: e, Severity: models.SeverityMedium}}
	architectFindings := []models.Finding{{ID: "f2", DebtType: models.DebtComplexity, FilePath: "x.ts", StartLine: s, EndLine: e, Severity: models.SeverityHigh}}

	require.Empty(t, Detect(scannerFindings, architectFindings))
}

func TestScopeDisagreementOnSpanSizeFactor(t *testing.T) {
	s1, e1 := span(1, 5)
	s2, e2 := span(1, 50)
	scannerFindings := []models.Finding{{ID: "f1", DebtType: models.DebtCodeSmell, FilePath: "y.ts", StartLine: s1, EndLine: e1}}
	architectFindings := []models.Finding{{ID: "f2", DebtType: models.DebtCodeSmell, FilePath: "y.ts", StartLine: s2, EndLine: e2}}

	conflicts := Detect(scannerFindings, architectFindings)
	require.Len(t, conflicts, 1)
	require.Equal(t, models.ConflictScopeDisagreement, conflicts[0].Type)
}

func TestCrossFilePairsNeverCompared(t *testing.T) {
	s, e := span(1, 5)
	scannerFindings := []models.Finding{{ID: "f1", DebtType: models.DebtDeadCode, FilePath: "a.ts", StartLine: s, EndLine: e}}
	architectFindings := []models.Finding{{ID: "f2", DebtType: models.DebtMissingTests, FilePath: "b.ts", StartLine: s, EndLine: e}}

	require.Empty(t, Detect(scannerFindings, architectFindings))
}

func TestMissingBoundTreatedAsOverlapping(t *testing.T) {
	s1, e1 := span(5, 20)
	scannerFindings := []models.Finding{{ID: "f1", DebtType: models.DebtDeadCode, FilePath: "f.ts", StartLine: s1, EndLine: e1}}
	architectFindings := []models.Finding{{ID: "f2", DebtType: models.DebtMissingTests, FilePath: "f.ts"}} // no span

	conflicts := Detect(scannerFindings, architectFindings)
	require.Len(t, conflicts, 1)
}

func TestDetectionIsSymmetricUpToClaimOrder(t *testing.T) {
	s1, e1 := span(5, 20)
	s2, e2 := span(1, 30)
	a := models.Finding{ID: "f1", DebtType: models.DebtDeadCode, FilePath: "f.ts", StartLine: s1, EndLine: e1}
	b := models.Finding{ID: "f2", DebtType: models.DebtMissingTests, FilePath: "f.ts", StartLine: s2, EndLine: e2}

	forward := Detect([]models.Finding{a}, []models.Finding{b})
	backward := Detect([]models.Finding{b}, []models.Finding{a})

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	require.Equal(t, forward[0].Type, backward[0].Type)

	fwdAgents := map[models.AgentRole]string{}
	for _, c := range forward[0].Claims {
		fwdAgents[c.Agent] = string(c.Finding.ID)
	}
	bwdAgents := map[models.AgentRole]string{}
	for _, c := range backward[0].Claims {
		bwdAgents[c.Agent] = string(c.Finding.ID)
	}
	require.ElementsMatch(t, valuesOf(fwdAgents), valuesOf(bwdAgents))
}

func valuesOf(m map[models.AgentRole]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
