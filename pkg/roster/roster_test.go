package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debtflow/engine/pkg/models"
)

func TestDefaultRosterDisablesHistorian(t *testing.T) {
	r := Default()
	require.True(t, r.Enabled(models.RoleScanner))
	require.True(t, r.Enabled(models.RoleArchitect))
	require.True(t, r.Enabled(models.RoleCritic))
	require.False(t, r.Enabled(models.RoleHistorian))
}

func TestEnabledReportsFalseForUnknownRole(t *testing.T) {
	r := New(nil)
	require.False(t, r.Enabled(models.RoleScanner))
}

func TestLoadParsesYAMLRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	content := []byte(`
- role: scanner
  prompt_bundle: scanner/v2
  tools: [report_debt]
  model: gpt-4o
  enabled: true
- role: historian
  prompt_bundle: historian/v1
  tools: [report_debt]
  model: gpt-4o
  enabled: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	require.True(t, r.Enabled(models.RoleHistorian))

	entry, ok := r.Get(models.RoleScanner)
	require.True(t, ok)
	require.Equal(t, "scanner/v2", entry.PromptBundle)
}
