package phase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/redact"
	"github.com/debtflow/engine/pkg/runner"
)

type discoveryOutput struct {
	scannerFindings   []models.Finding
	architectFindings []models.Finding
	historianFindings []models.Finding
	all               []models.Finding
	errs              []error
}

// runDiscovery is Phase 1: fan out Scanner and Architect (and Historian
// when enabled) concurrently, wait for all, publish every finding on
// the bus as it arrives, and advance on all-settled rather than
// all-succeeded (spec.md §4.7).
func (c *Controller) runDiscovery(ctx context.Context, files []runner.SourceFile) discoveryOutput {
	type agentRun struct {
		role   models.AgentRole
		client llm.Client
	}
	agents := []agentRun{
		{models.RoleScanner, c.deps.ScannerClient},
		{models.RoleArchitect, c.deps.ArchitectClient},
	}
	if c.cfg.EnableHistorian && c.deps.HistorianClient != nil {
		agents = append(agents, agentRun{models.RoleHistorian, c.deps.HistorianClient})
	}

	batches := batchFiles(files, c.cfg.MaxFilesPerBatch)

	type task struct {
		agent agentRun
		batch []runner.SourceFile
	}
	var tasks []task
	for _, a := range agents {
		for _, b := range batches {
			tasks = append(tasks, task{agent: a, batch: b})
		}
	}

	var mu sync.Mutex
	out := discoveryOutput{}
	redactor := redact.New()

	errs := c.withPool(ctx, len(tasks), func(ctx context.Context, i int) error {
		t := tasks[i]
		if t.agent.client == nil {
			return nil
		}
		dr := runner.NewDiscoveryRunner(t.agent.role, t.agent.client, c.deps.Prompts, redactor, c.cfg.DiscoveryConfig)
		if t.agent.role == models.RoleHistorian {
			dr.WithVectorSearch(c.deps.VectorSearch, c.deps.RepositoryID)
		}
		result := dr.Run(ctx, t.batch)
		findings := result.Findings

		mu.Lock()
		defer mu.Unlock()
		switch t.agent.role {
		case models.RoleScanner:
			out.scannerFindings = append(out.scannerFindings, findings...)
		case models.RoleArchitect:
			out.architectFindings = append(out.architectFindings, findings...)
		case models.RoleHistorian:
			out.historianFindings = append(out.historianFindings, findings...)
		}
		out.all = append(out.all, findings...)
		for _, agentErr := range result.Errors {
			out.errs = append(out.errs, agentErr)
		}
		if result.FatalErr != nil {
			slog.Warn("phase: discovery agent terminated early", "role", t.agent.role, "error", result.FatalErr)
		}

		for _, f := range findings {
			c.publishFinding(t.agent.role, f)
		}
		return nil
	})

	mu.Lock()
	out.errs = append(out.errs, errs...)
	mu.Unlock()

	if c.deps.ArchitectClient != nil {
		structural := runner.StructuralFindings(files, c.cfg.ImportPatterns, c.cfg.LayerRules)
		out.architectFindings = append(out.architectFindings, structural...)
		out.all = append(out.all, structural...)
		for _, f := range structural {
			c.publishFinding(models.RoleArchitect, f)
		}
	}

	return out
}

// batchFiles splits files into groups of at most size, per spec.md
// §6's maxFilesPerBatch: each group becomes one discovery task so the
// worker pool can run batches concurrently instead of one long
// sequential scan per agent. size <= 0 disables batching (one batch).
func batchFiles(files []runner.SourceFile, size int) [][]runner.SourceFile {
	if size <= 0 || size >= len(files) {
		if len(files) == 0 {
			return nil
		}
		return [][]runner.SourceFile{files}
	}
	var batches [][]runner.SourceFile
	for i := 0; i < len(files); i += size {
		end := i + size
		if end > len(files) {
			end = len(files)
		}
		batches = append(batches, files[i:end])
	}
	return batches
}

func (c *Controller) publishFinding(from models.AgentRole, f models.Finding) {
	if c.deps.Bus == nil {
		return
	}
	c.deps.Bus.Publish(models.AgentMessage{
		From:    from,
		To:      models.RoleBroadcast,
		Type:    models.MessageFinding,
		Content: models.MessageContent{Finding: &f},
	})
}
