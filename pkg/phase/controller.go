package phase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/debtflow/engine/pkg/bus"
	"github.com/debtflow/engine/pkg/conflict"
	"github.com/debtflow/engine/pkg/debate"
	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/runner"
	"github.com/debtflow/engine/pkg/temporal"
	"github.com/debtflow/engine/pkg/vectorsearch"
)

// Deps bundles the injected collaborators a Controller drives. Each one
// is an external interface per spec.md §6; the controller owns none of
// their implementations.
type Deps struct {
	Bus             *bus.Bus
	ScannerClient   llm.Client
	ArchitectClient llm.Client
	HistorianClient llm.Client
	CriticClient    llm.Client
	Prompts         runner.PromptBuilder
	Arbiter         conflict.Arbiter
	Temporal        temporal.Recorder
	VectorSearch    vectorsearch.Search
	RepositoryID    string
}

// Result is the Phase Controller's output: the final state, every
// finding seen across all phases (for audit/storage), and the emitted
// remediation plan.
type Result struct {
	FinalState State
	Findings   []models.Finding
	Plan       models.RemediationPlan
	Errors     []error
}

// Controller drives the four-phase state machine over one discovery
// input set.
type Controller struct {
	cfg  Config
	deps Deps
}

// New constructs a Controller.
func New(cfg Config, deps Deps) *Controller {
	return &Controller{cfg: cfg, deps: deps}
}

// Run executes discovery -> debate -> resolution -> planning in order
// (spec.md §4.7: "Transitions are linear; no backtracking").
// Cancellation is cooperative: ctx is not checked between phases, but
// each fan-out item not yet started is skipped once ctx is done, and
// the runners stop between files or findings. Results of work already
// in flight are kept; nothing is forcibly killed.
func (c *Controller) Run(ctx context.Context, files []runner.SourceFile) Result {
	discoveryOut := c.runDiscovery(ctx, files)

	debateOut := c.runDebate(ctx, discoveryOut)

	resolutionOut := c.runResolution(ctx, discoveryOut, debateOut)

	plan := c.runPlanning(resolutionOut.validated)

	if recErrs := temporal.RecordAll(ctx, c.deps.Temporal, plan.ScanID, c.deps.RepositoryID, resolutionOut.validated); len(recErrs) > 0 {
		resolutionOut.errs = append(resolutionOut.errs, recErrs...)
	}

	var errs []error
	errs = append(errs, discoveryOut.errs...)
	errs = append(errs, debateOut.errs...)
	errs = append(errs, resolutionOut.errs...)

	return Result{
		FinalState: StateComplete,
		Findings:   resolutionOut.validated,
		Plan:       plan,
		Errors:     errs,
	}
}

func (c *Controller) poolSize() int {
	if c.cfg.WorkerPoolSize < 2 {
		return 2
	}
	return c.cfg.WorkerPoolSize
}

// withPool runs fn once per index in [0, n) on a bounded worker pool.
// It is the controller's one reusable fan-out primitive, shared by
// every phase that parallelizes per-agent or per-finding work.
func (c *Controller) withPool(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.poolSize())

	errsCh := make(chan error, n)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			if err := fn(gctx, i); err != nil {
				errsCh <- err
			}
			return nil
		})
	}
	_ = g.Wait()
	close(errsCh)

	var errs []error
	for err := range errsCh {
		errs = append(errs, err)
	}
	return errs
}
