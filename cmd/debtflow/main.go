// debtflow runs one technical-debt scan over a local repository (or a
// GitHub "owner/name" reference with no matching local directory) and
// prints the resulting remediation plan. HTTP serving, authentication
// and a UI are explicit non-goals; this is a one-shot CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"

	"github.com/debtflow/engine/pkg/bus"
	"github.com/debtflow/engine/pkg/config"
	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/phase"
	"github.com/debtflow/engine/pkg/reposnap"
	"github.com/debtflow/engine/pkg/roster"
	"github.com/debtflow/engine/pkg/runner"
	"github.com/debtflow/engine/pkg/storage"
	"github.com/debtflow/engine/pkg/temporal"
	"github.com/debtflow/engine/pkg/vectorsearch"
	"github.com/debtflow/engine/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory (pipeline.yaml, roster.yaml, .env)")
	repoPath := flag.String("repo", ".", "Path to the repository to scan")
	outputPath := flag.String("output", "", "Write the remediation plan as JSON here (default: stdout)")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	ctx := context.Background()
	log.Printf("Starting %s", version.Full())

	pipelineCfg, err := config.LoadPipelineConfig(filepath.Join(*configDir, "pipeline.yaml"), runtime.NumCPU())
	if err != nil {
		log.Fatalf("Failed to load pipeline config: %v", err)
	}

	agentRoster, err := roster.Load(filepath.Join(*configDir, "roster.yaml"))
	if err != nil {
		slog.Warn("debtflow: no roster.yaml found, using built-in defaults", "error", err)
		agentRoster = roster.Default()
	}

	snap, repoID, err := openSnapshot(ctx, *repoPath)
	if err != nil {
		log.Fatalf("Failed to open repository at %s: %v", *repoPath, err)
	}
	files, err := reposnap.LoadSourceFiles(ctx, snap, repoID)
	if err != nil {
		log.Fatalf("Failed to load repository files: %v", err)
	}
	log.Printf("Loaded %d files from %s", len(files), repoID)

	store, recorder, closeStore := buildStorage(ctx)
	defer closeStore()

	phaseCfg, err := config.BuildPhaseConfig(pipelineCfg, runner.DefaultImportPatterns())
	if err != nil {
		log.Fatalf("Failed to build pipeline configuration: %v", err)
	}

	deps := phase.Deps{
		Bus:          bus.New(),
		Prompts:      runner.NewFilePromptBuilder(filepath.Join(*configDir, "prompts")),
		Temporal:     recorder,
		VectorSearch: buildVectorSearch(ctx),
		RepositoryID: repoID,
	}
	if entry, ok := agentRoster.Get(models.RoleScanner); ok && entry.Enabled {
		deps.ScannerClient = newRoleClient(entry)
	}
	if entry, ok := agentRoster.Get(models.RoleArchitect); ok && entry.Enabled {
		deps.ArchitectClient = newRoleClient(entry)
	}
	if entry, ok := agentRoster.Get(models.RoleHistorian); ok && entry.Enabled {
		deps.HistorianClient = newRoleClient(entry)
		phaseCfg.EnableHistorian = true
	}
	if entry, ok := agentRoster.Get(models.RoleCritic); ok && entry.Enabled {
		deps.CriticClient = newRoleClient(entry)
	}

	ctrl := phase.New(phaseCfg, deps)
	result := ctrl.Run(ctx, files)

	for _, f := range result.Findings {
		if err := store.UpsertFinding(ctx, f); err != nil {
			slog.Warn("debtflow: failed to persist finding", "finding_id", f.ID, "error", err)
		}
	}
	if err := store.InsertPlan(ctx, result.Plan); err != nil {
		slog.Warn("debtflow: failed to persist plan", "scan_id", result.Plan.ScanID, "error", err)
	}

	for _, scanErr := range result.Errors {
		slog.Warn("debtflow: scan reported a non-fatal error", "error", scanErr)
	}

	writePlan(result.Plan, *outputPath)
}

// openSnapshot opens repoPath as a local git clone, unless it looks
// like a GitHub "owner/name" reference with no matching local
// directory, in which case it reads through the GitHub API instead
// (spec.md §1.2: reposnap has two adapters, one for a repository the
// controller has never cloned). Returns the snapshot and the repoID
// to pass it.
func openSnapshot(ctx context.Context, repoPath string) (reposnap.Snapshot, string, error) {
	if _, err := os.Stat(repoPath); err != nil && looksLikeGitHubRef(repoPath) {
		client := github.NewClient(nil)
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			client = client.WithAuthToken(token)
		}
		return reposnap.NewGitHubSnapshot(client, os.Getenv("GITHUB_REF")), repoPath, nil
	}

	snap, err := reposnap.OpenGitSnapshot(repoPath)
	return snap, repoPath, err
}

// looksLikeGitHubRef reports whether ref has the "owner/name" shape of
// a GitHub repository reference, with no path separators inside either
// half (ruling out relative paths like "../name" or "sub/dir/name").
func looksLikeGitHubRef(ref string) bool {
	parts := strings.Split(ref, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != "" && parts[0] != "." && parts[0] != ".."
}

// buildStorage wires Postgres-backed storage/temporal recording when
// DATABASE_URL is set, falling back to in-process implementations for
// a zero-dependency quick start (spec.md §1.2's "cmd/debtflow
// quick-start path").
func buildStorage(ctx context.Context) (storage.Store, temporal.Recorder, func()) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Info("debtflow: DATABASE_URL not set, using in-memory storage")
		return storage.NewMemoryStore(), temporal.NewMemoryRecorder(), func() {}
	}

	if err := storage.Migrate(databaseURL); err != nil {
		log.Fatalf("Failed to migrate storage schema: %v", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to storage database: %v", err)
	}
	return storage.NewPostgresStore(pool), temporal.NewPostgresRecorder(pool), pool.Close
}

// buildVectorSearch wires the Historian's optional prior-context search
// (spec.md §6, injected and optional): QDRANT_HOST selects a Qdrant
// collection, VECTORSEARCH_DATABASE_URL selects a pgvector-extended
// Postgres table, and otherwise no backend is configured at all —
// the Historian then reports on the file content alone.
func buildVectorSearch(ctx context.Context) vectorsearch.Search {
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		client, err := qdrant.NewClient(&qdrant.Config{
			Host: host,
			Port: 6334,
		})
		if err != nil {
			slog.Warn("debtflow: failed to connect to qdrant, historian will run without prior context", "error", err)
			return nil
		}
		collection := getEnv("QDRANT_COLLECTION", "debtflow_code_embeddings")
		return vectorsearch.NewQdrantSearch(client, collection)
	}

	if databaseURL := os.Getenv("VECTORSEARCH_DATABASE_URL"); databaseURL != "" {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			slog.Warn("debtflow: failed to connect pgvector store, historian will run without prior context", "error", err)
			return nil
		}
		return vectorsearch.NewPgVectorSearch(pool)
	}

	return nil
}

// newRoleClient builds the LLM transport for one roster entry: an
// OpenAI-compatible HTTP client wrapped in the bounded-retry decorator,
// configured from the environment rather than the roster (the roster
// names the model to request, not credentials or transport endpoints).
func newRoleClient(entry roster.Entry) llm.Client {
	baseURL := getEnv("LLM_BASE_URL", "https://api.openai.com/v1")
	apiKey := os.Getenv("LLM_API_KEY")
	model := entry.Model
	if model == "" || model == "default" {
		model = getEnv("LLM_MODEL", "gpt-4o")
	}
	return llm.WithRetry(llm.NewOpenAICompatClient(baseURL, apiKey, model), llm.DefaultRetryConfig())
}

func writePlan(plan models.RemediationPlan, outputPath string) {
	encoded, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode remediation plan: %v", err)
	}

	if outputPath == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		log.Fatalf("Failed to write remediation plan to %s: %v", outputPath, err)
	}
	log.Printf("Wrote remediation plan (scan %s) to %s", plan.ScanID, outputPath)
}
