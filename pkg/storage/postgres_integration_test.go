//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/debtflow/engine/pkg/models"
)

// startTestPostgres brings up a disposable postgres:17-alpine container,
// applies the embedded migrations, and returns a connected pool. Run with
// `go test -tags=integration ./pkg/storage/...`; skipped otherwise since it
// requires a working Docker daemon.
func startTestPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("debtflow_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, Migrate(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestPostgresStoreUpsertFindingIsIdempotent(t *testing.T) {
	pool := startTestPostgres(t)
	store := NewPostgresStore(pool)
	ctx := context.Background()

	f := models.Finding{
		ID: "fnd1", DebtType: models.DebtCodeSmell, Severity: models.SeverityLow,
		Confidence: 0.6, Title: "first", FilePath: "a.go", Fingerprint: "fp1",
	}
	require.NoError(t, store.UpsertFinding(ctx, f))

	f.Title = "updated"
	f.Confidence = 0.9
	require.NoError(t, store.UpsertFinding(ctx, f))

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM findings WHERE id = $1", "fnd1").Scan(&count))
	require.Equal(t, 1, count)

	var title string
	require.NoError(t, pool.QueryRow(ctx, "SELECT title FROM findings WHERE id = $1", "fnd1").Scan(&title))
	require.Equal(t, "updated", title)
}

func TestPostgresStoreInsertPlanIsIdempotentOnScanID(t *testing.T) {
	pool := startTestPostgres(t)
	store := NewPostgresStore(pool)
	ctx := context.Background()

	plan := models.RemediationPlan{ScanID: "scan1", Summary: "first", TotalDebtItems: 1}
	require.NoError(t, store.InsertPlan(ctx, plan))

	plan.Summary = "second"
	require.NoError(t, store.InsertPlan(ctx, plan))

	var summary string
	require.NoError(t, pool.QueryRow(ctx, "SELECT summary FROM remediation_plans WHERE scan_id = $1", "scan1").Scan(&summary))
	require.Equal(t, "first", summary)
}

func TestPostgresStoreAppendOccurrenceDedupesByFingerprintAndScan(t *testing.T) {
	pool := startTestPostgres(t)
	store := NewPostgresStore(pool)
	ctx := context.Background()

	require.NoError(t, store.AppendOccurrence(ctx, "fp1", "scan1"))
	require.NoError(t, store.AppendOccurrence(ctx, "fp1", "scan1"))
	require.NoError(t, store.AppendOccurrence(ctx, "fp1", "scan2"))

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM debt_occurrences").Scan(&count))
	require.Equal(t, 2, count)
}
