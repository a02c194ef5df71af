package temporal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder persists occurrences to a debt_occurrences table via
// an upsert keyed on (fingerprint, scan_id), giving the idempotence
// spec.md §4.10 requires without a round-trip existence check.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder wraps an existing pool. The pool's lifecycle is
// owned by the caller.
func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

const upsertOccurrenceSQL = `
INSERT INTO debt_occurrences (fingerprint, scan_id, repository_id, file_path, severity, confidence, is_resolved, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (fingerprint, scan_id) DO NOTHING`

// Record implements Recorder.
func (r *PostgresRecorder) Record(ctx context.Context, occ Occurrence) error {
	_, err := r.pool.Exec(ctx, upsertOccurrenceSQL,
		occ.Fingerprint, occ.ScanID, occ.RepositoryID, occ.FilePath, string(occ.Severity), occ.Confidence, occ.IsResolved)
	if err != nil {
		return fmt.Errorf("temporal: record occurrence for scan %s: %w", occ.ScanID, err)
	}
	return nil
}
