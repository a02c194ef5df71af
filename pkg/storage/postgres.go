package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/debtflow/engine/pkg/models"
)

// PostgresStore implements Store over the schema Migrate applies.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. The pool's lifecycle is
// owned by the caller.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const upsertFindingSQL = `
INSERT INTO findings (id, debt_type, severity, confidence, title, description, file_path, start_line, end_line, evidence, suggested_fix, fingerprint, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
ON CONFLICT (id) DO UPDATE SET
    debt_type     = EXCLUDED.debt_type,
    severity      = EXCLUDED.severity,
    confidence    = EXCLUDED.confidence,
    title         = EXCLUDED.title,
    description   = EXCLUDED.description,
    file_path     = EXCLUDED.file_path,
    start_line    = EXCLUDED.start_line,
    end_line      = EXCLUDED.end_line,
    evidence      = EXCLUDED.evidence,
    suggested_fix = EXCLUDED.suggested_fix,
    fingerprint   = EXCLUDED.fingerprint,
    updated_at    = now()`

// UpsertFinding implements Store, idempotent on the finding's id.
func (s *PostgresStore) UpsertFinding(ctx context.Context, f models.Finding) error {
	_, err := s.pool.Exec(ctx, upsertFindingSQL,
		string(f.ID), string(f.DebtType), string(f.Severity), f.Confidence, f.Title, f.Description,
		f.FilePath, f.StartLine, f.EndLine, f.Evidence, f.SuggestedFix, f.Fingerprint)
	if err != nil {
		return fmt.Errorf("storage: upsert finding %s: %w", f.ID, err)
	}
	return nil
}

const insertPlanSQL = `
INSERT INTO remediation_plans (scan_id, summary, total_items, plan)
VALUES ($1, $2, $3, $4)
ON CONFLICT (scan_id) DO NOTHING`

// InsertPlan implements Store, idempotent on the plan's scan id.
func (s *PostgresStore) InsertPlan(ctx context.Context, plan models.RemediationPlan) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("storage: marshal plan %s: %w", plan.ScanID, err)
	}
	_, err = s.pool.Exec(ctx, insertPlanSQL, plan.ScanID, plan.Summary, plan.TotalDebtItems, raw)
	if err != nil {
		return fmt.Errorf("storage: insert plan %s: %w", plan.ScanID, err)
	}
	return nil
}

const appendOccurrenceSQL = `
INSERT INTO debt_occurrences (fingerprint, scan_id)
VALUES ($1, $2)
ON CONFLICT (fingerprint, scan_id) DO NOTHING`

// AppendOccurrence implements Store, idempotent on (fingerprint, scanId).
func (s *PostgresStore) AppendOccurrence(ctx context.Context, fingerprint, scanID string) error {
	_, err := s.pool.Exec(ctx, appendOccurrenceSQL, fingerprint, scanID)
	if err != nil {
		return fmt.Errorf("storage: append occurrence %s/%s: %w", fingerprint, scanID, err)
	}
	return nil
}
