// Package storage implements the Storage interface (spec.md §6):
// idempotent upsert of findings, idempotent insert of a plan per scan,
// and append of debt-occurrence records. Persistence is injected; the
// core never depends on a concrete backend.
package storage

import (
	"context"

	"github.com/debtflow/engine/pkg/models"
)

// Store is the injected interface a Controller's caller persists
// results through, after a scan completes.
type Store interface {
	UpsertFinding(ctx context.Context, f models.Finding) error
	InsertPlan(ctx context.Context, plan models.RemediationPlan) error
	AppendOccurrence(ctx context.Context, fingerprint, scanID string) error
}
