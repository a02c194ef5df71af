// Package temporal implements the Temporal Recorder interface (C10):
// the controller's one hook into an external trend store. The core
// never computes trends itself — it only records occurrences.
package temporal

import (
	"context"
	"time"

	"github.com/debtflow/engine/pkg/models"
)

// Occurrence is recorded once per phase-4 surviving finding, per
// spec.md §4.10.
type Occurrence struct {
	Fingerprint  string
	ScanID       string
	RepositoryID string
	FilePath     string
	Severity     models.Severity
	Confidence   float64
	IsResolved   bool
	RecordedAt   time.Time
}

// Recorder is the injected interface. Implementations must be
// idempotent on (fingerprint, scanId): recording the same occurrence
// twice has the same effect as recording it once.
type Recorder interface {
	Record(ctx context.Context, occ Occurrence) error
}

// RecordAll records one occurrence per validated finding. A single
// finding's failure to record is reported but does not stop the rest
// (the core tolerates the trend store being unavailable without
// failing the scan).
func RecordAll(ctx context.Context, rec Recorder, scanID, repositoryID string, findings []models.Finding) []error {
	if rec == nil {
		return nil
	}
	var errs []error
	for _, f := range findings {
		occ := Occurrence{
			Fingerprint:  f.Fingerprint,
			ScanID:       scanID,
			RepositoryID: repositoryID,
			FilePath:     f.FilePath,
			Severity:     f.Severity,
			Confidence:   f.Confidence,
			IsResolved:   false,
		}
		if err := rec.Record(ctx, occ); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
