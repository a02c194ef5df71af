package storage

import (
	"context"
	"sync"

	"github.com/debtflow/engine/pkg/models"
)

// MemoryStore is an in-process Store used by tests and one-shot CLI
// runs with no database configured.
type MemoryStore struct {
	mu          sync.Mutex
	findings    map[string]models.Finding
	plans       map[string]models.RemediationPlan
	occurrences map[[2]string]bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		findings:    make(map[string]models.Finding),
		plans:       make(map[string]models.RemediationPlan),
		occurrences: make(map[[2]string]bool),
	}
}

// UpsertFinding implements Store.
func (m *MemoryStore) UpsertFinding(ctx context.Context, f models.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings[string(f.ID)] = f
	return nil
}

// InsertPlan implements Store, idempotent on the plan's scan id.
func (m *MemoryStore) InsertPlan(ctx context.Context, plan models.RemediationPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.plans[plan.ScanID]; exists {
		return nil
	}
	m.plans[plan.ScanID] = plan
	return nil
}

// AppendOccurrence implements Store, idempotent on (fingerprint, scanId).
func (m *MemoryStore) AppendOccurrence(ctx context.Context, fingerprint, scanID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.occurrences[[2]string{fingerprint, scanID}] = true
	return nil
}

// Findings returns every upserted finding, for test assertions.
func (m *MemoryStore) Findings() map[string]models.Finding {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.Finding, len(m.findings))
	for k, v := range m.findings {
		out[k] = v
	}
	return out
}

// Plans returns every inserted plan, for test assertions.
func (m *MemoryStore) Plans() map[string]models.RemediationPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.RemediationPlan, len(m.plans))
	for k, v := range m.plans {
		out[k] = v
	}
	return out
}

// OccurrenceCount returns how many distinct (fingerprint, scanId)
// pairs have been recorded, for test assertions.
func (m *MemoryStore) OccurrenceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.occurrences)
}
