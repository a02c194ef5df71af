package temporal

import (
	"context"
	"sync"
)

// MemoryRecorder is an in-process Recorder used by tests and by
// one-shot CLI runs where no external trend store is configured.
type MemoryRecorder struct {
	mu   sync.Mutex
	seen map[[2]string]Occurrence
}

// NewMemoryRecorder constructs an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{seen: make(map[[2]string]Occurrence)}
}

// Record implements Recorder, idempotent on (fingerprint, scanId).
func (m *MemoryRecorder) Record(ctx context.Context, occ Occurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{occ.Fingerprint, occ.ScanID}
	if _, ok := m.seen[key]; ok {
		return nil
	}
	m.seen[key] = occ
	return nil
}

// All returns every recorded occurrence, for test assertions.
func (m *MemoryRecorder) All() []Occurrence {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Occurrence, 0, len(m.seen))
	for _, occ := range m.seen {
		out = append(out, occ)
	}
	return out
}
