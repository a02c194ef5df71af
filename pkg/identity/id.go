// Package identity provides stable, sortable identifiers and content
// fingerprints for findings, messages, debates, conflicts, and tasks.
package identity

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// ID is an opaque, lexicographically sortable identifier. Two IDs minted
// by the same process are ordered by mint time even when minted within
// the same millisecond, because the generator serializes the monotonic
// entropy source.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Empty reports whether id is the zero value.
func (id ID) Empty() bool { return id == "" }

// generator produces monotonic-per-process ULIDs. A single shared
// instance is used process-wide so IDs minted by different components
// (bus, debate manager, conflict detector, synthesizer) remain globally
// orderable within one run.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var gen = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}

// New mints a fresh ID using the current wall-clock time.
func New() ID {
	gen.mu.Lock()
	defer gen.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), gen.entropy)
	return ID(id.String())
}

// Prefixed mints a fresh ID with a short, human-readable prefix (e.g.
// "fnd", "msg", "dbt", "cfl", "tsk"), matching the teacher's convention
// of readable, greppable identifiers in logs.
func Prefixed(prefix string) ID {
	return ID(prefix + "_" + string(New()))
}
