// Package bus implements the process-local message bus that carries
// AgentMessage traffic between the pipeline's agents: a single-process
// multi-producer, multi-consumer append-only log with role-scoped
// subscriptions.
package bus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
)

// Subscriber is a callback registered against a role. It must return
// promptly — publish delivers synchronously and does not protect itself
// against a slow subscriber; heavy work belongs in an Agent Runner, not
// here.
type Subscriber func(models.AgentMessage)

// Bus is a single process-local message bus. The zero value is not
// usable; construct with New.
type Bus struct {
	mu  sync.RWMutex
	log []models.AgentMessage

	subMu       sync.RWMutex
	subscribers map[models.AgentRole][]Subscriber
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[models.AgentRole][]Subscriber),
	}
}

// Publish appends msg to the ordered log, stamping Timestamp if it is
// still the zero value, then delivers it to subscribers: every
// subscriber of msg.To, or every subscriber of every role when msg.To
// is RoleBroadcast. Subscriber callbacks run to completion before
// Publish returns; a callback that panics is recovered and logged, never
// propagated to the caller — the bus itself does not fail.
func (b *Bus) Publish(msg models.AgentMessage) models.AgentMessage {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.ID.Empty() {
		msg.ID = identity.Prefixed("msg")
	}

	b.mu.Lock()
	b.log = append(b.log, msg)
	b.mu.Unlock()

	b.deliver(msg)
	return msg
}

func (b *Bus) deliver(msg models.AgentMessage) {
	b.subMu.RLock()
	var targets []Subscriber
	if msg.To == models.RoleBroadcast {
		for _, subs := range b.subscribers {
			targets = append(targets, subs...)
		}
	} else {
		targets = append(targets, b.subscribers[msg.To]...)
	}
	b.subMu.RUnlock()

	for _, sub := range targets {
		b.invoke(sub, msg)
	}
}

func (b *Bus) invoke(sub Subscriber, msg models.AgentMessage) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("bus: subscriber callback panicked", "message_id", msg.ID, "recovered", r)
		}
	}()
	sub(msg)
}

// Subscribe registers callback against role. Multiple callbacks per role
// are permitted and run in registration order.
func (b *Bus) Subscribe(role models.AgentRole, callback Subscriber) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.subscribers[role] = append(b.subscribers[role], callback)
}

// Filter selects a subset of the log for GetMessages. Zero-valued fields
// are treated as "don't filter on this".
type Filter struct {
	From            models.AgentRole
	To              models.AgentRole
	Type            models.MessageType
	AfterTimestamp  time.Time
	RelatedToFinding identity.ID
}

func (f Filter) matches(msg models.AgentMessage) bool {
	if f.From != "" && msg.From != f.From {
		return false
	}
	if f.To != "" && msg.To != f.To {
		return false
	}
	if f.Type != "" && msg.Type != f.Type {
		return false
	}
	if !f.AfterTimestamp.IsZero() && !msg.Timestamp.After(f.AfterTimestamp) {
		return false
	}
	if !f.RelatedToFinding.Empty() && !msg.Content.ReferencesFinding(f.RelatedToFinding) {
		return false
	}
	return true
}

// GetMessages returns a stable-order (publish order) snapshot of the log
// filtered by filter.
func (b *Bus) GetMessages(filter Filter) []models.AgentMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []models.AgentMessage
	for _, msg := range b.log {
		if filter.matches(msg) {
			out = append(out, msg)
		}
	}
	return out
}

// GetThread returns every message in the thread of findingID: messages
// that reference it directly, plus messages that transitively reply
// (via InReplyTo) to a message already in the thread, in timestamp
// (equivalently publish) order. This is O(N) in the number of messages
// on the bus.
func (b *Bus) GetThread(findingID identity.ID) []models.AgentMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()

	inThread := make(map[identity.ID]bool)
	var out []models.AgentMessage

	for _, msg := range b.log {
		if msg.Content.ReferencesFinding(findingID) || (msg.HasReply() && inThread[msg.InReplyTo]) {
			inThread[msg.ID] = true
			out = append(out, msg)
		}
	}
	return out
}
