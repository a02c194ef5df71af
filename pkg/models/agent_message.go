package models

import (
	"time"

	"github.com/debtflow/engine/pkg/identity"
)

// MessageContent is the structured payload an AgentMessage carries. At
// most one of Finding/Vote is meaningful for a given MessageType, but the
// struct keeps all slots addressable so callers don't type-assert a bag
// of `any`.
type MessageContent struct {
	Text       string
	Finding    *Finding
	Evidence   []string
	Vote       *bool
	Confidence *float64
}

// ReferencesFinding reports whether this content references the given
// finding id directly.
func (c MessageContent) ReferencesFinding(id identity.ID) bool {
	return c.Finding != nil && c.Finding.ID == id
}

// AgentMessage is one unit of inter-agent communication carried on the
// bus and, when part of a debate, on a Debate's message log.
type AgentMessage struct {
	ID        identity.ID
	From      AgentRole
	To        AgentRole
	Type      MessageType
	Content   MessageContent
	Timestamp time.Time
	InReplyTo identity.ID
}

// HasReply reports whether the message is threaded to a parent message.
func (m AgentMessage) HasReply() bool {
	return !m.InReplyTo.Empty()
}

// Validate enforces spec.md §3's AgentMessage invariant that vote
// content is only meaningful when Type is vote.
func (m AgentMessage) Validate() error {
	if m.Type == MessageVote && m.Content.Vote == nil {
		return errVoteMessageMissingVote(m.ID)
	}
	if m.Type != MessageVote && m.Content.Vote != nil {
		return errVoteOnNonVoteMessage(m.ID)
	}
	return nil
}
