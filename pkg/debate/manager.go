// Package debate implements the Debate Manager (spec.md §4.2): a
// synchronous, mutex-free map of bounded debates, each a finite
// state machine (active → resolved|escalated) rather than a long-lived
// async actor, per spec.md §9's design note.
package debate

import (
	"fmt"
	"time"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/voting"
)

// Config controls debate termination and resolution.
type Config struct {
	MaxRounds          int
	TimeoutMs          int64
	ResolutionStrategy models.VotingStrategy
	WeightTable        voting.Table
}

// DefaultConfig matches spec.md §6's defaults for the debate-relevant
// options.
func DefaultConfig() Config {
	return Config{
		MaxRounds:          3,
		TimeoutMs:          30_000,
		ResolutionStrategy: models.StrategyWeighted,
		WeightTable:        voting.DefaultTable(),
	}
}

// Manager owns every Debate created for one scan. It is operated on by
// one goroutine at a time per spec.md §9; callers (the Critic runner,
// the Phase Controller) are responsible for serializing access across
// goroutines, the same way the teacher serializes access to its shared
// session/queue maps — see DESIGN.md.
type Manager struct {
	cfg     Config
	debates map[identity.ID]*models.Debate
	byTopic map[identity.ID]identity.ID // finding id -> debate id, active debates only
}

// New constructs a Manager.
func New(cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		debates: make(map[identity.ID]*models.Debate),
		byTopic: make(map[identity.ID]identity.ID),
	}
}

// StartDebate creates a Debate with one message: the initial challenge
// from challenger to initiator. Fails with ErrAlreadyActive if finding
// is already the topic of an active debate.
func (m *Manager) StartDebate(finding models.Finding, initiator, challenger models.AgentRole, reason string, evidence []string) (*models.Debate, error) {
	if _, active := m.byTopic[finding.ID]; active {
		return nil, fmt.Errorf("%w: finding %s", ErrAlreadyActive, finding.ID)
	}

	now := time.Now()
	debateID := identity.Prefixed("dbt")
	challenge := models.AgentMessage{
		ID:        identity.Prefixed("msg"),
		From:      challenger,
		To:        initiator,
		Type:      models.MessageChallenge,
		Content:   models.MessageContent{Text: reason, Finding: &finding, Evidence: evidence},
		Timestamp: now,
	}

	d := &models.Debate{
		ID:         debateID,
		Topic:      finding,
		Initiator:  initiator,
		Challenger: challenger,
		Messages:   []models.AgentMessage{challenge},
		Status:     models.DebateActive,
		StartedAt:  now,
	}

	m.debates[debateID] = d
	m.byTopic[finding.ID] = debateID
	return d, nil
}

// Get returns the debate by id, or ErrNotFound.
func (m *Manager) Get(debateID identity.ID) (*models.Debate, error) {
	d, ok := m.debates[debateID]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// ActiveDebateFor returns the active debate whose topic is finding, if
// any.
func (m *Manager) ActiveDebateFor(findingID identity.ID) (*models.Debate, bool) {
	debateID, ok := m.byTopic[findingID]
	if !ok {
		return nil, false
	}
	return m.debates[debateID], true
}

// AddMessage appends msg to the debate, then evaluates termination. If
// the debate is no longer active, the debate is left unchanged and
// ErrDebateNotActive is returned (invariant 1, spec.md §8). Returns
// ErrNotFound if debateID is unknown.
func (m *Manager) AddMessage(debateID identity.ID, msg models.AgentMessage) (*models.Debate, error) {
	d, ok := m.debates[debateID]
	if !ok {
		return nil, ErrNotFound
	}
	if !d.IsActive() {
		return d, ErrDebateNotActive
	}

	if msg.ID.Empty() {
		msg.ID = identity.Prefixed("msg")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	d.Messages = append(d.Messages, msg)

	if terminated, reason := m.checkTermination(d); terminated {
		m.resolve(d, reason)
	}
	return d, nil
}

// terminationReason distinguishes which condition fired, used only to
// decide resolution vs escalation bookkeeping internally.
type terminationReason int

const (
	terminationNone terminationReason = iota
	terminationConcede
	terminationConsensus
	terminationRoundLimit
)

func (m *Manager) checkTermination(d *models.Debate) (bool, terminationReason) {
	for _, msg := range d.Messages {
		if msg.Type == models.MessageConcede {
			return true, terminationConcede
		}
	}
	for _, msg := range d.Messages {
		if msg.Type == models.MessageConsensus {
			return true, terminationConsensus
		}
	}
	if d.RoundCount() >= m.cfg.MaxRounds {
		return true, terminationRoundLimit
	}
	return false, terminationNone
}

// TimedOut reports whether TimeoutMs has elapsed since d.StartedAt,
// evaluated against now (enforced by the caller per spec.md §4.2
// condition 4).
func (m *Manager) TimedOut(d *models.Debate, now time.Time) bool {
	return now.Sub(d.StartedAt) >= time.Duration(m.cfg.TimeoutMs)*time.Millisecond
}

// ResolveDebate marks the debate resolved, computing and attaching its
// resolution per the three-step algorithm in spec.md §4.2. It is
// idempotent: resolving an already-resolved debate is a no-op returning
// the existing state.
func (m *Manager) ResolveDebate(debateID identity.ID) (*models.Debate, error) {
	d, ok := m.debates[debateID]
	if !ok {
		return nil, ErrNotFound
	}
	if !d.IsActive() {
		return d, nil
	}
	m.resolve(d, terminationNone)
	return d, nil
}

func (m *Manager) resolve(d *models.Debate, _ terminationReason) {
	resolution := m.computeResolution(d)
	now := time.Now()
	d.Status = models.DebateResolved
	d.ResolvedAt = &now
	d.Resolution = &resolution
	delete(m.byTopic, d.Topic.ID)
}

// computeResolution implements spec.md §4.2's resolution algorithm.
func (m *Manager) computeResolution(d *models.Debate) models.DebateResolution {
	if conceder, ok := findConcede(d.Messages); ok {
		accepted := conceder == d.Challenger
		finalConfidence := 0.0
		if accepted {
			finalConfidence = d.Topic.Confidence
		}
		return models.DebateResolution{
			Accepted:        accepted,
			Reason:          "concede",
			Votes:           models.VoteMap{conceder: !accepted},
			FinalConfidence: finalConfidence,
		}
	}

	if consensus, ok := findConsensus(d.Messages); ok {
		confidence := d.Topic.Confidence
		if consensus.Content.Confidence != nil {
			confidence = *consensus.Content.Confidence
		}
		return models.DebateResolution{
			Accepted:        true,
			Reason:          "consensus",
			Votes:           models.VoteMap{},
			FinalConfidence: confidence,
		}
	}

	votes := collectVotes(d.Messages)
	accepted := voting.Decide(m.cfg.ResolutionStrategy, voting.Votes(votes), d.Topic.DebtType, m.cfg.WeightTable)
	yes, total := 0, len(votes)
	for _, v := range votes {
		if v {
			yes++
		}
	}
	finalConfidence := 0.0
	if total > 0 {
		finalConfidence = (float64(yes) / float64(maxInt(total, 1))) * d.Topic.Confidence
	}
	reason := "vote"
	if !accepted {
		reason = fmt.Sprintf("rejected by %s vote (confidence below threshold or insufficient support)", m.cfg.ResolutionStrategy)
	}
	return models.DebateResolution{
		Accepted:        accepted,
		Reason:          reason,
		Votes:           votes,
		FinalConfidence: finalConfidence,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func findConcede(messages []models.AgentMessage) (models.AgentRole, bool) {
	for _, msg := range messages {
		if msg.Type == models.MessageConcede {
			return msg.From, true
		}
	}
	return "", false
}

func findConsensus(messages []models.AgentMessage) (models.AgentMessage, bool) {
	for _, msg := range messages {
		if msg.Type == models.MessageConsensus {
			return msg, true
		}
	}
	return models.AgentMessage{}, false
}

func collectVotes(messages []models.AgentMessage) models.VoteMap {
	votes := models.VoteMap{}
	for _, msg := range messages {
		if msg.Type == models.MessageVote && msg.Content.Vote != nil {
			votes[msg.From] = *msg.Content.Vote
		}
	}
	return votes
}

// EscalateDebate marks the debate escalated and appends a broadcast
// escalate message carrying reason.
func (m *Manager) EscalateDebate(debateID identity.ID, reason string) (*models.Debate, error) {
	d, ok := m.debates[debateID]
	if !ok {
		return nil, ErrNotFound
	}
	if !d.IsActive() {
		return d, ErrDebateNotActive
	}

	escalation := models.AgentMessage{
		ID:        identity.Prefixed("msg"),
		From:      d.Challenger,
		To:        models.RoleBroadcast,
		Type:      models.MessageEscalate,
		Content:   models.MessageContent{Text: reason},
		Timestamp: time.Now(),
	}
	d.Messages = append(d.Messages, escalation)

	now := time.Now()
	d.Status = models.DebateEscalated
	d.ResolvedAt = &now
	delete(m.byTopic, d.Topic.ID)
	return d, nil
}
