package runner

import (
	"context"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
)

// CriticReview is the Critic's verdict on a single finding, per
// spec.md §4.6.
type CriticReview struct {
	Accepted   bool
	Confidence float64
	Reason     string
}

// CriticConfig bounds a Critic pass.
type CriticConfig struct {
	ChallengeThreshold float64
}

// DefaultCriticConfig matches spec.md §6's default challengeThreshold.
func DefaultCriticConfig() CriticConfig {
	return CriticConfig{ChallengeThreshold: 0.7}
}

// CriticRunner reviews findings one at a time and emits a challenge
// message on the bus for anything it rejects, seeding a debate.
type CriticRunner struct {
	Client  llm.Client
	Prompts PromptBuilder
	Config  CriticConfig
}

// NewCriticRunner constructs a CriticRunner.
func NewCriticRunner(client llm.Client, prompts PromptBuilder, cfg CriticConfig) *CriticRunner {
	return &CriticRunner{Client: client, Prompts: prompts, Config: cfg}
}

// ReviewResult pairs each reviewed finding with its verdict and, when
// rejected, the challenge message that should be published to seed a
// debate.
type ReviewResult struct {
	Finding   models.Finding
	Review    CriticReview
	Challenge *models.AgentMessage
	Err       error
}

// Run reviews every finding in order. A single finding's failure never
// aborts the pass (spec.md §4.6's failure semantics); it is recorded as
// a recoverable error and the loop continues.
func (r *CriticRunner) Run(ctx context.Context, findings []models.Finding) []ReviewResult {
	results := make([]ReviewResult, 0, len(findings))
	for _, f := range findings {
		select {
		case <-ctx.Done():
			return results
		default:
		}
		results = append(results, r.reviewOne(ctx, f))
	}
	return results
}

func (r *CriticRunner) reviewOne(ctx context.Context, f models.Finding) ReviewResult {
	req := llm.Request{
		SystemPrompt: r.Prompts.SystemPrompt(models.RoleCritic),
		Messages: []llm.Message{
			{Role: "user", Content: r.Prompts.ReviewUserPrompt(f)},
		},
		Tools: []llm.ToolDefinition{validateFindingTool(), rejectFindingTool()},
	}

	resp, err := r.Client.Complete(ctx, req)
	if err != nil {
		return ReviewResult{Finding: f, Err: newTransportError(string(f.ID), err)}
	}

	review, ok := parseReview(resp, f.Confidence)
	if !ok {
		return ReviewResult{Finding: f, Err: newSchemaError(string(f.ID), errNoVerdict)}
	}
	// spec.md §4.6: accepted = reviewed_accepted && adjustedConfidence >= challengeThreshold.
	review.Accepted = r.Config.Accept(review)

	result := ReviewResult{Finding: f, Review: review}
	if !review.Accepted {
		msg := challengeMessage(f, review)
		result.Challenge = &msg
	}
	return result
}

var errNoVerdict = criticNoVerdictError{}

type criticNoVerdictError struct{}

func (criticNoVerdictError) Error() string {
	return "critic: no validate_finding or reject_finding tool-call in response"
}

// parseReview extracts the Critic's verdict (the first validate_finding
// or reject_finding tool-call) from the model's response. It does not
// apply the challengeThreshold; reviewOne does that via Accept.
func parseReview(resp llm.Response, originalConfidence float64) (CriticReview, bool) {
	for _, tc := range resp.ToolCalls {
		switch tc.Name {
		case llm.ToolValidateFinding:
			conf, ok := asFloat(tc.Args["confidence"])
			if !ok {
				conf = originalConfidence
			}
			reason, _ := asString(tc.Args["reason"])
			return CriticReview{Accepted: true, Confidence: conf, Reason: reason}, true
		case llm.ToolRejectFinding:
			conf, ok := asFloat(tc.Args["confidence"])
			if !ok {
				conf = originalConfidence
			}
			reason, _ := asString(tc.Args["reason"])
			return CriticReview{Accepted: false, Confidence: conf, Reason: reason}, true
		}
	}
	return CriticReview{}, false
}

// Accept applies the challengeThreshold gate on top of the model's own
// accept/reject call.
func (c CriticConfig) Accept(review CriticReview) bool {
	return review.Accepted && review.Confidence >= c.ChallengeThreshold
}

func challengeMessage(f models.Finding, review CriticReview) models.AgentMessage {
	return models.AgentMessage{
		ID:        identity.Prefixed("msg"),
		From:      models.RoleCritic,
		To:        models.RoleBroadcast,
		Type:      models.MessageChallenge,
		Content:   models.MessageContent{Text: review.Reason, Finding: &f, Confidence: &review.Confidence},
	}
}

func validateFindingTool() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        llm.ToolValidateFinding,
		Description: "Accept a finding as valid technical debt.",
		ParametersSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"confidence": map[string]any{"type": "number"},
				"reason":     map[string]any{"type": "string"},
			},
		},
	}
}

func rejectFindingTool() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        llm.ToolRejectFinding,
		Description: "Reject a finding as not valid technical debt.",
		ParametersSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"confidence": map[string]any{"type": "number"},
				"reason":     map[string]any{"type": "string"},
			},
		},
	}
}
