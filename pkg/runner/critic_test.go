package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
)

func validateCall(confidence float64) llm.ToolCall {
	return llm.ToolCall{Name: llm.ToolValidateFinding, Args: map[string]any{"confidence": confidence, "reason": "looks real"}}
}

func rejectCall(confidence float64) llm.ToolCall {
	return llm.ToolCall{Name: llm.ToolRejectFinding, Args: map[string]any{"confidence": confidence, "reason": "not convincing"}}
}

func TestCriticAcceptsAboveThreshold(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{{ToolCalls: []llm.ToolCall{validateCall(0.9)}}}}
	r := NewCriticRunner(client, stubPrompts{}, DefaultCriticConfig())

	results := r.Run(context.Background(), []models.Finding{{ID: "f1", Confidence: 0.8}})
	require.Len(t, results, 1)
	require.True(t, results[0].Review.Accepted)
	require.Nil(t, results[0].Challenge)
}

func TestCriticValidatedButBelowThresholdIsRejectedAndChallenges(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{{ToolCalls: []llm.ToolCall{validateCall(0.5)}}}}
	r := NewCriticRunner(client, stubPrompts{}, DefaultCriticConfig())

	results := r.Run(context.Background(), []models.Finding{{ID: "f1", Confidence: 0.8}})
	require.False(t, results[0].Review.Accepted)
	require.NotNil(t, results[0].Challenge)
	require.Equal(t, models.RoleCritic, results[0].Challenge.From)
	require.Equal(t, models.RoleBroadcast, results[0].Challenge.To)
	require.Equal(t, models.MessageChallenge, results[0].Challenge.Type)
}

func TestCriticRejectCallProducesChallenge(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{{ToolCalls: []llm.ToolCall{rejectCall(0.9)}}}}
	r := NewCriticRunner(client, stubPrompts{}, DefaultCriticConfig())

	results := r.Run(context.Background(), []models.Finding{{ID: "f1", Confidence: 0.8}})
	require.False(t, results[0].Review.Accepted)
	require.NotNil(t, results[0].Challenge)
}

func TestCriticNoVerdictToolCallIsSchemaError(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{{Content: "I have thoughts but no tool call"}}}
	r := NewCriticRunner(client, stubPrompts{}, DefaultCriticConfig())

	results := r.Run(context.Background(), []models.Finding{{ID: "f1"}})
	require.Error(t, results[0].Err)
	require.Equal(t, KindSchema, results[0].Err.(AgentError).Kind)
}

func TestCriticTransportErrorIsRecorded(t *testing.T) {
	client := &scriptedClient{errs: []error{errFatalAuth}}
	r := NewCriticRunner(client, stubPrompts{}, DefaultCriticConfig())

	results := r.Run(context.Background(), []models.Finding{{ID: "f1"}})
	require.Error(t, results[0].Err)
	require.Equal(t, KindTransport, results[0].Err.(AgentError).Kind)
}
