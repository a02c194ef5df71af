package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAICompatClientParsesToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message": map[string]any{
						"role": "assistant",
						"tool_calls": []map[string]any{
							{
								"id":   "call_1",
								"type": "function",
								"function": map[string]any{
									"name":      "report_debt",
									"arguments": `{"debt_type":"code_smell","severity":"low","confidence":0.6,"title":"x"}`,
								},
							},
						},
					},
					"finish_reason": "tool_calls",
				},
			},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "sk-test", "gpt-4o")
	resp, err := client.Complete(context.Background(), Request{
		SystemPrompt: "sys",
		Messages:     []Message{{Role: "user", Content: "hi"}},
		Tools:        []ToolDefinition{{Name: "report_debt"}},
	})
	require.NoError(t, err)
	require.Equal(t, FinishToolCalls, resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "report_debt", resp.ToolCalls[0].Name)
	require.Equal(t, "code_smell", resp.ToolCalls[0].Args["debt_type"])
	require.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenAICompatClientMarksRateLimitRecoverable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "sk-test", "gpt-4o")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.Error(t, err)

	var rec Recoverable
	require.ErrorAs(t, err, &rec)
}

func TestOpenAICompatClientMarksAuthFailureNonRecoverable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "sk-bad", "gpt-4o")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.Error(t, err)

	var rec Recoverable
	require.NotErrorAs(t, err, &rec)
}

func TestOpenAICompatClientCompleteStructuredDecodesArgs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message": map[string]any{
						"tool_calls": []map[string]any{
							{
								"id":   "call_1",
								"type": "function",
								"function": map[string]any{
									"name":      "emit_structured_output",
									"arguments": `{"count":3}`,
								},
							},
						},
					},
					"finish_reason": "tool_calls",
				},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "", "gpt-4o")
	var out struct {
		Count int `json:"count"`
	}
	err := client.CompleteStructured(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}}, map[string]any{}, &out)
	require.NoError(t, err)
	require.Equal(t, 3, out.Count)
}
