package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAICompatClient calls a chat-completions endpoint speaking the
// widely-adopted OpenAI wire format (messages/tools/tool_calls) over
// plain HTTP. Any provider that exposes this shape at a configurable
// base URL (OpenAI itself, and most self-hosted/third-party gateways
// fronting other models) works without a provider-specific client.
type OpenAICompatClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewOpenAICompatClient constructs a client against baseURL (e.g.
// "https://api.openai.com/v1") using model for every request unless a
// Request.Model override is set.
func NewOpenAICompatClient(baseURL, apiKey, model string) *OpenAICompatClient {
	return &OpenAICompatClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Tools       []chatTool    `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func toChatRequest(req Request, defaultModel string) chatRequest {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	var tools []chatTool
	for _, t := range req.Tools {
		ct := chatTool{Type: "function"}
		ct.Function.Name = t.Name
		ct.Function.Description = t.Description
		ct.Function.Parameters = t.ParametersSchema
		tools = append(tools, ct)
	}

	return chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       tools,
	}
}

func fromFinishReason(s string) FinishReason {
	switch s {
	case "tool_calls":
		return FinishToolCalls
	case "length":
		return FinishLength
	case "content_filter":
		return FinishContentFilter
	default:
		return FinishStop
	}
}

func (c *OpenAICompatClient) do(ctx context.Context, req chatRequest) (chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return chatResponse{}, fmt.Errorf("llm: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return chatResponse{}, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return chatResponse{}, AsRecoverable(fmt.Errorf("llm: request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatResponse{}, AsRecoverable(fmt.Errorf("llm: read response: %w", err))
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return chatResponse{}, fmt.Errorf("llm: authentication rejected (status %d): %s", resp.StatusCode, raw)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return chatResponse{}, AsRecoverable(fmt.Errorf("llm: transient status %d: %s", resp.StatusCode, raw))
	}
	if resp.StatusCode != http.StatusOK {
		return chatResponse{}, fmt.Errorf("llm: unexpected status %d: %s", resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return chatResponse{}, fmt.Errorf("llm: decode response: %w", err)
	}
	return out, nil
}

// Complete implements Client.
func (c *OpenAICompatClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.do(ctx, toChatRequest(req, c.model))
	if err != nil {
		return Response{}, err
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("llm: response had no choices")
	}
	choice := resp.Choices[0]

	var toolCalls []ToolCall
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			continue
		}
		toolCalls = append(toolCalls, ToolCall{Name: tc.Function.Name, Args: args})
	}

	return Response{
		Content:   choice.Message.Content,
		ToolCalls: toolCalls,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		FinishReason: fromFinishReason(choice.FinishReason),
	}, nil
}

// CompleteStructured implements Client by requesting a single tool call
// whose schema matches out's expected shape and decoding its arguments
// into out.
func (c *OpenAICompatClient) CompleteStructured(ctx context.Context, req Request, schema map[string]any, out any) error {
	const toolName = "emit_structured_output"
	req.Tools = append(req.Tools, ToolDefinition{
		Name:             toolName,
		Description:      "Emit the structured result.",
		ParametersSchema: schema,
	})

	resp, err := c.Complete(ctx, req)
	if err != nil {
		return err
	}
	for _, tc := range resp.ToolCalls {
		if tc.Name != toolName {
			continue
		}
		raw, err := json.Marshal(tc.Args)
		if err != nil {
			return fmt.Errorf("llm: re-encode structured args: %w", err)
		}
		return json.Unmarshal(raw, out)
	}
	return fmt.Errorf("llm: model did not call %s", toolName)
}

// Stream implements Client by running a single non-streaming Complete
// call and replaying it as a content event (when there is content), one
// event per tool call, and a final finish event, matching the texture of
// the pack's other HTTP-backed providers (e.g. DeepSeekProvider), none
// of which stream either. The core never requires streaming for
// correctness (spec.md §9).
func (c *OpenAICompatClient) Stream(ctx context.Context, req Request) (<-chan StreamEvent, <-chan error) {
	events := make(chan StreamEvent, 2)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		resp, err := c.Complete(ctx, req)
		if err != nil {
			errs <- err
			return
		}
		if resp.Content != "" {
			events <- StreamEvent{Content: resp.Content}
		}
		for i := range resp.ToolCalls {
			tc := resp.ToolCalls[i]
			events <- StreamEvent{ToolCall: &tc}
		}
		events <- StreamEvent{FinishReason: resp.FinishReason}
	}()

	return events, errs
}
