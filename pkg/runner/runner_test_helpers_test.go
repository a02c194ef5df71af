package runner

import (
	"context"
	"errors"
	"regexp"

	"github.com/debtflow/engine/pkg/llm"
	"github.com/debtflow/engine/pkg/models"
)

func mustCompile(expr string) *regexp.Regexp { return regexp.MustCompile(expr) }

type scriptedClient struct {
	responses []llm.Response
	errs      []error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	i := c.calls
	c.calls++
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	if err != nil {
		return llm.Response{}, err
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return llm.Response{}, nil
}

func (c *scriptedClient) CompleteStructured(ctx context.Context, req llm.Request, schema map[string]any, out any) error {
	return nil
}

func (c *scriptedClient) Stream(ctx context.Context, req llm.Request) (<-chan llm.StreamEvent, <-chan error) {
	return nil, nil
}

// capturingClient records the last request it received, for assertions
// on prompt content (e.g. injected vector-search context).
type capturingClient struct {
	scriptedClient
	lastReq llm.Request
}

func (c *capturingClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	c.lastReq = req
	return c.scriptedClient.Complete(ctx, req)
}

type stubPrompts struct{}

func (stubPrompts) SystemPrompt(role models.AgentRole) string { return "system:" + string(role) }
func (stubPrompts) DiscoveryUserPrompt(role models.AgentRole, file SourceFile) string {
	return "discover:" + file.Path
}
func (stubPrompts) ReviewUserPrompt(finding models.Finding) string {
	return "review:" + string(finding.ID)
}

var errFatalAuth = errors.New("authentication rejected")
