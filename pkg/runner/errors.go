package runner

import "fmt"

// ErrorKind classifies a runner-level failure per spec.md §7's error
// kinds (not type names, so this is a string enum, not a sentinel
// hierarchy).
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindAgentItem ErrorKind = "agent_item"
	KindSchema    ErrorKind = "schema"
	KindFatal     ErrorKind = "fatal_transport"
)

// AgentError is a recorded failure processing one file or one finding.
// A single item's failure never aborts the runner (except KindFatal,
// which aborts that agent only); the item is skipped and the error
// accumulates on the result.
type AgentError struct {
	Kind        ErrorKind
	Item        string
	Recoverable bool
	Err         error
}

func (e AgentError) Error() string {
	return fmt.Sprintf("%s (%s, item=%s): %v", e.Kind, recoverability(e.Recoverable), e.Item, e.Err)
}

func (e AgentError) Unwrap() error { return e.Err }

func recoverability(r bool) string {
	if r {
		return "recoverable"
	}
	return "fatal"
}

func newTransportError(item string, err error) AgentError {
	return AgentError{Kind: KindTransport, Item: item, Recoverable: true, Err: err}
}

func newSchemaError(item string, err error) AgentError {
	return AgentError{Kind: KindSchema, Item: item, Recoverable: false, Err: err}
}

func newFatalError(item string, err error) AgentError {
	return AgentError{Kind: KindFatal, Item: item, Recoverable: false, Err: err}
}
