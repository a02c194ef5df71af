package debate

import "errors"

// ErrNotFound is returned when an operation references a debateId with
// no corresponding Debate.
var ErrNotFound = errors.New("debate: not found")

// ErrAlreadyActive is the InvariantError spec.md §4.2 assigns to
// startDebate when the finding is already the topic of an active
// debate.
var ErrAlreadyActive = errors.New("debate: finding already has an active debate")

// ErrDebateNotActive is returned by addMessage when the debate has
// already settled; per invariant 1 in spec.md §8, the debate itself is
// left unchanged.
var ErrDebateNotActive = errors.New("debate: debate is not active")
