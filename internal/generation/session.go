package generation

import (
	"time"

	"quizdeck/internal/quiz"
)

// State is the lifecycle phase of a generation session.
//
//	Idle → Starting → Streaming → {Completed | Failed}
//
// Streaming self-loops on each chunk; Reset returns to Idle from any state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateStreaming
	StateCompleted
	StateFailed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the observable state of one generation attempt. Snapshot
// returns copies of it; the store owns the single live instance.
type Session struct {
	// SessionID is minted client-side and correlates the POST with its
	// streaming channel.
	SessionID string

	// ProblemSetID is assigned by the server and becomes known with the
	// first chunk. Empty before that.
	ProblemSetID string

	// Items accumulated so far, in arrival order. May keep growing while
	// State is StateStreaming; consumers must not assume a fixed total
	// until the stream completes.
	Items []quiz.Item

	// TotalCount is the requested quiz count, for pending/remaining UI.
	TotalCount int

	// State is the current lifecycle phase.
	State State

	// Err holds the terminal failure when State is StateFailed.
	Err error

	// Elapsed is the time since the attempt started.
	Elapsed time.Duration

	// ShowWaitHint turns on after generation has run long enough that the
	// UI should reassure the user.
	ShowWaitHint bool
}

// Streaming reports whether a channel is open and expected to deliver
// more items.
func (s *Session) Streaming() bool {
	return s.State == StateStarting || s.State == StateStreaming
}

// Remaining returns how many items are still expected, or 0 when unknown.
func (s *Session) Remaining() int {
	if s.TotalCount <= 0 {
		return 0
	}
	r := s.TotalCount - len(s.Items)
	if r < 0 {
		return 0
	}
	return r
}
