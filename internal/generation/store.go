// Package generation coordinates one streamed quiz-generation attempt: it
// posts the request, listens on the session's streaming channel, and
// accumulates items as they arrive. A single store instance owns the one
// active session; starting a new attempt supersedes any previous listener.
package generation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizdeck/internal/api"
	"quizdeck/internal/logger"
	"quizdeck/internal/quiz"
)

// waitHintAfter is how long a session may run before the UI shows a
// "still working" reassurance.
const waitHintAfter = 15 * time.Second

// Service is the slice of the API client the store depends on.
type Service interface {
	StartGeneration(ctx context.Context, req api.GenerationRequest) error
	RefreshToken(ctx context.Context) error
}

// Request bundles the user's generation choices.
type Request struct {
	UploadedURL    string
	QuizCount      int
	QuizType       string
	DifficultyType string
	PageNumbers    []int
}

// ValidationError rejects a generation request before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Store is the process-wide generation session store.
type Store struct {
	svc     Service
	streams StreamFactory
	log     *logger.Logger

	mu     sync.Mutex
	sess   Session
	gen    int // incremented on every start/reset; stale listeners check it
	stream Stream
	cancel context.CancelFunc

	waitTimer  *time.Timer
	tickerStop chan struct{}

	updates chan struct{}
}

// NewStore creates a Store. The stream factory is injectable so tests can
// simulate the channel without sockets.
func NewStore(svc Service, streams StreamFactory, log *logger.Logger) *Store {
	return &Store{
		svc:     svc,
		streams: streams,
		log:     log.With("component", "generation"),
		updates: make(chan struct{}, 1),
	}
}

// Updates signals after every observable state change. The channel
// coalesces: a pending signal absorbs later ones until received.
func (s *Store) Updates() <-chan struct{} {
	return s.updates
}

// Snapshot returns a copy of the current session for rendering. The Items
// slice is copied so the UI never races the stream goroutine.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.sess
	snap.Items = make([]quiz.Item, len(s.sess.Items))
	copy(snap.Items, s.sess.Items)
	return snap
}

// Start begins a new generation attempt, superseding any previous one.
//
// Preconditions are checked before any request: an upload reference and a
// non-empty page selection must exist. The streaming channel is opened
// before the request is posted so the server cannot emit before the client
// listens; the POST carries the same client-minted session id.
func (s *Store) Start(ctx context.Context, req Request) error {
	if req.UploadedURL == "" {
		return &ValidationError{Reason: "no uploaded document — upload a file first"}
	}
	if len(req.PageNumbers) == 0 {
		return &ValidationError{Reason: "no pages selected — pick at least one page"}
	}

	sessionID := uuid.New().String()

	s.mu.Lock()
	s.resetLocked()
	gen := s.gen
	s.sess = Session{
		SessionID:  sessionID,
		TotalCount: req.QuizCount,
		State:      StateStarting,
	}
	s.mu.Unlock()
	s.notify()

	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := s.streams.Open(streamCtx, sessionID)
	if err != nil {
		cancel()
		s.fail(gen, fmt.Errorf("open stream: %w", err))
		return nil
	}

	s.mu.Lock()
	if s.gen != gen {
		// Superseded while opening.
		s.mu.Unlock()
		cancel()
		stream.Close()
		return nil
	}
	s.stream = stream
	s.cancel = cancel
	s.startTimersLocked(gen)
	s.mu.Unlock()

	go s.consume(gen, stream.Events())

	// Best-effort token refresh before posting; failure is ignored and
	// generation proceeds with whatever credentials remain.
	if err := s.svc.RefreshToken(ctx); err != nil {
		s.log.Debug("token refresh before generation failed", "error", err)
	}

	if err := s.svc.StartGeneration(ctx, api.GenerationRequest{
		UploadedURL:    req.UploadedURL,
		QuizCount:      req.QuizCount,
		QuizType:       req.QuizType,
		DifficultyType: req.DifficultyType,
		PageNumbers:    req.PageNumbers,
		SessionID:      sessionID,
	}); err != nil {
		// Terminal: the request itself failed, distinct from a mid-stream
		// channel error.
		s.log.Error("generation request failed", "session", sessionID, "error", err)
		s.fail(gen, err)
		return nil
	}

	s.transition(gen, StateStreaming)
	s.log.Info("generation started", "session", sessionID, "count", req.QuizCount)
	return nil
}

// Reconnect re-attaches to a generation already running server-side. The
// caller supplies the items it fetched synchronously beforehand; chunks
// redelivered over the new stream are deduped against them.
func (s *Store) Reconnect(ctx context.Context, sessionID, problemSetID string, known []quiz.Item, totalCount int) error {
	s.mu.Lock()
	s.resetLocked()
	gen := s.gen
	items := make([]quiz.Item, len(known))
	copy(items, known)
	s.sess = Session{
		SessionID:    sessionID,
		ProblemSetID: problemSetID,
		Items:        items,
		TotalCount:   totalCount,
		State:        StateStreaming,
	}
	s.mu.Unlock()
	s.notify()

	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := s.streams.Open(streamCtx, sessionID)
	if err != nil {
		cancel()
		s.fail(gen, fmt.Errorf("reattach stream: %w", err))
		return fmt.Errorf("reattach stream: %w", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		cancel()
		stream.Close()
		return nil
	}
	s.stream = stream
	s.cancel = cancel
	s.startTimersLocked(gen)
	s.mu.Unlock()

	go s.consume(gen, stream.Events())
	s.log.Info("reattached to running generation", "session", sessionID, "known", len(known))
	return nil
}

// Reset tears the session down: the stream stops being listened to, the
// wait-hint timer and elapsed ticker are cancelled, and every field clears
// under one lock — callers never observe a stale ProblemSetID next to
// cleared items. Server-side work is not cancelled.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.notify()
}

// resetLocked supersedes the current listener and zeroes the session.
// Callers hold s.mu.
func (s *Store) resetLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	if s.waitTimer != nil {
		s.waitTimer.Stop()
		s.waitTimer = nil
	}
	if s.tickerStop != nil {
		close(s.tickerStop)
		s.tickerStop = nil
	}
	s.sess = Session{}
}

// consume applies stream events until the channel closes. A generation
// counter mismatch means this listener was superseded; its events are
// dropped.
func (s *Store) consume(gen int, events <-chan Event) {
	for ev := range events {
		switch ev.Name {
		case EventChunk:
			chunk, err := quiz.ValidateChunk(ev.Data)
			if err != nil {
				s.log.Warn("dropping malformed chunk", "error", err)
				continue
			}
			s.applyChunk(gen, chunk)

		case EventComplete:
			s.completeStream(gen)
			return

		case EventError:
			// Non-fatal: the server may recover and keep emitting.
			s.log.Warn("stream reported error", "data", string(ev.Data))

		default:
			s.log.Debug("ignoring unknown stream event", "event", ev.Name)
		}
	}
}

// applyChunk appends newly produced items and records the server-assigned
// problem-set id on first receipt. Chunks are applied in arrival order;
// items already known by number are not duplicated.
func (s *Store) applyChunk(gen int, chunk *quiz.Chunk) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if s.sess.ProblemSetID == "" {
		s.sess.ProblemSetID = chunk.ProblemSetID
	}
	s.sess.Items = quiz.Merge(s.sess.Items, chunk.Quiz)
	if s.sess.State == StateStarting {
		s.sess.State = StateStreaming
	}
	s.mu.Unlock()
	s.notify()
}

// completeStream closes out a finished generation.
func (s *Store) completeStream(gen int) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.sess.State = StateCompleted
	s.sess.ShowWaitHint = false
	s.stopTimersLocked()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.stream = nil
	s.mu.Unlock()

	s.log.Info("generation complete", "session", s.Snapshot().SessionID)
	s.notify()
}

// fail marks the session failed and releases the stream.
func (s *Store) fail(gen int, err error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.sess.State = StateFailed
	s.sess.Err = err
	s.stopTimersLocked()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	s.mu.Unlock()
	s.notify()
}

// transition moves the session to a new state if the listener is current.
func (s *Store) transition(gen int, state State) {
	s.mu.Lock()
	if s.gen != gen || s.sess.State == StateCompleted || s.sess.State == StateFailed {
		s.mu.Unlock()
		return
	}
	s.sess.State = state
	s.mu.Unlock()
	s.notify()
}

// startTimersLocked arms the wait-hint timer and the elapsed ticker for
// the current listener. Callers hold s.mu.
func (s *Store) startTimersLocked(gen int) {
	s.waitTimer = time.AfterFunc(waitHintAfter, func() {
		s.mu.Lock()
		if s.gen == gen && s.sess.Streaming() {
			s.sess.ShowWaitHint = true
			s.mu.Unlock()
			s.notify()
			return
		}
		s.mu.Unlock()
	})

	stop := make(chan struct{})
	s.tickerStop = stop
	start := time.Now()
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.mu.Lock()
				if s.gen != gen {
					s.mu.Unlock()
					return
				}
				s.sess.Elapsed = time.Since(start)
				s.mu.Unlock()
				s.notify()
			}
		}
	}()
}

// stopTimersLocked cancels both scheduled tasks. Callers hold s.mu.
func (s *Store) stopTimersLocked() {
	if s.waitTimer != nil {
		s.waitTimer.Stop()
		s.waitTimer = nil
	}
	if s.tickerStop != nil {
		close(s.tickerStop)
		s.tickerStop = nil
	}
}

// notify signals Updates without blocking.
func (s *Store) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
