package generation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizdeck/internal/api"
	"quizdeck/internal/logger"
	"quizdeck/internal/quiz"
)

// fakeStream is a hand-fed stream.
type fakeStream struct {
	events chan Event
	closed bool
	mu     sync.Mutex
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan Event, 16)}
}

func (f *fakeStream) Events() <-chan Event { return f.events }

func (f *fakeStream) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}

func (f *fakeStream) emit(name string, data []byte) {
	f.events <- Event{Name: name, Data: data}
}

// fakeFactory hands out streams and records open order.
type fakeFactory struct {
	mu      sync.Mutex
	streams []*fakeStream
	openLog []string
	err     error
}

func (f *fakeFactory) Open(_ context.Context, sessionID string) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	st := newFakeStream()
	f.streams = append(f.streams, st)
	f.openLog = append(f.openLog, sessionID)
	return st, nil
}

func (f *fakeFactory) last() *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams[len(f.streams)-1]
}

// fakeAPI records call order relative to stream opening.
type fakeAPI struct {
	mu         sync.Mutex
	factory    *fakeFactory
	postErr    error
	refreshErr error
	calls      []string
	posted     []api.GenerationRequest
}

func (f *fakeAPI) StartGeneration(_ context.Context, req api.GenerationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "post")
	f.posted = append(f.posted, req)
	return f.postErr
}

func (f *fakeAPI) RefreshToken(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "refresh")
	return f.refreshErr
}

func chunkPayload(t *testing.T, problemSetID string, numbers ...int) []byte {
	t.Helper()
	items := make([]map[string]any, 0, len(numbers))
	for _, n := range numbers {
		items = append(items, map[string]any{
			"number": n,
			"title":  "question",
			"selections": []map[string]any{
				{"id": 1, "content": "a", "correct": true},
				{"id": 2, "content": "b", "correct": false},
			},
		})
	}
	data, err := json.Marshal(map[string]any{"problemSetId": problemSetID, "quiz": items})
	require.NoError(t, err)
	return data
}

func newTestStore() (*Store, *fakeAPI, *fakeFactory) {
	factory := &fakeFactory{}
	svc := &fakeAPI{factory: factory}
	return NewStore(svc, factory, logger.Nop()), svc, factory
}

func validRequest() Request {
	return Request{
		UploadedURL:    "https://cdn.example.com/doc.pdf",
		QuizCount:      5,
		QuizType:       "multiple",
		DifficultyType: "recall",
		PageNumbers:    []int{1, 2},
	}
}

func waitFor(t *testing.T, s *Store, cond func(Session) bool) Session {
	t.Helper()
	var snap Session
	require.Eventually(t, func() bool {
		snap = s.Snapshot()
		return cond(snap)
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestStartRejectsMissingUpload(t *testing.T) {
	s, svc, factory := newTestStore()

	err := s.Start(context.Background(), Request{PageNumbers: []int{1}})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Empty(t, factory.openLog)
	assert.Empty(t, svc.calls)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestStartRejectsEmptyPageSelection(t *testing.T) {
	s, svc, _ := newTestStore()

	req := validRequest()
	req.PageNumbers = nil
	err := s.Start(context.Background(), req)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Empty(t, svc.calls)
}

func TestStreamOpensBeforePost(t *testing.T) {
	s, svc, factory := newTestStore()

	require.NoError(t, s.Start(context.Background(), validRequest()))

	// The channel was open before the POST was sent, and both carry the
	// same session id.
	require.Len(t, factory.openLog, 1)
	require.Len(t, svc.posted, 1)
	assert.Equal(t, factory.openLog[0], svc.posted[0].SessionID)
	assert.NotEmpty(t, svc.posted[0].SessionID)

	snap := s.Snapshot()
	assert.Equal(t, StateStreaming, snap.State)
	assert.True(t, snap.Streaming())
}

func TestChunksAccumulateAndDedupe(t *testing.T) {
	s, _, factory := newTestStore()
	require.NoError(t, s.Start(context.Background(), validRequest()))

	st := factory.last()
	st.emit(EventChunk, chunkPayload(t, "ps-1", 1, 2))
	st.emit(EventChunk, chunkPayload(t, "ps-1", 2, 3))
	st.emit(EventChunk, chunkPayload(t, "ps-1", 3, 4, 5))

	snap := waitFor(t, s, func(sn Session) bool { return len(sn.Items) == 5 })
	assert.Equal(t, "ps-1", snap.ProblemSetID)

	var numbers []int
	for _, it := range snap.Items {
		numbers = append(numbers, it.Number)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, numbers)
	assert.Equal(t, 0, snap.Remaining())
}

func TestMalformedChunkDropped(t *testing.T) {
	s, _, factory := newTestStore()
	require.NoError(t, s.Start(context.Background(), validRequest()))

	st := factory.last()
	st.emit(EventChunk, []byte(`{"quiz": "nope"}`))
	st.emit(EventChunk, chunkPayload(t, "ps-1", 1))

	snap := waitFor(t, s, func(sn Session) bool { return len(sn.Items) == 1 })
	assert.Equal(t, StateStreaming, snap.State)
}

func TestCompleteEventEndsStreaming(t *testing.T) {
	s, _, factory := newTestStore()
	require.NoError(t, s.Start(context.Background(), validRequest()))

	st := factory.last()
	st.emit(EventChunk, chunkPayload(t, "ps-1", 1))
	st.emit(EventComplete, nil)

	snap := waitFor(t, s, func(sn Session) bool { return sn.State == StateCompleted })
	assert.False(t, snap.Streaming())
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, "ps-1", snap.ProblemSetID)
}

func TestStreamErrorIsNonFatal(t *testing.T) {
	s, _, factory := newTestStore()
	require.NoError(t, s.Start(context.Background(), validRequest()))

	st := factory.last()
	st.emit(EventError, []byte("transient"))
	st.emit(EventChunk, chunkPayload(t, "ps-1", 1))

	snap := waitFor(t, s, func(sn Session) bool { return len(sn.Items) == 1 })
	assert.Equal(t, StateStreaming, snap.State)
}

func TestPostFailureIsTerminal(t *testing.T) {
	s, svc, factory := newTestStore()
	svc.postErr = errors.New("boom")

	require.NoError(t, s.Start(context.Background(), validRequest()))

	snap := waitFor(t, s, func(sn Session) bool { return sn.State == StateFailed })
	assert.ErrorContains(t, snap.Err, "boom")
	assert.False(t, snap.Streaming())

	// The channel was closed along with the failure.
	st := factory.last()
	st.mu.Lock()
	defer st.mu.Unlock()
	assert.True(t, st.closed)
}

func TestRefreshFailureIsIgnored(t *testing.T) {
	s, svc, _ := newTestStore()
	svc.refreshErr = errors.New("refresh down")

	require.NoError(t, s.Start(context.Background(), validRequest()))

	assert.Equal(t, []string{"refresh", "post"}, svc.calls)
	assert.Equal(t, StateStreaming, s.Snapshot().State)
}

func TestResetClearsEverything(t *testing.T) {
	s, _, factory := newTestStore()
	require.NoError(t, s.Start(context.Background(), validRequest()))

	st := factory.last()
	st.emit(EventChunk, chunkPayload(t, "ps-1", 1, 2))
	waitFor(t, s, func(sn Session) bool { return len(sn.Items) == 2 })

	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.SessionID)
	assert.Empty(t, snap.ProblemSetID)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.Elapsed)
	assert.False(t, snap.ShowWaitHint)
}

func TestEventsAfterResetAreDropped(t *testing.T) {
	s, _, factory := newTestStore()
	require.NoError(t, s.Start(context.Background(), validRequest()))

	st := factory.last()
	s.Reset()
	// The stream was closed by reset; a fresh channel standing in for a
	// late event must not mutate the idle session.
	st.mu.Lock()
	closed := st.closed
	st.mu.Unlock()
	assert.True(t, closed)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestNewStartSupersedesPrevious(t *testing.T) {
	s, svc, factory := newTestStore()
	require.NoError(t, s.Start(context.Background(), validRequest()))
	first := factory.last()

	require.NoError(t, s.Start(context.Background(), validRequest()))

	// The first listener's channel was torn down, and the new session has
	// a fresh id.
	first.mu.Lock()
	closed := first.closed
	first.mu.Unlock()
	assert.True(t, closed)
	require.Len(t, svc.posted, 2)
	assert.NotEqual(t, svc.posted[0].SessionID, svc.posted[1].SessionID)
}

func TestReconnectMergesOverlap(t *testing.T) {
	s, _, factory := newTestStore()

	known := []quiz.Item{
		{Number: 1, Title: "q1"},
		{Number: 2, Title: "q2"},
		{Number: 3, Title: "q3"},
	}
	require.NoError(t, s.Reconnect(context.Background(), "sess-7", "ps-7", known, 5))

	st := factory.last()
	st.emit(EventChunk, chunkPayload(t, "ps-7", 2, 3, 4, 5))
	st.emit(EventComplete, nil)

	snap := waitFor(t, s, func(sn Session) bool { return sn.State == StateCompleted })

	var numbers []int
	for _, it := range snap.Items {
		numbers = append(numbers, it.Number)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, numbers)
}

func TestStreamOpenFailure(t *testing.T) {
	s, _, factory := newTestStore()
	factory.err = errors.New("connect refused")

	require.NoError(t, s.Start(context.Background(), validRequest()))

	snap := waitFor(t, s, func(sn Session) bool { return sn.State == StateFailed })
	assert.ErrorContains(t, snap.Err, "connect refused")
}
