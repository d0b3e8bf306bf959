package generation

import (
	"context"

	"github.com/r3labs/sse/v2"

	"quizdeck/internal/api"
	"quizdeck/internal/logger"
)

// Named events emitted on the generation channel.
const (
	// EventChunk carries {problemSetId, quiz: [...]} — newly produced items.
	EventChunk = "created"
	// EventComplete marks the end of generation. No payload.
	EventComplete = "complete"
	// EventError reports a server-side hiccup. The server may recover and
	// keep emitting, so listeners treat it as non-fatal.
	EventError = "error"
)

// Event is one message delivered over the streaming channel.
type Event struct {
	Name string
	Data []byte
}

// Stream is an open server-streaming channel. The Events channel is closed
// when the stream ends for any reason.
type Stream interface {
	Events() <-chan Event
	Close()
}

// StreamFactory opens a streaming channel for a generation session. The
// session store depends on this interface so tests can drive the store
// without network sockets.
type StreamFactory interface {
	Open(ctx context.Context, sessionID string) (Stream, error)
}

// SSEFactory opens server-sent-event channels against the quiz service.
type SSEFactory struct {
	client *api.Client
	log    *logger.Logger
}

// NewSSEFactory creates a factory bound to the API client's stream
// endpoint and bearer token.
func NewSSEFactory(client *api.Client, log *logger.Logger) *SSEFactory {
	return &SSEFactory{client: client, log: log.With("component", "sse")}
}

func (f *SSEFactory) Open(ctx context.Context, sessionID string) (Stream, error) {
	c := sse.NewClient(f.client.StreamURL(sessionID))
	if token := f.client.Token(); token != "" {
		c.Headers["Authorization"] = "Bearer " + token
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan Event, 64)

	go func() {
		defer close(events)
		err := c.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
			select {
			case events <- Event{Name: string(msg.Event), Data: msg.Data}:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			f.log.Warn("stream subscription ended", "session", sessionID, "error", err)
		}
	}()

	return &sseStream{events: events, cancel: cancel}, nil
}

type sseStream struct {
	events chan Event
	cancel context.CancelFunc
}

func (s *sseStream) Events() <-chan Event { return s.events }
func (s *sseStream) Close()               { s.cancel() }
