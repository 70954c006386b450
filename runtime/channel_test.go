package runtime

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// fakeChannel is an in-memory duplex channel driven by the test.
type fakeChannel struct {
	frames chan event.Frame
	closed chan struct{}
	broken chan struct{}

	closeOnce  sync.Once
	breakOnce  sync.Once
	closeCount atomic.Int32

	mu      sync.Mutex
	emitted []event.Frame
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		frames: make(chan event.Frame, 16),
		closed: make(chan struct{}),
		broken: make(chan struct{}),
	}
}

func (c *fakeChannel) Emit(_ context.Context, frame event.Frame) error {
	select {
	case <-c.closed:
		return fmt.Errorf("emit on closed channel")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, frame)
	return nil
}

func (c *fakeChannel) Receive(ctx context.Context) (event.Frame, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.broken:
		return event.Frame{}, io.ErrUnexpectedEOF
	case <-c.closed:
		return event.Frame{}, io.EOF
	case <-ctx.Done():
		return event.Frame{}, ctx.Err()
	}
}

func (c *fakeChannel) Close() error {
	c.closeCount.Add(1)
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// push delivers an inbound frame whose payload is the raw JSON data.
func (c *fakeChannel) push(kind event.Kind, data string) {
	c.frames <- event.Frame{Event: kind, Data: json.RawMessage(data)}
}

// cut simulates the transport failing under the session.
func (c *fakeChannel) cut() {
	c.breakOnce.Do(func() { close(c.broken) })
}

func (c *fakeChannel) sent(kind event.Kind) []event.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	var frames []event.Frame
	for _, frame := range c.emitted {
		if frame.Event == kind {
			frames = append(frames, frame)
		}
	}
	return frames
}

// recordingObserver keeps every view it is notified with.
type recordingObserver struct {
	mu    sync.Mutex
	views []domain.SessionView
}

func (o *recordingObserver) OnChange(view domain.SessionView) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views = append(o.views, view)
}

func (o *recordingObserver) States() []domain.SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	var states []domain.SessionState
	for _, view := range o.views {
		if len(states) == 0 || states[len(states)-1] != view.State {
			states = append(states, view.State)
		}
	}
	return states
}
