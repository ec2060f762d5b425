package device

import (
	"context"
	"errors"
	"sync"

	"github.com/Alia5/catinput/apitypes"
)

// Transport delivers device events from the backend and carries outbound
// messages back to it.
type Transport interface {
	// Stream calls emit for every event, in arrival order, until ctx is done,
	// the source is exhausted (nil error) or reading fails. An error returned
	// by emit stops the stream and is returned as is.
	Stream(ctx context.Context, emit func(apitypes.DeviceEvent) error) error
	// Send delivers msg to the backend.
	Send(ctx context.Context, msg apitypes.Message) error
}

// ErrOutboxClosed is returned by ChannelTransport.Send after CloseOutbox.
var ErrOutboxClosed = errors.New("outbox closed")

// ChannelTransport is the in-process bridge: the backend pushes events into a
// channel and optionally drains an outbox.
type ChannelTransport struct {
	events <-chan apitypes.DeviceEvent
	outbox chan<- apitypes.Message
	done   chan struct{}
	once   sync.Once
}

// NewChannelTransport wraps events. With a nil outbox Send is a no-op.
func NewChannelTransport(events <-chan apitypes.DeviceEvent, outbox chan<- apitypes.Message) *ChannelTransport {
	return &ChannelTransport{events: events, outbox: outbox, done: make(chan struct{})}
}

// Stream implements Transport. It returns nil once events is closed.
func (c *ChannelTransport) Stream(ctx context.Context, emit func(apitypes.DeviceEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			if err := emit(ev); err != nil {
				return err
			}
		}
	}
}

// Send implements Transport.
func (c *ChannelTransport) Send(ctx context.Context, msg apitypes.Message) error {
	if c.outbox == nil {
		return nil
	}
	select {
	case <-c.done:
		return ErrOutboxClosed
	default:
	}
	select {
	case c.outbox <- msg:
		return nil
	case <-c.done:
		return ErrOutboxClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseOutbox makes further Sends fail. The outbox channel itself is owned
// by the caller and is not closed.
func (c *ChannelTransport) CloseOutbox() {
	c.once.Do(func() { close(c.done) })
}
