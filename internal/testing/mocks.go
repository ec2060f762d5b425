package testing

import (
	"context"
	"sync"

	"github.com/Alia5/catinput/apitypes"
)

// MockTransport replays a fixed list of events and records sent messages.
// Stream blocks after the script until ctx is done unless EndAfterScript is
// set.
type MockTransport struct {
	Events         []apitypes.DeviceEvent
	EndAfterScript bool
	StreamErr      error
	SendErr        error

	mu   sync.Mutex
	sent []apitypes.Message
}

func NewMockTransport(events ...apitypes.DeviceEvent) *MockTransport {
	return &MockTransport{Events: events, EndAfterScript: true}
}

func (m *MockTransport) Stream(ctx context.Context, emit func(apitypes.DeviceEvent) error) error {
	for _, ev := range m.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(ev); err != nil {
			return err
		}
	}
	if m.StreamErr != nil {
		return m.StreamErr
	}
	if m.EndAfterScript {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *MockTransport) Send(ctx context.Context, msg apitypes.Message) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the messages passed to Send.
func (m *MockTransport) Sent() []apitypes.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]apitypes.Message(nil), m.sent...)
}
