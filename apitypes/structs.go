package apitypes

import (
	"encoding/json"
	"fmt"

	"github.com/Alia5/catinput/device/mouse"
)

// Kind names the variant of a DeviceEvent.
type Kind string

const (
	KindMousePress      Kind = "MousePress"
	KindMouseRelease    Kind = "MouseRelease"
	KindMouseMove       Kind = "MouseMove"
	KindKeyboardPress   Kind = "KeyboardPress"
	KindKeyboardRelease Kind = "KeyboardRelease"
)

// Known reports whether k is one of the five event kinds the backend emits.
func (k Kind) Known() bool {
	switch k {
	case KindMousePress, KindMouseRelease, KindMouseMove, KindKeyboardPress, KindKeyboardRelease:
		return true
	default:
		return false
	}
}

// DeviceEvent is a single input event as emitted by the backend:
//
//	{"kind":"KeyboardPress","value":"KeyA"}
//	{"kind":"MouseMove","value":{"x":10,"y":20}}
//
// Value is kept raw; its shape depends on Kind.
type DeviceEvent struct {
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// StringValue returns the value when it is a JSON string, "" otherwise.
func (e DeviceEvent) StringValue() string {
	if len(e.Value) == 0 || e.Value[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Value, &s); err != nil {
		return ""
	}
	return s
}

// PositionValue decodes a MouseMove payload.
func (e DeviceEvent) PositionValue() (mouse.Position, bool) {
	var p mouse.Position
	if len(e.Value) == 0 {
		return p, false
	}
	if err := json.Unmarshal(e.Value, &p); err != nil {
		return mouse.Position{}, false
	}
	return p, true
}

// NewEvent builds a DeviceEvent, marshaling value to JSON. A nil value leaves
// Value empty.
func NewEvent(kind Kind, value any) (DeviceEvent, error) {
	ev := DeviceEvent{Kind: kind}
	if value == nil {
		return ev, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return DeviceEvent{}, fmt.Errorf("marshal %s value: %w", kind, err)
	}
	ev.Value = b
	return ev, nil
}

// MustEvent is like NewEvent but panics on marshal failure. Intended for
// literals in tests and examples.
func MustEvent(kind Kind, value any) DeviceEvent {
	ev, err := NewEvent(kind, value)
	if err != nil {
		panic(err)
	}
	return ev
}

// ParseEvent decodes one JSON-encoded DeviceEvent.
func ParseEvent(data []byte) (DeviceEvent, error) {
	var ev DeviceEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return DeviceEvent{}, fmt.Errorf("decode device event: %w", err)
	}
	return ev, nil
}

// Message is the outbound frame shape, mirroring DeviceEvent on the wire.
type Message struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}
