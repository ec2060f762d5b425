// Package device turns a stream of raw backend input events into observable
// pressed-key, pressed-button and cursor-position state.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/catinput/apitypes"
	"github.com/Alia5/catinput/device/keyboard"
	"github.com/Alia5/catinput/device/mouse"
	"github.com/Alia5/catinput/observable"
)

var (
	ErrAlreadyListening = errors.New("device listener is already running")
	ErrNoTransport      = errors.New("no transport configured")
	ErrClosed           = errors.New("session closed")
)

// Options configures a Session.
type Options struct {
	Transport Transport
	// Support defaults to keyboard.DefaultSupportTable().
	Support *keyboard.SupportTable
	// Mode reports the UI mode at the time a key event is normalized.
	// Defaults to keyboard.ModeStandard.
	Mode func() keyboard.Mode
	// CapsLockReleaseDelay defaults to keyboard.CapsLockReleaseDelay.
	CapsLockReleaseDelay time.Duration
	// WarnUnhandled logs unrecognized event kinds at warn instead of debug.
	WarnUnhandled bool
	Logger        *slog.Logger
}

// State is a point-in-time copy of everything a Session tracks.
type State struct {
	PressedMouses []mouse.Button
	MousePosition mouse.Position
	PressedKeys   []string
}

// Session owns the tracked state of one device-listening session. All
// mutations, including the delayed CapsLock release, are serialized.
type Session struct {
	transport     Transport
	normalizer    keyboard.Normalizer
	mode          func() keyboard.Mode
	logger        *slog.Logger
	warnUnhandled bool

	pressedMouses *PressedSet[mouse.Button]
	pressedKeys   *PressedSet[string]
	position      *observable.Cell[mouse.Position]
	capsLock      *keyboard.Debouncer

	mu     sync.Mutex
	closed bool

	runMu     sync.Mutex
	listening bool
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
}

// NewSession creates an idle session. A nil Transport is allowed for callers
// that only use Route; Start then fails with ErrNoTransport.
func NewSession(opts Options) (*Session, error) {
	if opts.CapsLockReleaseDelay < 0 {
		return nil, fmt.Errorf("caps lock release delay must not be negative: %s", opts.CapsLockReleaseDelay)
	}
	support := opts.Support
	if support == nil {
		support = keyboard.DefaultSupportTable()
	}
	mode := opts.Mode
	if mode == nil {
		mode = func() keyboard.Mode { return keyboard.ModeStandard }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		transport:     opts.Transport,
		normalizer:    keyboard.NewNormalizer(support),
		mode:          mode,
		logger:        logger,
		warnUnhandled: opts.WarnUnhandled,
		pressedMouses: NewPressedSet[mouse.Button](),
		pressedKeys:   NewPressedSet[string](),
		position:      observable.NewCell(mouse.Position{}),
	}
	s.capsLock = keyboard.NewDebouncer(opts.CapsLockReleaseDelay, s.releaseCapsLock)
	return s, nil
}

// PressedMouses is the observable set of held mouse buttons.
func (s *Session) PressedMouses() *observable.Cell[[]mouse.Button] { return s.pressedMouses.Cell() }

// PressedKeys is the observable set of held canonical keys.
func (s *Session) PressedKeys() *observable.Cell[[]string] { return s.pressedKeys.Cell() }

// MousePosition is the observable cursor position.
func (s *Session) MousePosition() *observable.Cell[mouse.Position] { return s.position }

// Snapshot copies the current state.
func (s *Session) Snapshot() State {
	return State{
		PressedMouses: s.pressedMouses.Values(),
		MousePosition: s.position.Get(),
		PressedKeys:   s.pressedKeys.Values(),
	}
}

// Route applies one event. Events must be routed in arrival order.
func (s *Session) Route(ev apitypes.DeviceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	value := ev.StringValue()

	// The guard is on the value, not the kind: the backend reports CapsLock
	// presses and releases unreliably, so any CapsLock event holds the key
	// until the events stop.
	if value == keyboard.KeyCapsLock {
		s.pressedKeys.Press(keyboard.KeyCapsLock)
		s.capsLock.Trigger()
		return
	}

	switch ev.Kind {
	case apitypes.KindMousePress:
		s.pressedMouses.Press(mouse.Button(value))
	case apitypes.KindMouseRelease:
		s.pressedMouses.Release(mouse.Button(value))
	case apitypes.KindMouseMove:
		pos, ok := ev.PositionValue()
		if !ok {
			s.logger.Debug("ignoring malformed mouse move", "value", string(ev.Value))
			return
		}
		s.position.Set(pos)
	case apitypes.KindKeyboardPress:
		if key, ok := s.normalize(value); ok {
			s.pressedKeys.Press(key)
		}
	case apitypes.KindKeyboardRelease:
		if key, ok := s.normalize(value); ok {
			s.pressedKeys.Release(key)
		}
	default:
		if s.warnUnhandled {
			s.logger.Warn("unhandled device event", "kind", ev.Kind)
		} else {
			s.logger.Debug("unhandled device event", "kind", ev.Kind)
		}
	}
}

func (s *Session) normalize(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	key, ok := s.normalizer.Normalize(raw, s.mode())
	if !ok {
		s.logger.Debug("dropping key", "key", raw, "mode", s.mode())
	}
	return key, ok
}

func (s *Session) releaseCapsLock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Retriggered between the timer firing and taking the lock.
	if s.closed || s.capsLock.Pending() {
		return
	}
	s.pressedKeys.Release(keyboard.KeyCapsLock)
}

// Start begins streaming events from the transport and returns immediately.
// Use Wait to observe the end of the stream.
func (s *Session) Start(ctx context.Context) error {
	if s.transport == nil {
		return ErrNoTransport
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.isClosed() {
		return ErrClosed
	}
	if s.listening {
		return ErrAlreadyListening
	}

	streamCtx, cancel := context.WithCancel(ctx)
	s.listening = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.err = nil
	done := s.done

	go func() {
		err := s.transport.Stream(streamCtx, func(ev apitypes.DeviceEvent) error {
			s.Route(ev)
			return nil
		})
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("device stream ended", "error", err)
		} else {
			s.logger.Debug("device stream ended")
		}

		s.runMu.Lock()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		s.err = err
		s.listening = false
		s.cancel = nil
		s.runMu.Unlock()
		close(done)
	}()
	return nil
}

// Wait blocks until the stream started by Start ends and returns its error.
// A stream ended by Close or context cancellation reports nil.
func (s *Session) Wait() error {
	s.runMu.Lock()
	done := s.done
	s.runMu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.err
}

// Listening reports whether a stream is active.
func (s *Session) Listening() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.listening
}

// Send forwards msg to the backend.
func (s *Session) Send(ctx context.Context, msg apitypes.Message) error {
	if s.transport == nil {
		return ErrNoTransport
	}
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Kind, err)
	}
	return nil
}

// Close stops streaming and cancels a pending CapsLock release. Tracked state
// is left as it was; later events and timer callbacks are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.capsLock.Stop()
	s.mu.Unlock()

	s.runMu.Lock()
	cancel := s.cancel
	s.runMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
