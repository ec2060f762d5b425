package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/catinput/apiclient"
	"github.com/Alia5/catinput/device"
	"github.com/Alia5/catinput/device/keyboard"
	"github.com/Alia5/catinput/device/mouse"
	"github.com/Alia5/catinput/internal/log"
)

type Watch struct {
	Transport            string        `help:"Where device events come from" enum:"websocket,stdin" default:"websocket" env:"CATINPUT_TRANSPORT"`
	Addr                 string        `help:"Backend websocket address" default:"127.0.0.1:9527" env:"CATINPUT_ADDR"`
	Mode                 string        `help:"UI mode; arrow keys are only tracked in keyboard mode" enum:"standard,keyboard" default:"standard" env:"CATINPUT_MODE"`
	KeysDir              string        `help:"Directory of key icons (*.png) defining the supported keys (default: built-in set)" env:"CATINPUT_KEYS_DIR"`
	CapsLockReleaseDelay time.Duration `help:"Quiet period after the last CapsLock event before it counts as released" default:"100ms" env:"CATINPUT_CAPS_LOCK_RELEASE_DELAY"`
	PingInterval         time.Duration `help:"Websocket keepalive interval (0 disables)" default:"30s" env:"CATINPUT_PING_INTERVAL"`
	WarnUnhandled        bool          `help:"Log unrecognized event kinds at warn level" env:"CATINPUT_WARN_UNHANDLED"`
	Live                 bool          `help:"Redraw a single status line instead of logging every change (terminal only)"`

	In  io.Reader `kong:"-"`
	Out io.Writer `kong:"-"`
}

// Run is called by Kong when the watch command is executed.
func (w *Watch) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.StartWatch(ctx, logger, rawLogger)
}

// StartWatch runs a device session until ctx is done or the event source
// ends.
func (w *Watch) StartWatch(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	support, err := loadSupport(w.KeysDir)
	if err != nil {
		return err
	}
	mode := keyboard.Mode(w.Mode)
	if mode == "" {
		mode = keyboard.ModeStandard
	}

	var transport device.Transport
	switch w.Transport {
	case "stdin":
		in := w.In
		if in == nil {
			in = os.Stdin
		}
		transport = apiclient.NewLineTransport(in, nil, logger)
		logger.Info("Reading device events from stdin")
	case "", "websocket":
		client := apiclient.New(w.Addr, &apiclient.Config{
			PingInterval: w.PingInterval,
			Logger:       logger,
			RawLogger:    rawLogger,
		})
		if err := client.Connect(ctx); err != nil {
			return fmt.Errorf("connect to backend: %w", err)
		}
		defer client.Close()
		transport = client
		logger.Info("Connected to backend", "url", client.URL())
	default:
		return fmt.Errorf("unknown transport %q", w.Transport)
	}

	sess, err := device.NewSession(device.Options{
		Transport:            transport,
		Support:              support,
		Mode:                 func() keyboard.Mode { return mode },
		CapsLockReleaseDelay: w.CapsLockReleaseDelay,
		WarnUnhandled:        w.WarnUnhandled,
		Logger:               logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	out := w.Out
	if out == nil {
		out = os.Stdout
	}
	if w.Live && isTerminal(out) {
		line := &statusLine{out: out}
		redraw := func() { line.draw(FormatState(sess.Snapshot())) }
		sess.PressedKeys().Subscribe(func([]string) { redraw() })
		sess.PressedMouses().Subscribe(func([]mouse.Button) { redraw() })
		sess.MousePosition().Subscribe(func(mouse.Position) { redraw() })
		defer line.finish()
	} else {
		if w.Live {
			logger.Warn("Output is not a terminal, falling back to logging")
		}
		sess.PressedKeys().Subscribe(func(keys []string) {
			logger.Info("Pressed keys changed", "keys", keys)
		})
		sess.PressedMouses().Subscribe(func(buttons []mouse.Button) {
			logger.Info("Pressed buttons changed", "buttons", buttons)
		})
		sess.MousePosition().Subscribe(func(p mouse.Position) {
			logger.Debug("Mouse moved", "x", p.X, "y", p.Y)
		})
	}

	if err := sess.Start(ctx); err != nil {
		return err
	}
	err = sess.Wait()
	logger.Info("Device session ended", "state", FormatState(sess.Snapshot()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// FormatState renders a one-line summary of s.
func FormatState(s device.State) string {
	buttons := make([]string, len(s.PressedMouses))
	for i, b := range s.PressedMouses {
		buttons[i] = string(b)
	}
	return fmt.Sprintf("keys=[%s] buttons=[%s] pos=(%g,%g)",
		strings.Join(s.PressedKeys, " "),
		strings.Join(buttons, " "),
		s.MousePosition.X, s.MousePosition.Y)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type statusLine struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func (l *statusLine) draw(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s == l.last {
		return
	}
	l.last = s
	fmt.Fprintf(l.out, "\r\x1b[K%s", s)
}

func (l *statusLine) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last != "" {
		fmt.Fprintln(l.out)
	}
}
