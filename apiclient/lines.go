package apiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Alia5/catinput/apitypes"
)

// LineTransport reads newline-delimited JSON device events from a reader,
// e.g. a backend process piping events to stdin.
type LineTransport struct {
	r      io.Reader
	w      io.Writer
	logger *slog.Logger

	writeMu sync.Mutex
}

// NewLineTransport reads events from r. Messages passed to Send are written
// as JSON lines to w; a nil w makes Send a no-op.
func NewLineTransport(r io.Reader, w io.Writer, logger *slog.Logger) *LineTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineTransport{r: r, w: w, logger: logger}
}

type lineResult struct {
	line []byte
	err  error
}

// ScanLines calls fn with every non-blank line of r, trimmed, together with
// its 1-based line number. It returns nil at EOF, the first error from fn, or
// ctx.Err() as soon as ctx is done, even while a read is blocked. The blocked
// read itself is only released when the reader is.
func ScanLines(ctx context.Context, r io.Reader, fn func(lineNo int, line []byte) error) error {
	lines := make(chan lineResult)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 4096), 1<<20)
		for sc.Scan() {
			line := bytes.Clone(sc.Bytes())
			select {
			case lines <- lineResult{line: line}:
			case <-stop:
				return
			}
		}
		if err := sc.Err(); err != nil {
			select {
			case lines <- lineResult{err: err}:
			case <-stop:
			}
		}
	}()

	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-lines:
			if !ok {
				return nil
			}
			if res.err != nil {
				return fmt.Errorf("read line: %w", res.err)
			}
			lineNo++
			trimmed := bytes.TrimSpace(res.line)
			if len(trimmed) == 0 {
				continue
			}
			if err := fn(lineNo, trimmed); err != nil {
				return err
			}
		}
	}
}

// Stream emits one event per line. Blank lines are skipped; malformed lines
// are logged and skipped. EOF ends the stream with a nil error.
func (l *LineTransport) Stream(ctx context.Context, emit func(apitypes.DeviceEvent) error) error {
	return ScanLines(ctx, l.r, func(lineNo int, line []byte) error {
		ev, err := apitypes.ParseEvent(line)
		if err != nil {
			l.logger.Warn("skipping malformed event line", "line", lineNo, "error", err)
			return nil
		}
		return emit(ev)
	})
}

// Send writes msg as one JSON line.
func (l *LineTransport) Send(ctx context.Context, msg apitypes.Message) error {
	if l.w == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}
