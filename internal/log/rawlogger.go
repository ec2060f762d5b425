package log

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"
)

// RawLogger records raw socket frames.
type RawLogger interface {
	Log(in bool, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits one line per frame. in=true means backend->catinput.
// Text frames are quoted; anything that is not valid UTF-8 is hex dumped.
func (r *rawLogger) Log(in bool, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	dir := "out"
	if in {
		dir = "in "
	}

	var body string
	if utf8.Valid(data) {
		body = "text: " + strconv.Quote(string(data))
	} else {
		body = fmt.Sprintf("hex: % x", data)
	}

	line := fmt.Sprintf("%s %s frame: %d bytes, %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		dir,
		len(data),
		body)

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
