// Package console detects whether the process owns a throwaway console
// window, so fatal errors stay readable when started by double-click.
package console

import (
	"fmt"
	"io"
)

// WaitForKey prints a prompt to w and blocks until one byte is read from r.
func WaitForKey(r io.Reader, w io.Writer) {
	fmt.Fprintln(w, "Press Enter to exit...")
	b := make([]byte, 1)
	_, _ = r.Read(b)
}
