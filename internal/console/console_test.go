package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitForKey(t *testing.T) {
	var out bytes.Buffer
	WaitForKey(strings.NewReader("\n"), &out)
	assert.Equal(t, "Press Enter to exit...\n", out.String())
}
