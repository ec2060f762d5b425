package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name      string
		normalize string
		mode      string
		want      string
	}{
		{name: "meta variant", normalize: "MetaRight", mode: "standard", want: "MetaRight -> Meta\n"},
		{name: "function key", normalize: "F7", mode: "standard", want: "F7 -> Fn\n"},
		{name: "arrow in standard mode", normalize: "UpArrow", mode: "standard", want: "UpArrow -> dropped (arrow keys are only tracked in keyboard mode)\n"},
		{name: "arrow in keyboard mode", normalize: "UpArrow", mode: "keyboard", want: "UpArrow -> UpArrow\n"},
		{name: "unsupported", normalize: "NumpadAdd", mode: "standard", want: "NumpadAdd -> dropped (NumpadAdd is not supported)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			k := &Keys{Normalize: tt.normalize, Mode: tt.mode, Out: &out}
			require.NoError(t, k.Run())
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestKeys_ListFromDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"KeyQ.png", "Space.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	var out bytes.Buffer
	k := &Keys{KeysDir: dir, Out: &out}
	require.NoError(t, k.Run())
	assert.Equal(t, []string{"KeyQ", "Space"}, strings.Fields(out.String()))
}

func TestKeys_BadDir(t *testing.T) {
	k := &Keys{KeysDir: filepath.Join(t.TempDir(), "missing"), Out: &bytes.Buffer{}}
	assert.Error(t, k.Run())

	empty := &Keys{KeysDir: t.TempDir(), Out: &bytes.Buffer{}}
	assert.ErrorContains(t, empty.Run(), "contains no *.png key icons")
}
