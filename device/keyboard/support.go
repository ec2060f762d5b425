package keyboard

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed assets/keys/*.png
var keyAssets embed.FS

// DefaultAssetPattern matches the key icons shipped with the package.
const DefaultAssetPattern = "assets/keys/*.png"

// SupportTable is the immutable set of canonical keys the UI has an icon for.
type SupportTable struct {
	keys map[string]struct{}
}

// NewSupportTable builds a table from explicit key identifiers.
// Empty identifiers are ignored.
func NewSupportTable(keys ...string) *SupportTable {
	t := &SupportTable{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		if k == "" {
			continue
		}
		t.keys[k] = struct{}{}
	}
	return t
}

// LoadSupportTable builds a table with one entry per file in fsys matching
// pattern, named by the file's base name without extension
// (assets/keys/KeyA.png -> KeyA).
func LoadSupportTable(fsys fs.FS, pattern string) (*SupportTable, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob key assets %q: %w", pattern, err)
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		base := path.Base(m)
		keys = append(keys, strings.TrimSuffix(base, path.Ext(base)))
	}
	return NewSupportTable(keys...), nil
}

// DefaultSupportTable returns the table derived from the embedded key icons.
func DefaultSupportTable() *SupportTable {
	t, err := LoadSupportTable(keyAssets, DefaultAssetPattern)
	if err != nil {
		// The pattern is a constant and the assets are compiled in.
		panic(err)
	}
	return t
}

// IsSupported reports whether key has an icon.
func (t *SupportTable) IsSupported(key string) bool {
	if t == nil {
		return false
	}
	_, ok := t.keys[key]
	return ok
}

// Keys returns the supported keys in sorted order.
func (t *SupportTable) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.keys))
	for k := range t.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of supported keys.
func (t *SupportTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}
