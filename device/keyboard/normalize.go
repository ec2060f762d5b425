package keyboard

import (
	"regexp"
	"strings"
)

var functionKey = regexp.MustCompile(`F\d+`)

// Canonicalize collapses key variants without consulting the support table:
// any key starting with "Meta" becomes "Meta" and the first F<digits> run
// becomes "Fn".
func Canonicalize(raw string) string {
	key := raw
	if strings.HasPrefix(key, KeyMeta) {
		key = KeyMeta
	}
	if loc := functionKey.FindStringIndex(key); loc != nil {
		key = key[:loc[0]] + KeyFn + key[loc[1]:]
	}
	return key
}

// IsArrow reports whether a canonical key is a directional key. The backend
// names them UpArrow/DownArrow/..., browsers ArrowUp/ArrowDown/...; both are
// accepted.
func IsArrow(key string) bool {
	return strings.HasSuffix(key, "Arrow") || strings.HasPrefix(key, "Arrow")
}

// Normalizer maps raw key identifiers to canonical supported ones.
type Normalizer struct {
	Support *SupportTable
}

// NewNormalizer returns a Normalizer backed by support.
func NewNormalizer(support *SupportTable) Normalizer {
	return Normalizer{Support: support}
}

// Normalize returns the canonical key for raw, or false when the key must be
// dropped: arrows outside keyboard mode and keys without an icon.
func (n Normalizer) Normalize(raw string, mode Mode) (string, bool) {
	key := Canonicalize(raw)
	if IsArrow(key) && mode != ModeKeyboard {
		return "", false
	}
	if !n.Support.IsSupported(key) {
		return "", false
	}
	return key, true
}
