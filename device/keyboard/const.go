package keyboard

import "time"

// Mode is the display mode of the consuming UI. Only ModeKeyboard renders
// arrow keys.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeKeyboard Mode = "keyboard"
)

// Canonical key identifiers that normalization collapses variants into.
const (
	KeyMeta     = "Meta"
	KeyFn       = "Fn"
	KeyCapsLock = "CapsLock"
)

// CapsLockReleaseDelay is the quiet period after the last CapsLock event
// before CapsLock is considered released.
const CapsLockReleaseDelay = 100 * time.Millisecond
