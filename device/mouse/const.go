package mouse

// Button identifies a mouse button as reported by the event backend.
// The backend may also emit names outside the three below (e.g. "Unknown(8)");
// those are tracked verbatim.
type Button string

// Buttons the UI renders.
const (
	ButtonLeft   Button = "Left"
	ButtonRight  Button = "Right"
	ButtonMiddle Button = "Middle"
)

// Known reports whether b is one of Left, Right or Middle.
func (b Button) Known() bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return true
	default:
		return false
	}
}
