package mouse

import (
	"encoding/json"
	"errors"
)

// Position is the absolute cursor position carried by MouseMove events.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UnmarshalJSON decodes {"x":..,"y":..}. Both coordinates are required since
// the backend always sends them together.
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.X == nil || raw.Y == nil {
		return errors.New("position requires both x and y")
	}
	p.X = *raw.X
	p.Y = *raw.Y
	return nil
}
