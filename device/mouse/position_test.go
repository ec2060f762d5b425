package mouse_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/catinput/device/mouse"
)

func TestPosition_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    mouse.Position
		wantErr bool
	}{
		{name: "integers", in: `{"x":10,"y":20}`, want: mouse.Position{X: 10, Y: 20}},
		{name: "fractional", in: `{"x":1.5,"y":-3.25}`, want: mouse.Position{X: 1.5, Y: -3.25}},
		{name: "missing y", in: `{"x":1}`, wantErr: true},
		{name: "not an object", in: `"Left"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p mouse.Position
			err := json.Unmarshal([]byte(tt.in), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestButton_Known(t *testing.T) {
	assert.True(t, mouse.ButtonLeft.Known())
	assert.True(t, mouse.ButtonMiddle.Known())
	assert.False(t, mouse.Button("Unknown(8)").Known())
	assert.False(t, mouse.Button("").Known())
}
