package observable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/catinput/observable"
)

func TestCell_SetNotifiesInOrder(t *testing.T) {
	c := observable.NewCell(1)

	var got []string
	c.Subscribe(func(v int) { got = append(got, "a") })
	c.Subscribe(func(v int) { got = append(got, "b") })

	c.Set(2)
	assert.Equal(t, 2, c.Get())
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestCell_UpdateOnlyNotifiesOnChange(t *testing.T) {
	c := observable.NewCell("x")
	calls := 0
	c.Subscribe(func(string) { calls++ })

	changed := c.Update(func(cur string) (string, bool) { return cur, false })
	assert.False(t, changed)
	assert.Equal(t, 0, calls)

	changed = c.Update(func(cur string) (string, bool) { return cur + "y", true })
	assert.True(t, changed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "xy", c.Get())
}

func TestCell_Unsubscribe(t *testing.T) {
	c := observable.NewCell(0)
	calls := 0
	cancel := c.Subscribe(func(int) { calls++ })
	require.Equal(t, 1, c.Subscribers())

	c.Set(1)
	cancel()
	cancel()
	c.Set(2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, c.Subscribers())
}
