package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/catinput/device"
)

func TestPressedSet_PressIsIdempotent(t *testing.T) {
	s := device.NewPressedSet[string]()
	notifications := 0
	s.Cell().Subscribe(func([]string) { notifications++ })

	assert.True(t, s.Press("KeyA"))
	once := s.Values()
	assert.False(t, s.Press("KeyA"))

	assert.Equal(t, once, s.Values())
	assert.Equal(t, 1, notifications)
}

func TestPressedSet_ReleaseAbsentIsNoop(t *testing.T) {
	s := device.NewPressedSet[string]()
	s.Press("KeyA")
	before := s.Values()

	assert.False(t, s.Release("KeyB"))
	assert.Equal(t, before, s.Values())
}

func TestPressedSet_ZeroValueIgnored(t *testing.T) {
	s := device.NewPressedSet[string]()
	assert.False(t, s.Press(""))
	assert.False(t, s.Release(""))
	assert.Equal(t, 0, s.Len())
}

func TestPressedSet_SnapshotsAreReplaced(t *testing.T) {
	s := device.NewPressedSet[string]()
	s.Press("KeyA")
	first := s.Cell().Get()
	s.Press("KeyB")
	s.Release("KeyA")

	assert.Equal(t, []string{"KeyA"}, first, "earlier snapshots must not change")
	assert.ElementsMatch(t, []string{"KeyB"}, s.Values())
	assert.True(t, s.Contains("KeyB"))
	assert.False(t, s.Contains("KeyA"))

	assert.True(t, s.Clear())
	assert.False(t, s.Clear())
	assert.Equal(t, 0, s.Len())
}
