package device

import (
	"slices"

	"github.com/Alia5/catinput/observable"
)

// PressedSet tracks which values of one input category are currently held.
// The observed value is an immutable snapshot that is replaced wholesale on
// every effective mutation; element order carries no meaning.
type PressedSet[T comparable] struct {
	cell *observable.Cell[[]T]
}

// NewPressedSet returns an empty set.
func NewPressedSet[T comparable]() *PressedSet[T] {
	return &PressedSet[T]{cell: observable.NewCell[[]T](nil)}
}

// Press adds v. The zero value and already-pressed values are no-ops.
// It reports whether the set changed.
func (p *PressedSet[T]) Press(v T) bool {
	var zero T
	if v == zero {
		return false
	}
	return p.cell.Update(func(cur []T) ([]T, bool) {
		if slices.Contains(cur, v) {
			return cur, false
		}
		next := make([]T, len(cur), len(cur)+1)
		copy(next, cur)
		return append(next, v), true
	})
}

// Release removes v. The zero value and values not held are no-ops.
// It reports whether the set changed.
func (p *PressedSet[T]) Release(v T) bool {
	var zero T
	if v == zero {
		return false
	}
	return p.cell.Update(func(cur []T) ([]T, bool) {
		i := slices.Index(cur, v)
		if i < 0 {
			return cur, false
		}
		next := make([]T, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		return append(next, cur[i+1:]...), true
	})
}

// Clear empties the set.
func (p *PressedSet[T]) Clear() bool {
	return p.cell.Update(func(cur []T) ([]T, bool) {
		return nil, len(cur) > 0
	})
}

// Contains reports whether v is held.
func (p *PressedSet[T]) Contains(v T) bool {
	return slices.Contains(p.cell.Get(), v)
}

// Values returns a copy of the held values.
func (p *PressedSet[T]) Values() []T {
	return slices.Clone(p.cell.Get())
}

// Len returns the number of held values.
func (p *PressedSet[T]) Len() int { return len(p.cell.Get()) }

// Cell exposes the observable snapshot. Callers must not modify the slices
// they receive.
func (p *PressedSet[T]) Cell() *observable.Cell[[]T] { return p.cell }
