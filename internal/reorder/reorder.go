// Package reorder relocates a single element of an ordered list in response
// to a completed drag gesture.
package reorder

import (
	"errors"
	"fmt"
)

// ErrIndexMiss is returned when a drag names an id that is not in the list.
var ErrIndexMiss = errors.New("reorder id not in list")

// Ref names a dragged or hovered element.
type Ref struct {
	ID string `json:"id" example:"3f1c9a52-2b8e-4d0e-9c53-6a3b1f0d2e11"`
}

// Event is the drag-end payload: the element being dragged and the element it
// was dropped on, plus the gesture when the UI reports one.
type Event struct {
	Active  Ref      `json:"active"`
	Over    Ref      `json:"over"`
	Gesture *Gesture `json:"gesture,omitempty"`
}

// Move returns a copy of items with the element identified by activeID moved to
// the index of overID. When either id is missing, the returned slice has the
// original order and the error wraps ErrIndexMiss.
func Move[T any](items []T, id func(T) string, activeID, overID string) ([]T, error) {
	out := append([]T(nil), items...)

	oldIndex, newIndex := -1, -1
	for i, it := range items {
		key := id(it)
		if key == activeID {
			oldIndex = i
		}
		if key == overID {
			newIndex = i
		}
	}
	if oldIndex < 0 || newIndex < 0 {
		return out, fmt.Errorf("move %q over %q: %w", activeID, overID, ErrIndexMiss)
	}
	if oldIndex == newIndex {
		return out, nil
	}

	moved := out[oldIndex]
	if oldIndex < newIndex {
		copy(out[oldIndex:newIndex], out[oldIndex+1:newIndex+1])
	} else {
		copy(out[newIndex+1:oldIndex+1], out[newIndex:oldIndex])
	}
	out[newIndex] = moved
	return out, nil
}

// IDs is Move for a plain list of ids.
func IDs(ids []string, ev Event) ([]string, error) {
	return Move(ids, func(s string) string { return s }, ev.Active.ID, ev.Over.ID)
}
