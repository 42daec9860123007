package reorder

import (
	"math"
	"time"
)

// Delta is pointer displacement since the drag started, in CSS pixels.
type Delta struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (d Delta) length() float64 {
	return math.Hypot(d.X, d.Y)
}

// PointerSensor recognises a mouse/pen drag once it has moved Distance pixels.
type PointerSensor struct {
	Distance float64 `json:"distance" example:"8"`
}

// Activated reports whether a pointer moved by d is a drag rather than a click.
func (s PointerSensor) Activated(d Delta) bool {
	return d.length() >= s.Distance
}

// TouchSensor recognises a touch drag after a press-and-hold of Delay, provided
// the finger stayed within Tolerance pixels while holding.
type TouchSensor struct {
	Delay     time.Duration `json:"delay" example:"250000000"`
	Tolerance float64       `json:"tolerance" example:"5"`
}

// Activated reports whether a touch held for held with drift d starts a drag.
func (s TouchSensor) Activated(held time.Duration, d Delta) bool {
	return held >= s.Delay && d.length() <= s.Tolerance
}

// Sensors bundles the activation constraints handed to the drag UI.
type Sensors struct {
	Pointer PointerSensor `json:"pointer"`
	Touch   TouchSensor   `json:"touch"`
}

// DefaultSensors returns the stock thresholds: 8px pointer travel, 250ms hold with 5px tolerance.
func DefaultSensors() Sensors {
	return Sensors{
		Pointer: PointerSensor{Distance: 8},
		Touch:   TouchSensor{Delay: 250 * time.Millisecond, Tolerance: 5},
	}
}

// Gesture is how the UI says a drag was performed. Delta is total travel for a
// pointer and drift during the hold for a touch.
type Gesture struct {
	Pointer string `json:"pointer" enum:"mouse,pen,touch" example:"mouse"`
	Delta   Delta  `json:"delta"`
	HeldMs  int    `json:"heldMs,omitempty" doc:"Press duration before the drag began, touch only" example:"300"`
}

// Accept reports whether g clears the activation constraint for its pointer
// type. A nil gesture is accepted.
func (s Sensors) Accept(g *Gesture) bool {
	if g == nil {
		return true
	}
	if g.Pointer == "touch" {
		return s.Touch.Activated(time.Duration(g.HeldMs)*time.Millisecond, g.Delta)
	}
	return s.Pointer.Activated(g.Delta)
}
