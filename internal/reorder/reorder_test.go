package reorder

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func ev(active, over string) Event {
	return Event{Active: Ref{ID: active}, Over: Ref{ID: over}}
}

func TestIDsMoves(t *testing.T) {
	tests := []struct {
		name         string
		active, over string
		want         []string
	}{
		{"down", "a", "c", []string{"b", "c", "a", "d"}},
		{"up", "d", "b", []string{"a", "d", "b", "c"}},
		{"adjacent", "b", "c", []string{"a", "c", "b", "d"}},
		{"to end", "a", "d", []string{"b", "c", "d", "a"}},
		{"to front", "d", "a", []string{"d", "a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []string{"a", "b", "c", "d"}
			got, err := IDs(in, ev(tt.active, tt.over))
			if err != nil {
				t.Fatalf("IDs: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(in, []string{"a", "b", "c", "d"}) {
				t.Fatalf("input mutated: %v", in)
			}
		})
	}
}

func TestMoveOntoSelfIsNoop(t *testing.T) {
	in := []string{"a", "b", "c"}
	for _, id := range in {
		got, err := IDs(in, ev(id, id))
		if err != nil {
			t.Fatalf("IDs(%s,%s): %v", id, id, err)
		}
		if !reflect.DeepEqual(got, in) {
			t.Fatalf("self move of %s changed order: %v", id, got)
		}
	}
}

func TestMoveAdjacentRoundTrip(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	for i := 0; i+1 < len(in); i++ {
		for _, pair := range [][2]string{{in[i], in[i+1]}, {in[i+1], in[i]}} {
			moved, err := IDs(in, ev(pair[0], pair[1]))
			if err != nil {
				t.Fatal(err)
			}
			back, err := IDs(moved, ev(pair[1], pair[0]))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(back, in) {
				t.Fatalf("round trip %v: got %v", pair, back)
			}
		}
	}
}

func TestMoveInverse(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	for oldIdx, active := range in {
		for _, over := range in {
			moved, err := IDs(in, ev(active, over))
			if err != nil {
				t.Fatal(err)
			}
			// Dropping the item back on whatever now occupies its old slot restores the order.
			back, err := IDs(moved, ev(active, moved[oldIdx]))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(back, in) {
				t.Fatalf("inverse of %s over %s: got %v", active, over, back)
			}
		}
	}
}

func TestMoveStaleIDLeavesOrder(t *testing.T) {
	in := []string{"a", "b", "c"}
	for _, e := range []Event{ev("x", "b"), ev("a", "x"), ev("", "")} {
		got, err := IDs(in, e)
		if !errors.Is(err, ErrIndexMiss) {
			t.Fatalf("%+v: err = %v, want ErrIndexMiss", e, err)
		}
		if !reflect.DeepEqual(got, in) {
			t.Fatalf("%+v: order changed to %v", e, got)
		}
	}
}

func TestMovePreservesOtherRelativeOrder(t *testing.T) {
	type card struct{ id, body string }
	in := []card{{"1", "x"}, {"2", "y"}, {"3", "z"}, {"4", "w"}}
	got, err := Move(in, func(c card) string { return c.id }, "4", "2")
	if err != nil {
		t.Fatal(err)
	}
	rest := []string{}
	for _, c := range got {
		if c.id != "4" {
			rest = append(rest, c.id)
		}
	}
	if !reflect.DeepEqual(rest, []string{"1", "2", "3"}) {
		t.Fatalf("relative order of others changed: %v", rest)
	}
	if got[1].id != "4" || got[1].body != "w" {
		t.Fatalf("moved element wrong: %+v", got[1])
	}
}

func TestPointerSensor(t *testing.T) {
	s := DefaultSensors().Pointer
	if s.Activated(Delta{X: 3, Y: 4}) {
		t.Error("5px move should be a click")
	}
	if !s.Activated(Delta{Y: 8}) {
		t.Error("8px move should start a drag")
	}
}

func TestTouchSensor(t *testing.T) {
	s := DefaultSensors().Touch
	if s.Activated(100*time.Millisecond, Delta{}) {
		t.Error("short press should not start a drag")
	}
	if !s.Activated(300*time.Millisecond, Delta{X: 3}) {
		t.Error("long press within tolerance should start a drag")
	}
	if s.Activated(300*time.Millisecond, Delta{Y: 12}) {
		t.Error("press that drifted past tolerance should not start a drag")
	}
}

func TestSensorsAccept(t *testing.T) {
	s := DefaultSensors()
	tests := []struct {
		name string
		g    *Gesture
		want bool
	}{
		{"no gesture", nil, true},
		{"mouse click", &Gesture{Pointer: "mouse", Delta: Delta{X: 2, Y: 3}}, false},
		{"mouse drag", &Gesture{Pointer: "mouse", Delta: Delta{Y: 40}}, true},
		{"pen drag", &Gesture{Pointer: "pen", Delta: Delta{X: 6, Y: 6}}, true},
		{"touch tap", &Gesture{Pointer: "touch", HeldMs: 80}, false},
		{"touch hold", &Gesture{Pointer: "touch", HeldMs: 300, Delta: Delta{X: 2}}, true},
		{"touch scroll", &Gesture{Pointer: "touch", HeldMs: 300, Delta: Delta{Y: 30}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Accept(tt.g); got != tt.want {
				t.Fatalf("Accept(%+v) = %v, want %v", tt.g, got, tt.want)
			}
		})
	}
}
