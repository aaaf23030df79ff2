package camera

import (
	"math"
	"testing"
)

func TestLookClampsPitch(t *testing.T) {
	c := New()
	for i := 0; i < 10000; i++ {
		c.Look(0, 1000)
	}
	if math.Abs(float64(c.Pitch)) > math.Pi/2 {
		t.Fatalf("pitch not clamped: %v", c.Pitch)
	}
}

func TestMoveAdvancesPosition(t *testing.T) {
	c := New()
	start := c.Position
	c.Move(1, 0, 0)
	if c.Position == start {
		t.Fatalf("expected position to change after Move")
	}
}
