package refine

import (
	"math"
	"testing"
)

func TestOrientDirection(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Vector2
		want    Direction
	}{
		{"ccw", V2(0, 0), V2(1, 0), V2(0, 1), CounterClockwise},
		{"cw", V2(0, 0), V2(0, 1), V2(1, 0), Clockwise},
		{"collinear", V2(0, 0), V2(1, 1), V2(2, 2), Indeterminate},
		{"nearly collinear", V2(0, 0), V2(1, 1), V2(2, 2+1e-14), Indeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrientDirection(tt.a, tt.b, tt.c, DefaultEpsilon); got != tt.want {
				t.Errorf("OrientDirection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInCircle(t *testing.T) {
	a, b, c := V2(0, 0), V2(1, 0), V2(0, 1)

	tests := []struct {
		name   string
		d      Vector2
		inside bool
	}{
		{"center", V2(0.5, 0.5), true},
		{"far", V2(5, 5), false},
		{"cocircular", V2(1, 1), false},
		{"just inside", V2(0.9, 0.9), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InCircleStrict(a, b, c, tt.d, DefaultEpsilon); got != tt.inside {
				t.Errorf("InCircleStrict(%v) = %v, want %v", tt.d, got, tt.inside)
			}
		})
	}

	if InCircle(a, b, c, V2(1, 1)) != 0 {
		t.Error("cocircular determinant should be exactly zero for integer input")
	}
}

func TestCircumcircle(t *testing.T) {
	c, ok := Circumcircle(V2(0, 0), V2(2, 0), V2(0, 2))
	if !ok {
		t.Fatal("Circumcircle reported collinear points")
	}
	if !c.Center.Approx(V2(1, 1), 1e-12) {
		t.Errorf("center = %v, want (1, 1)", c.Center)
	}
	if math.Abs(c.Radius-math.Sqrt2) > 1e-12 {
		t.Errorf("radius = %v, want √2", c.Radius)
	}

	if _, ok := Circumcircle(V2(0, 0), V2(1, 1), V2(2, 2)); ok {
		t.Error("Circumcircle of collinear points should fail")
	}
}

func TestCircleContainsStrict(t *testing.T) {
	c := Circle{Center: V2(0, 0), Radius: 1}
	if !c.ContainsStrict(V2(0.5, 0), DefaultEpsilon) {
		t.Error("interior point not contained")
	}
	if c.ContainsStrict(V2(1, 0), DefaultEpsilon) {
		t.Error("boundary point must not be strictly contained")
	}
	if !c.Contains(V2(1, 0)) {
		t.Error("boundary point must be contained")
	}
}

func TestSegmentsCross(t *testing.T) {
	if !segmentsCross(V2(0, 0), V2(2, 2), V2(0, 2), V2(2, 0), DefaultEpsilon) {
		t.Error("diagonals of a square should cross")
	}
	if segmentsCross(V2(0, 0), V2(1, 1), V2(0, 2), V2(2, 0), DefaultEpsilon) {
		t.Error("segment touching the other at an endpoint is not a proper crossing")
	}
}
