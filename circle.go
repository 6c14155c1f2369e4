package refine

import "math"

// Circle is a circle in the plane.
type Circle struct {
	Center Vector2
	Radius float64
}

// Circumcircle returns the circle through a, b and c.
// ok is false when the three points are collinear.
func Circumcircle(a, b, c Vector2) (circle Circle, ok bool) {
	// Translate to a so the determinant is computed on small values.
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y

	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return Circle{Radius: math.Inf(1)}, false
	}

	bl := bx*bx + by*by
	cl := cx*cx + cy*cy
	ux := (cy*bl - by*cl) / d
	uy := (bx*cl - cx*bl) / d

	center := Vector2{X: a.X + ux, Y: a.Y + uy}
	if !center.IsFinite() {
		return Circle{Radius: math.Inf(1)}, false
	}
	return Circle{Center: center, Radius: math.Hypot(ux, uy)}, true
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Vector2) bool {
	return p.DistanceSq(c.Center) <= c.Radius*c.Radius
}

// ContainsStrict reports whether p lies strictly inside the circle, with
// points closer than eps (relative to the radius) to the boundary counted
// as outside.
func (c Circle) ContainsStrict(p Vector2, eps float64) bool {
	r2 := c.Radius * c.Radius
	return p.DistanceSq(c.Center) < r2-eps*r2
}
