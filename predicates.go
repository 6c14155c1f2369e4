package refine

import "math"

// Geometric predicates used by the mesh and the refiner.
//
// The predicates are evaluated in ordinary floating point. Each one
// compares its determinant against a tolerance proportional to the
// magnitude of the terms that produced it, so nearly degenerate inputs
// (collinear or cocircular points) classify as Indeterminate instead of
// flipping sign on rounding noise.

// DefaultEpsilon is the relative tolerance used by the predicates when no
// other value is configured.
const DefaultEpsilon = 1e-10

// Direction is the orientation of an ordered triple of points.
type Direction int

// Orientation results.
const (
	Clockwise        Direction = -1
	Indeterminate    Direction = 0
	CounterClockwise Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "Clockwise"
	case CounterClockwise:
		return "CounterClockwise"
	default:
		return "Indeterminate"
	}
}

// Orient returns twice the signed area of the triangle abc.
// The result is positive when a, b, c turn counter-clockwise.
func Orient(a, b, c Vector2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// OrientDirection classifies the turn a -> b -> c, treating determinants
// within eps of the term magnitude as Indeterminate.
func OrientDirection(a, b, c Vector2, eps float64) Direction {
	l := (b.X - a.X) * (c.Y - a.Y)
	r := (b.Y - a.Y) * (c.X - a.X)
	det := l - r
	bound := eps * (math.Abs(l) + math.Abs(r))
	switch {
	case det > bound:
		return CounterClockwise
	case det < -bound:
		return Clockwise
	default:
		return Indeterminate
	}
}

// InCircle returns a value that is positive when d lies inside the circle
// through the counter-clockwise triangle abc, negative when it lies outside
// and zero when the four points are cocircular.
func InCircle(a, b, c, d Vector2) float64 {
	det, _ := inCircle(a, b, c, d)
	return det
}

// InCircleStrict reports whether d lies strictly inside the circumcircle of
// the counter-clockwise triangle abc, beyond the relative tolerance eps.
func InCircleStrict(a, b, c, d Vector2, eps float64) bool {
	det, permanent := inCircle(a, b, c, d)
	return det > eps*permanent
}

func inCircle(a, b, c, d Vector2) (det, permanent float64) {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	alift := adx*adx + ady*ady
	blift := bdx*bdx + bdy*bdy
	clift := cdx*cdx + cdy*cdy

	bc1, bc2 := bdx*cdy, cdx*bdy
	ca1, ca2 := cdx*ady, adx*cdy
	ab1, ab2 := adx*bdy, bdx*ady

	det = alift*(bc1-bc2) + blift*(ca1-ca2) + clift*(ab1-ab2)
	permanent = alift*(math.Abs(bc1)+math.Abs(bc2)) +
		blift*(math.Abs(ca1)+math.Abs(ca2)) +
		clift*(math.Abs(ab1)+math.Abs(ab2))
	return det, permanent
}

// segmentsCross reports whether the open segments pq and ab properly
// intersect (each segment's endpoints lie strictly on opposite sides of
// the other's supporting line).
func segmentsCross(p, q, a, b Vector2, eps float64) bool {
	d1 := OrientDirection(p, q, a, eps)
	d2 := OrientDirection(p, q, b, eps)
	if d1 == Indeterminate || d2 == Indeterminate || d1 == d2 {
		return false
	}
	d3 := OrientDirection(a, b, p, eps)
	d4 := OrientDirection(a, b, q, eps)
	return d3 != Indeterminate && d4 != Indeterminate && d3 != d4
}
