// Package polygon triangulates simple polygons by ear clipping. The result
// feeds refine.Import: the polygon outline becomes the constrained
// boundary of the mesh.
package polygon

import (
	"errors"
	"fmt"

	"github.com/gogpu/refine"
)

var (
	// ErrTooFewPoints is returned for outlines with fewer than three
	// distinct vertices.
	ErrTooFewPoints = errors.New("polygon: need at least 3 points")

	// ErrDegenerate is returned when the outline encloses no area.
	ErrDegenerate = errors.New("polygon: outline encloses no area")

	// ErrNotSimple is returned when ear clipping stalls, which happens for
	// self-intersecting outlines.
	ErrNotSimple = errors.New("polygon: outline is not simple")
)

// Triangulate splits the polygon with the given outline into triangles.
// Either winding is accepted. A closing vertex equal to the first one is
// dropped. Every outline edge is reported as constrained.
func Triangulate(outline []refine.Vector2) (refine.Triangulation, error) {
	pts := outline
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	n := len(pts)
	if n < 3 {
		return refine.Triangulation{}, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}

	area := signedArea(pts)
	if area == 0 {
		return refine.Triangulation{}, ErrDegenerate
	}

	// Work on a counter-clockwise index ring.
	ring := make([]int, n)
	for i := range ring {
		if area > 0 {
			ring[i] = i
		} else {
			ring[i] = n - 1 - i
		}
	}

	tris := make([][3]int, 0, n-2)
	guard := 2 * len(ring)
	for v := len(ring) - 1; len(ring) > 2; {
		if guard <= 0 {
			return refine.Triangulation{}, fmt.Errorf("%w: stalled with %d vertices left", ErrNotSimple, len(ring))
		}
		guard--

		u := v % len(ring)
		v = (u + 1) % len(ring)
		w := (v + 1) % len(ring)
		if !isEar(pts, ring, u, v, w) {
			continue
		}
		tris = append(tris, [3]int{ring[u], ring[v], ring[w]})
		ring = append(ring[:v], ring[v+1:]...)
		guard = 2 * len(ring)
	}

	cons := make([][2]int, n)
	for i, rangeEnd := 0, n; i < rangeEnd; i++ {
		cons[i] = [2]int{i, (i + 1) % n}
	}
	return refine.Triangulation{Points: pts, Triangles: tris, Constrained: cons}, nil
}

// signedArea returns twice the signed area of the outline; positive for
// counter-clockwise winding.
func signedArea(pts []refine.Vector2) float64 {
	a := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a
}

// isEar reports whether the corner u-v-w of the ring is convex and holds no
// other ring vertex.
func isEar(pts []refine.Vector2, ring []int, u, v, w int) bool {
	a, b, c := pts[ring[u]], pts[ring[v]], pts[ring[w]]
	if refine.OrientDirection(a, b, c, refine.DefaultEpsilon) != refine.CounterClockwise {
		return false
	}
	for i, idx := range ring {
		if i == u || i == v || i == w {
			continue
		}
		p := pts[idx]
		if p == a || p == b || p == c {
			continue
		}
		if inside(a, b, c, p) {
			return false
		}
	}
	return true
}

// inside reports whether p lies in the closed counter-clockwise triangle
// abc.
func inside(a, b, c, p refine.Vector2) bool {
	return refine.Orient(a, b, p) >= 0 && refine.Orient(b, c, p) >= 0 && refine.Orient(c, a, p) >= 0
}
