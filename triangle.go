package refine

import "math"

// Triangle is a counter-clockwise loop of three edges:
// Edge(i).End() == Edge(i+1).Start(). Vertex i is Edge(i).Start().
//
// A triangle never owns its points directly; it reaches them through its
// edges. Circumcircle, angles and area are computed once at creation since
// a triangle's vertices never change during its lifetime.
type Triangle struct {
	edges     [3]*Edge
	circle    Circle
	angles    [3]float64
	area      float64
	mesh      *Mesh
	seq       uint64 // creation order within the mesh
	state     lifeState
	tolerance float64
}

// NewTriangle builds a free-standing triangle from a closed loop of three
// edges. A clockwise loop is re-oriented by using the mirrors of the edges
// in reverse order. Each resulting edge must not already carry a triangle.
func NewTriangle(e1, e2, e3 *Edge) (*Triangle, error) {
	return newTriangle(e1, e2, e3, DefaultEpsilon)
}

func newTriangle(e1, e2, e3 *Edge, eps float64) (*Triangle, error) {
	const op = "NewTriangle"
	for _, e := range [3]*Edge{e1, e2, e3} {
		if e == nil {
			return nil, invariantf(op, "nil edge")
		}
		if e.IsRemoved() {
			return nil, invariantf(op, "edge has been removed")
		}
	}
	if e1.end != e2.Start() || e2.end != e3.Start() || e3.end != e1.Start() {
		return nil, invariantf(op, "edges do not form a closed loop")
	}

	a, b, c := e1.Start().pos, e2.Start().pos, e3.Start().pos
	switch OrientDirection(a, b, c, eps) {
	case Indeterminate:
		return nil, invariantf(op, "degenerate triangle %v %v %v", a, b, c)
	case Clockwise:
		e1, e2, e3 = e3.mirror, e2.mirror, e1.mirror
	}

	edges := [3]*Edge{e1, e2, e3}
	for _, e := range edges {
		if e.tri != nil {
			return nil, invariantf(op, "edge %v -> %v already bounds a triangle", e.Start().pos, e.end.pos)
		}
	}

	t := &Triangle{edges: edges, tolerance: eps}
	for _, e := range edges {
		e.tri = t
		e.setDelaunay(false)
	}
	t.computeGeometry()
	return t, nil
}

func (t *Triangle) computeGeometry() {
	a, b, c := t.Vertex(0).pos, t.Vertex(1).pos, t.Vertex(2).pos
	t.area = Orient(a, b, c) / 2
	// Non-collinearity was checked at construction, so ok is always true.
	t.circle, _ = Circumcircle(a, b, c)
	for i := 0; i < 3; i++ {
		prev := t.edges[(i+2)%3]
		t.angles[i] = angleBetween(t.edges[i].mirror, prev.mirror)
	}
}

// Edge returns edge i (0, 1 or 2).
func (t *Triangle) Edge(i int) *Edge { return t.edges[i%3] }

// Vertex returns vertex i, the start point of edge i.
func (t *Triangle) Vertex(i int) *Point { return t.edges[i%3].Start() }

// Vertices returns the three vertices in counter-clockwise order.
func (t *Triangle) Vertices() [3]*Point {
	return [3]*Point{t.Vertex(0), t.Vertex(1), t.Vertex(2)}
}

// Angle returns the interior angle at vertex i, in radians.
func (t *Triangle) Angle(i int) float64 { return t.angles[i%3] }

// MinAngle returns the smallest interior angle.
func (t *Triangle) MinAngle() float64 {
	return math.Min(t.angles[0], math.Min(t.angles[1], t.angles[2]))
}

// Area returns the (positive) area of the triangle.
func (t *Triangle) Area() float64 { return t.area }

// Circumcircle returns the circle through the three vertices.
func (t *Triangle) Circumcircle() Circle { return t.circle }

// Centroid returns the average of the three vertices.
func (t *Triangle) Centroid() Vector2 {
	a, b, c := t.Vertex(0).pos, t.Vertex(1).pos, t.Vertex(2).pos
	return Vector2{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
}

// CircumcircleContains reports whether p lies strictly inside the
// circumcircle. Points within the triangle's tolerance of the circle count
// as outside, so cocircular configurations are never reported as illegal.
func (t *Triangle) CircumcircleContains(p Vector2) bool {
	return InCircleStrict(t.Vertex(0).pos, t.Vertex(1).pos, t.Vertex(2).pos, p, t.tolerance)
}

// Contains reports whether p lies inside the triangle or on its boundary.
func (t *Triangle) Contains(p Vector2) bool {
	for i := 0; i < 3; i++ {
		if OrientDirection(t.Vertex(i).pos, t.Vertex(i+1).pos, p, t.tolerance) == Clockwise {
			return false
		}
	}
	return true
}

// EdgeIndex returns the index of e (or of its mirror) in the triangle, or -1.
func (t *Triangle) EdgeIndex(e *Edge) int {
	for i, x := range t.edges {
		if x == e || x == e.mirror {
			return i
		}
	}
	return -1
}

// Opposite returns the vertex that does not lie on e, or nil if e is not an
// edge of the triangle.
func (t *Triangle) Opposite(e *Edge) *Point {
	i := t.EdgeIndex(e)
	if i < 0 {
		return nil
	}
	return t.edges[(i+1)%3].end
}

// OppositeEdge returns the edge of the triangle that does not touch p, or
// nil if p is not a vertex of the triangle.
func (t *Triangle) OppositeEdge(p *Point) *Edge {
	for i := 0; i < 3; i++ {
		if t.Vertex(i) == p {
			return t.edges[(i+1)%3]
		}
	}
	return nil
}

// Neighbor returns the triangle across edge i, or nil on the boundary.
func (t *Triangle) Neighbor(i int) *Triangle { return t.edges[i%3].mirror.tri }

// Mesh returns the mesh the triangle is registered with, or nil.
func (t *Triangle) Mesh() *Mesh { return t.mesh }

// IsRemoved reports whether the triangle has been removed.
func (t *Triangle) IsRemoved() bool { return t.state == stateRemoved }

// Remove detaches the triangle from its three edges. The edges themselves
// stay in place, since they may still bound a neighbouring triangle.
func (t *Triangle) Remove() {
	if t.state == stateRemoved {
		return
	}
	for _, e := range t.edges {
		if e.tri == t {
			e.tri = nil
		}
		e.setDelaunay(false)
	}
	t.state = stateRemoved
	if t.mesh != nil {
		t.mesh.triangleRemoved(t)
	}
}
