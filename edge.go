package refine

import "math"

// Edge is one directed half of an undirected mesh connection. The two
// halves of a connection are each other's mirror: an edge runs from
// Mirror().End() to End().
//
// An edge records the triangle on its left, if any. Because triangles are
// counter-clockwise, an undirected connection is shared by at most two
// triangles, one per half.
type Edge struct {
	end         *Point
	mirror      *Edge
	constrained bool
	delaunay    bool
	angle       float64
	tri         *Triangle
	mesh        *Mesh
	refCount    int
	forward     bool // the half returned by NewEdge
	state       lifeState
}

// NewEdge connects two points with a fresh pair of directed halves and
// returns the forward half (start -> end) with a reference count of one.
// Both halves are registered on their start points and both points gain a
// reference. The edge does not belong to any mesh; use Mesh.NewEdge for
// mesh edges.
func NewEdge(start, end *Point, constrained bool) (*Edge, error) {
	const op = "NewEdge"
	if start == nil || end == nil {
		return nil, invariantf(op, "nil endpoint")
	}
	if start == end {
		return nil, invariantf(op, "degenerate edge: start and end are the same point %v", start.pos)
	}
	if start.IsRemoved() || end.IsRemoved() {
		return nil, invariantf(op, "endpoint has been removed")
	}

	e := &Edge{end: end, constrained: constrained, forward: true}
	m := &Edge{end: start, constrained: constrained}
	e.mirror, m.mirror = m, e
	e.angle = end.pos.Sub(start.pos).Atan2()
	m.angle = start.pos.Sub(end.pos).Atan2()

	start.Ref()
	end.Ref()
	start.insertEdge(e)
	end.insertEdge(m)

	e.refCount = 1
	return e, nil
}

// Start returns the point the edge leaves from.
func (e *Edge) Start() *Point { return e.mirror.end }

// End returns the point the edge points to.
func (e *Edge) End() *Point { return e.end }

// Mirror returns the reverse half of the connection.
func (e *Edge) Mirror() *Edge { return e.mirror }

// Angle returns the direction of the edge in radians, in (-π, π].
func (e *Edge) Angle() float64 { return e.angle }

// IsConstrained reports whether refinement must preserve the edge.
func (e *Edge) IsConstrained() bool { return e.constrained }

// IsDelaunay returns the cached local Delaunay flag. The flag is set by
// legalization and cleared whenever a triangle on either side changes.
func (e *Edge) IsDelaunay() bool { return e.delaunay }

// Triangle returns the triangle on the left of the edge, or nil.
func (e *Edge) Triangle() *Triangle { return e.tri }

// Mesh returns the mesh the edge is registered with, or nil.
func (e *Edge) Mesh() *Mesh { return e.mesh }

// IsRemoved reports whether the connection has been removed.
func (e *Edge) IsRemoved() bool { return e.state == stateRemoved }

// IsBoundary reports whether at most one side of the connection carries a
// triangle.
func (e *Edge) IsBoundary() bool { return e.tri == nil || e.mirror.tri == nil }

// RefCount returns the reference count of this half.
func (e *Edge) RefCount() int { return e.refCount }

// Ref increments the reference count of this half and returns e.
func (e *Edge) Ref() *Edge {
	e.refCount++
	return e
}

// Unref drops one reference from this half. Once neither half is
// referenced the connection is removed.
func (e *Edge) Unref() {
	e.refCount--
	if e.refCount < 0 {
		mustInvariant("Edge.Unref", "reference count dropped below zero")
	}
	if e.refCount == 0 && e.mirror.refCount == 0 {
		e.Remove()
	}
}

// Remove detaches the connection from the mesh. Triangles owned by either
// half are removed first, both halves are unregistered from their start
// points and both endpoints lose a reference. Removing an already removed
// edge does nothing.
func (e *Edge) Remove() {
	if e.state == stateRemoved {
		return
	}

	start, end := e.Start(), e.end

	if e.tri != nil {
		e.tri.Remove()
	}
	if e.mirror.tri != nil {
		e.mirror.tri.Remove()
	}

	start.removeEdge(e)
	end.removeEdge(e.mirror)

	e.state = stateRemoved
	e.mirror.state = stateRemoved

	start.Unref()
	end.Unref()

	if e.mesh != nil {
		e.mesh.edgeRemoved(e.forwardHalf())
	}
}

// DiametralCircle returns the smallest circle enclosing the edge.
func (e *Edge) DiametralCircle() Circle {
	a, b := e.Start().pos, e.end.pos
	return Circle{Center: a.Midpoint(b), Radius: math.Sqrt(a.DistanceSq(b)) / 2}
}

// Midpoint returns the point halfway along the edge.
func (e *Edge) Midpoint() Vector2 {
	return e.Start().pos.Midpoint(e.end.pos)
}

// Length returns the Euclidean length of the edge.
func (e *Edge) Length() float64 {
	return math.Sqrt(e.LengthSquared())
}

// LengthSquared returns the squared length of the edge.
func (e *Edge) LengthSquared() float64 {
	return e.Start().pos.DistanceSq(e.end.pos)
}

// AngleBetween returns the angle swept when turning from e1 to e2 around
// their shared point, measured so that the two edges go clockwise around
// it: π - e1.Angle() + e2.Angle(), folded into (-π, π].
//
// e1 must end where e2 starts; any other pair is a caller error.
func AngleBetween(e1, e2 *Edge) (float64, error) {
	if e1.end != e2.Start() {
		return 0, invariantf("AngleBetween", "the end point of the first edge is not the start point of the second edge")
	}
	return angleBetween(e1, e2), nil
}

func angleBetween(e1, e2 *Edge) float64 {
	// Both angles lie in (-π, π], so the raw sum is in (-π, 3π) and one
	// subtraction is enough to land in (-π, π].
	r := math.Pi - e1.angle + e2.angle
	if r > math.Pi {
		r -= 2 * math.Pi
	}
	return r
}

func (e *Edge) forwardHalf() *Edge {
	if e.forward {
		return e
	}
	return e.mirror
}

func (e *Edge) setConstrained(v bool) {
	e.constrained = v
	e.mirror.constrained = v
}

func (e *Edge) setDelaunay(v bool) {
	e.delaunay = v
	e.mirror.delaunay = v
}
