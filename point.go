package refine

// lifeState is the explicit lifecycle tag shared by points, edges and
// triangles. A removed entity may still be referenced by outstanding
// holders, which check IsRemoved before touching its topology.
type lifeState uint8

const (
	stateLive lifeState = iota
	stateRemoved
)

// Point is a mesh vertex: a fixed 2D position plus the outgoing halves of
// every edge incident to it.
//
// A point is reference counted. Every incident edge pair holds one
// reference, and a mesh holds one reference for as long as the point is a
// member. When the count drops to zero the point is tombstoned.
type Point struct {
	pos      Vector2
	edges    []*Edge // outgoing halves: e.Start() == p
	mesh     *Mesh
	refCount int
	state    lifeState

	steiner bool
	segment [2]*Point // input segment a split point lies on
}

// NewPoint creates a free-standing point with a reference count of one,
// owned by the caller. Points that belong to a mesh are created with
// Mesh.NewPoint instead.
func NewPoint(pos Vector2) *Point {
	return &Point{pos: pos, refCount: 1}
}

// Position returns the coordinate of the point.
func (p *Point) Position() Vector2 { return p.pos }

// Mesh returns the mesh the point belongs to, or nil.
func (p *Point) Mesh() *Mesh { return p.mesh }

// Degree returns the number of edges incident to the point.
func (p *Point) Degree() int { return len(p.edges) }

// Edges returns the outgoing halves of all edges incident to the point.
// The returned slice is a copy.
func (p *Point) Edges() []*Edge {
	out := make([]*Edge, len(p.edges))
	copy(out, p.edges)
	return out
}

// EdgeTo returns the outgoing edge from p to q, or nil if the two points
// are not connected.
func (p *Point) EdgeTo(q *Point) *Edge {
	for _, e := range p.edges {
		if e.end == q {
			return e
		}
	}
	return nil
}

// Ref increments the reference count and returns p.
func (p *Point) Ref() *Point {
	p.refCount++
	return p
}

// Unref drops one reference. The point is tombstoned when the last
// reference goes away. Dropping a reference that was never taken panics
// with an *InvariantError.
func (p *Point) Unref() {
	p.refCount--
	if p.refCount < 0 {
		mustInvariant("Point.Unref", "reference count of point %v dropped below zero", p.pos)
	}
	if p.refCount == 0 {
		p.state = stateRemoved
		p.mesh = nil
	}
}

// RefCount returns the current reference count.
func (p *Point) RefCount() int { return p.refCount }

// IsSteiner reports whether the point was created by SplitEdge or
// InsertPoint rather than supplied by the caller.
func (p *Point) IsSteiner() bool { return p.steiner }

// IsRemoved reports whether the point has been destroyed.
func (p *Point) IsRemoved() bool { return p.state == stateRemoved }

func (p *Point) insertEdge(e *Edge) {
	p.edges = append(p.edges, e)
}

func (p *Point) removeEdge(e *Edge) {
	for i, x := range p.edges {
		if x == e {
			last := len(p.edges) - 1
			p.edges[i] = p.edges[last]
			p.edges[last] = nil
			p.edges = p.edges[:last]
			return
		}
	}
	mustInvariant("Point.removeEdge", "edge is not incident to point %v", p.pos)
}
