package refine

import (
	"fmt"
	"math"
)

// Observer receives structural edit notifications from a Mesh.
//
// Removal callbacks fire exactly once per physical removal. An edge pair is
// reported once, through its forward half; use Edge.Mirror for the other
// view. Callbacks run synchronously inside the editing call and must not
// edit the mesh themselves.
type Observer interface {
	PointAdded(*Point)
	PointRemoved(*Point)
	EdgeAdded(*Edge)
	EdgeRemoved(*Edge)
	TriangleAdded(*Triangle)
	TriangleRemoved(*Triangle)
}

// NopObserver implements Observer with no-op methods. Embed it to
// implement only the callbacks you need.
type NopObserver struct{}

func (NopObserver) PointAdded(*Point)         {}
func (NopObserver) PointRemoved(*Point)       {}
func (NopObserver) EdgeAdded(*Edge)           {}
func (NopObserver) EdgeRemoved(*Edge)         {}
func (NopObserver) TriangleAdded(*Triangle)   {}
func (NopObserver) TriangleRemoved(*Triangle) {}

// noCopy may be embedded into structs which must not be copied after
// first use. go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// MeshOption configures a Mesh during creation.
type MeshOption func(*Mesh)

// WithTolerance sets the relative tolerance used by the mesh's geometric
// predicates (degenerate triangle rejection, in-circle tests).
func WithTolerance(eps float64) MeshOption {
	return func(m *Mesh) {
		if eps >= 0 {
			m.tolerance = eps
		}
	}
}

// Mesh owns a population of points, edges and triangles and is the only
// place structural edits happen. A Mesh must be used through its pointer;
// all edits go through mesh operations so that reference counts,
// tombstones and observer notifications stay consistent.
//
// Mesh is not safe for concurrent use.
type Mesh struct {
	noCopy noCopy

	points    orderedSet[*Point]
	edges     orderedSet[*Edge] // forward halves only
	triangles orderedSet[*Triangle]
	observers []Observer
	tolerance float64
	triSeq    uint64
}

// NewMesh creates an empty mesh.
func NewMesh(opts ...MeshOption) *Mesh {
	m := &Mesh{
		points:    newOrderedSet[*Point](),
		edges:     newOrderedSet[*Edge](),
		triangles: newOrderedSet[*Triangle](),
		tolerance: DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tolerance returns the relative tolerance of the mesh predicates.
func (m *Mesh) Tolerance() float64 { return m.tolerance }

// AddObserver attaches an observer to the mesh.
func (m *Mesh) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

// RemoveObserver detaches a previously attached observer.
func (m *Mesh) RemoveObserver(o Observer) {
	for i, x := range m.observers {
		if x == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// NewPoint adds a point to the mesh. The mesh holds the point's only
// reference.
func (m *Mesh) NewPoint(pos Vector2) *Point {
	p := &Point{pos: pos, mesh: m, refCount: 1}
	m.points.add(p)
	for _, o := range m.observers {
		o.PointAdded(p)
	}
	return p
}

// NewEdge connects two points of the mesh. The returned forward half's
// single reference is owned by the mesh. Connecting two points that are
// already connected is an invariant violation.
func (m *Mesh) NewEdge(start, end *Point, constrained bool) (*Edge, error) {
	const op = "Mesh.NewEdge"
	if err := m.checkMember(op, start); err != nil {
		return nil, err
	}
	if err := m.checkMember(op, end); err != nil {
		return nil, err
	}
	if start.EdgeTo(end) != nil {
		return nil, invariantf(op, "points %v and %v are already connected", start.pos, end.pos)
	}

	e, err := NewEdge(start, end, constrained)
	if err != nil {
		return nil, err
	}
	e.mesh, e.mirror.mesh = m, m
	m.edges.add(e)
	for _, o := range m.observers {
		o.EdgeAdded(e)
	}
	return e, nil
}

// EdgeBetween returns the edge from a to b, or nil.
func (m *Mesh) EdgeBetween(a, b *Point) *Edge {
	if a == nil || b == nil {
		return nil
	}
	return a.EdgeTo(b)
}

// NewTriangle creates a triangle from three mesh edges forming a closed
// loop (see NewTriangle).
func (m *Mesh) NewTriangle(e1, e2, e3 *Edge) (*Triangle, error) {
	for _, e := range [3]*Edge{e1, e2, e3} {
		if e != nil && e.mesh != m {
			return nil, invariantf("Mesh.NewTriangle", "edge does not belong to this mesh")
		}
	}
	t, err := newTriangle(e1, e2, e3, m.tolerance)
	if err != nil {
		return nil, err
	}
	t.mesh = m
	t.seq = m.triSeq
	m.triSeq++
	m.triangles.add(t)
	for _, o := range m.observers {
		o.TriangleAdded(t)
	}
	return t, nil
}

// NewTriangleFromPoints creates the triangle abc from the existing edges
// connecting the three points.
func (m *Mesh) NewTriangleFromPoints(a, b, c *Point) (*Triangle, error) {
	ab, bc, ca := m.EdgeBetween(a, b), m.EdgeBetween(b, c), m.EdgeBetween(c, a)
	if ab == nil || bc == nil || ca == nil {
		return nil, invariantf("Mesh.NewTriangleFromPoints", "points %v %v %v are not pairwise connected", posOf(a), posOf(b), posOf(c))
	}
	return m.NewTriangle(ab, bc, ca)
}

// RemovePoint removes every edge incident to p, then drops the mesh's
// reference to it.
func (m *Mesh) RemovePoint(p *Point) {
	if !m.points.contains(p) {
		return
	}
	for len(p.edges) > 0 {
		p.edges[len(p.edges)-1].Remove()
	}
	m.points.remove(p)
	for _, o := range m.observers {
		o.PointRemoved(p)
	}
	p.Unref()
}

// RemoveEdge removes an edge pair and the triangles it bounds.
func (m *Mesh) RemoveEdge(e *Edge) { e.Remove() }

// RemoveTriangle removes a triangle, keeping its edges.
func (m *Mesh) RemoveTriangle(t *Triangle) { t.Remove() }

// Points returns the live points in iteration order.
func (m *Mesh) Points() []*Point { return m.points.snapshot() }

// Edges returns the forward half of every live edge pair.
func (m *Mesh) Edges() []*Edge { return m.edges.snapshot() }

// Triangles returns the live triangles.
func (m *Mesh) Triangles() []*Triangle { return m.triangles.snapshot() }

// PointCount returns the number of live points.
func (m *Mesh) PointCount() int { return m.points.len() }

// EdgeCount returns the number of live undirected edges.
func (m *Mesh) EdgeCount() int { return m.edges.len() }

// TriangleCount returns the number of live triangles.
func (m *Mesh) TriangleCount() int { return m.triangles.len() }

// Bounds returns the axis-aligned bounding box of the live points.
// An empty mesh yields an empty box at the origin.
func (m *Mesh) Bounds() (lo, hi Vector2) {
	if m.points.len() == 0 {
		return Vector2{}, Vector2{}
	}
	lo = Vector2{X: math.Inf(1), Y: math.Inf(1)}
	hi = Vector2{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range m.points.items {
		lo.X = math.Min(lo.X, p.pos.X)
		lo.Y = math.Min(lo.Y, p.pos.Y)
		hi.X = math.Max(hi.X, p.pos.X)
		hi.Y = math.Max(hi.Y, p.pos.Y)
	}
	return lo, hi
}

// String returns a short population summary.
func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh{points: %d, edges: %d, triangles: %d}",
		m.PointCount(), m.EdgeCount(), m.TriangleCount())
}

func (m *Mesh) edgeRemoved(e *Edge) {
	if !m.edges.remove(e) {
		return
	}
	for _, o := range m.observers {
		o.EdgeRemoved(e)
	}
	// Drop the reference the mesh took in NewEdge.
	e.Unref()
}

func (m *Mesh) triangleRemoved(t *Triangle) {
	if !m.triangles.remove(t) {
		return
	}
	for _, o := range m.observers {
		o.TriangleRemoved(t)
	}
}

func (m *Mesh) checkMember(op string, p *Point) error {
	if p == nil {
		return invariantf(op, "nil point")
	}
	if p.IsRemoved() || p.mesh != m {
		return invariantf(op, "point %v does not belong to this mesh", p.pos)
	}
	return nil
}

func posOf(p *Point) any {
	if p == nil {
		return "<nil>"
	}
	return p.pos
}
