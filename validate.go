package refine

import "errors"

// Validate checks the structural invariants of the mesh and returns every
// violation found, joined into one error. A nil result means:
//   - every edge half's mirror points back to it and the halves differ in
//     their end points;
//   - every live triangle is a closed counter-clockwise loop whose edges
//     record it as their left triangle;
//   - no live entity refers to a removed one;
//   - reference counts cover every incident edge.
func (m *Mesh) Validate() error {
	const op = "Mesh.Validate"
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, invariantf(op, format, args...))
	}

	for _, p := range m.points.items {
		if p.IsRemoved() || p.mesh != m {
			fail("point %v is registered but not live", p.pos)
			continue
		}
		if p.refCount < 1+len(p.edges) {
			fail("point %v has %d references for %d edges", p.pos, p.refCount, len(p.edges))
		}
		for _, e := range p.edges {
			if e.Start() != p {
				fail("edge registered on %v starts at %v", p.pos, e.Start().pos)
			}
			if e.IsRemoved() {
				fail("point %v keeps a removed edge", p.pos)
			}
		}
	}

	for _, e := range m.edges.items {
		if e.IsRemoved() {
			fail("edge %v -> %v is registered but removed", e.Start().pos, e.end.pos)
			continue
		}
		if !e.forward {
			fail("edge %v -> %v is registered through its reverse half", e.Start().pos, e.end.pos)
		}
		if e.mirror.mirror != e {
			fail("edge %v -> %v: mirror is not symmetric", e.Start().pos, e.end.pos)
		}
		if e.mirror.end == e.end {
			fail("edge %v -> %v: both halves end at the same point", e.Start().pos, e.end.pos)
		}
		if e.constrained != e.mirror.constrained {
			fail("edge %v -> %v: halves disagree on the constrained flag", e.Start().pos, e.end.pos)
		}
		for _, h := range [2]*Edge{e, e.mirror} {
			if !m.points.contains(h.end) {
				fail("edge %v -> %v ends outside the mesh", h.Start().pos, h.end.pos)
			}
			if h.tri != nil && (h.tri.IsRemoved() || h.tri.EdgeIndex(h) < 0 || h.tri.edges[h.tri.EdgeIndex(h)] != h) {
				fail("edge %v -> %v refers to a triangle that does not own it", h.Start().pos, h.end.pos)
			}
		}
	}

	for _, t := range m.triangles.items {
		if t.IsRemoved() {
			fail("triangle %d is registered but removed", t.seq)
			continue
		}
		for i, e := range t.edges {
			if e.IsRemoved() {
				fail("triangle %d uses a removed edge", t.seq)
			}
			if e.end != t.edges[(i+1)%3].Start() {
				fail("triangle %d: edges do not form a closed loop", t.seq)
			}
			if e.tri != t {
				fail("triangle %d: edge %d does not record the triangle", t.seq, i)
			}
		}
		if Orient(t.Vertex(0).pos, t.Vertex(1).pos, t.Vertex(2).pos) <= 0 {
			fail("triangle %d is not counter-clockwise", t.seq)
		}
	}

	return errors.Join(errs...)
}

// NonDelaunayEdges returns the forward half of every unconstrained interior
// edge whose neighbouring apex lies strictly inside the circumcircle of the
// triangle on the other side.
func (m *Mesh) NonDelaunayEdges() []*Edge {
	var out []*Edge
	for _, e := range m.edges.items {
		if e.constrained || e.tri == nil || e.mirror.tri == nil {
			continue
		}
		if e.tri.CircumcircleContains(e.mirror.tri.Opposite(e.mirror).pos) ||
			e.mirror.tri.CircumcircleContains(e.tri.Opposite(e).pos) {
			out = append(out, e)
		}
	}
	return out
}
