package refine

// Structural edits used by legalization and refinement. Each edit checks
// its preconditions before tearing down the affected triangles, then
// rebuilds the local star.

// SplitEdge inserts a new point at `at` on edge e, replacing e with two
// sub-edges that inherit its constrained flag and re-triangulating the
// triangles on both sides (one side for boundary edges). It returns the new
// point.
//
// `at` must lie on (or numerically next to) the edge and must not coincide
// with any vertex of the surrounding triangles.
func (m *Mesh) SplitEdge(e *Edge, at Vector2) (*Point, error) {
	const op = "Mesh.SplitEdge"
	if e == nil || e.IsRemoved() || e.mesh != m {
		return nil, invariantf(op, "edge is not a live edge of this mesh")
	}
	if !at.IsFinite() {
		return nil, invariantf(op, "split position %v is not finite", at)
	}

	a, b := e.Start(), e.end
	var x, y *Point
	if e.tri != nil {
		x = e.tri.Opposite(e)
	}
	if e.mirror.tri != nil {
		y = e.mirror.tri.Opposite(e.mirror)
	}
	if err := m.checkClear(op, at, e.LengthSquared(), a, b, x, y); err != nil {
		return nil, err
	}

	constrained := e.constrained
	e.Remove()

	p := m.NewPoint(at)
	p.steiner = true
	if constrained || x == nil || y == nil {
		p.segment = segmentOf(a, b)
	}
	if _, err := m.NewEdge(a, p, constrained); err != nil {
		return nil, err
	}
	if _, err := m.NewEdge(p, b, constrained); err != nil {
		return nil, err
	}
	if x != nil {
		if err := m.fan(p, x, [2][3]*Point{{a, p, x}, {p, b, x}}); err != nil {
			return nil, err
		}
	}
	if y != nil {
		if err := m.fan(p, y, [2][3]*Point{{b, p, y}, {p, a, y}}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FlipEdge replaces the unconstrained interior edge e with the other
// diagonal of the quadrilateral formed by its two triangles. The
// quadrilateral must be strictly convex. It returns the new edge, running
// from e's left apex to its right apex.
func (m *Mesh) FlipEdge(e *Edge) (*Edge, error) {
	const op = "Mesh.FlipEdge"
	if e == nil || e.IsRemoved() || e.mesh != m {
		return nil, invariantf(op, "edge is not a live edge of this mesh")
	}
	if e.constrained {
		return nil, invariantf(op, "constrained edges cannot be flipped")
	}
	if e.tri == nil || e.mirror.tri == nil {
		return nil, invariantf(op, "boundary edges cannot be flipped")
	}

	a, b := e.Start(), e.end
	x := e.tri.Opposite(e)
	y := e.mirror.tri.Opposite(e.mirror)
	if !m.flippable(a, b, x, y) {
		return nil, invariantf(op, "quadrilateral around edge %v -> %v is not convex", a.pos, b.pos)
	}
	if x.EdgeTo(y) != nil {
		return nil, invariantf(op, "apexes %v and %v are already connected", x.pos, y.pos)
	}

	e.Remove()

	xy, err := m.NewEdge(x, y, false)
	if err != nil {
		return nil, err
	}
	if _, err := m.NewTriangleFromPoints(a, y, x); err != nil {
		return nil, err
	}
	if _, err := m.NewTriangleFromPoints(y, b, x); err != nil {
		return nil, err
	}
	return xy, nil
}

// InsertPoint inserts a new point at `at` inside triangle t. A point in the
// interior splits t into three triangles; a point on one of t's edges
// splits that edge (and the triangle across it) instead.
func (m *Mesh) InsertPoint(t *Triangle, at Vector2) (*Point, error) {
	const op = "Mesh.InsertPoint"
	if t == nil || t.IsRemoved() || t.mesh != m {
		return nil, invariantf(op, "triangle is not a live triangle of this mesh")
	}
	if !at.IsFinite() {
		return nil, invariantf(op, "insert position %v is not finite", at)
	}
	if !t.Contains(at) {
		return nil, invariantf(op, "point %v lies outside the triangle", at)
	}

	a, b, c := t.Vertex(0), t.Vertex(1), t.Vertex(2)
	scale := maxf(a.pos.DistanceSq(b.pos), b.pos.DistanceSq(c.pos), c.pos.DistanceSq(a.pos))
	if err := m.checkClear(op, at, scale, a, b, c); err != nil {
		return nil, err
	}

	for i := 0; i < 3; i++ {
		e := t.edges[i]
		if OrientDirection(e.Start().pos, e.end.pos, at, m.tolerance) == Indeterminate {
			return m.SplitEdge(e, at)
		}
	}

	t.Remove()
	p := m.NewPoint(at)
	p.steiner = true
	for _, v := range [3]*Point{a, b, c} {
		if _, err := m.NewEdge(p, v, false); err != nil {
			return nil, err
		}
	}
	for _, tri := range [3][3]*Point{{a, b, p}, {b, c, p}, {c, a, p}} {
		if _, err := m.NewTriangleFromPoints(tri[0], tri[1], tri[2]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// segmentOf returns the endpoints of the input segment that the boundary
// edge ab is part of.
func segmentOf(a, b *Point) [2]*Point {
	switch {
	case a.segment[0] != nil:
		return a.segment
	case b.segment[0] != nil:
		return b.segment
	}
	return [2]*Point{a, b}
}

// fan connects the new point p to apex and builds the two triangles that
// share that spoke.
func (m *Mesh) fan(p, apex *Point, tris [2][3]*Point) error {
	if _, err := m.NewEdge(p, apex, false); err != nil {
		return err
	}
	for _, tri := range tris {
		if _, err := m.NewTriangleFromPoints(tri[0], tri[1], tri[2]); err != nil {
			return err
		}
	}
	return nil
}

// flippable reports whether the quadrilateral a, y, b, x (edge ab with left
// apex x and right apex y) is strictly convex, i.e. a and b lie on opposite
// sides of the line through x and y.
func (m *Mesh) flippable(a, b, x, y *Point) bool {
	da := OrientDirection(x.pos, y.pos, a.pos, m.tolerance)
	db := OrientDirection(x.pos, y.pos, b.pos, m.tolerance)
	return da != Indeterminate && db != Indeterminate && da != db
}

// checkClear rejects positions that coincide with one of the given
// vertices, relative to the squared length scale of the local feature.
func (m *Mesh) checkClear(op string, at Vector2, scale float64, pts ...*Point) error {
	limit := m.tolerance * scale
	for _, p := range pts {
		if p == nil {
			continue
		}
		if at.DistanceSq(p.pos) <= limit {
			return invariantf(op, "point %v coincides with existing point %v", at, p.pos)
		}
	}
	return nil
}

func maxf(v float64, rest ...float64) float64 {
	for _, x := range rest {
		if x > v {
			v = x
		}
	}
	return v
}
