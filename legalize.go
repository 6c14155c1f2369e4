package refine

// LegalizeAround restores the local Delaunay property around a freshly
// inserted point p. Every edge opposite p in its star is tested against the
// empty-circumcircle condition; illegal edges are flipped and the two edges
// exposed by each flip are tested in turn. Constrained and boundary edges
// are never flipped. It returns the number of flips performed.
func (m *Mesh) LegalizeAround(p *Point) (int, error) {
	if err := m.checkMember("Mesh.LegalizeAround", p); err != nil {
		return 0, err
	}

	var stack []*Edge
	for _, e := range p.edges {
		if e.tri != nil {
			stack = append(stack, e.tri.OppositeEdge(p))
		}
	}

	flips := 0
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Earlier flips may have replaced the triangle this edge was
		// queued for.
		if e.IsRemoved() || e.tri == nil || e.tri.Opposite(e) != p {
			continue
		}
		if !m.needsFlip(e) {
			if !e.constrained && !e.IsBoundary() {
				e.setDelaunay(true)
			}
			continue
		}

		a, b := e.Start(), e.end
		q := e.mirror.tri.Opposite(e.mirror)
		xy, err := m.FlipEdge(e)
		if err != nil {
			return flips, err
		}
		// The other diagonal of a quadrilateral with an illegal diagonal is
		// legal.
		xy.setDelaunay(true)
		flips++
		stack = append(stack, a.EdgeTo(q), q.EdgeTo(b))
	}
	return flips, nil
}

// LegalizeAll runs Lawson's flip algorithm over the whole mesh until every
// unconstrained interior edge is locally Delaunay. Applied to a valid
// constrained triangulation it yields the constrained Delaunay
// triangulation of the same input. It returns the number of flips.
func (m *Mesh) LegalizeAll() (int, error) {
	const op = "Mesh.LegalizeAll"

	stack := m.edges.snapshot()
	n := len(stack)
	// Lawson's algorithm performs O(n²) flips; anything beyond that means
	// the predicates are cycling on near-cocircular input.
	limit := n*n + 16

	flips := 0
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.IsRemoved() {
			continue
		}
		if !m.needsFlip(e) {
			if !e.constrained && !e.IsBoundary() {
				e.setDelaunay(true)
			}
			continue
		}
		if flips >= limit {
			return flips, invariantf(op, "no convergence after %d flips", flips)
		}

		a, b := e.Start(), e.end
		x := e.tri.Opposite(e)
		y := e.mirror.tri.Opposite(e.mirror)
		xy, err := m.FlipEdge(e)
		if err != nil {
			return flips, err
		}
		xy.setDelaunay(true)
		flips++
		stack = append(stack, a.EdgeTo(x), x.EdgeTo(b), b.EdgeTo(y), y.EdgeTo(a))
	}
	return flips, nil
}

// needsFlip reports whether e is an unconstrained interior edge whose
// opposite vertex lies strictly inside the circumcircle of e's triangle and
// whose quadrilateral can be re-diagonalized.
func (m *Mesh) needsFlip(e *Edge) bool {
	if e.constrained || e.tri == nil || e.mirror.tri == nil {
		return false
	}
	q := e.mirror.tri.Opposite(e.mirror)
	if !e.tri.CircumcircleContains(q.pos) {
		return false
	}
	return m.flippable(e.Start(), e.end, e.tri.Opposite(e), q)
}
