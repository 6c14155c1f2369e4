package refine

import "math"

// Sharp input corners. Every triangle inside a corner narrower than the
// angle bound keeps an angle no larger than the corner, so splitting for it
// only moves the problem closer to the apex. Segments leaving a sharp
// corner are split on concentric shells around the apex, and triangles the
// corner forces are left as they are.

const (
	// shellAngle is the widest corner whose segments are split on
	// concentric shells.
	shellAngle = math.Pi / 2
	// clusterAngle is the widest corner treated as a small input angle.
	clusterAngle = math.Pi / 3
	// shellSlack is the relative tolerance for two points lying on the
	// same shell.
	shellSlack = 1e-3
)

// isSegment reports whether e bounds the domain: a constrained edge or a
// hull edge.
func isSegment(e *Edge) bool {
	return e.constrained || e.tri == nil || e.mirror.tri == nil
}

// cornerAngle returns the smallest angle between the outgoing segment s and
// any other segment leaving s.Start().
func cornerAngle(s *Edge) float64 {
	best := math.Inf(1)
	for _, e := range s.Start().edges {
		if e == s || !isSegment(e) {
			continue
		}
		best = min(best, math.Abs(math.Remainder(e.angle-s.angle, 2*math.Pi)))
	}
	return best
}

// apexOf returns the endpoint of segment s at which s meets another segment
// at less than limit. It returns nil when neither or both endpoints qualify.
// Steiner points are never apexes.
func apexOf(s *Edge, limit float64) *Point {
	var apex *Point
	for _, h := range [2]*Edge{s, s.mirror} {
		a := h.Start()
		if a.steiner || cornerAngle(h) >= limit-angleSlack {
			continue
		}
		if apex != nil {
			return nil
		}
		apex = a
	}
	return apex
}

// splitPoint returns where segment s is split: at the midpoint, or, when one
// end is a sharp corner, at the power of two distance from that corner
// closest to the midpoint.
func splitPoint(s *Edge) Vector2 {
	apex := apexOf(s, shellAngle)
	if apex == nil {
		return s.Midpoint()
	}
	far := s.end
	if far == apex {
		far = s.Start()
	}
	l := far.pos.Sub(apex.pos).Length()
	shell := math.Exp2(math.Round(math.Log2(l / 2)))
	return apex.pos.Lerp(far.pos, shell/l)
}

// shortestSegment returns the length of the shortest segment at p.
func shortestSegment(p *Point) float64 {
	best := math.Inf(1)
	for _, e := range p.edges {
		if isSegment(e) {
			best = min(best, e.Length())
		}
	}
	return best
}

// wedgeAngle returns the angle at vertex i of t between the nearest segments
// on either side, or 2π when the vertex is not enclosed by segments.
func wedgeAngle(t *Triangle, i int) float64 {
	v := t.Vertex(i)
	sum := t.angles[i]
	limit := v.Degree() + 1

	// Clockwise, across the edge leaving v.
	for e, n := t.edges[i], 0; !isSegment(e); n++ {
		nt := e.mirror.tri
		if nt == t || n > limit {
			return 2 * math.Pi
		}
		k := (nt.EdgeIndex(e.mirror) + 1) % 3
		sum += nt.angles[k]
		e = nt.edges[k]
	}
	// Counter-clockwise, across the edge entering v.
	for e, n := t.edges[(i+2)%3], 0; !isSegment(e); n++ {
		nt := e.mirror.tri
		if n > limit {
			return 2 * math.Pi
		}
		k := nt.EdgeIndex(e.mirror)
		sum += nt.angles[k]
		e = nt.edges[(k+2)%3]
	}
	return sum
}

// forcedByCorner reports whether the smallest angle of t is due to a sharp
// input corner: the angle lies in a wedge narrower than clusterAngle at an
// input vertex, or the opposite edge joins two segments of one corner at
// equal distance from its apex.
func forcedByCorner(t *Triangle) bool {
	i := 0
	for j := 1; j < 3; j++ {
		if t.angles[j] < t.angles[i] {
			i = j
		}
	}
	if !t.Vertex(i).steiner && wedgeAngle(t, i) < clusterAngle {
		return true
	}
	return spansCorner(t.Vertex(i+1), t.Vertex(i+2))
}

// spansCorner reports whether p and q lie on two different input segments
// that meet at a sharp corner, at the same distance from its apex.
func spansCorner(p, q *Point) bool {
	sp, sq := p.segment, q.segment
	if sp[0] == nil || sq[0] == nil || sameSegment(sp, sq) {
		return false
	}
	var apex *Point
	for _, a := range sp {
		if a == sq[0] || a == sq[1] {
			apex = a
		}
	}
	if apex == nil {
		return false
	}
	vp, vq := p.pos.Sub(apex.pos), q.pos.Sub(apex.pos)
	if math.Abs(math.Remainder(vp.Atan2()-vq.Atan2(), 2*math.Pi)) >= clusterAngle {
		return false
	}
	dp, dq := vp.Length(), vq.Length()
	return math.Abs(dp-dq) <= shellSlack*max(dp, dq)
}

func sameSegment(a, b [2]*Point) bool {
	return a == b || (a[0] == b[1] && a[1] == b[0])
}

// splitPermitted reports whether segment s may be split on behalf of the bad
// triangle t. A segment leaving a sharp corner is split only for triangles
// at least as large as the shortest segment at the apex. Triangles that are
// too big are always served.
func (r *Refiner) splitPermitted(s *Edge, t *Triangle) bool {
	if r.opts.tooBig(t) {
		return true
	}
	apex := apexOf(s, clusterAngle)
	if apex == nil {
		return true
	}
	return t.Circumcircle().Radius >= shortestSegment(apex)
}
