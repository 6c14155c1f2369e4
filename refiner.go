package refine

import (
	"container/heap"
	"fmt"
	"log/slog"
)

// Termination tells why Refine returned.
type Termination uint8

const (
	// Converged means no encroached segment and no bad triangle remain,
	// apart from triangles forced by input corners narrower than 60°.
	Converged Termination = iota
	// BudgetExhausted means violations remain but maxSteps insertions
	// were performed.
	BudgetExhausted
	// Aborted means an insertion failed; Refine returned the error.
	Aborted
)

// String returns the name of the termination reason.
func (t Termination) String() string {
	switch t {
	case Converged:
		return "Converged"
	case BudgetExhausted:
		return "BudgetExhausted"
	case Aborted:
		return "Aborted"
	default:
		return fmt.Sprintf("Termination(%d)", t)
	}
}

// Result summarizes a Refine call.
type Result struct {
	Steps      int // insert operations performed
	Splits     int // of which segment or edge midpoint splits
	Insertions int // of which circumcenter insertions
	Flips      int // edge flips performed while re-legalizing
	Reason     Termination
}

// angleSlack absorbs rounding in the minimum angle of triangles that sit
// exactly on the bound (e.g. the 30-60-90 triangles produced by splitting).
const angleSlack = 1e-9

// Refiner improves the quality of a constrained Delaunay mesh by inserting
// Steiner points (Ruppert's algorithm). Encroached segments are split at
// their midpoints; triangles with a too small angle, or rejected by the
// TooBigFunc, receive a point at their circumcenter.
//
// Segments leaving an input corner sharper than 90° are split on concentric
// shells around the corner instead of at their midpoints. Triangles whose
// small angle is forced by an input corner sharper than 60° are not
// refined for their angle, so refinement terminates on such inputs.
//
// The mesh must be a constrained Delaunay triangulation when Refine is
// called (see Import and WithLegalization). A Refiner holds no state
// between Refine calls and is not safe for concurrent use.
type Refiner struct {
	mesh *Mesh
	opts options
	log  *slog.Logger

	bad      badQueue
	segments orderedSet[*Edge]
}

// NewRefiner creates a refiner for m.
func NewRefiner(m *Mesh, opts ...Option) *Refiner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return &Refiner{mesh: m, opts: o, log: o.logger}
}

// violation is the single worst defect found by a scan, together with the
// planned fix: split segment, or insert center into host.
type violation struct {
	cause    string
	triangle *Triangle // nil for an encroached segment
	segment  *Edge
	host     *Triangle
	center   Vector2
}

// Refine runs at most maxSteps insert operations and returns why it
// stopped. maxSteps == 0 only scans: the mesh is left untouched.
//
// An error matching ErrInvariant aborts refinement; it signals degenerate
// geometry (a Steiner point coinciding with an existing point) or a mesh
// that is not a valid triangulation. Edits made before the failure remain.
func (r *Refiner) Refine(maxSteps int) (Result, error) {
	if maxSteps < 0 {
		return Result{Reason: Aborted}, invariantf("Refiner.Refine", "negative step budget %d", maxSteps)
	}

	tr := &tracker{r: r}
	r.seed()
	r.mesh.AddObserver(tr)
	defer func() {
		r.mesh.RemoveObserver(tr)
		r.bad = nil
		r.segments = orderedSet[*Edge]{}
	}()

	var res Result
	for {
		v, ok, err := r.scan()
		if err != nil {
			res.Reason = Aborted
			r.log.Error("refinement aborted", "step", res.Steps, "err", err)
			return res, err
		}
		if !ok {
			res.Reason = Converged
			break
		}
		if res.Steps >= maxSteps {
			res.Reason = BudgetExhausted
			break
		}
		if err := r.fix(v, &res); err != nil {
			res.Reason = Aborted
			r.log.Error("refinement aborted", "step", res.Steps, "err", err)
			return res, err
		}
		res.Steps++
	}

	if res.Reason == BudgetExhausted && maxSteps > 0 {
		r.log.Warn("refinement stopped by step budget",
			"max_steps", maxSteps,
			"bad_triangles", r.bad.Len())
	}
	r.log.Info("refinement finished",
		"reason", res.Reason,
		"steps", res.Steps,
		"splits", res.Splits,
		"insertions", res.Insertions,
		"flips", res.Flips,
		"triangles", r.mesh.TriangleCount())
	return res, nil
}

// seed fills the queues from the current mesh.
func (r *Refiner) seed() {
	r.bad = r.bad[:0]
	r.segments = newOrderedSet[*Edge]()
	for _, e := range r.mesh.edges.items {
		if e.constrained {
			r.segments.add(e)
		}
	}
	for _, t := range r.mesh.triangles.items {
		r.consider(t)
	}
	heap.Init(&r.bad)
}

func (r *Refiner) isBad(t *Triangle) bool {
	return t.MinAngle() < r.opts.angleBound-angleSlack || r.opts.tooBig(t)
}

func (r *Refiner) consider(t *Triangle) {
	if r.isBad(t) {
		r.bad = append(r.bad, badEntry{t: t, minAngle: t.MinAngle(), seq: t.seq})
	}
}

// scan finds the worst violation and plans its fix without editing the
// mesh. Encroached segments take precedence over bad triangles, longest
// segment first; triangles are ordered by minimum angle, then by creation
// order. Triangles forced by a sharp corner, and those whose fix would split
// a corner segment that is not permitted to split, are dropped.
func (r *Refiner) scan() (violation, bool, error) {
	if s := r.worstEncroached(); s != nil {
		return violation{cause: "splitting encroached segment", segment: s}, true, nil
	}
	for r.bad.Len() > 0 {
		t := r.bad[0].t
		if t.IsRemoved() {
			heap.Pop(&r.bad)
			continue
		}
		if !r.opts.tooBig(t) && forcedByCorner(t) {
			r.log.Debug("keeping triangle at sharp corner", "centroid", t.Centroid(), "min_angle", t.MinAngle())
			heap.Pop(&r.bad)
			continue
		}
		v, err := r.plan(t)
		if err != nil {
			return violation{}, false, err
		}
		if v.segment != nil && !r.splitPermitted(v.segment, t) {
			r.log.Debug("split refused near sharp corner",
				"a", v.segment.Start().pos, "b", v.segment.end.pos, "radius", t.Circumcircle().Radius)
			heap.Pop(&r.bad)
			continue
		}
		return v, true, nil
	}
	return violation{}, false, nil
}

// plan decides how bad triangle t is fixed. If its circumcenter encroaches
// a segment, that segment is split (Ruppert); otherwise the walk toward
// the circumcenter either finds the triangle holding it or stops at a
// segment, which is split instead.
func (r *Refiner) plan(t *Triangle) (violation, error) {
	c := t.Circumcircle().Center
	if s := r.encroachedBy(c); s != nil {
		return violation{cause: "circumcenter encroaches segment", triangle: t, segment: s, center: c}, nil
	}
	host, blocker, err := r.locate(t, c)
	if err != nil {
		return violation{}, err
	}
	if blocker != nil {
		return violation{cause: "walk blocked, splitting edge", triangle: t, segment: blocker, center: c}, nil
	}
	return violation{cause: "inserting circumcenter", triangle: t, host: host, center: c}, nil
}

// worstEncroached returns the longest encroached segment, or nil.
func (r *Refiner) worstEncroached() *Edge {
	var best *Edge
	bestLen := 0.0
	for _, s := range r.segments.items {
		if !r.encroachedByApex(s) {
			continue
		}
		if l := s.LengthSquared(); best == nil || l > bestLen {
			best, bestLen = s, l
		}
	}
	return best
}

// encroachedByApex reports whether the apex of a triangle on either side of
// segment s lies strictly inside its diametral circle. In a constrained
// Delaunay triangulation any vertex that sees s from inside the circle
// implies such an apex.
func (r *Refiner) encroachedByApex(s *Edge) bool {
	c := s.DiametralCircle()
	for _, h := range [2]*Edge{s, s.mirror} {
		if h.tri != nil && c.ContainsStrict(h.tri.Opposite(h).pos, r.opts.epsilon) {
			return true
		}
	}
	return false
}

// encroachedBy returns the longest segment whose diametral circle strictly
// contains p, or nil.
func (r *Refiner) encroachedBy(p Vector2) *Edge {
	var best *Edge
	bestLen := 0.0
	for _, s := range r.segments.items {
		if !s.DiametralCircle().ContainsStrict(p, r.opts.epsilon) {
			continue
		}
		if l := s.LengthSquared(); best == nil || l > bestLen {
			best, bestLen = s, l
		}
	}
	return best
}

// fix performs the insert and re-legalize phases for one violation.
func (r *Refiner) fix(v violation, res *Result) error {
	if v.segment != nil {
		r.log.Debug(v.cause,
			"step", res.Steps, "center", v.center, "a", v.segment.Start().pos, "b", v.segment.end.pos)
		return r.split(v.segment, res)
	}

	t := v.triangle
	r.log.Debug(v.cause,
		"step", res.Steps, "center", v.center, "min_angle", t.MinAngle(), "area", t.Area())
	p, err := r.mesh.InsertPoint(v.host, v.center)
	if err != nil {
		return err
	}
	res.Insertions++
	return r.legalize(p, res)
}

func (r *Refiner) split(e *Edge, res *Result) error {
	p, err := r.mesh.SplitEdge(e, splitPoint(e))
	if err != nil {
		return err
	}
	res.Splits++
	return r.legalize(p, res)
}

func (r *Refiner) legalize(p *Point, res *Result) error {
	n, err := r.mesh.LegalizeAround(p)
	res.Flips += n
	return err
}

// locate walks from t toward target along the segment from t's centroid.
// It returns the triangle containing target, or the constrained or
// boundary edge that blocks the walk.
func (r *Refiner) locate(t *Triangle, target Vector2) (*Triangle, *Edge, error) {
	eps := r.mesh.tolerance
	from := t.Centroid()
	for rangeIdx, rangeEnd := 0, r.mesh.TriangleCount()+1; rangeIdx < rangeEnd; rangeIdx++ {
		if t.Contains(target) {
			return t, nil, nil
		}
		exit := r.exitEdge(t, from, target, eps)
		if exit.constrained || exit.mirror.tri == nil {
			return nil, exit, nil
		}
		t = exit.mirror.tri
	}
	return nil, nil, invariantf("Refiner.locate", "walk toward %v did not terminate", target)
}

// exitEdge picks the edge of t through which the walk leaves: one crossed by
// the walk segment if any, else one that has target on its outer side.
// target lies outside t, so such an edge always exists.
func (r *Refiner) exitEdge(t *Triangle, from, target Vector2, eps float64) *Edge {
	var fallback *Edge
	for i := 0; i < 3; i++ {
		e := t.edges[i]
		a, b := e.Start().pos, e.end.pos
		if OrientDirection(a, b, target, eps) != Clockwise {
			continue
		}
		if segmentsCross(from, target, a, b, eps) {
			return e
		}
		if fallback == nil {
			fallback = e
		}
	}
	return fallback
}

// tracker keeps the refiner's queues in sync with mesh edits.
type tracker struct {
	NopObserver
	r *Refiner
}

func (tr *tracker) TriangleAdded(t *Triangle) {
	if tr.r.isBad(t) {
		heap.Push(&tr.r.bad, badEntry{t: t, minAngle: t.MinAngle(), seq: t.seq})
	}
}

func (tr *tracker) EdgeAdded(e *Edge) {
	if e.constrained {
		tr.r.segments.add(e)
	}
}

func (tr *tracker) EdgeRemoved(e *Edge) {
	tr.r.segments.remove(e)
}

// badEntry is a queued bad triangle. Removed triangles stay in the heap
// until they reach the top.
type badEntry struct {
	t        *Triangle
	minAngle float64
	seq      uint64
}

// badQueue is a min-heap of bad triangles: smallest angle first, older
// triangles first on ties.
type badQueue []badEntry

func (q badQueue) Len() int { return len(q) }

func (q badQueue) Less(i, j int) bool {
	if q[i].minAngle != q[j].minAngle {
		return q[i].minAngle < q[j].minAngle
	}
	return q[i].seq < q[j].seq
}

func (q badQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *badQueue) Push(x any) { *q = append(*q, x.(badEntry)) }

func (q *badQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	old[n-1] = badEntry{}
	*q = old[:n-1]
	return x
}
