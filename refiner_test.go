package refine

import (
	"errors"
	"math"
	"testing"
)

func checkAngles(t *testing.T, m *Mesh, bound float64) {
	t.Helper()
	for _, tri := range m.Triangles() {
		if tri.MinAngle() < bound-1e-9 {
			t.Errorf("triangle %v has minimum angle %.4f°, want >= %.4f°",
				tri.Vertices(), tri.MinAngle()*180/math.Pi, bound*180/math.Pi)
		}
	}
}

func checkInside(t *testing.T, m *Mesh, lo, hi Vector2) {
	t.Helper()
	for _, p := range m.Points() {
		v := p.Position()
		if v.X < lo.X || v.Y < lo.Y || v.X > hi.X || v.Y > hi.Y {
			t.Errorf("point %v escaped the domain", v)
		}
	}
}

func TestRefineUnitSquare(t *testing.T) {
	m := mustImport(t, unitSquare())

	res, err := NewRefiner(m, WithAngleBound(math.Pi/6)).Refine(1000)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != Converged {
		t.Fatalf("Reason = %v, want Converged", res.Reason)
	}
	if res.Steps != 0 {
		t.Errorf("Steps = %d, want 0 for an already good mesh", res.Steps)
	}
	checkAngles(t, m, math.Pi/6)
	mustValidate(t, m)
}

func TestRefineSplitsEncroachedSegment(t *testing.T) {
	// Triangle abc with constrained base ab, refined by an inner point d
	// that lies inside the diametral circle of ab.
	m := mustImport(t, Triangulation{
		Points:      []Vector2{V2(0, 0), V2(4, 0), V2(2, 6), V2(2, 0.5)},
		Triangles:   [][3]int{{0, 1, 3}, {1, 2, 3}, {2, 0, 3}},
		Constrained: [][2]int{{0, 1}},
	})

	res, err := NewRefiner(m).Refine(1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 1 || res.Splits != 1 || res.Insertions != 0 {
		t.Errorf("Result = %+v, want one split", res)
	}
	if res.Reason != BudgetExhausted {
		t.Errorf("Reason = %v, want BudgetExhausted", res.Reason)
	}

	a, b := pointAt(m, V2(0, 0)), pointAt(m, V2(4, 0))
	mid := pointAt(m, V2(2, 0))
	if mid == nil {
		t.Fatal("no point at the midpoint of the encroached segment")
	}
	if a.EdgeTo(b) != nil {
		t.Error("encroached segment still present")
	}
	for _, e := range []*Edge{a.EdgeTo(mid), mid.EdgeTo(b)} {
		if e == nil || !e.IsConstrained() {
			t.Error("sub-segment missing or not constrained")
		}
	}
	if bad := m.NonDelaunayEdges(); len(bad) != 0 {
		t.Errorf("%d non-Delaunay interior edges after the split", len(bad))
	}
	checkCounts(t, m, 5, 8, 4)
	mustValidate(t, m)
}

func TestRefineZeroStepsLeavesMeshUntouched(t *testing.T) {
	tr := rectangle(4, 1)
	m := mustImport(t, tr)

	type snapshot struct {
		points    []Vector2
		edges     [][2]Vector2
		triangles [][3]Vector2
	}
	take := func() snapshot {
		var s snapshot
		for _, p := range m.Points() {
			s.points = append(s.points, p.Position())
		}
		for _, e := range m.Edges() {
			s.edges = append(s.edges, [2]Vector2{e.Start().Position(), e.End().Position()})
		}
		for _, tri := range m.Triangles() {
			vs := tri.Vertices()
			s.triangles = append(s.triangles, [3]Vector2{vs[0].Position(), vs[1].Position(), vs[2].Position()})
		}
		return s
	}
	before := take()

	res, err := NewRefiner(m).Refine(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 0 || res.Reason != BudgetExhausted {
		t.Errorf("Result = %+v, want 0 steps, BudgetExhausted", res)
	}

	after := take()
	if len(before.points) != len(after.points) || len(before.edges) != len(after.edges) ||
		len(before.triangles) != len(after.triangles) {
		t.Fatalf("population changed: %v", m)
	}
	for i := range before.points {
		if before.points[i] != after.points[i] {
			t.Errorf("point %d moved from %v to %v", i, before.points[i], after.points[i])
		}
	}
	for i := range before.edges {
		if before.edges[i] != after.edges[i] {
			t.Errorf("edge %d changed from %v to %v", i, before.edges[i], after.edges[i])
		}
	}
	for i := range before.triangles {
		if before.triangles[i] != after.triangles[i] {
			t.Errorf("triangle %d changed from %v to %v", i, before.triangles[i], after.triangles[i])
		}
	}
}

func TestRefineConverges(t *testing.T) {
	tests := []struct {
		name   string
		tr     Triangulation
		opts   []Option
		hi     Vector2
		bound  float64
		maxTri float64
	}{
		{"rectangle", rectangle(4, 1), nil, V2(4, 1), math.Pi / 6, math.Inf(1)},
		{"thin rectangle", rectangle(10, 1), []Option{WithAngleBound(math.Pi / 8)}, V2(10, 1), math.Pi / 8, math.Inf(1)},
		{"square with area limit", unitSquare(), []Option{WithTooBig(MaxArea(0.05))}, V2(1, 1), math.Pi / 6, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustImport(t, tt.tr)
			res, err := NewRefiner(m, tt.opts...).Refine(1000)
			if err != nil {
				t.Fatal(err)
			}
			if res.Reason != Converged {
				t.Fatalf("Reason = %v after %d steps, want Converged", res.Reason, res.Steps)
			}
			if res.Steps != res.Splits+res.Insertions {
				t.Errorf("Steps = %d, want Splits + Insertions = %d", res.Steps, res.Splits+res.Insertions)
			}
			checkAngles(t, m, tt.bound)
			checkInside(t, m, V2(0, 0), tt.hi)
			for _, tri := range m.Triangles() {
				if tri.Area() > tt.maxTri {
					t.Errorf("triangle area %v exceeds %v", tri.Area(), tt.maxTri)
				}
			}
			if bad := m.NonDelaunayEdges(); len(bad) != 0 {
				t.Errorf("%d non-Delaunay interior edges", len(bad))
			}
			mustValidate(t, m)

			// A converged mesh has nothing left to do.
			again, err := NewRefiner(m, tt.opts...).Refine(1000)
			if err != nil || again.Steps != 0 || again.Reason != Converged {
				t.Errorf("second Refine = %+v, %v", again, err)
			}
		})
	}
}

// trapezoid has two 18.4° corners on its long base.
func trapezoid() Triangulation {
	return Triangulation{
		Points:      []Vector2{V2(0, 0), V2(10, 0), V2(7, 1), V2(3, 1)},
		Triangles:   [][3]int{{0, 1, 2}, {0, 2, 3}},
		Constrained: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	}
}

// wedge is a single triangle with a 14° corner at the origin, a right
// angle at (5,0) and a 76° corner at (5,1.25).
func wedge() Triangulation {
	return Triangulation{
		Points:      []Vector2{V2(0, 0), V2(5, 0), V2(5, 1.25)},
		Triangles:   [][3]int{{0, 1, 2}},
		Constrained: [][2]int{{0, 1}, {1, 2}, {2, 0}},
	}
}

func TestRefineSharpCorners(t *testing.T) {
	tests := []struct {
		name string
		tr   Triangulation
		opts []Option
	}{
		{"trapezoid", trapezoid(), nil},
		{"trapezoid with area limit", trapezoid(), []Option{WithTooBig(MaxArea(0.5))}},
		{"wedge", wedge(), nil},
		{"needle", Triangulation{
			Points:      []Vector2{V2(0, 0), V2(10, 0), V2(10, 1)},
			Triangles:   [][3]int{{0, 1, 2}},
			Constrained: [][2]int{{0, 1}, {1, 2}, {2, 0}},
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustImport(t, tt.tr, WithLegalization())
			res, err := NewRefiner(m, tt.opts...).Refine(5000)
			if err != nil {
				t.Fatalf("Refine: %v (%+v)", err, res)
			}
			if res.Reason != Converged {
				t.Fatalf("Reason = %v after %d steps, want Converged", res.Reason, res.Steps)
			}
			for _, e := range m.Edges() {
				if l := e.Length(); l < 1e-3 {
					t.Errorf("edge %v -> %v of length %g", e.Start().Position(), e.End().Position(), l)
				}
			}
			if bad := m.NonDelaunayEdges(); len(bad) != 0 {
				t.Errorf("%d non-Delaunay interior edges", len(bad))
			}
			mustValidate(t, m)

			again, err := NewRefiner(m, tt.opts...).Refine(5000)
			if err != nil || again.Steps != 0 || again.Reason != Converged {
				t.Errorf("second Refine = %+v, %v", again, err)
			}
		})
	}
}

func TestSplitPointShells(t *testing.T) {
	m := mustImport(t, wedge())
	a, b, c := pointAt(m, V2(0, 0)), pointAt(m, V2(5, 0)), pointAt(m, V2(5, 1.25))

	tests := []struct {
		name string
		s    *Edge
		want Vector2
	}{
		{"shell around the sharp corner", a.EdgeTo(b), V2(2, 0)},
		{"shell seen from the far end", b.EdgeTo(a), V2(2, 0)},
		{"right angle is not sharp", b.EdgeTo(c), V2(5, 0.75)},
		{"sharp at both ends", c.EdgeTo(a), V2(2.5, 0.625)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitPoint(tt.s); !got.Approx(tt.want, 1e-12) {
				t.Errorf("splitPoint = %v, want %v", got, tt.want)
			}
		})
	}

	r := mustImport(t, rectangle(4, 1))
	side := pointAt(r, V2(0, 0)).EdgeTo(pointAt(r, V2(4, 0)))
	if got := splitPoint(side); !got.Approx(V2(2, 0), 1e-12) {
		t.Errorf("rectangle side split at %v, want the midpoint", got)
	}
}

func TestWedgeAngle(t *testing.T) {
	vertexIndex := func(tri *Triangle, v Vector2) int {
		for i := 0; i < 3; i++ {
			if tri.Vertex(i).Position() == v {
				return i
			}
		}
		t.Fatalf("triangle %v has no vertex %v", tri.Vertices(), v)
		return -1
	}

	sq := mustImport(t, unitSquare())
	for _, tri := range sq.Triangles() {
		got := wedgeAngle(tri, vertexIndex(tri, V2(0, 0)))
		if math.Abs(got-math.Pi/2) > 1e-12 {
			t.Errorf("wedge at the square corner = %v, want π/2", got)
		}
		if forcedByCorner(tri) {
			t.Errorf("square triangle %v reported as forced by a corner", tri.Vertices())
		}
	}

	inner := mustImport(t, Triangulation{
		Points:    []Vector2{V2(0, 0), V2(4, 0), V2(2, 6), V2(2, 0.5)},
		Triangles: [][3]int{{0, 1, 3}, {1, 2, 3}, {2, 0, 3}},
	})
	tri := inner.Triangles()[0]
	if got := wedgeAngle(tri, vertexIndex(tri, V2(2, 0.5))); got != 2*math.Pi {
		t.Errorf("wedge at an interior vertex = %v, want 2π", got)
	}

	w := mustImport(t, wedge())
	if !forcedByCorner(w.Triangles()[0]) {
		t.Error("14° corner triangle not reported as forced")
	}
}

func TestRefineSplitsMarkSteinerPoints(t *testing.T) {
	m := mustImport(t, trapezoid(), WithLegalization())
	if _, err := NewRefiner(m).Refine(20); err != nil {
		t.Fatal(err)
	}
	input := map[Vector2]bool{V2(0, 0): true, V2(10, 0): true, V2(7, 1): true, V2(3, 1): true}
	for _, p := range m.Points() {
		if p.IsSteiner() == input[p.Position()] {
			t.Errorf("point %v: IsSteiner = %v", p.Position(), p.IsSteiner())
		}
	}
}

func TestRefineBudget(t *testing.T) {
	m := mustImport(t, rectangle(4, 1))
	res, err := NewRefiner(m).Refine(3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 3 || res.Reason != BudgetExhausted {
		t.Errorf("Result = %+v, want 3 steps, BudgetExhausted", res)
	}
	mustValidate(t, m)
}

func TestRefineDeterministic(t *testing.T) {
	run := func() []Vector2 {
		m := mustImport(t, rectangle(4, 1))
		if _, err := NewRefiner(m).Refine(1000); err != nil {
			t.Fatal(err)
		}
		var out []Vector2
		for _, p := range m.Points() {
			out = append(out, p.Position())
		}
		return out
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("point counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("point %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRefineDisabledAngleBound(t *testing.T) {
	m := mustImport(t, rectangle(4, 1))
	res, err := NewRefiner(m, WithAngleBound(0)).Refine(100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 0 || res.Reason != Converged {
		t.Errorf("Result = %+v, want immediate convergence", res)
	}
}

func TestRefineNegativeBudget(t *testing.T) {
	m := mustImport(t, unitSquare())
	res, err := NewRefiner(m).Refine(-1)
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("err = %v, want ErrInvariant", err)
	}
	if res.Reason != Aborted {
		t.Errorf("Reason = %v, want Aborted", res.Reason)
	}
}

func TestRefineDetachesObserver(t *testing.T) {
	m := mustImport(t, rectangle(4, 1))
	if _, err := NewRefiner(m).Refine(5); err != nil {
		t.Fatal(err)
	}
	if len(m.observers) != 0 {
		t.Errorf("%d observers left attached", len(m.observers))
	}
}

func TestTooBigSeesEveryNewTriangle(t *testing.T) {
	m := mustImport(t, unitSquare())
	seen := map[*Triangle]bool{}
	tooBig := func(tri *Triangle) bool {
		seen[tri] = true
		return tri.Area() > 0.2
	}
	if _, err := NewRefiner(m, WithTooBig(tooBig)).Refine(100); err != nil {
		t.Fatal(err)
	}
	for _, tri := range m.Triangles() {
		if !seen[tri] {
			t.Errorf("triangle %v never tested", tri.Vertices())
		}
	}
}

func TestTerminationString(t *testing.T) {
	tests := []struct {
		r    Termination
		want string
	}{
		{Converged, "Converged"},
		{BudgetExhausted, "BudgetExhausted"},
		{Aborted, "Aborted"},
		{Termination(9), "Termination(9)"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func BenchmarkRefineRectangle(b *testing.B) {
	b.ResetTimer()
	for rangeIdx := 0; rangeIdx < b.N; rangeIdx++ {
		m, err := Import(rectangle(8, 1), WithHullConstrained())
		if err != nil {
			b.Fatal(err)
		}
		if _, err := NewRefiner(m, WithTooBig(MaxArea(0.05))).Refine(10000); err != nil {
			b.Fatal(err)
		}
	}
}
