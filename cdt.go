package refine

import (
	"fmt"
	"log/slog"
)

// Triangulation is a pre-computed constrained triangulation in indexed
// form, as produced by an external CDT algorithm.
type Triangulation struct {
	// Points lists the vertex positions. Positions must be finite and
	// pairwise distinct, and every point must be used by a triangle.
	Points []Vector2

	// Triangles lists vertex index triples. Either winding is accepted;
	// clockwise triples are re-oriented on import.
	Triangles [][3]int

	// Constrained lists index pairs of triangle edges that refinement must
	// preserve.
	Constrained [][2]int
}

// ImportOption configures Import.
type ImportOption func(*importOptions)

type importOptions struct {
	hullConstrained bool
	legalize        bool
	tolerance       float64
	logger          *slog.Logger
}

// WithHullConstrained marks every boundary edge (an edge with a triangle on
// one side only) as constrained, in addition to Triangulation.Constrained.
func WithHullConstrained() ImportOption {
	return func(o *importOptions) {
		o.hullConstrained = true
	}
}

// WithLegalization runs a global flip pass after import, turning any valid
// constrained triangulation into the constrained Delaunay triangulation of
// the same input.
func WithLegalization() ImportOption {
	return func(o *importOptions) {
		o.legalize = true
	}
}

// WithImportTolerance sets the relative tolerance of the resulting mesh.
func WithImportTolerance(eps float64) ImportOption {
	return func(o *importOptions) {
		o.tolerance = eps
	}
}

// WithImportLogger sets the logger used during import.
// Defaults to the package logger (see SetLogger).
func WithImportLogger(l *slog.Logger) ImportOption {
	return func(o *importOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Import builds a mesh from a triangulation. Each undirected connection is
// created once and shared by the (at most two) triangles on its sides.
//
// Malformed input is reported as an error matching ErrInvariant:
// out-of-range or repeated indices, collinear triples, an edge claimed
// twice with the same winding or by more than two triangles, and
// constrained pairs that are not triangle edges.
func Import(tr Triangulation, opts ...ImportOption) (*Mesh, error) {
	const op = "Import"
	o := importOptions{tolerance: DefaultEpsilon, logger: Logger()}
	for _, opt := range opts {
		opt(&o)
	}

	m := NewMesh(WithTolerance(o.tolerance))
	seen := make(map[Vector2]int, len(tr.Points))
	pts := make([]*Point, len(tr.Points))
	for i, v := range tr.Points {
		if !v.IsFinite() {
			return nil, invariantf(op, "point %d: position %v is not finite", i, v)
		}
		if j, ok := seen[v]; ok {
			return nil, invariantf(op, "point %d duplicates point %d at %v", i, j, v)
		}
		seen[v] = i
		pts[i] = m.NewPoint(v)
	}

	used := make([]bool, len(pts))
	for ti, idx := range tr.Triangles {
		if err := checkIndices(op, len(pts), idx[:]...); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", ti, err)
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			return nil, fmt.Errorf("triangle %d: %w", ti,
				invariantf(op, "indices %v reference fewer than three distinct points", idx))
		}
		for k := 0; k < 3; k++ {
			a, b := pts[idx[k]], pts[idx[(k+1)%3]]
			if a.EdgeTo(b) != nil {
				continue
			}
			if _, err := m.NewEdge(a, b, false); err != nil {
				return nil, fmt.Errorf("triangle %d: %w", ti, err)
			}
		}
		if _, err := m.NewTriangleFromPoints(pts[idx[0]], pts[idx[1]], pts[idx[2]]); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", ti, err)
		}
		for _, i := range idx {
			used[i] = true
		}
	}
	for i, ok := range used {
		if !ok {
			return nil, invariantf(op, "point %d is not used by any triangle", i)
		}
	}

	for ci, pair := range tr.Constrained {
		if err := checkIndices(op, len(pts), pair[:]...); err != nil {
			return nil, fmt.Errorf("constraint %d: %w", ci, err)
		}
		e := m.EdgeBetween(pts[pair[0]], pts[pair[1]])
		if e == nil {
			return nil, fmt.Errorf("constraint %d: %w", ci,
				invariantf(op, "points %d and %d are not joined by a triangle edge", pair[0], pair[1]))
		}
		e.setConstrained(true)
	}

	if o.hullConstrained {
		for _, e := range m.edges.items {
			if e.IsBoundary() {
				e.setConstrained(true)
			}
		}
	}

	flips := 0
	if o.legalize {
		var err error
		if flips, err = m.LegalizeAll(); err != nil {
			return nil, err
		}
	}

	o.logger.Info("triangulation imported",
		"points", m.PointCount(),
		"edges", m.EdgeCount(),
		"triangles", m.TriangleCount(),
		"constrained", m.constrainedCount(),
		"flips", flips)
	return m, nil
}

func checkIndices(op string, n int, idx ...int) error {
	for _, i := range idx {
		if i < 0 || i >= n {
			return invariantf(op, "index %d out of range [0, %d)", i, n)
		}
	}
	return nil
}

func (m *Mesh) constrainedCount() int {
	n := 0
	for _, e := range m.edges.items {
		if e.constrained {
			n++
		}
	}
	return n
}
