package polygon

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/refine"
)

func pts(xy ...float64) []refine.Vector2 {
	out := make([]refine.Vector2, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, refine.V2(xy[i], xy[i+1]))
	}
	return out
}

func totalArea(tr refine.Triangulation) float64 {
	sum := 0.0
	for _, t := range tr.Triangles {
		sum += refine.Orient(tr.Points[t[0]], tr.Points[t[1]], tr.Points[t[2]]) / 2
	}
	return sum
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name      string
		outline   []refine.Vector2
		points    int
		triangles int
		area      float64
	}{
		{"triangle", pts(0, 0, 1, 0, 0, 1), 3, 1, 0.5},
		{"square ccw", pts(0, 0, 1, 0, 1, 1, 0, 1), 4, 2, 1},
		{"square cw", pts(0, 0, 0, 1, 1, 1, 1, 0), 4, 2, 1},
		{"closed outline", pts(0, 0, 1, 0, 1, 1, 0, 1, 0, 0), 4, 2, 1},
		{"L shape", pts(0, 0, 2, 0, 2, 1, 1, 1, 1, 2, 0, 2), 6, 4, 3},
		{"chevron", pts(0, 0, 2, 1, 4, 0, 2, 3), 4, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Triangulate(tt.outline)
			if err != nil {
				t.Fatalf("Triangulate: %v", err)
			}
			if len(tr.Points) != tt.points || len(tr.Triangles) != tt.triangles {
				t.Fatalf("got %d points, %d triangles; want %d, %d",
					len(tr.Points), len(tr.Triangles), tt.points, tt.triangles)
			}
			if len(tr.Constrained) != tt.points {
				t.Errorf("constrained = %d, want %d", len(tr.Constrained), tt.points)
			}
			if a := totalArea(tr); math.Abs(a-tt.area) > 1e-12 {
				t.Errorf("area = %v, want %v", a, tt.area)
			}
			for i, tri := range tr.Triangles {
				a, b, c := tr.Points[tri[0]], tr.Points[tri[1]], tr.Points[tri[2]]
				if refine.Orient(a, b, c) <= 0 {
					t.Errorf("triangle %d %v is not counter-clockwise", i, tri)
				}
			}

			m, err := refine.Import(tr)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if err := m.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestTriangulateErrors(t *testing.T) {
	tests := []struct {
		name    string
		outline []refine.Vector2
		want    error
	}{
		{"empty", nil, ErrTooFewPoints},
		{"two points", pts(0, 0, 1, 1), ErrTooFewPoints},
		{"closed segment", pts(0, 0, 1, 1, 0, 0), ErrTooFewPoints},
		{"collinear", pts(0, 0, 1, 0, 2, 0), ErrDegenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Triangulate(tt.outline); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func BenchmarkTriangulate(b *testing.B) {
	outline := make([]refine.Vector2, 0, 256)
	for i := 0; i < 256; i++ {
		a := 2 * math.Pi * float64(i) / 256
		r := 1.0
		if i%2 == 1 {
			r = 0.5
		}
		outline = append(outline, refine.V2(r*math.Cos(a), r*math.Sin(a)))
	}
	b.ResetTimer()
	for rangeIdx := 0; rangeIdx < b.N; rangeIdx++ {
		if _, err := Triangulate(outline); err != nil {
			b.Fatal(err)
		}
	}
}
