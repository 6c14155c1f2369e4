package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo/float"

	"github.com/gogpu/refine"
)

// SVGOption configures WriteSVG.
type SVGOption func(*svgOptions)

type svgOptions struct {
	width       float64
	margin      float64
	pointRadius float64
	fill        RGBA
	stroke      RGBA
	constrained RGBA
	background  RGBA
}

func defaultSVGOptions() svgOptions {
	return svgOptions{
		width:       800,
		margin:      20,
		pointRadius: 2,
		fill:        Hex("#e8f0fa"),
		stroke:      Hex("#2f3640"),
		constrained: Hex("#d63031"),
		background:  White,
	}
}

// WithCanvasWidth sets the drawing width; the height follows the aspect
// ratio of the mesh.
func WithCanvasWidth(w float64) SVGOption {
	return func(o *svgOptions) {
		o.width = w
	}
}

// WithMargin sets the blank border around the mesh.
func WithMargin(m float64) SVGOption {
	return func(o *svgOptions) {
		o.margin = m
	}
}

// WithPointRadius sets the radius of vertex markers. Zero hides them.
func WithPointRadius(r float64) SVGOption {
	return func(o *svgOptions) {
		o.pointRadius = r
	}
}

// WithColors sets the triangle fill, the edge stroke and the stroke of
// constrained edges.
func WithColors(fill, stroke, constrained RGBA) SVGOption {
	return func(o *svgOptions) {
		o.fill, o.stroke, o.constrained = fill, stroke, constrained
	}
}

// WriteSVG writes an outline of the mesh: filled triangles, every edge
// (constrained edges highlighted) and the vertices.
func WriteSVG(w io.Writer, m *refine.Mesh, opts ...SVGOption) error {
	o := defaultSVGOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.width > 2*o.margin) {
		return fmt.Errorf("%w: canvas width %v with margin %v", ErrInvalidDimensions, o.width, o.margin)
	}
	b, err := meshBound(m)
	if err != nil {
		return err
	}
	v := newView(b, o.width, o.margin)

	cw := &errWriter{w: w}
	s := svg.New(cw)
	s.Start(v.width, v.height)
	s.Title("refined mesh")
	s.Rect(0, 0, v.width, v.height, "fill:"+o.background.CSS())

	s.Gstyle(fmt.Sprintf("fill:%s;stroke:none", o.fill.CSS()))
	xs, ys := make([]float64, 3), make([]float64, 3)
	for _, t := range m.Triangles() {
		for i, p := range t.Vertices() {
			xs[i], ys[i] = v.project(p.Position())
		}
		s.Polygon(xs, ys)
	}
	s.Gend()

	plain := fmt.Sprintf("stroke:%s;stroke-width:1", o.stroke.CSS())
	bold := fmt.Sprintf("stroke:%s;stroke-width:2", o.constrained.CSS())
	for _, e := range m.Edges() {
		x1, y1 := v.project(e.Start().Position())
		x2, y2 := v.project(e.End().Position())
		style := plain
		if e.IsConstrained() {
			style = bold
		}
		s.Line(x1, y1, x2, y2, style)
	}

	if o.pointRadius > 0 {
		s.Gstyle("fill:" + o.stroke.CSS())
		for _, p := range m.Points() {
			x, y := v.project(p.Position())
			s.Circle(x, y, o.pointRadius)
		}
		s.Gend()
	}
	s.End()
	return cw.err
}

// errWriter remembers the first write error; the svg writer itself
// does not report errors.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err == nil {
		_, e.err = e.w.Write(p)
	}
	return len(p), nil
}
