package render

import (
	"github.com/paulmach/orb"

	"github.com/gogpu/refine"
)

// meshBound returns the bounding box of the live points of m.
func meshBound(m *refine.Mesh) (orb.Bound, error) {
	pts := m.Points()
	if len(pts) == 0 {
		return orb.Bound{}, ErrEmptyMesh
	}
	mp := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		mp[i] = orbPoint(p.Position())
	}
	return mp.Bound(), nil
}

func orbPoint(v refine.Vector2) orb.Point {
	return orb.Point{v.X, v.Y}
}

// view fits a mesh bound into a canvas with a margin, flipping Y so that
// mesh "up" is canvas "up".
type view struct {
	bound  orb.Bound
	scale  float64
	margin float64
	width  float64
	height float64
}

// newView fits b into a canvas width units wide; the height follows the
// aspect ratio of b.
func newView(b orb.Bound, width, margin float64) view {
	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	inner := width - 2*margin
	scale := 1.0
	switch {
	case dx > 0:
		scale = inner / dx
	case dy > 0:
		scale = inner / dy
	}
	return view{
		bound:  b,
		scale:  scale,
		margin: margin,
		width:  width,
		height: dy*scale + 2*margin,
	}
}

func (v view) project(p refine.Vector2) (x, y float64) {
	x = v.margin + (p.X-v.bound.Min[0])*v.scale
	y = v.height - v.margin - (p.Y-v.bound.Min[1])*v.scale
	return x, y
}
