package render

import (
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/image/vector"

	"github.com/gogpu/refine"
	"github.com/gogpu/refine/internal/cache"
	"github.com/gogpu/refine/internal/parallel"
)

// ImageConfig maps mesh coordinates onto a sample grid. Pixel (i, j)
// samples the mesh at (MinX + i*StepX, MinY + (YSamples-1-j)*StepY): mesh Y
// grows upward, so row 0 is the top of the image, as in the SVG view.
type ImageConfig struct {
	MinX, MinY   float64
	StepX, StepY float64
	XSamples     int
	YSamples     int
}

// DefaultImageConfig returns a 500×500 grid with a 0.2 step starting at
// the origin.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{StepX: 0.2, StepY: 0.2, XSamples: 500, YSamples: 500}
}

// FitImageConfig returns a grid of width samples per row covering the
// bounding box of m, with square pixels.
func FitImageConfig(m *refine.Mesh, width int) (ImageConfig, error) {
	if width <= 0 {
		return ImageConfig{}, fmt.Errorf("%w: width %d", ErrInvalidDimensions, width)
	}
	b, err := meshBound(m)
	if err != nil {
		return ImageConfig{}, err
	}
	step := (b.Max[0] - b.Min[0]) / float64(width-1)
	if width == 1 || step == 0 {
		step = 1
	}
	height := int(math.Floor((b.Max[1]-b.Min[1])/step+1e-9)) + 1
	return ImageConfig{
		MinX: b.Min[0], MinY: b.Min[1],
		StepX: step, StepY: step,
		XSamples: width, YSamples: height,
	}, nil
}

func (c ImageConfig) validate() error {
	if c.XSamples <= 0 || c.YSamples <= 0 {
		return fmt.Errorf("%w: %d×%d samples", ErrInvalidDimensions, c.XSamples, c.YSamples)
	}
	if !(c.StepX > 0) || !(c.StepY > 0) {
		return fmt.Errorf("%w: step %v×%v", ErrInvalidDimensions, c.StepX, c.StepY)
	}
	return nil
}

// toPixel maps a mesh coordinate into rasterizer space, where the sample
// point of pixel i sits at the pixel center i+0.5.
func (c ImageConfig) toPixel(v refine.Vector2) (float64, float64) {
	return (v.X-c.MinX)/c.StepX + 0.5, float64(c.YSamples-1) - (v.Y-c.MinY)/c.StepY + 0.5
}

func (c ImageConfig) sample(x, y int) refine.Vector2 {
	return refine.V2(c.MinX+float64(x)*c.StepX, c.MinY+float64(c.YSamples-1-y)*c.StepY)
}

// PointColorFunc assigns a color to a mesh point. It must be pure and
// deterministic: the same point always yields the same color and the mesh
// is never edited. It may be called from several goroutines at once.
type PointColorFunc func(*refine.Point) RGBA

// RasterOption configures Rasterize.
type RasterOption func(*rasterOptions)

type rasterOptions struct {
	workers   int
	antialias bool
}

// WithWorkers sets the number of goroutines that rasterize row bands.
// Zero or negative uses GOMAXPROCS; 1 rasterizes on the calling goroutine.
func WithWorkers(n int) RasterOption {
	return func(o *rasterOptions) {
		o.workers = n
	}
}

// WithAntialias gives pixels on the mesh outline whose sample lies outside
// the mesh the fraction of the pixel the mesh covers as alpha, colored by
// the triangle that covers most of it. Samples inside the mesh are
// unaffected.
func WithAntialias() RasterOption {
	return func(o *rasterOptions) {
		o.antialias = true
	}
}

// colorCacheSize bounds the per-call memo of point colors.
const colorCacheSize = 1 << 16

// Rasterize renders a color field over the mesh: each sample inside a
// triangle gets the barycentric interpolation of the colors of the
// triangle's vertices. Samples outside the mesh stay transparent unless
// WithAntialias is given.
//
// A nil colorOf paints every point white.
func Rasterize(m *refine.Mesh, cfg ImageConfig, colorOf PointColorFunc, opts ...RasterOption) (*Pixmap, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if colorOf == nil {
		colorOf = func(*refine.Point) RGBA { return White }
	}
	var o rasterOptions
	for _, opt := range opts {
		opt(&o)
	}
	workers := o.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	colors := cache.New[*refine.Point, RGBA](colorCacheSize)
	memo := func(p *refine.Point) RGBA {
		return colors.GetOrCreate(p, func() RGBA { return colorOf(p) })
	}

	pm := NewPixmap(cfg.XSamples, cfg.YSamples)
	jobs := rasterJobs(m, cfg, pm.Bounds())
	bands := parallel.SplitRows(cfg.YSamples, workers)
	work := make([]func(), len(bands))
	for i, b := range bands {
		b := b
		work[i] = func() { rasterizeBand(pm, cfg, b, jobs, memo, o.antialias) }
	}
	if len(work) == 1 {
		work[0]()
	} else {
		pool := parallel.NewWorkerPool(workers)
		pool.ExecuteAll(work)
		pool.Close()
	}

	refine.Logger().Debug("mesh rasterized",
		"width", cfg.XSamples, "height", cfg.YSamples,
		"triangles", len(jobs), "bands", len(bands))
	return pm, nil
}

// rasterJob is a triangle in rasterizer space with its pixel bounding box.
type rasterJob struct {
	tri    *refine.Triangle
	px, py [3]float64
	box    image.Rectangle
}

func rasterJobs(m *refine.Mesh, cfg ImageConfig, bounds image.Rectangle) []rasterJob {
	tris := m.Triangles()
	jobs := make([]rasterJob, 0, len(tris))
	for _, t := range tris {
		j := rasterJob{tri: t}
		for i, v := range t.Vertices() {
			j.px[i], j.py[i] = cfg.toPixel(v.Position())
		}
		j.box = image.Rect(
			int(math.Floor(min(j.px[0], j.px[1], j.px[2]))), int(math.Floor(min(j.py[0], j.py[1], j.py[2]))),
			int(math.Ceil(max(j.px[0], j.px[1], j.px[2]))), int(math.Ceil(max(j.py[0], j.py[1], j.py[2]))),
		).Intersect(bounds)
		if !j.box.Empty() {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// rasterizeBand paints the rows of band b. Bands share no rows, so
// concurrent calls never write the same pixel.
func rasterizeBand(pm *Pixmap, cfg ImageConfig, b parallel.Band, jobs []rasterJob, colorOf PointColorFunc, antialias bool) {
	rows := image.Rect(0, b.Y0, pm.Width(), b.Y1)
	inside := make([]bool, rows.Dx()*rows.Dy())
	for i := range jobs {
		j := &jobs[i]
		if !b.Overlaps(j.box.Min.Y, j.box.Max.Y) {
			continue
		}
		paintSamples(pm, cfg, j, j.box.Intersect(rows), rows, inside, colorOf)
	}
	if !antialias {
		return
	}

	e := newEdgeCoverage(rows)
	z := vector.NewRasterizer(1, 1)
	for i := range jobs {
		j := &jobs[i]
		if !b.Overlaps(j.box.Min.Y, j.box.Max.Y) {
			continue
		}
		e.add(z, cfg, j, j.box.Intersect(rows), inside, colorOf)
	}
	e.paint(pm, inside)
}

// paintSamples paints the samples of box that fall inside the job's
// triangle and marks them in inside. A sample on a shared edge is painted
// by both triangles, so it is never left as a gap.
func paintSamples(pm *Pixmap, cfg ImageConfig, j *rasterJob, box, rows image.Rectangle, inside []bool, colorOf PointColorFunc) {
	if box.Empty() {
		return
	}
	vs := j.tri.Vertices()
	colors := [3]RGBA{colorOf(vs[0]), colorOf(vs[1]), colorOf(vs[2])}
	a, b, c := vs[0].Position(), vs[1].Position(), vs[2].Position()
	area := refine.Orient(a, b, c)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			w, ok := barycentric(cfg.sample(x, y), a, b, c, area)
			if !ok {
				continue
			}
			pm.SetPixel(x, y, blend3(colors, w))
			inside[(y-rows.Min.Y)*rows.Dx()+x-rows.Min.X] = true
		}
	}
}

// edgeCoverage accumulates the area coverage of pixels whose sample lies
// outside every triangle.
type edgeCoverage struct {
	rows  image.Rectangle
	cov   []float64
	best  []float64
	color []RGBA
}

func newEdgeCoverage(rows image.Rectangle) *edgeCoverage {
	n := rows.Dx() * rows.Dy()
	return &edgeCoverage{rows: rows, cov: make([]float64, n), best: make([]float64, n), color: make([]RGBA, n)}
}

// add rasterizes the job's triangle, clipped to box, with the coverage
// rasterizer and accumulates its coverage over pixels not painted exactly.
func (e *edgeCoverage) add(z *vector.Rasterizer, cfg ImageConfig, j *rasterJob, box image.Rectangle, inside []bool, colorOf PointColorFunc) {
	if box.Empty() {
		return
	}
	bw, bh := float64(box.Dx()), float64(box.Dy())
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	poly := clipToBox([][2]float64{
		{j.px[0] - ox, j.py[0] - oy},
		{j.px[1] - ox, j.py[1] - oy},
		{j.px[2] - ox, j.py[2] - oy},
	}, bw, bh)
	if len(poly) < 3 {
		return
	}
	z.Reset(box.Dx(), box.Dy())
	z.MoveTo(float32(poly[0][0]), float32(poly[0][1]))
	for _, q := range poly[1:] {
		z.LineTo(float32(q[0]), float32(q[1]))
	}
	z.ClosePath()
	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	vs := j.tri.Vertices()
	colors := [3]RGBA{colorOf(vs[0]), colorOf(vs[1]), colorOf(vs[2])}
	a, b, c := vs[0].Position(), vs[1].Position(), vs[2].Position()
	area := refine.Orient(a, b, c)
	for y, rangeEnd := 0, box.Dy(); y < rangeEnd; y++ {
		for x, rangeEnd := 0, box.Dx(); x < rangeEnd; x++ {
			alpha := float64(mask.AlphaAt(x, y).A) / 255
			gx, gy := box.Min.X+x, box.Min.Y+y
			i := (gy-e.rows.Min.Y)*e.rows.Dx() + gx - e.rows.Min.X
			if alpha == 0 || inside[i] {
				continue
			}
			e.cov[i] += alpha
			if alpha > e.best[i] {
				e.best[i] = alpha
				e.color[i] = blend3(colors, nearestWeights(cfg.sample(gx, gy), a, b, c, area))
			}
		}
	}
}

// paint writes the accumulated outline pixels.
func (e *edgeCoverage) paint(pm *Pixmap, inside []bool) {
	for i, cov := range e.cov {
		if cov == 0 || inside[i] {
			continue
		}
		c := e.color[i]
		c.A *= min(cov, 1)
		pm.SetPixel(e.rows.Min.X+i%e.rows.Dx(), e.rows.Min.Y+i/e.rows.Dx(), c)
	}
}

// clipToBox clips a polygon to the rectangle [0,w]×[0,h] one edge at a
// time (Sutherland-Hodgman).
func clipToBox(poly [][2]float64, w, h float64) [][2]float64 {
	planes := []struct {
		axis  int
		limit float64
		keepL bool
	}{
		{0, 0, false}, {0, w, true}, {1, 0, false}, {1, h, true},
	}
	for _, pl := range planes {
		inside := func(q [2]float64) bool {
			if pl.keepL {
				return q[pl.axis] <= pl.limit
			}
			return q[pl.axis] >= pl.limit
		}
		var out [][2]float64
		for i, cur := range poly {
			prev := poly[(i+len(poly)-1)%len(poly)]
			cin, pin := inside(cur), inside(prev)
			if cin != pin {
				t := (pl.limit - prev[pl.axis]) / (cur[pl.axis] - prev[pl.axis])
				x := [2]float64{prev[0] + t*(cur[0]-prev[0]), prev[1] + t*(cur[1]-prev[1])}
				x[pl.axis] = pl.limit
				out = append(out, x)
			}
			if cin {
				out = append(out, cur)
			}
		}
		poly = out
		if len(poly) == 0 {
			return nil
		}
	}
	return poly
}

// sampleSlack is how far outside a triangle, in barycentric units, a
// sample may sit and still count as inside.
const sampleSlack = 1e-9

// barycentric returns the weights of p relative to triangle abc (whose
// doubled signed area is area). ok is false when p lies outside the
// triangle. Weights are clamped to [0, 1] so that samples within the slack
// never extrapolate.
func barycentric(p, a, b, c refine.Vector2, area float64) (w [3]float64, ok bool) {
	w = weights(p, a, b, c, area)
	sum := 0.0
	for i := range w {
		if w[i] < -sampleSlack {
			return w, false
		}
		w[i] = math.Max(w[i], 0)
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w, true
}

func weights(p, a, b, c refine.Vector2, area float64) [3]float64 {
	return [3]float64{
		refine.Orient(p, b, c) / area,
		refine.Orient(a, p, c) / area,
		refine.Orient(a, b, p) / area,
	}
}

// nearestWeights returns barycentric weights for p with negative weights
// dropped, which stays inside the triangle for samples just outside it.
func nearestWeights(p, a, b, c refine.Vector2, area float64) [3]float64 {
	w := weights(p, a, b, c, area)
	sum := 0.0
	for i := range w {
		w[i] = math.Max(w[i], 0)
		sum += w[i]
	}
	if sum == 0 {
		return [3]float64{1. / 3, 1. / 3, 1. / 3}
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
