// Command refine builds a quality mesh from a polygon outline.
//
// The input is a point file ("@ x y" per vertex, optional "# r g b"
// colors). The outline is triangulated, every outline edge is kept as a
// constrained segment, and the mesh is refined until no angle is below the
// bound. Results can be written as an SVG outline, a color-interpolated
// PPM image and GeoJSON.
//
//	refine -i shape.pts -o out -s -m
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/refine"
	"github.com/gogpu/refine/internal/polygon"
	"github.com/gogpu/refine/internal/pslg"
	"github.com/gogpu/refine/render"
)

var (
	errNoInput  = errors.New("no input file given")
	errNoOutput = errors.New("no output file given")
)

type cliOptions struct {
	configPath  string
	input       string
	output      string
	maxSteps    int
	minAngle    float64
	maxArea     float64
	verbose     bool
	debug       bool
	renderMesh  bool
	renderPNG   bool
	renderSVG   bool
	geoJSON     bool
	inputColors bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, map[string]bool, error) {
	var o cliOptions
	fs := flag.NewFlagSet("refine", flag.ContinueOnError)
	fs.SetOutput(stderr)

	both := func(short, long string, register func(name string)) {
		register(short)
		register(long)
	}
	both("c", "config", func(n string) { fs.StringVar(&o.configPath, n, "", "read settings from YAML `file`") })
	both("i", "input", func(n string) { fs.StringVar(&o.input, n, "", "read the outline from `file`") })
	both("o", "output", func(n string) { fs.StringVar(&o.output, n, "", "write results to `prefix`.{svg,ppm,png,geojson}") })
	both("r", "refine-max-steps", func(n string) { fs.IntVar(&o.maxSteps, n, 1000, "refine for at most `N` steps; 0 skips refinement") })
	both("a", "min-angle", func(n string) { fs.Float64Var(&o.minAngle, n, 30, "minimum angle bound in `degrees`") })
	both("A", "max-area", func(n string) { fs.Float64Var(&o.maxArea, n, 0, "split triangles larger than `area`; 0 disables") })
	both("v", "verbose", func(n string) { fs.BoolVar(&o.verbose, n, false, "print progress and a summary") })
	both("d", "debug", func(n string) { fs.BoolVar(&o.debug, n, false, "log every refinement step") })
	both("m", "render-mesh", func(n string) { fs.BoolVar(&o.renderMesh, n, false, "render a color mesh of the result (PPM)") })
	both("p", "render-png", func(n string) { fs.BoolVar(&o.renderPNG, n, false, "render the color mesh as PNG") })
	both("s", "render-svg", func(n string) { fs.BoolVar(&o.renderSVG, n, false, "render an outline of the result") })
	both("g", "geojson", func(n string) { fs.BoolVar(&o.geoJSON, n, false, "export the mesh as GeoJSON") })
	both("k", "input-colors", func(n string) {
		fs.BoolVar(&o.inputColors, n, false, "color outline vertices with the colors from the input")
	})

	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, set, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	switch {
	case o.debug:
		level = slog.LevelDebug
	case o.verbose:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	// The core gets the logger explicitly; render reads the package default.
	refine.SetLogger(logger)
	defer refine.SetLogger(nil)

	cfg := defaultConfig()
	if o.configPath != "" {
		if cfg, err = loadConfig(o.configPath); err != nil {
			return err
		}
	}
	if set["r"] || set["refine-max-steps"] {
		cfg.Refine.MaxSteps = o.maxSteps
	}
	if set["a"] || set["min-angle"] {
		cfg.Refine.MinAngleDeg = o.minAngle
	}
	if set["A"] || set["max-area"] {
		cfg.Refine.MaxArea = o.maxArea
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	if o.input == "" {
		return errNoInput
	}
	rendering := o.renderSVG || o.renderMesh || o.renderPNG || o.geoJSON
	if o.output == "" && rendering {
		return errNoOutput
	}

	in, err := pslg.ReadFile(o.input)
	if err != nil {
		return err
	}
	logger.Info("input parsed", "file", o.input, "points", len(in.Points), "colors", len(in.Colors))

	tr, err := polygon.Triangulate(in.Points)
	if err != nil {
		return fmt.Errorf("%s: %w", o.input, err)
	}
	m, err := refine.Import(tr, refine.WithLegalization(), refine.WithImportLogger(logger))
	if err != nil {
		return err
	}

	var res *refine.Result
	if cfg.Refine.MaxSteps > 0 {
		tooBig := refine.NeverTooBig
		if cfg.Refine.MaxArea > 0 {
			tooBig = refine.MaxArea(cfg.Refine.MaxArea)
		}
		r := refine.NewRefiner(m,
			refine.WithAngleBound(cfg.Refine.MinAngleDeg*math.Pi/180),
			refine.WithTooBig(tooBig),
			refine.WithLogger(logger),
		)
		out, err := r.Refine(cfg.Refine.MaxSteps)
		if err != nil {
			return err
		}
		res = &out
	}

	if err := writeOutputs(m, in, o, cfg); err != nil {
		return err
	}
	if o.verbose {
		printSummary(stdout, m, res)
	}
	return nil
}

func writeOutputs(m *refine.Mesh, in *pslg.File, o cliOptions, cfg Config) error {
	if o.renderSVG {
		err := writeFile(o.output+".svg", func(w io.Writer) error {
			return render.WriteSVG(w, m,
				render.WithCanvasWidth(cfg.SVG.Width),
				render.WithMargin(cfg.SVG.Margin),
				render.WithPointRadius(cfg.SVG.PointRadius),
			)
		})
		if err != nil {
			return err
		}
	}
	if o.geoJSON {
		if err := writeFile(o.output+".geojson", func(w io.Writer) error { return render.WriteGeoJSON(w, m) }); err != nil {
			return err
		}
	}
	if !o.renderMesh && !o.renderPNG {
		return nil
	}

	imc := cfg.Image.imageConfig()
	if cfg.Image.Fit {
		var err error
		if imc, err = render.FitImageConfig(m, cfg.Image.Samples); err != nil {
			return err
		}
	}
	colorOf := pointColor
	if o.inputColors {
		colorOf = func(p *refine.Point) render.RGBA {
			if c, ok := in.ColorOf(p.Position()); ok {
				return c
			}
			return pointColor(p)
		}
	}
	ropts := []render.RasterOption{render.WithWorkers(cfg.Image.Workers)}
	if cfg.Image.Antialias {
		ropts = append(ropts, render.WithAntialias())
	}
	pm, err := render.Rasterize(m, imc, colorOf, ropts...)
	if err != nil {
		return err
	}
	if o.renderMesh {
		if err := pm.SavePPM(o.output + ".ppm"); err != nil {
			return err
		}
	}
	if o.renderPNG {
		if err := pm.SavePNG(o.output + ".png"); err != nil {
			return err
		}
	}
	return nil
}

// pointColor derives a stable color from a point's coordinates, so equal
// inputs always render alike.
func pointColor(p *refine.Point) render.RGBA {
	v := p.Position()
	h := math.Float64bits(v.X)*0x9e3779b97f4a7c15 ^ math.Float64bits(v.Y)*0xc2b2ae3d27d4eb4f
	h ^= h >> 29
	return render.HSL(float64(h%360), 0.65, 0.55)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// printSummary reports the mesh size and quality; res is nil when
// refinement was skipped.
func printSummary(w io.Writer, m *refine.Mesh, res *refine.Result) {
	p := message.NewPrinter(language.English)
	minAngle := math.Pi
	for _, t := range m.Triangles() {
		minAngle = min(minAngle, t.MinAngle())
	}
	if m.TriangleCount() == 0 {
		minAngle = 0
	}
	p.Fprintf(w, "%d points, %d edges, %d triangles\n", m.PointCount(), m.EdgeCount(), m.TriangleCount())
	if res != nil {
		p.Fprintf(w, "%d steps (%d splits, %d insertions, %d flips): %v\n",
			res.Steps, res.Splits, res.Insertions, res.Flips, res.Reason)
	}
	p.Fprintf(w, "smallest angle %.2f°\n", minAngle*180/math.Pi)
}
