package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/refine/render"
)

// Config holds the settings that can be kept in a YAML file. Flags given on
// the command line override the file.
type Config struct {
	Refine RefineConfig `yaml:"refine"`
	Image  ImageConfig  `yaml:"image"`
	SVG    SVGConfig    `yaml:"svg"`
}

// RefineConfig controls the refinement.
type RefineConfig struct {
	MaxSteps    int     `yaml:"max_steps"`
	MinAngleDeg float64 `yaml:"min_angle_deg"`
	MaxArea     float64 `yaml:"max_area"` // 0 disables the size bound
}

// ImageConfig controls the color rendering.
type ImageConfig struct {
	MinX    float64 `yaml:"min_x"`
	MinY    float64 `yaml:"min_y"`
	Step    float64 `yaml:"step"`
	Samples int     `yaml:"samples"`
	Fit     bool    `yaml:"fit"` // cover the mesh bounds instead of the fixed grid
	Workers int     `yaml:"workers"`
	// Antialias blends outline pixels by coverage (PNG keeps the alpha).
	Antialias bool `yaml:"antialias"`
}

// SVGConfig controls the outline rendering.
type SVGConfig struct {
	Width       float64 `yaml:"width"`
	Margin      float64 `yaml:"margin"`
	PointRadius float64 `yaml:"point_radius"`
}

func defaultConfig() Config {
	img := render.DefaultImageConfig()
	return Config{
		Refine: RefineConfig{MaxSteps: 1000, MinAngleDeg: 30},
		Image: ImageConfig{
			MinX: img.MinX, MinY: img.MinY,
			Step: img.StepX, Samples: img.XSamples,
		},
		SVG: SVGConfig{Width: 800, Margin: 20, PointRadius: 2},
	}
}

// loadConfig reads path over the defaults. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.Refine.MinAngleDeg < 0 || c.Refine.MinAngleDeg >= 60 {
		errs = append(errs, fmt.Errorf("refine.min_angle_deg %v outside [0, 60)", c.Refine.MinAngleDeg))
	}
	if c.Refine.MaxArea < 0 {
		errs = append(errs, fmt.Errorf("refine.max_area %v is negative", c.Refine.MaxArea))
	}
	if !(c.Image.Step > 0) || c.Image.Samples <= 0 {
		errs = append(errs, fmt.Errorf("image: step %v and samples %d must be positive", c.Image.Step, c.Image.Samples))
	}
	if c.SVG.Width <= 2*c.SVG.Margin {
		errs = append(errs, fmt.Errorf("svg.width %v leaves no room inside margin %v", c.SVG.Width, c.SVG.Margin))
	}
	return errors.Join(errs...)
}

// imageConfig returns the fixed sample grid.
func (c ImageConfig) imageConfig() render.ImageConfig {
	return render.ImageConfig{
		MinX: c.MinX, MinY: c.MinY,
		StepX: c.Step, StepY: c.Step,
		XSamples: c.Samples, YSamples: c.Samples,
	}
}
