package refine

import (
	"log/slog"
	"math"
)

// Option configures a Refiner during creation.
// Use functional options to customize refinement.
//
// Example:
//
//	// Default quality bound (30 degrees), no size limit
//	r := refine.NewRefiner(m)
//
//	// 25 degree bound and an area limit
//	r := refine.NewRefiner(m,
//		refine.WithAngleBound(25*math.Pi/180),
//		refine.WithTooBig(refine.MaxArea(0.01)))
type Option func(*options)

// options holds optional configuration for Refiner creation.
type options struct {
	angleBound float64
	tooBig     TooBigFunc
	logger     *slog.Logger
	epsilon    float64
}

// DefaultAngleBound is the minimum angle refinement aims for, π/6 (30°).
const DefaultAngleBound = math.Pi / 6

// defaultOptions returns the default refiner options.
func defaultOptions() options {
	return options{
		angleBound: DefaultAngleBound,
		tooBig:     NeverTooBig,
		logger:     nil, // Will be set to Logger() if nil
		epsilon:    DefaultEpsilon,
	}
}

// WithAngleBound sets the minimum interior angle, in radians, that every
// triangle must reach. Bounds above about 33.8° (the theoretical limit for
// Ruppert's algorithm) may keep refining until the step budget runs out.
// Non-positive values disable the angle criterion.
func WithAngleBound(rad float64) Option {
	return func(o *options) {
		o.angleBound = rad
	}
}

// TooBigFunc reports whether a triangle must be split regardless of its
// shape. It must be pure: it may read the triangle but never edit the mesh.
type TooBigFunc func(*Triangle) bool

// NeverTooBig is the default TooBigFunc; it accepts every triangle.
func NeverTooBig(*Triangle) bool { return false }

// MaxArea returns a TooBigFunc that rejects triangles larger than area.
func MaxArea(area float64) TooBigFunc {
	return func(t *Triangle) bool { return t.Area() > area }
}

// WithTooBig sets the size predicate. Triangles it rejects are refined like
// triangles with a too small angle. A nil predicate restores NeverTooBig.
//
// Example:
//
//	// Limit output density
//	r := refine.NewRefiner(m, refine.WithTooBig(refine.MaxArea(0.5)))
func WithTooBig(f TooBigFunc) Option {
	return func(o *options) {
		if f == nil {
			f = NeverTooBig
		}
		o.tooBig = f
	}
}

// WithLogger sets the logger for a single refiner.
// Defaults to the package logger (see SetLogger).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEpsilon sets the relative tolerance of the encroachment test. A point
// closer than this (relative) margin to a diametral circle does not
// encroach.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps >= 0 {
			o.epsilon = eps
		}
	}
}
