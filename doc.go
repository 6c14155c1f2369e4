// Package refine improves the quality of planar triangle meshes by
// Delaunay refinement.
//
// # Overview
//
// refine takes a constrained Delaunay triangulation computed elsewhere,
// turns it into a mutable mesh of reference-counted points, directed edge
// pairs and triangles, and refines it in the manner of Ruppert's algorithm:
// encroached constrained edges are split at their midpoints and triangles
// with a too small angle receive a Steiner point at their circumcenter,
// each insertion followed by local edge-flip legalization.
//
// # Quick Start
//
//	import "github.com/gogpu/refine"
//
//	m, err := refine.Import(refine.Triangulation{
//		Points:    []refine.Vector2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 0, Y: 1}},
//		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
//	}, refine.WithHullConstrained())
//	if err != nil {
//		return err
//	}
//
//	res, err := refine.NewRefiner(m).Refine(1000)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Reason, m.TriangleCount())
//
// # Mesh Model
//
// Every undirected connection is a pair of directed Edge halves that are
// each other's Mirror. Triangles are counter-clockwise loops of three
// halves, and each half records the triangle on its left. Removing an edge
// removes the triangles it bounds. Removed entities are tombstoned, so
// callers holding a stale pointer can test IsRemoved.
//
// All structural edits go through Mesh methods, which keep reference counts
// and observer notifications consistent. A Mesh is not safe for concurrent
// use.
//
// # Errors
//
// Broken caller contracts and malformed input are reported as errors
// matching ErrInvariant. States that only hand-corrupted topology can
// reach, such as a reference count dropping below zero, panic with an
// *InvariantError.
//
// # Coordinate System
//
// Mathematical orientation: X increases right, Y increases up, angles are
// in radians measured counter-clockwise from the positive X axis.
package refine

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
