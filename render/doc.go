// Package render draws refined meshes.
//
// Three outputs are supported:
//
//   - Rasterize samples a per-vertex color field over the mesh into a
//     Pixmap, which encodes as PNG or binary PPM.
//   - WriteSVG draws the triangles, edges and vertices as vector graphics.
//   - GeoJSON exports triangles and constrained edges as features for GIS
//     tools.
//
// Rasterization uses the mesh coordinates directly: an ImageConfig places
// one sample per pixel on a regular grid, and row 0 is the row with the
// smallest Y. The vector outputs flip Y so that the drawing appears the
// usual way up.
//
// None of the functions edit the mesh.
package render
