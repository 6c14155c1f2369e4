package render

import (
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/gogpu/refine"
)

// GeoJSON converts the mesh into a feature collection: one Polygon per
// triangle (properties "area" and "min_angle_deg") and one LineString per
// constrained edge (property "constrained"). Coordinates are the mesh
// coordinates, unprojected.
func GeoJSON(m *refine.Mesh) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range m.Triangles() {
		vs := t.Vertices()
		ring := orb.Ring{
			orbPoint(vs[0].Position()),
			orbPoint(vs[1].Position()),
			orbPoint(vs[2].Position()),
			orbPoint(vs[0].Position()),
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["area"] = t.Area()
		f.Properties["min_angle_deg"] = degrees(t.MinAngle())
		fc.Append(f)
	}
	for _, e := range m.Edges() {
		if !e.IsConstrained() {
			continue
		}
		f := geojson.NewFeature(orb.LineString{
			orbPoint(e.Start().Position()),
			orbPoint(e.End().Position()),
		})
		f.Properties["constrained"] = true
		fc.Append(f)
	}
	if b, err := meshBound(m); err == nil {
		fc.BBox = geojson.NewBBox(b)
	}
	return fc
}

// WriteGeoJSON writes GeoJSON(m) to w.
func WriteGeoJSON(w io.Writer, m *refine.Mesh) error {
	data, err := GeoJSON(m).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
