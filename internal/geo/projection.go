package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// earthRadius is the WGS84 semi-major axis in meters, the sphere radius
// used by both Web Mercator and the local projection.
const earthRadius = 6378137.0

// Projection maps geographic lon/lat coordinates onto a planar system in
// meters. Every area and length in the pipeline goes through one Projection
// so units can never mix with geographic degrees.
type Projection struct {
	name string
	fn   func(orb.Point) orb.Point
}

// NewProjection returns the projection for a recognized CRS name.
//
//	epsg:3857  Web Mercator. Locally consistent; scale-distorted away from
//	           the equator, matching the upstream analysis outputs.
//	local      Equirectangular centered on origin; true meters for areas a
//	           few kilometers across. origin is ignored for epsg:3857.
func NewProjection(crs string, origin orb.Point) (*Projection, error) {
	switch crs {
	case "epsg:3857":
		return &Projection{name: crs, fn: project.WGS84.ToMercator}, nil
	case "local":
		lon0 := origin[0] * math.Pi / 180
		lat0 := origin[1] * math.Pi / 180
		cos0 := math.Cos(lat0)
		return &Projection{name: crs, fn: func(p orb.Point) orb.Point {
			lon := p[0] * math.Pi / 180
			lat := p[1] * math.Pi / 180
			return orb.Point{earthRadius * cos0 * (lon - lon0), earthRadius * (lat - lat0)}
		}}, nil
	default:
		return nil, fmt.Errorf("unrecognized crs %q (want epsg:3857 or local)", crs)
	}
}

// Name returns the CRS name the projection was built from.
func (p *Projection) Name() string { return p.name }

// Point projects a single lon/lat point.
func (p *Projection) Point(pt orb.Point) orb.Point { return p.fn(pt) }

// LineString projects a line string into a new slice.
func (p *Projection) LineString(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, pt := range ls {
		out[i] = p.fn(pt)
	}
	return out
}

// Polygon projects a polygon (all rings) into a new value.
func (p *Projection) Polygon(poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		r := make(orb.Ring, len(ring))
		for j, pt := range ring {
			r[j] = p.fn(pt)
		}
		out[i] = r
	}
	return out
}

// MultiPolygon projects a multi-polygon into a new value.
func (p *Projection) MultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(mp))
	for i, poly := range mp {
		out[i] = p.Polygon(poly)
	}
	return out
}

// Geometry projects polygonal geometry. Other geometry types are not used
// for block-group footprints and return nil.
func (p *Projection) Geometry(g orb.Geometry) orb.Geometry {
	switch v := g.(type) {
	case orb.Polygon:
		return p.Polygon(v)
	case orb.MultiPolygon:
		return p.MultiPolygon(v)
	default:
		return nil
	}
}

// AreaKm2 returns the planar area of projected polygonal geometry in km².
func AreaKm2(g orb.Geometry) float64 {
	return math.Abs(planar.Area(g)) / 1e6
}

// Contains reports whether projected polygonal geometry contains the point.
func Contains(g orb.Geometry, pt orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(v, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, pt)
	default:
		return false
	}
}

// Length returns the planar length of a projected line string in meters.
func Length(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += planar.Distance(ls[i-1], ls[i])
	}
	return total
}
