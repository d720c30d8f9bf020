package geo

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ClipLength returns the length in meters of the portions of a projected
// line string that lie inside projected polygonal geometry. An edge crossing
// a polygon boundary contributes only the inside fraction of each segment,
// so summing ClipLength over a set of polygons that tile the line's extent
// recovers the full line length.
func ClipLength(ls orb.LineString, g orb.Geometry) float64 {
	var mp orb.MultiPolygon
	switch v := g.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{v}
	case orb.MultiPolygon:
		mp = v
	default:
		return 0
	}

	var total float64
	for i := 1; i < len(ls); i++ {
		total += segmentInsideLength(ls[i-1], ls[i], mp)
	}
	return total
}

// segmentInsideLength splits segment a-b at every boundary crossing and sums
// the pieces whose midpoints fall inside the multi-polygon.
func segmentInsideLength(a, b orb.Point, mp orb.MultiPolygon) float64 {
	segLen := planar.Distance(a, b)
	if segLen == 0 {
		return 0
	}

	ts := []float64{0, 1}
	for _, poly := range mp {
		for _, ring := range poly {
			for j := 1; j < len(ring); j++ {
				if t, ok := crossingParam(a, b, ring[j-1], ring[j]); ok {
					ts = append(ts, t)
				}
			}
		}
	}
	sort.Float64s(ts)

	var inside float64
	for i := 1; i < len(ts); i++ {
		t0, t1 := ts[i-1], ts[i]
		if t1 <= t0 {
			continue
		}
		mid := (t0 + t1) / 2
		pt := orb.Point{a[0] + (b[0]-a[0])*mid, a[1] + (b[1]-a[1])*mid}
		if planar.MultiPolygonContains(mp, pt) {
			inside += (t1 - t0) * segLen
		}
	}
	return inside
}

// crossingParam returns the parameter t in [0,1] along a-b where it crosses
// segment c-d. Parallel and collinear pairs report no crossing; the midpoint
// containment test resolves those cases.
func crossingParam(a, b, c, d orb.Point) (float64, bool) {
	r0, r1 := b[0]-a[0], b[1]-a[1]
	s0, s1 := d[0]-c[0], d[1]-c[1]
	denom := r0*s1 - r1*s0
	if denom == 0 {
		return 0, false
	}
	t := ((c[0]-a[0])*s1 - (c[1]-a[1])*s0) / denom
	u := ((c[0]-a[0])*r1 - (c[1]-a[1])*r0) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}
