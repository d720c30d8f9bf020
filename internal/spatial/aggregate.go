package spatial

import (
	"math"

	"github.com/paulmach/orb"

	"streetnet/internal/geo"
	"streetnet/internal/graph"
	"streetnet/internal/metrics"
)

// BGMetric is one output row: network metrics aggregated to a block group.
// Any field except GEOID may be NaN when its inputs are absent; NaN means
// "no data", never "zero infrastructure".
type BGMetric struct {
	GEOID           string
	AreaKm2         float64
	NodesInBG       float64
	EdgesKm         float64
	NodeDensity     float64
	EdgeKmDensity   float64
	BetweennessMean float64
	BetweennessP90  float64
	ASPLMean        float64
}

// Aggregate assigns nodes to the block group containing them, clips edge
// geometry against every block-group polygon, and reduces node metrics to
// per-block-group summaries. Densities are left NaN; Normalize fills them.
//
// Nodes outside every polygon belong to no block group. A block group with
// zero assigned nodes gets NaN for every node-derived column, matching the
// left-join semantics the downstream join expects. All lengths come from the
// same projection as the areas.
func Aggregate(g *graph.Graph, nm map[int64]metrics.NodeMetric, bgs []BlockGroup, proj *geo.Projection) []BGMetric {
	type bucket struct {
		btw    []float64
		aspl   []float64
		edgesM float64
	}
	buckets := make([]bucket, len(bgs))

	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		pt := proj.Point(orb.Point{n.Lon, n.Lat})
		for i := range bgs {
			if geo.Contains(bgs[i].Geometry, pt) {
				m := nm[id]
				buckets[i].btw = append(buckets[i].btw, m.Betweenness)
				buckets[i].aspl = append(buckets[i].aspl, m.ASPL)
				break
			}
		}
	}

	for _, e := range g.Edges {
		ls := g.StraightLine(e)
		if len(ls) < 2 {
			continue
		}
		pls := proj.LineString(ls)
		for i := range bgs {
			buckets[i].edgesM += geo.ClipLength(pls, bgs[i].Geometry)
		}
	}

	rows := make([]BGMetric, len(bgs))
	for i, bg := range bgs {
		row := BGMetric{
			GEOID:         bg.GEOID,
			AreaKm2:       bg.AreaKm2,
			NodeDensity:   math.NaN(),
			EdgeKmDensity: math.NaN(),
		}
		b := buckets[i]
		if len(b.btw) == 0 {
			row.NodesInBG = math.NaN()
			row.BetweennessMean = math.NaN()
			row.BetweennessP90 = math.NaN()
			row.ASPLMean = math.NaN()
		} else {
			row.NodesInBG = float64(len(b.btw))
			row.BetweennessMean = mean(b.btw)
			row.BetweennessP90 = percentile(b.btw, 90)
			row.ASPLMean = meanDefined(b.aspl)
		}
		if b.edgesM == 0 {
			row.EdgesKm = math.NaN()
		} else {
			row.EdgesKm = b.edgesM / 1000
		}
		rows[i] = row
	}
	return rows
}

// Normalize divides the aggregated counts and lengths by block-group area.
// A zero, negative, or undefined area gives NaN, as does an undefined
// numerator; the division never raises and never coerces a gap to zero.
func Normalize(rows []BGMetric) {
	for i := range rows {
		rows[i].NodeDensity = density(rows[i].NodesInBG, rows[i].AreaKm2)
		rows[i].EdgeKmDensity = density(rows[i].EdgesKm, rows[i].AreaKm2)
	}
}

func density(num, areaKm2 float64) float64 {
	if math.IsNaN(num) || math.IsNaN(areaKm2) || areaKm2 <= 0 {
		return math.NaN()
	}
	return num / areaKm2
}
