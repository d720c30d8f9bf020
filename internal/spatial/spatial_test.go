package spatial

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"streetnet/internal/geo"
	"streetnet/internal/graph"
	"streetnet/internal/metrics"
)

func testProjection(t *testing.T) *geo.Projection {
	t.Helper()
	p, err := geo.NewProjection("local", orb.Point{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// degSquare builds a square block-group footprint in lon/lat degrees.
func degSquare(geoid string, x0, y0, x1, y1 float64, proj *geo.Projection) BlockGroup {
	raw := orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
	g := proj.Polygon(raw)
	return BlockGroup{GEOID: geoid, Geometry: g, AreaKm2: geo.AreaKm2(g)}
}

func TestPercentile(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(vals, 90); math.Abs(got-9.1) > 1e-9 {
		t.Errorf("p90 = %v, want 9.1", got)
	}
	if got := percentile(vals, 0); got != 1 {
		t.Errorf("p0 = %v, want 1", got)
	}
	if got := percentile(vals, 100); got != 10 {
		t.Errorf("p100 = %v, want 10", got)
	}
	if got := percentile([]float64{42}, 90); got != 42 {
		t.Errorf("single-value p90 = %v, want 42", got)
	}
	if got := percentile(nil, 90); !math.IsNaN(got) {
		t.Errorf("empty p90 = %v, want NaN", got)
	}
}

func TestMeanDefined(t *testing.T) {
	nan := math.NaN()
	if got := meanDefined([]float64{100, nan, 200}); got != 150 {
		t.Errorf("meanDefined skipping NaN = %v, want 150", got)
	}
	if got := meanDefined([]float64{nan, nan}); !math.IsNaN(got) {
		t.Errorf("all-NaN meanDefined = %v, want NaN", got)
	}
}

func TestAggregate_EmptyBlockGroupStaysUndefined(t *testing.T) {
	proj := testProjection(t)
	occupied := degSquare("170317501001", 0, 0, 0.01, 0.01, proj)
	empty := degSquare("170317501002", 0.02, 0, 0.03, 0.01, proj)

	g := graph.New()
	g.AddNode(1, 0.002, 0.005)
	g.AddNode(2, 0.008, 0.005)
	g.AddEdge(1, 2, 100, nil)
	nm := metrics.Compute(g, 1)

	rows := Aggregate(g, nm, []BlockGroup{occupied, empty}, proj)
	Normalize(rows)

	occ, emp := rows[0], rows[1]
	if occ.NodesInBG != 2 {
		t.Errorf("occupied NodesInBG = %v, want 2", occ.NodesInBG)
	}
	if math.IsNaN(occ.NodeDensity) {
		t.Error("occupied NodeDensity should be defined")
	}
	if math.Abs(occ.NodeDensity-occ.NodesInBG/occ.AreaKm2) > 1e-12 {
		t.Errorf("NodeDensity = %v, want count/area = %v", occ.NodeDensity, occ.NodesInBG/occ.AreaKm2)
	}

	if !math.IsNaN(emp.NodesInBG) {
		t.Errorf("empty NodesInBG = %v, want NaN (not zero)", emp.NodesInBG)
	}
	for name, v := range map[string]float64{
		"EdgesKm":         emp.EdgesKm,
		"NodeDensity":     emp.NodeDensity,
		"EdgeKmDensity":   emp.EdgeKmDensity,
		"BetweennessMean": emp.BetweennessMean,
		"BetweennessP90":  emp.BetweennessP90,
		"ASPLMean":        emp.ASPLMean,
	} {
		if !math.IsNaN(v) {
			t.Errorf("empty block group %s = %v, want NaN", name, v)
		}
	}
	if !(emp.AreaKm2 > 0) || math.IsInf(emp.AreaKm2, 0) {
		t.Errorf("empty block group area = %v, want positive finite", emp.AreaKm2)
	}
}

func TestAggregate_EdgeLengthConservation(t *testing.T) {
	proj := testProjection(t)
	left := degSquare("170317501001", 0, 0, 0.01, 0.01, proj)
	right := degSquare("170317501002", 0.01, 0, 0.02, 0.01, proj)

	g := graph.New()
	g.AddNode(1, 0.002, 0.005)
	g.AddNode(2, 0.018, 0.005)
	g.AddEdge(1, 2, 0, nil) // recorded length unused by clipping

	rows := Aggregate(g, metrics.Compute(g, 1), []BlockGroup{left, right}, proj)

	total := geo.Length(proj.LineString(g.StraightLine(g.Edges[0]))) / 1000
	split := rows[0].EdgesKm + rows[1].EdgesKm
	if math.Abs(split-total) > 1e-9*total {
		t.Errorf("clipped edge km = %v, want %v (conservation)", split, total)
	}
	if rows[0].EdgesKm <= 0 || rows[1].EdgesKm <= 0 {
		t.Errorf("both block groups should receive a share: %v / %v", rows[0].EdgesKm, rows[1].EdgesKm)
	}
}

func TestAggregate_NodeOutsideAllPolygonsExcluded(t *testing.T) {
	proj := testProjection(t)
	bg := degSquare("170317501001", 0, 0, 0.01, 0.01, proj)

	g := graph.New()
	g.AddNode(1, 0.005, 0.005) // inside
	g.AddNode(2, 0.5, 0.5)     // far outside
	g.AddEdge(1, 2, 100, nil)

	rows := Aggregate(g, metrics.Compute(g, 1), []BlockGroup{bg}, proj)
	if rows[0].NodesInBG != 1 {
		t.Errorf("NodesInBG = %v, want 1 (outside node excluded, not defaulted)", rows[0].NodesInBG)
	}
}

func TestAggregate_AllIsolatedNodesGiveNaNASPL(t *testing.T) {
	proj := testProjection(t)
	bg := degSquare("170317501001", 0, 0, 0.01, 0.01, proj)

	// Two nodes inside the polygon, no edges at all: both isolated.
	g := graph.New()
	g.AddNode(1, 0.003, 0.005)
	g.AddNode(2, 0.007, 0.005)

	rows := Aggregate(g, metrics.Compute(g, 1), []BlockGroup{bg}, proj)
	if rows[0].NodesInBG != 2 {
		t.Fatalf("NodesInBG = %v, want 2", rows[0].NodesInBG)
	}
	if !math.IsNaN(rows[0].ASPLMean) {
		t.Errorf("ASPLMean = %v, want NaN when every member node is isolated", rows[0].ASPLMean)
	}
	if math.IsNaN(rows[0].BetweennessMean) {
		t.Error("BetweennessMean should stay numeric (zeros) for isolated nodes")
	}
}

func TestNormalize_ZeroAreaGivesNaN(t *testing.T) {
	rows := []BGMetric{{GEOID: "x", AreaKm2: 0, NodesInBG: 5, EdgesKm: 2}}
	Normalize(rows)
	if !math.IsNaN(rows[0].NodeDensity) || !math.IsNaN(rows[0].EdgeKmDensity) {
		t.Errorf("densities over zero area = %v/%v, want NaN", rows[0].NodeDensity, rows[0].EdgeKmDensity)
	}
}

func TestWriteCSV_NaNAsEmptyAndIdempotent(t *testing.T) {
	dir := t.TempDir()
	rows := []BGMetric{
		{GEOID: "170317501001", AreaKm2: 1.25, NodesInBG: 3, EdgesKm: 2.5,
			NodeDensity: 2.4, EdgeKmDensity: 2, BetweennessMean: 0.1,
			BetweennessP90: 0.2, ASPLMean: 900},
		{GEOID: "170317501002", AreaKm2: 0.5, NodesInBG: math.NaN(),
			EdgesKm: math.NaN(), NodeDensity: math.NaN(), EdgeKmDensity: math.NaN(),
			BetweennessMean: math.NaN(), BetweennessP90: math.NaN(), ASPLMean: math.NaN()},
	}

	p1 := filepath.Join(dir, "a.csv")
	p2 := filepath.Join(dir, "b.csv")
	if err := WriteCSV(p1, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if err := WriteCSV(p2, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	b1, _ := os.ReadFile(p1)
	b2, _ := os.ReadFile(p2)
	if string(b1) != string(b2) {
		t.Error("two writes of identical rows must be byte-identical")
	}
	want := "170317501002,0.5,,,,,,,\n"
	if got := string(b1); !strings.Contains(got, want) {
		t.Errorf("output missing empty-cell row %q:\n%s", want, got)
	}
	if strings.Contains(string(b1), "NaN") {
		t.Errorf("undefined values must not serialize as NaN:\n%s", b1)
	}
}

func TestLoadBlockGroups(t *testing.T) {
	dir := t.TempDir()
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"GEOID_BG":"170317501002"},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
		{"type":"Feature","properties":{"GEOID":170317501001},
		 "geometry":{"type":"Polygon","coordinates":[[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}
	]}`
	path := filepath.Join(dir, "bg.geojson")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadBlockGroups(path)
	if err != nil {
		t.Fatalf("LoadBlockGroups: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("loaded %d features, want 2", len(raw))
	}
	// Sorted by GEOID; numeric property normalized to 12 chars.
	if raw[0].GEOID != "170317501001" || raw[1].GEOID != "170317501002" {
		t.Errorf("GEOIDs = %s, %s", raw[0].GEOID, raw[1].GEOID)
	}

	c := Center(raw)
	if c[0] < 0 || c[0] > 3 || c[1] < 0 || c[1] > 1 {
		t.Errorf("Center = %v, want within collection bounds", c)
	}
}

func TestLoadBlockGroups_DuplicateGEOIDFatal(t *testing.T) {
	dir := t.TempDir()
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"GEOID_BG":"170317501001"},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
		{"type":"Feature","properties":{"GEOID_BG":"170317501001"},
		 "geometry":{"type":"Polygon","coordinates":[[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}
	]}`
	path := filepath.Join(dir, "bg.geojson")
	os.WriteFile(path, []byte(body), 0644)
	if _, err := LoadBlockGroups(path); err == nil {
		t.Error("duplicate GEOID must be fatal")
	}
}

func TestLoadBlockGroups_MissingOrEmptyFatal(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadBlockGroups(filepath.Join(dir, "nope.geojson")); err == nil {
		t.Error("missing file must be fatal")
	}
	empty := filepath.Join(dir, "empty.geojson")
	os.WriteFile(empty, []byte(`{"type":"FeatureCollection","features":[]}`), 0644)
	if _, err := LoadBlockGroups(empty); err == nil {
		t.Error("zero features must be fatal")
	}
}
