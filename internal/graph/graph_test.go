package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLargestComponent_KeepsBiggest(t *testing.T) {
	g := New()
	// Component A: 1-2-3. Component B: 10-11.
	for _, id := range []int64{1, 2, 3, 10, 11} {
		g.AddNode(id, 0, 0)
	}
	g.AddEdge(1, 2, 100, nil)
	g.AddEdge(2, 3, 100, nil)
	g.AddEdge(10, 11, 100, nil)

	lc := g.LargestComponent()
	if len(lc.Nodes) != 3 {
		t.Fatalf("largest component has %d nodes, want 3", len(lc.Nodes))
	}
	for _, id := range []int64{1, 2, 3} {
		if _, ok := lc.Nodes[id]; !ok {
			t.Errorf("node %d missing from largest component", id)
		}
	}
	if _, ok := lc.Nodes[10]; ok {
		t.Error("node 10 belongs to the discarded fragment")
	}
	if len(lc.Edges) != 2 {
		t.Errorf("largest component has %d edges, want 2", len(lc.Edges))
	}
}

func TestLargestComponent_ConnectedUnchanged(t *testing.T) {
	g := New()
	g.AddNode(1, 0, 0)
	g.AddNode(2, 1, 1)
	g.AddEdge(1, 2, 50, nil)

	if lc := g.LargestComponent(); lc != g {
		t.Error("connected graph should be returned unchanged")
	}
}

func TestLargestComponent_ReductionIsConnected(t *testing.T) {
	g := New()
	for id := int64(1); id <= 6; id++ {
		g.AddNode(id, 0, 0)
	}
	g.AddEdge(1, 2, 1, nil)
	g.AddEdge(3, 4, 1, nil)
	g.AddEdge(4, 5, 1, nil)
	// 6 isolated.

	lc := g.LargestComponent()
	if len(lc.Nodes) == 0 {
		t.Fatal("reduction of a non-empty graph must be non-empty")
	}
	// Every node reachable from the first: BFS from any node covers all.
	ids := lc.NodeIDs()
	seen := map[int64]bool{ids[0]: true}
	queue := []int64{ids[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, arc := range lc.Adj[cur] {
			if !seen[arc.To] {
				seen[arc.To] = true
				queue = append(queue, arc.To)
			}
		}
	}
	if len(seen) != len(lc.Nodes) {
		t.Errorf("reduced graph not connected: reached %d of %d", len(seen), len(lc.Nodes))
	}
}

func TestNodeIDs_Sorted(t *testing.T) {
	g := New()
	for _, id := range []int64{42, 7, 19} {
		g.AddNode(id, 0, 0)
	}
	ids := g.NodeIDs()
	if len(ids) != 3 || ids[0] != 7 || ids[1] != 19 || ids[2] != 42 {
		t.Errorf("NodeIDs = %v, want [7 19 42]", ids)
	}
}

func TestStraightLine_Fallback(t *testing.T) {
	g := New()
	g.AddNode(1, -87.6, 41.7)
	g.AddNode(2, -87.5, 41.8)
	g.AddEdge(1, 2, 100, nil)

	ls := g.StraightLine(g.Edges[0])
	if len(ls) != 2 {
		t.Fatalf("fallback geometry has %d points, want 2", len(ls))
	}
	if ls[0][0] != -87.6 || ls[1][1] != 41.8 {
		t.Errorf("fallback geometry = %v", ls)
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_CSVPair(t *testing.T) {
	dir := t.TempDir()
	nodes := writeFile(t, dir, "nodes.csv",
		"osmid,x,y\n1,-87.66,41.69\n2,-87.65,41.69\n3,-87.65,41.70\nbad,x,y\n")
	edges := writeFile(t, dir, "edges.csv",
		"u,v,length,geometry\n"+
			"1,2,100,\"LINESTRING (-87.66 41.69, -87.65 41.69)\"\n"+
			"2,3,150,\n"+
			"2,99,50,\n")

	g, err := Load(nodes, edges)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3 (malformed row skipped)", len(g.Nodes))
	}
	if len(g.Edges) != 2 {
		t.Errorf("edges = %d, want 2 (unknown-node edge skipped)", len(g.Edges))
	}
	if len(g.Edges[0].Geometry) != 2 {
		t.Errorf("edge 0 geometry = %v, want 2 points", g.Edges[0].Geometry)
	}
	if g.Edges[1].Geometry != nil {
		t.Errorf("edge 1 should have no geometry")
	}
	if len(g.Adj[2]) != 2 {
		t.Errorf("adjacency of node 2 = %d arcs, want 2", len(g.Adj[2]))
	}
}

func TestLoad_ZeroNodesFatal(t *testing.T) {
	dir := t.TempDir()
	nodes := writeFile(t, dir, "nodes.csv", "osmid,x,y\n")
	edges := writeFile(t, dir, "edges.csv", "u,v,length\n")
	if _, err := Load(nodes, edges); err == nil {
		t.Error("zero-node graph must be a fatal load error")
	}
}

func TestLoad_MissingFileFatal(t *testing.T) {
	dir := t.TempDir()
	edges := writeFile(t, dir, "edges.csv", "u,v,length\n")
	if _, err := Load(filepath.Join(dir, "nope.csv"), edges); err == nil {
		t.Error("missing node table must be a fatal load error")
	}
}
