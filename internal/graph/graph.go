package graph

import (
	"sort"

	"github.com/paulmach/orb"
)

// Node is a street intersection or endpoint with geographic coordinates.
type Node struct {
	ID  int64
	Lon float64
	Lat float64
}

// Edge is a road segment between two nodes. Length is meters as recorded by
// the network build; Geometry is the segment shape in lon/lat and may be nil,
// in which case the straight line between the endpoints stands in for it.
type Edge struct {
	U, V     int64
	Length   float64
	Geometry orb.LineString
}

// Arc is one direction of an edge in the adjacency list.
type Arc struct {
	To     int64
	Length float64
}

// Graph is a street network treated as undirected for traversal.
type Graph struct {
	Nodes map[int64]*Node
	Edges []Edge
	Adj   map[int64][]Arc
}

// New creates an empty Graph with initialized maps.
func New() *Graph {
	return &Graph{
		Nodes: make(map[int64]*Node),
		Adj:   make(map[int64][]Arc),
	}
}

// AddNode registers an intersection. Re-adding an ID overwrites coordinates.
func (g *Graph) AddNode(id int64, lon, lat float64) {
	g.Nodes[id] = &Node{ID: id, Lon: lon, Lat: lat}
}

// AddEdge adds a road segment and both traversal directions.
// Both endpoints must already exist.
func (g *Graph) AddEdge(u, v int64, length float64, geom orb.LineString) {
	g.Edges = append(g.Edges, Edge{U: u, V: v, Length: length, Geometry: geom})
	g.Adj[u] = append(g.Adj[u], Arc{To: v, Length: length})
	g.Adj[v] = append(g.Adj[v], Arc{To: u, Length: length})
}

// NodeIDs returns all node IDs in ascending order. Every iteration over the
// graph goes through this so runs are deterministic.
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// StraightLine returns the edge geometry, falling back to the straight
// segment between its endpoint nodes when no shape was recorded.
func (g *Graph) StraightLine(e Edge) orb.LineString {
	if len(e.Geometry) >= 2 {
		return e.Geometry
	}
	u, uok := g.Nodes[e.U]
	v, vok := g.Nodes[e.V]
	if !uok || !vok {
		return nil
	}
	return orb.LineString{{u.Lon, u.Lat}, {v.Lon, v.Lat}}
}

// LargestComponent returns the graph restricted to its largest connected
// component, treating edges as undirected. A fully connected graph is
// returned unchanged. Shortest-path distances within the result are always
// finite between any two nodes.
func (g *Graph) LargestComponent() *Graph {
	if len(g.Nodes) == 0 {
		return g
	}

	visited := make(map[int64]bool, len(g.Nodes))
	var best []int64

	// Seed BFS in ascending ID order so ties between equal-size components
	// resolve the same way every run.
	for _, start := range g.NodeIDs() {
		if visited[start] {
			continue
		}
		comp := []int64{start}
		visited[start] = true
		for i := 0; i < len(comp); i++ {
			for _, arc := range g.Adj[comp[i]] {
				if !visited[arc.To] {
					visited[arc.To] = true
					comp = append(comp, arc.To)
				}
			}
		}
		if len(comp) > len(best) {
			best = comp
		}
	}

	if len(best) == len(g.Nodes) {
		return g
	}

	keep := make(map[int64]bool, len(best))
	for _, id := range best {
		keep[id] = true
	}

	sub := New()
	for id, n := range g.Nodes {
		if keep[id] {
			sub.AddNode(id, n.Lon, n.Lat)
		}
	}
	for _, e := range g.Edges {
		if keep[e.U] && keep[e.V] {
			sub.AddEdge(e.U, e.V, e.Length, e.Geometry)
		}
	}
	return sub
}
