package metrics

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"streetnet/internal/graph"
)

// NodeMetric holds the per-node results, computed once per graph load and
// immutable afterward.
type NodeMetric struct {
	// Betweenness is length-weighted betweenness centrality, normalized
	// to [0,1]. Always numeric; 0 for graphs with fewer than 3 nodes.
	Betweenness float64
	// ASPL is the mean weighted shortest-path length in meters to all other
	// reachable nodes. NaN for a node with no reachable peers.
	ASPL float64
}

// Compute runs an all-sources shortest-path pass over the graph and returns
// betweenness and ASPL for every node. Cost is O(V·E log V); fine for the
// few hundred intersections of one community area.
//
// workers bounds the parallel per-source fan-out (0 = NumCPU). Each search
// reads the immutable adjacency and writes its own slot, and the reduction
// runs sequentially in node order, so output is identical at any worker
// count.
func Compute(g *graph.Graph, workers int) map[int64]NodeMetric {
	ids := g.NodeIDs()
	n := len(ids)
	out := make(map[int64]NodeMetric, n)
	if n == 0 {
		return out
	}

	idx := make(map[int64]int, n)
	for i, id := range ids {
		idx[id] = i
	}
	adj := make([][]arc, n)
	for i, id := range ids {
		arcs := g.Adj[id]
		adj[i] = make([]arc, 0, len(arcs))
		for _, a := range arcs {
			adj[i] = append(adj[i], arc{to: idx[a.To], w: a.Length})
		}
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]sourceResult, n)
	var eg errgroup.Group
	eg.SetLimit(workers)
	for s := 0; s < n; s++ {
		s := s
		eg.Go(func() error {
			results[s] = searchFrom(s, adj)
			return nil
		})
	}
	eg.Wait()

	// Sequential reduction in source order keeps float summation stable
	// across runs.
	btw := make([]float64, n)
	for s := 0; s < n; s++ {
		for v, c := range results[s].contrib {
			btw[v] += c
		}
	}

	// Normalization matches weighted betweenness over an undirected graph:
	// both traversal directions are accumulated, so 1/((n-1)(n-2)) lands
	// each score in [0,1]. Too few nodes for any interior vertex means 0.
	scale := 0.0
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}

	for i, id := range ids {
		out[id] = NodeMetric{Betweenness: btw[i] * scale, ASPL: results[i].aspl}
	}
	return out
}
