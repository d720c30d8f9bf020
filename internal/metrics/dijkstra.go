package metrics

import (
	"container/heap"
	"math"
)

// arc is one directed adjacency entry in the index-compressed graph.
type arc struct {
	to int
	w  float64
}

// sourceResult holds everything one single-source search contributes:
// the source's mean shortest-path length and its betweenness accumulation
// for every other node. Slots are disjoint per source, so searches can run
// in parallel and reduce deterministically afterwards.
type sourceResult struct {
	aspl    float64
	contrib []float64
}

// searchFrom runs weighted Dijkstra from source s, counting shortest paths,
// then accumulates Brandes dependencies in reverse finalization order.
func searchFrom(s int, adj [][]arc) sourceResult {
	n := len(adj)
	inf := math.Inf(1)

	dist := make([]float64, n)
	sigma := make([]float64, n)
	preds := make([][]int, n)
	final := make([]bool, n)
	order := make([]int, 0, n)

	for i := range dist {
		dist[i] = inf
	}
	dist[s] = 0
	sigma[s] = 1

	pq := &priorityQueue{{node: s, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		it := heap.Pop(pq).(pqItem)
		v := it.node
		if final[v] {
			continue
		}
		final[v] = true
		order = append(order, v)

		for _, a := range adj[v] {
			w := a.to
			if final[w] {
				continue
			}
			nd := dist[v] + a.w
			if nd < dist[w] {
				dist[w] = nd
				sigma[w] = sigma[v]
				preds[w] = append(preds[w][:0], v)
				heap.Push(pq, pqItem{node: w, dist: nd})
			} else if nd == dist[w] {
				sigma[w] += sigma[v]
				preds[w] = append(preds[w], v)
			}
		}
	}

	// Mean distance to reachable peers. A source with no reachable peer is
	// NaN, never zero: "isolated" must stay distinguishable from
	// "zero-distance neighbor" all the way downstream.
	res := sourceResult{aspl: math.NaN(), contrib: make([]float64, n)}
	if len(order) > 1 {
		var sum float64
		for _, v := range order {
			if v != s {
				sum += dist[v]
			}
		}
		res.aspl = sum / float64(len(order)-1)
	}

	// Dependency accumulation (Brandes). Nodes leave in reverse
	// finalization order, i.e. nonincreasing distance.
	delta := make([]float64, n)
	for i := len(order) - 1; i >= 0; i-- {
		w := order[i]
		for _, v := range preds[w] {
			delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
		}
		if w != s {
			res.contrib[w] = delta[w]
		}
	}
	return res
}

// Priority queue for Dijkstra
type pqItem struct {
	node int
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
