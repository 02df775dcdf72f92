package services

import (
	"container/heap"
	"fmt"
	"heavy-route-service/internal/domain"
	"math"
	"slices"
)

// RouteFinder matches coordinates to graph nodes and computes the shortest
// path between them by physical edge length.
type RouteFinder struct {
	// Zero disables the snapping distance limit.
	MaxSnapMeters float64
}

// Find resolves both endpoints to their nearest nodes and returns the
// shortest route between those nodes.
func (f RouteFinder) Find(g *domain.RoadGraph, origin, destination domain.GeoPoint) (domain.Route, error) {
	idx := NewNodeIndex(g, f.MaxSnapMeters)

	from, err := idx.NearestNode(origin)
	if err != nil {
		return domain.Route{}, fmt.Errorf("find route: origin: %w", err)
	}

	to, err := idx.NearestNode(destination)
	if err != nil {
		return domain.Route{}, fmt.Errorf("find route: destination: %w", err)
	}

	route, err := ShortestPath(g, from, to)
	if err != nil {
		return domain.Route{}, fmt.Errorf("find route: %w", err)
	}
	return route, nil
}

// NearestNode returns the node of g closest to p.
func NearestNode(g *domain.RoadGraph, p domain.GeoPoint) (domain.NodeID, error) {
	return NewNodeIndex(g, 0).NearestNode(p)
}

type queueItem struct {
	node  domain.NodeID
	dist  float64
	index int
}

type distanceQueue []*queueItem

func (q distanceQueue) Len() int { return len(q) }

func (q distanceQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }

func (q distanceQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *distanceQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *distanceQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra's algorithm from one node to another using edge
// Length as weight. Lengths are non-negative by graph construction.
//
// Stale heap entries are skipped on pop instead of decreasing keys in place.
// When from equals to the result is a single-node route of zero length.
func ShortestPath(g *domain.RoadGraph, from, to domain.NodeID) (domain.Route, error) {
	if !g.HasNode(from) {
		return domain.Route{}, fmt.Errorf("shortest path: origin node %d: %w", from, domain.ErrNodeNotFound)
	}
	if !g.HasNode(to) {
		return domain.Route{}, fmt.Errorf("shortest path: destination node %d: %w", to, domain.ErrNodeNotFound)
	}

	if from == to {
		return domain.Route{Nodes: []domain.NodeID{from}, Edges: []domain.EdgeRef{}, Length: 0}, nil
	}

	dist := map[domain.NodeID]float64{from: 0}
	prev := make(map[domain.NodeID]domain.EdgeRef)
	settled := make(map[domain.NodeID]struct{})

	q := &distanceQueue{}
	heap.Push(q, &queueItem{node: from, dist: 0})

	for q.Len() > 0 {
		cur := heap.Pop(q).(*queueItem)
		if _, done := settled[cur.node]; done {
			continue
		}
		settled[cur.node] = struct{}{}

		if cur.node == to {
			break
		}

		for _, e := range g.OutEdges(cur.node) {
			if _, done := settled[e.To]; done {
				continue
			}
			nd := cur.dist + e.Length
			if old, ok := dist[e.To]; ok && nd >= old {
				continue
			}
			dist[e.To] = nd
			prev[e.To] = e.Ref()
			heap.Push(q, &queueItem{node: e.To, dist: nd})
		}
	}

	total, ok := dist[to]
	if !ok || math.IsInf(total, 1) {
		return domain.Route{}, fmt.Errorf("shortest path %d -> %d: %w", from, to, domain.ErrNoRouteFound)
	}

	nodes := []domain.NodeID{to}
	edges := []domain.EdgeRef{}
	for at := to; at != from; {
		ref := prev[at]
		edges = append(edges, ref)
		nodes = append(nodes, ref.From)
		at = ref.From
	}
	slices.Reverse(nodes)
	slices.Reverse(edges)

	return domain.Route{Nodes: nodes, Edges: edges, Length: total}, nil
}
