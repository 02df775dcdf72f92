package domain

import (
	"fmt"
	"reflect"
	"slices"
)

type NodeID int64

// Road network intersection or shape point.
type Node struct {
	ID  NodeID
	Lat float64
	Lon float64
}

func (n Node) Point() GeoPoint { return GeoPoint{Lat: n.Lat, Lon: n.Lon} }

// EdgeRef identifies one edge of a multigraph. Key disambiguates parallel
// edges between the same ordered node pair.
type EdgeRef struct {
	From NodeID
	To   NodeID
	Key  int
}

// Directed road segment between two nodes.
type Edge struct {
	From    NodeID
	To      NodeID
	Key     int
	Highway HighwayType
	// Raw width tag as published by the data source; empty when absent.
	Width  string
	Length float64 // meters
	WayID  int64
	Name   string
}

func (e Edge) Ref() EdgeRef { return EdgeRef{From: e.From, To: e.To, Key: e.Key} }

// RoadGraph is a mutable directed multigraph of road segments.
// It is not safe for concurrent mutation; each request owns its own graph.
type RoadGraph struct {
	nodes map[NodeID]Node
	edges map[EdgeRef]Edge
	// Adjacency in insertion order, which keeps traversal deterministic.
	out     map[NodeID][]EdgeRef
	in      map[NodeID][]EdgeRef
	nextKey map[[2]NodeID]int
}

func NewRoadGraph() *RoadGraph {
	return &RoadGraph{
		nodes:   make(map[NodeID]Node),
		edges:   make(map[EdgeRef]Edge),
		out:     make(map[NodeID][]EdgeRef),
		in:      make(map[NodeID][]EdgeRef),
		nextKey: make(map[[2]NodeID]int),
	}
}

// AddNode inserts or replaces a node.
func (g *RoadGraph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge inserts e and returns its reference. The key is assigned by the
// graph so that parallel edges never collide.
func (g *RoadGraph) AddEdge(e Edge) (EdgeRef, error) {
	if _, ok := g.nodes[e.From]; !ok {
		return EdgeRef{}, fmt.Errorf("add edge: from node %d: %w", e.From, ErrUnknownNode)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return EdgeRef{}, fmt.Errorf("add edge: to node %d: %w", e.To, ErrUnknownNode)
	}
	if e.Length < 0 {
		return EdgeRef{}, fmt.Errorf("add edge %d->%d: length=%v: %w", e.From, e.To, e.Length, ErrNegativeLength)
	}

	pair := [2]NodeID{e.From, e.To}
	e.Key = g.nextKey[pair]
	g.nextKey[pair] = e.Key + 1

	ref := e.Ref()
	g.edges[ref] = e
	g.out[e.From] = append(g.out[e.From], ref)
	g.in[e.To] = append(g.in[e.To], ref)

	return ref, nil
}

// RemoveEdge deletes the referenced edge. Unknown references are ignored.
func (g *RoadGraph) RemoveEdge(ref EdgeRef) {
	if _, ok := g.edges[ref]; !ok {
		return
	}
	delete(g.edges, ref)
	g.out[ref.From] = removeRef(g.out[ref.From], ref)
	g.in[ref.To] = removeRef(g.in[ref.To], ref)
}

// RemoveNode deletes a node together with every incident edge.
func (g *RoadGraph) RemoveNode(id NodeID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}

	incident := make([]EdgeRef, 0, len(g.out[id])+len(g.in[id]))
	incident = append(incident, g.out[id]...)
	incident = append(incident, g.in[id]...)
	for _, ref := range incident {
		g.RemoveEdge(ref)
	}

	delete(g.nodes, id)
	delete(g.out, id)
	delete(g.in, id)
}

func (g *RoadGraph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *RoadGraph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *RoadGraph) Edge(ref EdgeRef) (Edge, bool) {
	e, ok := g.edges[ref]
	return e, ok
}

// OutEdges returns the edges leaving id in insertion order.
func (g *RoadGraph) OutEdges(id NodeID) []Edge {
	refs := g.out[id]
	out := make([]Edge, 0, len(refs))
	for _, ref := range refs {
		out = append(out, g.edges[ref])
	}
	return out
}

// Degree counts incoming plus outgoing edges; a self loop counts twice.
func (g *RoadGraph) Degree(id NodeID) int {
	return len(g.out[id]) + len(g.in[id])
}

func (g *RoadGraph) NodeCount() int { return len(g.nodes) }

func (g *RoadGraph) EdgeCount() int { return len(g.edges) }

func (g *RoadGraph) Empty() bool { return len(g.nodes) == 0 }

// Nodes returns all nodes ordered by id.
func (g *RoadGraph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Node) int { return cmpNodeID(a.ID, b.ID) })
	return out
}

// Edges returns all edges ordered by (from, to, key).
func (g *RoadGraph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if c := cmpNodeID(a.From, b.From); c != 0 {
			return c
		}
		if c := cmpNodeID(a.To, b.To); c != 0 {
			return c
		}
		return a.Key - b.Key
	})
	return out
}

// Equal reports whether both graphs hold the same nodes and edges.
func (g *RoadGraph) Equal(o *RoadGraph) bool {
	if g.NodeCount() != o.NodeCount() || g.EdgeCount() != o.EdgeCount() {
		return false
	}
	return reflect.DeepEqual(g.Nodes(), o.Nodes()) && reflect.DeepEqual(g.Edges(), o.Edges())
}

// Clone returns a deep copy that shares no mutable state with g.
func (g *RoadGraph) Clone() *RoadGraph {
	c := &RoadGraph{
		nodes:   make(map[NodeID]Node, len(g.nodes)),
		edges:   make(map[EdgeRef]Edge, len(g.edges)),
		out:     make(map[NodeID][]EdgeRef, len(g.out)),
		in:      make(map[NodeID][]EdgeRef, len(g.in)),
		nextKey: make(map[[2]NodeID]int, len(g.nextKey)),
	}
	for id, n := range g.nodes {
		c.nodes[id] = n
	}
	for ref, e := range g.edges {
		c.edges[ref] = e
	}
	for id, refs := range g.out {
		c.out[id] = slices.Clone(refs)
	}
	for id, refs := range g.in {
		c.in[id] = slices.Clone(refs)
	}
	for pair, k := range g.nextKey {
		c.nextKey[pair] = k
	}
	return c
}

func removeRef(refs []EdgeRef, ref EdgeRef) []EdgeRef {
	i := slices.Index(refs, ref)
	if i < 0 {
		return refs
	}
	return slices.Delete(refs, i, i+1)
}

func cmpNodeID(a, b NodeID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
