package services

import (
	"heavy-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, nodes []domain.Node, edges []domain.Edge) *domain.RoadGraph {
	t.Helper()

	g := domain.NewRoadGraph()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		_, err := g.AddEdge(e)
		require.NoError(t, err)
	}
	return g
}

func mixedGraph(t *testing.T) *domain.RoadGraph {
	return buildGraph(t,
		[]domain.Node{
			{ID: 1, Lat: 0, Lon: 0},
			{ID: 2, Lat: 0, Lon: 0.01},
			{ID: 3, Lat: 0.01, Lon: 0.01},
			{ID: 4, Lat: 0.01, Lon: 0},
			{ID: 5, Lat: 0.02, Lon: 0},
		},
		[]domain.Edge{
			{From: 1, To: 2, Length: 100, Highway: domain.SingleHighway("primary")},
			{From: 2, To: 3, Length: 100, Highway: domain.SingleHighway("residential")},
			{From: 3, To: 4, Length: 100, Highway: domain.SingleHighway("trunk"), Width: "3.5"},
			{From: 1, To: 3, Length: 140, Highway: domain.SingleHighway("trunk"), Width: "5"},
			{From: 2, To: 4, Length: 140, Highway: domain.SingleHighway("primary"), Width: "wide"},
			{From: 5, To: 4, Length: 100, Highway: domain.SingleHighway("service")},
		},
	)
}

func TestHeavyVehicleFilterApply(t *testing.T) {
	g := mixedGraph(t)
	f := NewHeavyVehicleFilter(DefaultFilterPolicy())

	out, report := f.Apply(g)

	assert.Equal(t, FilterReport{
		RemovedByType:  2,
		RemovedByWidth: 1,
		RemovedNodes:   1,
		KeptEdges:      3,
		KeptNodes:      4,
	}, report)

	_, ok := out.Edge(domain.EdgeRef{From: 2, To: 3})
	assert.False(t, ok, "residential edge should be removed")
	_, ok = out.Edge(domain.EdgeRef{From: 3, To: 4})
	assert.False(t, ok, "3.5m edge should be removed")
	_, ok = out.Edge(domain.EdgeRef{From: 1, To: 3})
	assert.True(t, ok, "5m trunk should be kept")
	_, ok = out.Edge(domain.EdgeRef{From: 2, To: 4})
	assert.True(t, ok, "non-numeric width should be kept")

	assert.False(t, out.HasNode(5), "isolated node should be removed")
	for _, n := range out.Nodes() {
		assert.Positive(t, out.Degree(n.ID), "node %d", n.ID)
	}
}

func TestHeavyVehicleFilterLeavesInputUntouched(t *testing.T) {
	g := mixedGraph(t)
	before := g.Clone()

	NewHeavyVehicleFilter(DefaultFilterPolicy()).Apply(g)

	assert.True(t, g.Equal(before))
}

func TestHeavyVehicleFilterIsIdempotent(t *testing.T) {
	f := NewHeavyVehicleFilter(DefaultFilterPolicy())

	once, _ := f.Apply(mixedGraph(t))
	twice, report := f.Apply(once)

	assert.True(t, once.Equal(twice))
	assert.Zero(t, report.RemovedByType+report.RemovedByWidth+report.RemovedNodes)
}

func TestHeavyVehicleFilterEdgeRules(t *testing.T) {
	tests := []struct {
		name    string
		highway domain.HighwayType
		width   string
		kept    bool
	}{
		{"primary", domain.SingleHighway("primary"), "", true},
		{"residential", domain.SingleHighway("residential"), "", false},
		{"every default class", domain.SingleHighway("bridleway"), "", false},
		{"case sensitive", domain.SingleHighway("Residential"), "", true},
		{"missing highway", domain.HighwayType{}, "", true},
		{"multiple uses first", domain.MultipleHighway("residential", "primary"), "", false},
		{"multiple allowed first", domain.MultipleHighway("primary", "residential"), "", true},
		{"width at minimum", domain.SingleHighway("primary"), "4", true},
		{"width below minimum", domain.SingleHighway("primary"), "3.99", false},
		{"width padded", domain.SingleHighway("primary"), " 2.5 ", false},
		{"width with unit", domain.SingleHighway("primary"), "3 m", true},
		{"width text", domain.SingleHighway("primary"), "narrow", true},
	}

	f := NewHeavyVehicleFilter(DefaultFilterPolicy())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t,
				[]domain.Node{{ID: 1}, {ID: 2, Lon: 0.001}},
				[]domain.Edge{{From: 1, To: 2, Length: 50, Highway: tt.highway, Width: tt.width}},
			)

			out, _ := f.Apply(g)

			assert.Equal(t, tt.kept, out.EdgeCount() == 1)
		})
	}
}

func TestHeavyVehicleFilterCustomPolicy(t *testing.T) {
	g := mixedGraph(t)
	f := NewHeavyVehicleFilter(FilterPolicy{Disallowed: []string{"trunk"}, MinWidth: 0})

	out, report := f.Apply(g)

	assert.Equal(t, 2, report.RemovedByType)
	assert.Zero(t, report.RemovedByWidth)
	_, ok := out.Edge(domain.EdgeRef{From: 2, To: 3})
	assert.True(t, ok)
}

func TestHeavyVehicleFilterRemovesWholeResidentialChain(t *testing.T) {
	residential := domain.SingleHighway("residential")
	g := buildGraph(t,
		[]domain.Node{
			{ID: 1, Lat: 0, Lon: 0},
			{ID: 2, Lat: 0, Lon: 0.001},
			{ID: 3, Lat: 0, Lon: 0.002},
		},
		[]domain.Edge{
			{From: 1, To: 2, Length: 111, Highway: residential},
			{From: 2, To: 3, Length: 111, Highway: residential},
		},
	)

	out, report := NewHeavyVehicleFilter(DefaultFilterPolicy()).Apply(g)

	assert.True(t, out.Empty())
	assert.Zero(t, out.EdgeCount())
	assert.Equal(t, FilterReport{RemovedByType: 2, RemovedNodes: 3}, report)
}
