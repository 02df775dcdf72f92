package overpass

import (
	"context"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/ports"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roadsFixture = `{
  "elements": [
    {"type": "way", "id": 10, "nodes": [1, 2, 3], "tags": {"highway": "primary", "oneway": "yes", "name": "Hafenstrasse"}},
    {"type": "way", "id": 11, "nodes": [3, 4], "tags": {"highway": "secondary", "oneway": "-1"}},
    {"type": "way", "id": 12, "nodes": [4, 5], "tags": {"highway": "residential;unclassified", "width": "3"}},
    {"type": "way", "id": 13, "nodes": [5, 6, 5], "tags": {"highway": "tertiary", "junction": "roundabout"}},
    {"type": "way", "id": 14, "nodes": [6, 99], "tags": {"highway": "trunk"}},
    {"type": "node", "id": 1, "lat": 53.5000, "lon": 9.9000},
    {"type": "node", "id": 2, "lat": 53.5010, "lon": 9.9000},
    {"type": "node", "id": 3, "lat": 53.5020, "lon": 9.9000},
    {"type": "node", "id": 4, "lat": 53.5020, "lon": 9.9010},
    {"type": "node", "id": 5, "lat": 53.5020, "lon": 9.9020},
    {"type": "node", "id": 6, "lat": 53.5025, "lon": 9.9025}
  ]
}`

func newTestClient(t *testing.T, body string, gotQuery *string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		if gotQuery != nil {
			*gotQuery = r.PostForm.Get("data")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, Options{MaxAttempts: 1, HTTPClient: srv.Client()})
}

func hasEdge(g *domain.RoadGraph, from, to domain.NodeID) bool {
	_, ok := g.Edge(domain.EdgeRef{From: from, To: to})
	return ok
}

func TestFetchDrivable(t *testing.T) {
	var q string
	c := newTestClient(t, roadsFixture, &q)

	bbox, err := domain.NewBoundingBox(domain.GeoPoint{Lat: 53.5, Lon: 9.9}, domain.GeoPoint{Lat: 53.51, Lon: 9.91}, 0.05)
	require.NoError(t, err)

	g, err := c.FetchDrivable(context.Background(), bbox)
	require.NoError(t, err)

	assert.Contains(t, q, "[out:json]")
	assert.Contains(t, q, `way["highway"]`)
	assert.Contains(t, q, "footway")
	assert.Contains(t, q, "(53.4500000,9.8500000,53.5600000,9.9600000)")
	assert.Contains(t, q, "(._;>;);")

	assert.Equal(t, 6, g.NodeCount())

	assert.True(t, hasEdge(g, 1, 2))
	assert.True(t, hasEdge(g, 2, 3))
	assert.False(t, hasEdge(g, 2, 1), "oneway=yes is forward only")

	assert.True(t, hasEdge(g, 4, 3))
	assert.False(t, hasEdge(g, 3, 4), "oneway=-1 is reverse only")

	assert.True(t, hasEdge(g, 4, 5))
	assert.True(t, hasEdge(g, 5, 4))

	assert.True(t, hasEdge(g, 5, 6))
	assert.True(t, hasEdge(g, 6, 5))
	assert.Len(t, g.OutEdges(5), 2, "roundabout adds 5->6 and 5->4 only")

	assert.False(t, g.HasNode(99))

	e, ok := g.Edge(domain.EdgeRef{From: 1, To: 2})
	require.True(t, ok)
	assert.Equal(t, "Hafenstrasse", e.Name)
	assert.Equal(t, int64(10), e.WayID)
	assert.InDelta(t, geo.Distance(orb.Point{9.9, 53.5}, orb.Point{9.9, 53.501}), e.Length, 1e-6)
	assert.InDelta(t, 111.2, e.Length, 0.5)

	e, ok = g.Edge(domain.EdgeRef{From: 4, To: 5})
	require.True(t, ok)
	assert.True(t, e.Highway.IsMultiple())
	assert.Equal(t, []string{"residential", "unclassified"}, e.Highway.Values())
	assert.Equal(t, "3", e.Width)
}

func TestFetchDrivableUpstreamError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{MaxAttempts: 1, HTTPClient: srv.Client()})
	bbox, err := domain.NewBoundingBox(domain.GeoPoint{Lat: 1, Lon: 1}, domain.GeoPoint{Lat: 2, Lon: 2}, 0.05)
	require.NoError(t, err)

	_, err = c.FetchDrivable(context.Background(), bbox)

	assert.ErrorContains(t, err, "429")
	assert.Equal(t, int32(1), calls.Load(), "single attempt by default")
}

func TestAddSegmentSkipsRejectedEdges(t *testing.T) {
	g := domain.NewRoadGraph()
	g.AddNode(domain.Node{ID: 1, Lat: 0, Lon: 0})
	g.AddNode(domain.Node{ID: 2, Lat: 0, Lon: 0.001})

	assert.True(t, addSegment(g, domain.Edge{From: 1, To: 2, Length: 111, WayID: 10}))
	assert.False(t, addSegment(g, domain.Edge{From: 1, To: 3, Length: 111, WayID: 10}), "unknown node")
	assert.False(t, addSegment(g, domain.Edge{From: 2, To: 1, Length: -1, WayID: 10}), "negative length")

	assert.Equal(t, 1, g.EdgeCount())
}

func TestDirection(t *testing.T) {
	tests := []struct {
		tags map[string]string
		want travel
	}{
		{map[string]string{}, bothWays},
		{map[string]string{"oneway": "yes"}, forwardOnly},
		{map[string]string{"oneway": "true"}, forwardOnly},
		{map[string]string{"oneway": "1"}, forwardOnly},
		{map[string]string{"oneway": "-1"}, reverseOnly},
		{map[string]string{"oneway": "reverse"}, reverseOnly},
		{map[string]string{"junction": "roundabout"}, forwardOnly},
		{map[string]string{"junction": "roundabout", "oneway": "no"}, bothWays},
		{map[string]string{"oneway": "alternating"}, bothWays},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, direction(toTags(tt.tags)), "%v", tt.tags)
	}
}

const featuresFixture = `{
  "elements": [
    {"type": "node", "id": 100, "lat": 53.5005, "lon": 9.9001, "tags": {"amenity": "fuel", "name": "Diesel"}},
    {"type": "node", "id": 101, "lat": 53.5010, "lon": 9.9010},
    {"type": "node", "id": 102, "lat": 53.5010, "lon": 9.9020},
    {"type": "node", "id": 103, "lat": 53.5020, "lon": 9.9020},
    {"type": "node", "id": 104, "lat": 53.5030, "lon": 9.9030},
    {"type": "way", "id": 200, "nodes": [101, 102, 103, 101], "tags": {"amenity": "parking"}},
    {"type": "way", "id": 201, "nodes": [103, 104], "tags": {"amenity": "fuel"}},
    {"type": "way", "id": 202, "nodes": [101, 102, 103, 101]},
    {"type": "relation", "id": 300, "tags": {"amenity": "parking", "type": "multipolygon"},
      "members": [{"type": "way", "ref": 202, "role": "outer"}, {"type": "way", "ref": 201, "role": "outer"}]}
  ]
}`

func TestFind(t *testing.T) {
	var q string
	c := newTestClient(t, featuresFixture, &q)

	poly := orb.Polygon{{{9.89, 53.49}, {9.91, 53.49}, {9.91, 53.51}, {9.89, 53.51}, {9.89, 53.49}}}
	features, err := c.Find(context.Background(), poly, ports.TagFilter{Key: "amenity", Values: []string{"fuel", "parking"}})
	require.NoError(t, err)

	assert.Contains(t, q, `nwr["amenity"~"^(fuel|parking)$"]`)
	assert.Contains(t, q, `(poly:"53.490000 9.890000 53.490000 9.910000`)

	require.Len(t, features, 4)

	assert.Equal(t, "node/100", features[0].ID)
	assert.Equal(t, orb.Point{9.9001, 53.5005}, features[0].Geometry)
	assert.Equal(t, "Diesel", features[0].Tags["name"])

	assert.Equal(t, "way/200", features[1].ID)
	require.IsType(t, orb.Polygon{}, features[1].Geometry)
	assert.Len(t, features[1].Geometry.(orb.Polygon)[0], 4)

	assert.Equal(t, "way/201", features[2].ID)
	assert.IsType(t, orb.LineString{}, features[2].Geometry)

	assert.Equal(t, "relation/300", features[3].ID)
	require.IsType(t, orb.MultiPolygon{}, features[3].Geometry)
	assert.Len(t, features[3].Geometry.(orb.MultiPolygon), 1, "open outer way is dropped")
}

func TestFindEscapesValues(t *testing.T) {
	var q string
	c := newTestClient(t, `{"elements": []}`, &q)

	poly := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	features, err := c.Find(context.Background(), poly, ports.TagFilter{Key: "amenity", Values: []string{"car.wash"}})
	require.NoError(t, err)

	assert.Empty(t, features)
	assert.Contains(t, q, `car\.wash`)
}

func TestFindSkipsEmptyInput(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", Options{})

	features, err := c.Find(context.Background(), orb.Polygon{}, ports.TagFilter{Key: "amenity", Values: []string{"fuel"}})
	require.NoError(t, err)
	assert.Empty(t, features)
}
