package domain

import "fmt"

// Route is an ordered node sequence from origin node to destination node.
// Each adjacent pair is joined by the edge listed at the same position in Edges.
// A single-node route has no edges and zero length.
type Route struct {
	Nodes  []NodeID
	Edges  []EdgeRef
	Length float64 // meters
}

// Points resolves the route nodes to coordinates in g.
func (r Route) Points(g *RoadGraph) ([]GeoPoint, error) {
	out := make([]GeoPoint, 0, len(r.Nodes))
	for _, id := range r.Nodes {
		n, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("route points: node %d: %w", id, ErrUnknownNode)
		}
		out = append(out, n.Point())
	}
	return out, nil
}

// A map feature found near a route. Name is empty when the feature has none.
type PointOfInterest struct {
	FeatureID string
	Position  GeoPoint
	Amenity   string
	Name      string
}

// Node and edge counts of the fetched network before and after filtering.
type GraphStats struct {
	FetchedNodes  int
	FetchedEdges  int
	FilteredNodes int
	FilteredEdges int
}

// Represents the planned heavy-vehicle route between two endpoints.
// POIsAvailable is false when the corridor lookup failed and the route was
// delivered without annotations.
type RoutePlan struct {
	Origin        Marker
	Destination   Marker
	Route         Route
	Points        []GeoPoint
	POIs          []PointOfInterest
	POIsAvailable bool
	Stats         GraphStats
}
