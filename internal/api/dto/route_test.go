package dto

import (
	"heavy-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodePolyline(t *testing.T) {
	points := []domain.GeoPoint{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", EncodePolyline(points))
	assert.Empty(t, EncodePolyline(nil))
}

func TestNewRouteResponse(t *testing.T) {
	plan := &domain.RoutePlan{
		Origin:      domain.Marker{Label: "CityA", Point: domain.GeoPoint{Lat: 10, Lon: 10}},
		Destination: domain.Marker{Label: "CityB", Point: domain.GeoPoint{Lat: 10.1, Lon: 10.1}},
		Route:       domain.Route{Nodes: []domain.NodeID{1, 2}, Length: 1234.5},
		Points:      []domain.GeoPoint{{Lat: 10, Lon: 10}, {Lat: 10.1, Lon: 10.1}},
		POIs: []domain.PointOfInterest{
			{FeatureID: "node/7", Amenity: "fuel", Name: "Diesel", Position: domain.GeoPoint{Lat: 10.05, Lon: 10.05}},
		},
		POIsAvailable: true,
		Stats:         domain.GraphStats{FetchedNodes: 3, FetchedEdges: 5, FilteredNodes: 2, FilteredEdges: 1},
	}

	resp := NewRouteResponse(plan)

	assert.Equal(t, []int64{1, 2}, resp.Route.NodeIDs)
	assert.Equal(t, []Coord{{Lat: 10, Lon: 10}, {Lat: 10.1, Lon: 10.1}}, resp.Route.Points)
	assert.InDelta(t, 1234.5, resp.Route.LengthMeters, 1e-9)
	assert.NotEmpty(t, resp.Route.Polyline)
	assert.Equal(t, "CityB", resp.Destination.Label)
	assert.Equal(t, []POIResponse{{ID: "node/7", Amenity: "fuel", Name: "Diesel", Lat: 10.05, Lon: 10.05}}, resp.POIs)
	assert.Equal(t, 5, resp.Stats.FetchedEdges)
}

func TestNewRouteResponseEmptyPOIs(t *testing.T) {
	resp := NewRouteResponse(&domain.RoutePlan{})

	assert.NotNil(t, resp.POIs)
	assert.NotNil(t, resp.Route.Points)
	assert.False(t, resp.POIsAvailable)
}
