package dto

import (
	"errors"
	"heavy-route-service/internal/domain"
	"net/http"
	"strings"

	"github.com/twpayne/go-polyline"
)

type Coord struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (c Coord) GeoPoint() domain.GeoPoint { return domain.NewGeoPoint(c.Lat, c.Lon) }

func coordOf(p domain.GeoPoint) Coord { return Coord{Lat: p.Lat, Lon: p.Lon} }

// Omitting amenities selects the server defaults; an empty list disables the
// corridor lookup.
type RouteRequest struct {
	Origin      string   `json:"origin" validate:"required,max=256"`
	Destination string   `json:"destination" validate:"required,max=256"`
	Amenities   []string `json:"amenities" validate:"omitempty,max=16,dive,required,max=64"`
}

func (s *RouteRequest) Bind(r *http.Request) error {
	s.Origin = strings.TrimSpace(s.Origin)
	s.Destination = strings.TrimSpace(s.Destination)
	if s.Origin == "" || s.Destination == "" {
		return errors.New("origin and destination are required")
	}
	return nil
}

type CoordinatesRouteRequest struct {
	Origin      *Coord   `json:"origin" validate:"required"`
	Destination *Coord   `json:"destination" validate:"required"`
	Amenities   []string `json:"amenities" validate:"omitempty,max=16,dive,required,max=64"`
}

func (s *CoordinatesRouteRequest) Bind(r *http.Request) error {
	if s.Origin == nil || s.Destination == nil {
		return errors.New("origin and destination are required")
	}
	return nil
}

type MarkerResponse struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type RouteBody struct {
	// Google encoded polyline, precision 5, lat/lon order.
	Polyline     string  `json:"polyline"`
	Points       []Coord `json:"points"`
	NodeIDs      []int64 `json:"node_ids"`
	LengthMeters float64 `json:"length_meters"`
}

type POIResponse struct {
	ID      string  `json:"id"`
	Amenity string  `json:"amenity"`
	Name    string  `json:"name,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type StatsResponse struct {
	FetchedNodes  int `json:"fetched_nodes"`
	FetchedEdges  int `json:"fetched_edges"`
	FilteredNodes int `json:"filtered_nodes"`
	FilteredEdges int `json:"filtered_edges"`
}

type RouteResponse struct {
	Route         RouteBody      `json:"route"`
	Origin        MarkerResponse `json:"origin"`
	Destination   MarkerResponse `json:"destination"`
	POIs          []POIResponse  `json:"pois"`
	POIsAvailable bool           `json:"pois_available"`
	Stats         StatsResponse  `json:"stats"`
}

// EncodePolyline encodes points as a Google polyline.
func EncodePolyline(points []domain.GeoPoint) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

func NewRouteResponse(plan *domain.RoutePlan) *RouteResponse {
	points := make([]Coord, 0, len(plan.Points))
	for _, p := range plan.Points {
		points = append(points, coordOf(p))
	}

	nodeIDs := make([]int64, 0, len(plan.Route.Nodes))
	for _, id := range plan.Route.Nodes {
		nodeIDs = append(nodeIDs, int64(id))
	}

	pois := make([]POIResponse, 0, len(plan.POIs))
	for _, p := range plan.POIs {
		pois = append(pois, POIResponse{
			ID:      p.FeatureID,
			Amenity: p.Amenity,
			Name:    p.Name,
			Lat:     p.Position.Lat,
			Lon:     p.Position.Lon,
		})
	}

	return &RouteResponse{
		Route: RouteBody{
			Polyline:     EncodePolyline(plan.Points),
			Points:       points,
			NodeIDs:      nodeIDs,
			LengthMeters: plan.Route.Length,
		},
		Origin:        MarkerResponse{Label: plan.Origin.Label, Lat: plan.Origin.Point.Lat, Lon: plan.Origin.Point.Lon},
		Destination:   MarkerResponse{Label: plan.Destination.Label, Lat: plan.Destination.Point.Lat, Lon: plan.Destination.Point.Lon},
		POIs:          pois,
		POIsAvailable: plan.POIsAvailable,
		Stats: StatsResponse{
			FetchedNodes:  plan.Stats.FetchedNodes,
			FetchedEdges:  plan.Stats.FetchedEdges,
			FilteredNodes: plan.Stats.FilteredNodes,
			FilteredEdges: plan.Stats.FilteredEdges,
		},
	}
}
