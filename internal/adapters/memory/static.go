package memory

import (
	"context"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/ports"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// StaticGeocoder resolves place names from a fixed table. Lookups use
// domain.NormalizePlaceName on both sides.
type StaticGeocoder struct {
	m map[string]domain.GeoPoint
	// Returned for every lookup when set.
	Err error
}

func NewStaticGeocoder(places map[string]domain.GeoPoint) *StaticGeocoder {
	m := make(map[string]domain.GeoPoint, len(places))
	for name, p := range places {
		m[domain.NormalizePlaceName(name)] = p
	}
	return &StaticGeocoder{m: m}
}

func (g *StaticGeocoder) Geocode(ctx context.Context, text string) (domain.GeoPoint, error) {
	if g.Err != nil {
		return domain.GeoPoint{}, g.Err
	}
	p, ok := g.m[domain.NormalizePlaceName(text)]
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("static geocoder: %q: %w", text, domain.ErrGeocodeFailed)
	}
	return p, nil
}

// StaticRoadNetwork serves a copy of one prepared graph for any bounding box.
type StaticRoadNetwork struct {
	Graph *domain.RoadGraph
	Err   error

	// Boxes requested so far, in call order.
	Requests []domain.BoundingBox
}

func (n *StaticRoadNetwork) FetchDrivable(ctx context.Context, bbox domain.BoundingBox) (*domain.RoadGraph, error) {
	n.Requests = append(n.Requests, bbox)
	if n.Err != nil {
		return nil, n.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n.Graph == nil {
		return domain.NewRoadGraph(), nil
	}
	return n.Graph.Clone(), nil
}

// StaticFeatures answers area queries from a fixed feature list. A feature
// is selected when it matches the tag filter and overlaps the query polygon:
// one of its vertices lies inside the polygon, or, for areas, one polygon
// vertex lies inside the area.
type StaticFeatures struct {
	Features []ports.Feature
	Err      error
}

func (s *StaticFeatures) Find(ctx context.Context, polygon orb.Polygon, filter ports.TagFilter) ([]ports.Feature, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]ports.Feature, 0, len(s.Features))
	for _, f := range s.Features {
		v, ok := f.Tags[filter.Key]
		if !ok || !slices.Contains(filter.Values, v) {
			continue
		}
		if !overlaps(polygon, f.Geometry) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func overlaps(polygon orb.Polygon, g orb.Geometry) bool {
	for _, p := range vertices(g) {
		if planar.PolygonContains(polygon, p) {
			return true
		}
	}

	var area orb.MultiPolygon
	switch geom := g.(type) {
	case orb.Polygon:
		area = orb.MultiPolygon{geom}
	case orb.MultiPolygon:
		area = geom
	default:
		return false
	}
	for _, p := range vertices(polygon) {
		if planar.MultiPolygonContains(area, p) {
			return true
		}
	}
	return false
}

func vertices(g orb.Geometry) []orb.Point {
	switch geom := g.(type) {
	case orb.Point:
		return []orb.Point{geom}
	case orb.LineString:
		return geom
	case orb.Ring:
		return geom
	case orb.Polygon:
		var out []orb.Point
		for _, r := range geom {
			out = append(out, r...)
		}
		return out
	case orb.MultiPolygon:
		var out []orb.Point
		for _, p := range geom {
			out = append(out, vertices(p)...)
		}
		return out
	}
	return nil
}
