package services

import (
	"context"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/obs"
	"heavy-route-service/internal/ports"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const amenityTag = "amenity"

// CorridorPOIQuery finds amenities inside a corridor around a route.
type CorridorPOIQuery struct {
	Source    ports.AreaFeatureQuery
	RadiusDeg float64
}

func NewCorridorPOIQuery(source ports.AreaFeatureQuery, radiusDeg float64) *CorridorPOIQuery {
	if radiusDeg <= 0 {
		radiusDeg = DefaultCorridorRadiusDeg
	}
	return &CorridorPOIQuery{Source: source, RadiusDeg: radiusDeg}
}

// FindPOIs returns the features of the requested amenity kinds that the
// source selects for the corridor polygon. Points are used as is, areas by
// their centroid, even when only part of the area overlaps the corridor.
// Other or empty geometries are skipped. A failing source wraps
// domain.ErrPOIQueryFailed.
func (q *CorridorPOIQuery) FindPOIs(
	ctx context.Context,
	routePoints []domain.GeoPoint,
	amenityKinds []string,
) (_ []domain.PointOfInterest, err error) {
	defer obs.Time(ctx, "poi.FindPOIs")(&err)

	if len(routePoints) == 0 || len(amenityKinds) == 0 {
		return []domain.PointOfInterest{}, nil
	}

	corridor := NewCorridor(routePoints, q.RadiusDeg)
	filter := ports.TagFilter{Key: amenityTag, Values: amenityKinds}

	features, err := q.Source.Find(ctx, corridor.Polygon(), filter)
	if err != nil {
		return nil, fmt.Errorf("find pois: %w: %w", domain.ErrPOIQueryFailed, err)
	}

	seen := make(map[string]struct{}, len(features))
	out := make([]domain.PointOfInterest, 0, len(features))
	for _, f := range features {
		pos, ok := featurePosition(f.Geometry)
		if !ok {
			continue
		}

		if f.ID != "" {
			if _, dup := seen[f.ID]; dup {
				continue
			}
			seen[f.ID] = struct{}{}
		}

		out = append(out, domain.PointOfInterest{
			FeatureID: f.ID,
			Position:  domain.GeoPointFromOrb(pos),
			Amenity:   f.Tags[amenityTag],
			Name:      f.Tags["name"],
		})
	}

	return out, nil
}

// featurePosition picks the representative point of a feature geometry.
func featurePosition(g orb.Geometry) (orb.Point, bool) {
	switch geom := g.(type) {
	case orb.Point:
		return geom, true
	case orb.Polygon:
		if len(geom) == 0 || len(geom[0]) == 0 {
			return orb.Point{}, false
		}
		c, _ := planar.CentroidArea(geom)
		return c, true
	case orb.MultiPolygon:
		empty := true
		for _, p := range geom {
			if len(p) > 0 && len(p[0]) > 0 {
				empty = false
				break
			}
		}
		if empty {
			return orb.Point{}, false
		}
		c, _ := planar.CentroidArea(geom)
		return c, true
	}
	return orb.Point{}, false
}
