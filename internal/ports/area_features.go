package ports

import (
	"context"

	"github.com/paulmach/orb"
)

// Selects features whose Key tag equals one of Values.
type TagFilter struct {
	Key    string
	Values []string
}

// A map feature returned by an area query. Geometry may be a point,
// polygon, multipolygon, or any other orb geometry the source produces.
type Feature struct {
	ID       string
	Tags     map[string]string
	Geometry orb.Geometry
}

// Contract for querying map features inside a polygon.
type AreaFeatureQuery interface {
	Find(ctx context.Context, polygon orb.Polygon, filter TagFilter) ([]Feature, error)
}
