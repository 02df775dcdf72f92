package ports

import (
	"context"
	"heavy-route-service/internal/domain"
)

// Contract for resolving free-text place names to coordinates.
type Geocoder interface {
	// Return the coordinates for text. An unresolved place wraps
	// domain.ErrGeocodeFailed; any other error is a transport failure.
	Geocode(ctx context.Context, text string) (domain.GeoPoint, error)
}

// Persistent mapping of normalized place names to coordinates.
type GeocodeCache interface {
	// Return cached coordinates for the given names; misses are absent from the map.
	GetMany(ctx context.Context, names []string) (map[string]domain.GeoPoint, error)
	// Store name -> coordinate mappings.
	PutMany(ctx context.Context, results map[string]domain.GeoPoint) error
}
