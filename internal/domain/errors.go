package domain

import "errors"

// Failure classes surfaced by route planning. Callers classify with errors.Is.
var (
	// The place name could not be resolved to coordinates.
	ErrGeocodeFailed = errors.New("could not locate address")
	// The geocoding service failed or timed out.
	ErrGeocodeUnavailable = errors.New("geocoding service unavailable")
	// The road network could not be retrieved for the requested region.
	ErrGraphFetchFailed = errors.New("road network unavailable")
	// No graph node could be matched to a coordinate.
	ErrNodeNotFound = errors.New("no suitable road network near location")
	// Origin and destination are not connected in the filtered graph.
	ErrNoRouteFound = errors.New("no heavy-vehicle route exists")
	// The corridor point-of-interest lookup failed.
	ErrPOIQueryFailed = errors.New("point of interest query failed")
)

var (
	ErrInvalidMargin  = errors.New("bounding box margin must be positive")
	ErrUnknownNode    = errors.New("unknown node")
	ErrNegativeLength = errors.New("edge length must be non-negative")
)
