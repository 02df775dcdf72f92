package ports

import (
	"context"
	"heavy-route-service/internal/domain"
)

// Port: a boundary for retrieving drivable road networks.
type RoadNetworkFetcher interface {
	// Return the drivable-road subgraph within bbox. The caller owns the graph.
	FetchDrivable(ctx context.Context, bbox domain.BoundingBox) (*domain.RoadGraph, error)
}
