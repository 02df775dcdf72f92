package services

import (
	"context"
	"errors"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/obs"
	"heavy-route-service/internal/ports"
	"log"
	"strings"
	"time"
)

const (
	DefaultBBoxMarginDeg     = 0.05
	DefaultGeocodeTimeout    = 10 * time.Second
	DefaultGraphFetchTimeout = 60 * time.Second
)

type PlannerConfig struct {
	BBoxMarginDeg     float64
	MaxSnapMeters     float64
	GeocodeTimeout    time.Duration
	GraphFetchTimeout time.Duration
	// Amenity kinds used when a request does not name any.
	DefaultAmenities []string
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		BBoxMarginDeg:     DefaultBBoxMarginDeg,
		GeocodeTimeout:    DefaultGeocodeTimeout,
		GraphFetchTimeout: DefaultGraphFetchTimeout,
		DefaultAmenities:  []string{"fuel", "parking"},
	}
}

type PlanRequest struct {
	Origin      string
	Destination string
	// nil selects the configured defaults; an empty non-nil slice disables
	// the corridor lookup.
	Amenities []string
}

// RoutePlanner composes geocoding, network retrieval, heavy-vehicle
// filtering, routing and corridor annotation into one request cycle.
//
// The planner keeps no per-request state, so one instance may serve
// concurrent requests. Every fetched graph stays local to its request.
type RoutePlanner struct {
	Geocoder ports.Geocoder
	Network  ports.RoadNetworkFetcher
	Filter   *HeavyVehicleFilter
	Finder   RouteFinder
	// Optional; without it plans carry no POIs and POIsAvailable is false.
	POIs    *CorridorPOIQuery
	Config  PlannerConfig
	Metrics *obs.Metrics
}

func NewRoutePlanner(
	geocoder ports.Geocoder,
	network ports.RoadNetworkFetcher,
	filter *HeavyVehicleFilter,
	pois *CorridorPOIQuery,
	cfg PlannerConfig,
	metrics *obs.Metrics,
) *RoutePlanner {
	return &RoutePlanner{
		Geocoder: geocoder,
		Network:  network,
		Filter:   filter,
		Finder:   RouteFinder{MaxSnapMeters: cfg.MaxSnapMeters},
		POIs:     pois,
		Config:   cfg,
		Metrics:  metrics,
	}
}

// Plan geocodes both place names and plans the route between them.
func (p *RoutePlanner) Plan(ctx context.Context, req PlanRequest) (plan *domain.RoutePlan, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)

	origin, err := p.geocode(ctx, req.Origin)
	if err != nil {
		p.Metrics.CountPlan(outcome(err))
		return nil, fmt.Errorf("plan route: origin: %w", err)
	}

	destination, err := p.geocode(ctx, req.Destination)
	if err != nil {
		p.Metrics.CountPlan(outcome(err))
		return nil, fmt.Errorf("plan route: destination: %w", err)
	}

	return p.PlanBetween(ctx, origin, destination, req.Amenities)
}

// PlanBetween plans the route between two already located endpoints.
func (p *RoutePlanner) PlanBetween(
	ctx context.Context,
	origin domain.Marker,
	destination domain.Marker,
	amenities []string,
) (*domain.RoutePlan, error) {
	plan, err := p.planBetween(ctx, origin, destination, amenities)
	p.Metrics.CountPlan(outcome(err))
	return plan, err
}

func (p *RoutePlanner) planBetween(
	ctx context.Context,
	origin domain.Marker,
	destination domain.Marker,
	amenities []string,
) (*domain.RoutePlan, error) {
	bbox, err := domain.NewBoundingBox(origin.Point, destination.Point, p.Config.BBoxMarginDeg)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	raw, err := p.fetch(ctx, bbox)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	start := time.Now()
	filtered, report := p.Filter.Apply(raw)
	p.Metrics.ObserveStage("filter", time.Since(start))
	p.Metrics.CountFiltered("highway", report.RemovedByType)
	p.Metrics.CountFiltered("width", report.RemovedByWidth)
	log.Printf(
		"req_id=%s op=filter removed_type=%d removed_width=%d removed_nodes=%d kept_edges=%d kept_nodes=%d",
		obs.RequestID(ctx), report.RemovedByType, report.RemovedByWidth, report.RemovedNodes,
		report.KeptEdges, report.KeptNodes,
	)

	start = time.Now()
	route, err := p.Finder.Find(filtered, origin.Point, destination.Point)
	p.Metrics.ObserveStage("route", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	points, err := route.Points(filtered)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	pois, available := p.annotate(ctx, points, amenities)

	return &domain.RoutePlan{
		Origin:        origin,
		Destination:   destination,
		Route:         route,
		Points:        points,
		POIs:          pois,
		POIsAvailable: available,
		Stats: domain.GraphStats{
			FetchedNodes:  raw.NodeCount(),
			FetchedEdges:  raw.EdgeCount(),
			FilteredNodes: filtered.NodeCount(),
			FilteredEdges: filtered.EdgeCount(),
		},
	}, nil
}

func (p *RoutePlanner) geocode(ctx context.Context, text string) (domain.Marker, error) {
	label := strings.Join(strings.Fields(text), " ")
	if label == "" {
		return domain.Marker{}, fmt.Errorf("geocode: empty place name: %w", domain.ErrGeocodeFailed)
	}

	ctx, cancel := withTimeout(ctx, p.Config.GeocodeTimeout)
	defer cancel()

	start := time.Now()
	pt, err := p.Geocoder.Geocode(ctx, label)
	p.Metrics.ObserveStage("geocode", time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrGeocodeFailed) {
			return domain.Marker{}, fmt.Errorf("geocode %q: %w", label, err)
		}
		return domain.Marker{}, fmt.Errorf("geocode %q: %w: %w", label, domain.ErrGeocodeUnavailable, err)
	}

	return domain.Marker{Label: label, Point: pt}, nil
}

func (p *RoutePlanner) fetch(ctx context.Context, bbox domain.BoundingBox) (*domain.RoadGraph, error) {
	ctx, cancel := withTimeout(ctx, p.Config.GraphFetchTimeout)
	defer cancel()

	start := time.Now()
	g, err := p.Network.FetchDrivable(ctx, bbox)
	p.Metrics.ObserveStage("fetch", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetch road network %s: %w: %w", bbox, domain.ErrGraphFetchFailed, err)
	}
	if g == nil {
		return nil, fmt.Errorf("fetch road network %s: no graph returned: %w", bbox, domain.ErrGraphFetchFailed)
	}
	return g, nil
}

// annotate looks up corridor POIs. Failures are logged and reported through
// the second return value; they never fail the plan.
func (p *RoutePlanner) annotate(
	ctx context.Context,
	points []domain.GeoPoint,
	amenities []string,
) ([]domain.PointOfInterest, bool) {
	if p.POIs == nil {
		return []domain.PointOfInterest{}, false
	}
	if amenities == nil {
		amenities = p.Config.DefaultAmenities
	}

	start := time.Now()
	pois, err := p.POIs.FindPOIs(ctx, points, amenities)
	p.Metrics.ObserveStage("poi", time.Since(start))
	if err != nil {
		log.Printf("req_id=%s op=poi route delivered without points of interest: %v", obs.RequestID(ctx), err)
		return []domain.PointOfInterest{}, false
	}
	return pois, true
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// outcome labels a planning result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrGeocodeFailed):
		return "geocode_failed"
	case errors.Is(err, domain.ErrGeocodeUnavailable):
		return "geocode_unavailable"
	case errors.Is(err, domain.ErrGraphFetchFailed):
		return "graph_fetch_failed"
	case errors.Is(err, domain.ErrNodeNotFound):
		return "node_not_found"
	case errors.Is(err, domain.ErrNoRouteFound):
		return "no_route"
	}
	return "error"
}
