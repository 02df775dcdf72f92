package services

import (
	"fmt"
	"heavy-route-service/internal/domain"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s2"
)

const (
	earthRadiusMeters = 6371008.8

	// Planar neighbours used to seed the geodesic search radius.
	nearestCandidates = 16
	pointTolerance    = 1e-9
)

type indexedNode struct {
	id   domain.NodeID
	lat  float64
	lon  float64
	rect rtreego.Rect
}

func (n *indexedNode) Bounds() rtreego.Rect { return n.rect }

// NodeIndex answers nearest-node queries over a fixed set of graph nodes.
// Build it after filtering; later graph mutations are not reflected.
type NodeIndex struct {
	tree          *rtreego.Rtree
	size          int
	maxSnapMeters float64
}

// NewNodeIndex indexes every node of g. When maxSnapMeters is greater than
// zero, matches farther than that distance are rejected.
func NewNodeIndex(g *domain.RoadGraph, maxSnapMeters float64) *NodeIndex {
	nodes := g.Nodes()
	objs := make([]rtreego.Spatial, 0, len(nodes))
	for _, n := range nodes {
		objs = append(objs, &indexedNode{
			id:   n.ID,
			lat:  n.Lat,
			lon:  n.Lon,
			rect: rtreego.Point{n.Lon, n.Lat}.ToRect(pointTolerance),
		})
	}

	return &NodeIndex{
		tree:          rtreego.NewTree(2, 25, 50, objs...),
		size:          len(objs),
		maxSnapMeters: maxSnapMeters,
	}
}

// NearestNode returns the node closest to p by geodesic distance. Equally
// distant nodes resolve to the lowest node ID.
//
// The R-tree works in raw degrees, so its planar neighbours only seed an
// upper bound. Every node inside the degree box covering that geodesic
// radius is then ranked.
func (idx *NodeIndex) NearestNode(p domain.GeoPoint) (domain.NodeID, error) {
	if idx.size == 0 {
		return 0, fmt.Errorf("nearest node to %s: graph has no nodes: %w", p, domain.ErrNodeNotFound)
	}

	best, bestM := closest(p, idx.tree.NearestNeighbors(nearestCandidates, rtreego.Point{p.Lon, p.Lat}), nil, 0)
	if best == nil {
		return 0, fmt.Errorf("nearest node to %s: %w", p, domain.ErrNodeNotFound)
	}

	if box, ok := searchBox(p, bestM); ok {
		best, bestM = closest(p, idx.tree.SearchIntersect(box), best, bestM)
	}

	if idx.maxSnapMeters > 0 && bestM > idx.maxSnapMeters {
		return 0, fmt.Errorf(
			"nearest node to %s: closest node %d is %.0fm away (max %.0fm): %w",
			p, best.id, bestM, idx.maxSnapMeters, domain.ErrNodeNotFound,
		)
	}

	return best.id, nil
}

// closest ranks candidates against the current best by geodesic distance.
func closest(p domain.GeoPoint, candidates []rtreego.Spatial, best *indexedNode, bestM float64) (*indexedNode, float64) {
	for _, c := range candidates {
		n, ok := c.(*indexedNode)
		if !ok || n == nil {
			continue
		}
		d := geodesicMeters(p, domain.GeoPoint{Lat: n.lat, Lon: n.lon})
		if best == nil || d < bestM || (d == bestM && n.id < best.id) {
			best = n
			bestM = d
		}
	}
	return best, bestM
}

// searchBox returns the lon/lat rectangle holding every point within meters
// of p on the sphere. Caps reaching a pole span all longitudes.
func searchBox(p domain.GeoPoint, meters float64) (rtreego.Rect, bool) {
	// Padded for float rounding at exactly meters.
	delta := meters/earthRadiusMeters*(1+1e-9) + 1e-12

	dLat := delta * 180 / math.Pi
	minLat := math.Max(p.Lat-dLat, -90)
	maxLat := math.Min(p.Lat+dLat, 90)

	minLon, maxLon := -180.0, 180.0
	phi := p.Lat * math.Pi / 180
	if math.Abs(phi)+delta < math.Pi/2 {
		dLon := math.Asin(math.Min(math.Sin(delta)/math.Cos(phi), 1)) * 180 / math.Pi
		minLon, maxLon = p.Lon-dLon, p.Lon+dLon
	}

	box, err := rtreego.NewRect(
		rtreego.Point{minLon, minLat},
		[]float64{maxLon - minLon + pointTolerance, maxLat - minLat + pointTolerance},
	)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return box, true
}

func geodesicMeters(a, b domain.GeoPoint) float64 {
	return s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * earthRadiusMeters
}
