package overpass

import (
	"context"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/obs"
	"log"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
)

// Highway classes no motor vehicle can use. Drivable but unsuitable classes
// such as residential are left to the heavy-vehicle filter.
var nonDrivableHighways = []string{
	"abandoned",
	"bridleway",
	"bus_guideway",
	"construction",
	"corridor",
	"cycleway",
	"elevator",
	"escalator",
	"footway",
	"path",
	"pedestrian",
	"platform",
	"proposed",
	"raceway",
	"steps",
}

// drivableQuery selects the drivable ways inside bbox together with their
// nodes.
func drivableQuery(bbox domain.BoundingBox) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:50];\n")
	fmt.Fprintf(&b,
		`way["highway"]["highway"!~"^(%s)$"]["motor_vehicle"!~"^(no|private)$"]["motorcar"!~"^(no|private)$"]["access"!~"^(no|private)$"](%.7f,%.7f,%.7f,%.7f);`,
		strings.Join(nonDrivableHighways, "|"), bbox.South, bbox.West, bbox.North, bbox.East,
	)
	b.WriteString("\n(._;>;);\nout body;\n")
	return b.String()
}

// FetchDrivable implements ports.RoadNetworkFetcher.
func (c *Client) FetchDrivable(ctx context.Context, bbox domain.BoundingBox) (_ *domain.RoadGraph, err error) {
	defer obs.Time(ctx, "overpass.FetchDrivable")(&err)

	d, err := c.query(ctx, drivableQuery(bbox))
	if err != nil {
		return nil, fmt.Errorf("fetch drivable %s: %w", bbox, err)
	}

	return buildRoadGraph(d), nil
}

type travel int

const (
	bothWays travel = iota
	forwardOnly
	reverseOnly
)

// direction applies OSM oneway tagging. Roundabouts are implied oneway.
func direction(tags osm.Tags) travel {
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		return forwardOnly
	case "-1", "reverse":
		return reverseOnly
	case "no", "false", "0":
		return bothWays
	}
	if tags.Find("junction") == "roundabout" {
		return forwardOnly
	}
	return bothWays
}

// buildRoadGraph turns every consecutive node pair of each way into one edge
// per allowed direction. Pairs with a missing node are skipped.
func buildRoadGraph(d *dataset) *domain.RoadGraph {
	g := domain.NewRoadGraph()

	for _, w := range d.Ways {
		if w.Tags.Find("highway") == "" {
			continue
		}

		highway := domain.ParseHighway(w.Tags.Find("highway"))
		width := w.Tags.Find("width")
		name := w.Tags.Find("name")
		dir := direction(w.Tags)

		for i := 0; i+1 < len(w.Nodes); i++ {
			a, b := w.Nodes[i], w.Nodes[i+1]
			if a.ID == b.ID || !d.known(a.ID) || !d.known(b.ID) {
				continue
			}

			g.AddNode(domain.Node{ID: domain.NodeID(a.ID), Lat: a.Lat, Lon: a.Lon})
			g.AddNode(domain.Node{ID: domain.NodeID(b.ID), Lat: b.Lat, Lon: b.Lon})

			length := geo.Distance(orb.Point{a.Lon, a.Lat}, orb.Point{b.Lon, b.Lat})
			edge := domain.Edge{
				Highway: highway,
				Width:   width,
				Length:  length,
				WayID:   int64(w.ID),
				Name:    name,
			}

			if dir != reverseOnly {
				edge.From, edge.To = domain.NodeID(a.ID), domain.NodeID(b.ID)
				addSegment(g, edge)
			}
			if dir != forwardOnly {
				edge.From, edge.To = domain.NodeID(b.ID), domain.NodeID(a.ID)
				addSegment(g, edge)
			}
		}
	}

	return g
}

// addSegment adds e to g, logging and dropping segments the graph rejects.
func addSegment(g *domain.RoadGraph, e domain.Edge) bool {
	if _, err := g.AddEdge(e); err != nil {
		log.Printf("op=overpass.buildRoadGraph way=%d from=%d to=%d skipped: %v", e.WayID, e.From, e.To, err)
		return false
	}
	return true
}
