package overpass

import (
	"context"
	"fmt"
	"heavy-route-service/internal/platform/obs"
	"heavy-route-service/internal/ports"
	"regexp"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// featureQuery selects nodes, ways and relations inside polygon whose key
// tag matches one of the filter values exactly.
func featureQuery(polygon orb.Polygon, filter ports.TagFilter) string {
	values := make([]string, len(filter.Values))
	for i, v := range filter.Values {
		values[i] = regexp.QuoteMeta(v)
	}

	ring := polygon[0]
	coords := make([]string, 0, len(ring))
	for _, p := range ring {
		coords = append(coords, fmt.Sprintf("%.6f %.6f", p.Lat(), p.Lon()))
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n")
	fmt.Fprintf(&b, `nwr[%q~"^(%s)$"](poly:"%s");`, filter.Key, strings.Join(values, "|"), strings.Join(coords, " "))
	b.WriteString("\n(._;>;);\nout body;\n")
	return b.String()
}

// Find implements ports.AreaFeatureQuery. Only the outer ring of polygon is
// sent.
func (c *Client) Find(ctx context.Context, polygon orb.Polygon, filter ports.TagFilter) (_ []ports.Feature, err error) {
	defer obs.Time(ctx, "overpass.Find")(&err)

	if len(polygon) == 0 || len(polygon[0]) < 3 || filter.Key == "" || len(filter.Values) == 0 {
		return []ports.Feature{}, nil
	}

	d, err := c.query(ctx, featureQuery(polygon, filter))
	if err != nil {
		return nil, fmt.Errorf("find features %s: %w", filter.Key, err)
	}

	return collectFeatures(d, filter), nil
}

func matches(tags osm.Tags, filter ports.TagFilter) bool {
	v := tags.Find(filter.Key)
	return v != "" && slices.Contains(filter.Values, v)
}

// collectFeatures converts the tagged elements of d. Nodes become points,
// closed ways polygons and open ways line strings. Multipolygon relations
// are assembled from their closed outer ways; unclosed outers are dropped.
func collectFeatures(d *dataset, filter ports.TagFilter) []ports.Feature {
	var out []ports.Feature

	ids := make([]osm.NodeID, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		n := d.Nodes[id]
		if !matches(n.Tags, filter) {
			continue
		}
		out = append(out, ports.Feature{
			ID:       fmt.Sprintf("%s/%d", osm.TypeNode, n.ID),
			Tags:     n.Tags.Map(),
			Geometry: orb.Point{n.Lon, n.Lat},
		})
	}

	for _, w := range d.Ways {
		if !matches(w.Tags, filter) {
			continue
		}
		line, ok := wayLine(d, w)
		if !ok {
			continue
		}

		var geom orb.Geometry = line
		if closed(w) {
			geom = orb.Polygon{orb.Ring(line)}
		}
		out = append(out, ports.Feature{
			ID:       fmt.Sprintf("%s/%d", osm.TypeWay, w.ID),
			Tags:     w.Tags.Map(),
			Geometry: geom,
		})
	}

	for _, r := range d.Relations {
		if !matches(r.Tags, filter) || r.Tags.Find("type") != "multipolygon" {
			continue
		}

		var mp orb.MultiPolygon
		for _, m := range r.Members {
			if m.Type != osm.TypeWay || (m.Role != "outer" && m.Role != "") {
				continue
			}
			w := d.way(osm.WayID(m.Ref))
			if w == nil || !closed(w) {
				continue
			}
			if line, ok := wayLine(d, w); ok {
				mp = append(mp, orb.Polygon{orb.Ring(line)})
			}
		}

		out = append(out, ports.Feature{
			ID:       fmt.Sprintf("%s/%d", osm.TypeRelation, r.ID),
			Tags:     r.Tags.Map(),
			Geometry: mp,
		})
	}

	return out
}

// wayLine returns the way geometry; ok is false when any node is missing.
func wayLine(d *dataset, w *osm.Way) (orb.LineString, bool) {
	if len(w.Nodes) < 2 {
		return nil, false
	}
	line := make(orb.LineString, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		if !d.known(wn.ID) {
			return nil, false
		}
		line = append(line, orb.Point{wn.Lon, wn.Lat})
	}
	return line, true
}

func closed(w *osm.Way) bool {
	return len(w.Nodes) >= 4 && w.Nodes[0].ID == w.Nodes[len(w.Nodes)-1].ID
}
