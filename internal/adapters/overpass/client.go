package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"heavy-route-service/internal/platform/httpclient"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/paulmach/osm"
)

const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// element is one entry of an Overpass JSON "elements" array.
type element struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Lat     float64           `json:"lat"`
	Lon     float64           `json:"lon"`
	Tags    map[string]string `json:"tags"`
	Nodes   []int64           `json:"nodes"`
	Members []struct {
		Type string `json:"type"`
		Ref  int64  `json:"ref"`
		Role string `json:"role"`
	} `json:"members"`
}

type response struct {
	Elements []element `json:"elements"`
}

// dataset is a decoded Overpass response. Way node coordinates are filled
// from the node elements of the same response.
type dataset struct {
	Nodes     map[osm.NodeID]*osm.Node
	Ways      []*osm.Way
	Relations []*osm.Relation

	waysByID map[osm.WayID]*osm.Way
}

func (d *dataset) way(id osm.WayID) *osm.Way { return d.waysByID[id] }

func (d *dataset) known(id osm.NodeID) bool {
	_, ok := d.Nodes[id]
	return ok
}

// Client runs Overpass QL queries against one interpreter endpoint.
//
// The client is safe for concurrent use.
type Client struct {
	http     *httpclient.Client
	endpoint string
}

type Options struct {
	// Total tries per query. One disables retries.
	MaxAttempts int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

func NewClient(endpoint string, opts Options) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}

	client := httpclient.New(opts.Timeout, opts.MaxAttempts)
	if opts.HTTPClient != nil {
		client.HTTP = opts.HTTPClient
	}
	return &Client{http: client, endpoint: endpoint}
}

func (c *Client) query(ctx context.Context, ql string) (*dataset, error) {
	form := url.Values{"data": {ql}}.Encode()

	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("overpass query: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("overpass query: decode response: %w", err)
	}

	return decode(decoded.Elements), nil
}

func decode(elements []element) *dataset {
	d := &dataset{
		Nodes:    make(map[osm.NodeID]*osm.Node),
		waysByID: make(map[osm.WayID]*osm.Way),
	}

	for _, e := range elements {
		switch osm.Type(e.Type) {
		case osm.TypeNode:
			d.Nodes[osm.NodeID(e.ID)] = &osm.Node{
				ID:   osm.NodeID(e.ID),
				Lat:  e.Lat,
				Lon:  e.Lon,
				Tags: toTags(e.Tags),
			}
		case osm.TypeWay:
			w := &osm.Way{ID: osm.WayID(e.ID), Tags: toTags(e.Tags)}
			w.Nodes = make(osm.WayNodes, 0, len(e.Nodes))
			for _, id := range e.Nodes {
				w.Nodes = append(w.Nodes, osm.WayNode{ID: osm.NodeID(id)})
			}
			d.Ways = append(d.Ways, w)
			d.waysByID[w.ID] = w
		case osm.TypeRelation:
			r := &osm.Relation{ID: osm.RelationID(e.ID), Tags: toTags(e.Tags)}
			for _, m := range e.Members {
				r.Members = append(r.Members, osm.Member{Type: osm.Type(m.Type), Ref: m.Ref, Role: m.Role})
			}
			d.Relations = append(d.Relations, r)
		}
	}

	for _, w := range d.Ways {
		for i, wn := range w.Nodes {
			if n, ok := d.Nodes[wn.ID]; ok {
				w.Nodes[i].Lat = n.Lat
				w.Nodes[i].Lon = n.Lon
			}
		}
	}

	return d
}

// toTags converts a JSON tag object into osm.Tags sorted by key.
func toTags(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	slices.SortFunc(tags, func(a, b osm.Tag) int { return strings.Compare(a.Key, b.Key) })
	return tags
}
