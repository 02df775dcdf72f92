package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/httpclient"
	"heavy-route-service/internal/platform/obs"
	"net/http"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim encodes coordinates as strings.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocoder implements ports.Geocoder using a Nominatim /search endpoint.
// The public instance requires an identifying User-Agent and allows about
// one request per second; pair it with a geocode cache.
type Geocoder struct {
	client    *httpclient.Client
	baseURL   string
	userAgent string
}

type Options struct {
	BaseURL     string
	MaxAttempts int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

func NewGeocoder(userAgent string, opts Options) (*Geocoder, error) {
	if userAgent == "" {
		return nil, errors.New("nominatim user agent is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client := httpclient.New(opts.Timeout, opts.MaxAttempts)
	if opts.HTTPClient != nil {
		client.HTTP = opts.HTTPClient
	}

	return &Geocoder{client: client, baseURL: opts.BaseURL, userAgent: userAgent}, nil
}

func (g *Geocoder) Geocode(ctx context.Context, text string) (_ domain.GeoPoint, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	resp, err := g.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("q", text)
		q.Set("format", "jsonv2")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("nominatim geocode %q: execute request: %w", text, err)
	}
	defer resp.Body.Close()

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("nominatim geocode %q: decode response: %w", text, err)
	}
	if len(results) == 0 {
		return domain.GeoPoint{}, fmt.Errorf("nominatim geocode %q: no results: %w", text, domain.ErrGeocodeFailed)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("nominatim geocode %q: parse lat %q: %w", text, results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("nominatim geocode %q: parse lon %q: %w", text, results[0].Lon, err)
	}

	p := domain.NewGeoPoint(lat, lon)
	if !p.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("nominatim geocode %q: coordinates out of range %s", text, p)
	}
	return p, nil
}
