package ors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/httpclient"
	"heavy-route-service/internal/platform/obs"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.openrouteservice.org"

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocoder implements ports.Geocoder using OpenRouteService (/geocode/search).
//
// The geocoder is safe for concurrent use.
type Geocoder struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	// Optional ISO country code restricting results.
	country string
}

type Options struct {
	BaseURL         string
	BoundaryCountry string
	MaxAttempts     int
	Timeout         time.Duration
	// Overrides the default transport, mainly for tests.
	HTTPClient *http.Client
}

func NewGeocoder(apiKey string, opts Options) (*Geocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
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

	return &Geocoder{
		client:  client,
		apiKey:  apiKey,
		baseURL: opts.BaseURL,
		country: opts.BoundaryCountry,
	}, nil
}

func (o *Geocoder) newRequest(ctx context.Context, text string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/geocode/search", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("text", text)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	req.URL.RawQuery = q.Encode()

	return req, nil
}

// Geocode resolves text to the best-ranked feature. An empty result set
// wraps domain.ErrGeocodeFailed.
func (o *Geocoder) Geocode(ctx context.Context, text string) (_ domain.GeoPoint, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, text)
	})
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("ors geocode %q: execute request: %w", text, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("ors geocode %q: decode response: %w", text, err)
	}

	if len(decoded.Features) == 0 {
		return domain.GeoPoint{}, fmt.Errorf("ors geocode %q: no results: %w", text, domain.ErrGeocodeFailed)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) < 2 {
		return domain.GeoPoint{}, fmt.Errorf("ors geocode %q: invalid coordinate format", text)
	}

	p := domain.GeoPoint{Lon: coords[0], Lat: coords[1]}
	if !p.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("ors geocode %q: coordinates out of range %s", text, p)
	}
	return p, nil
}
