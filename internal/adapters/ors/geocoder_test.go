package ors

import (
	"context"
	"heavy-route-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, h http.HandlerFunc, country string) *Geocoder {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g, err := NewGeocoder("test-key", Options{
		BaseURL:         srv.URL,
		BoundaryCountry: country,
		MaxAttempts:     3,
		HTTPClient:      srv.Client(),
	})
	require.NoError(t, err)
	g.client.Backoff = time.Millisecond
	return g
}

func TestGeocode(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Hamburg Hafen", r.URL.Query().Get("text"))
		assert.Equal(t, "1", r.URL.Query().Get("size"))
		assert.Equal(t, "DE", r.URL.Query().Get("boundary.country"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[9.9668,53.5413]}}]}`))
	}, "DE")

	p, err := g.Geocode(context.Background(), "Hamburg Hafen")
	require.NoError(t, err)

	assert.InDelta(t, 53.5413, p.Lat, 1e-9)
	assert.InDelta(t, 9.9668, p.Lon, 1e-9)
}

func TestGeocodeOmitsEmptyCountry(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["boundary.country"]
		assert.False(t, ok)
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[1,2]}}]}`))
	}, "")

	_, err := g.Geocode(context.Background(), "x")
	require.NoError(t, err)
}

func TestGeocodeNotFound(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}, "")

	_, err := g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, domain.ErrGeocodeFailed)
}

func TestGeocodeUpstreamFailureIsNotNotFound(t *testing.T) {
	var calls atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}, "")

	_, err := g.Geocode(context.Background(), "Hamburg")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGeocodeFailed)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeocodeRejectsMalformedCoordinates(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[9.9]}}]}`))
	}, "")

	_, err := g.Geocode(context.Background(), "Hamburg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGeocodeFailed)
}

func TestNewGeocoderRequiresKey(t *testing.T) {
	_, err := NewGeocoder("", Options{})
	assert.Error(t, err)
}
