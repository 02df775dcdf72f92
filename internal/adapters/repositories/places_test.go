package repositories

import (
	"context"
	"heavy-route-service/internal/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "places.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

type recordingCache struct {
	put map[string]domain.GeoPoint
}

func (r *recordingCache) GetMany(context.Context, []string) (map[string]domain.GeoPoint, error) {
	return map[string]domain.GeoPoint{}, nil
}

func (r *recordingCache) PutMany(_ context.Context, m map[string]domain.GeoPoint) error {
	r.put = m
	return nil
}

func TestLoadPlaces(t *testing.T) {
	path := writeSeed(t, `[
		{"name": "Port of  Hamburg", "lat": 53.5461, "lon": 9.9661},
		{"name": "rotterdam", "lat": 51.9244, "lon": 4.4777}
	]`)

	places, err := LoadPlaces(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.GeoPoint{
		"port of hamburg": {Lat: 53.5461, Lon: 9.9661},
		"rotterdam":       {Lat: 51.9244, Lon: 4.4777},
	}, places)
}

func TestLoadPlacesValidation(t *testing.T) {
	tests := map[string]string{
		"empty name":   `[{"name": " ", "lat": 1, "lon": 1}]`,
		"bad latitude": `[{"name": "x", "lat": 91, "lon": 1}]`,
		"not json":     `{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPlaces(writeSeed(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadPlaces(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSeedFromJSON(t *testing.T) {
	path := writeSeed(t, `[{"name": "Hamburg", "lat": 53.55, "lon": 9.99}]`)
	cache := &recordingCache{}

	n, err := SeedFromJSON(context.Background(), cache, path)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]domain.GeoPoint{"hamburg": {Lat: 53.55, Lon: 9.99}}, cache.put)
}

func TestInitSchemaRequiresDB(t *testing.T) {
	assert.Error(t, InitSchema(context.Background(), nil))
}
