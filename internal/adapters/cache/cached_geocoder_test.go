package cache

import (
	"context"
	"errors"
	"heavy-route-service/internal/adapters/memory"
	"heavy-route-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	next  *memory.StaticGeocoder
	calls int
}

func (c *countingGeocoder) Geocode(ctx context.Context, text string) (domain.GeoPoint, error) {
	c.calls++
	return c.next.Geocode(ctx, text)
}

type failingCache struct{}

func (failingCache) GetMany(context.Context, []string) (map[string]domain.GeoPoint, error) {
	return nil, errors.New("cache down")
}

func (failingCache) PutMany(context.Context, map[string]domain.GeoPoint) error {
	return errors.New("cache down")
}

func newCounting() *countingGeocoder {
	return &countingGeocoder{next: memory.NewStaticGeocoder(map[string]domain.GeoPoint{
		"Hamburg": {Lat: 53.55, Lon: 9.99},
	})}
}

func TestCachedGeocoderServesRepeatsFromCache(t *testing.T) {
	redisCache, _ := newRedisCache(t, time.Hour)
	inner := newCounting()
	g := NewCachedGeocoder(inner, redisCache)
	ctx := context.Background()

	p1, err := g.Geocode(ctx, "Hamburg")
	require.NoError(t, err)
	p2, err := g.Geocode(ctx, "  hamburg ")
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoderDoesNotCacheMisses(t *testing.T) {
	redisCache, mr := newRedisCache(t, time.Hour)
	inner := newCounting()
	g := NewCachedGeocoder(inner, redisCache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.Geocode(ctx, "Atlantis")
		assert.ErrorIs(t, err, domain.ErrGeocodeFailed)
	}

	assert.Equal(t, 2, inner.calls)
	assert.False(t, mr.Exists("geocode:atlantis"))
}

func TestCachedGeocoderBypassesBrokenCache(t *testing.T) {
	inner := newCounting()
	g := NewCachedGeocoder(inner, failingCache{})

	p, err := g.Geocode(context.Background(), "Hamburg")
	require.NoError(t, err)

	assert.InDelta(t, 53.55, p.Lat, 1e-9)
	assert.Equal(t, 1, inner.calls)
}

func TestSQLGeocodeCacheRequiresDB(t *testing.T) {
	c := NewSQLGeocodeCache(nil)

	_, err := c.GetMany(context.Background(), []string{"hamburg"})
	assert.Error(t, err)
	assert.Error(t, c.PutMany(context.Background(), map[string]domain.GeoPoint{"hamburg": {}}))
}

func TestUniqueNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueNames([]string{" a", "b", "", "a ", "  "}))
}
