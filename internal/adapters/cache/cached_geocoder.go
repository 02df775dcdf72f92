package cache

import (
	"context"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/obs"
	"heavy-route-service/internal/ports"
	"log"
)

// CachedGeocoder consults a GeocodeCache before the wrapped geocoder.
//
// Keys are normalized with domain.NormalizePlaceName. Only successful
// lookups are stored. Cache read and write failures are logged and do not
// fail the lookup.
type CachedGeocoder struct {
	Next  ports.Geocoder
	Cache ports.GeocodeCache
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{Next: next, Cache: cache}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, text string) (domain.GeoPoint, error) {
	key := domain.NormalizePlaceName(text)

	cached, err := c.Cache.GetMany(ctx, []string{key})
	if err != nil {
		log.Printf("req_id=%s op=geocode.cache read failed key=%q: %v", obs.RequestID(ctx), key, err)
	} else if p, ok := cached[key]; ok {
		return p, nil
	}

	p, err := c.Next.Geocode(ctx, text)
	if err != nil {
		return domain.GeoPoint{}, err
	}

	if err := c.Cache.PutMany(ctx, map[string]domain.GeoPoint{key: p}); err != nil {
		log.Printf("req_id=%s op=geocode.cache write failed key=%q: %v", obs.RequestID(ctx), key, err)
	}
	return p, nil
}
