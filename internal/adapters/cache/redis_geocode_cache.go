package cache

import (
	"context"
	"errors"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

// RedisGeocodeCache stores place name -> coordinate mappings as
// "lat,lon" strings with a per-entry TTL.
type RedisGeocodeCache struct {
	Client redis.UniversalClient
	// Zero keeps entries forever.
	TTL time.Duration
}

func NewRedisGeocodeCache(client redis.UniversalClient, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

func redisKey(name string) string { return redisKeyPrefix + name }

func (c *RedisGeocodeCache) GetMany(
	ctx context.Context,
	names []string,
) (_ map[string]domain.GeoPoint, err error) {
	defer obs.Time(ctx, "geocode.redis.GetMany")(&err)

	if c.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueNames(names)
	if len(uniq) == 0 {
		return map[string]domain.GeoPoint{}, nil
	}

	keys := make([]string, len(uniq))
	for i, n := range uniq {
		keys[i] = redisKey(n)
	}

	vals, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.GeoPoint, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decodePoint(s)
		if err != nil {
			return nil, fmt.Errorf("get geocode cache: key %q: %w", keys[i], err)
		}
		out[uniq[i]] = p
	}

	return out, nil
}

func (c *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.GeoPoint) (err error) {
	defer obs.Time(ctx, "geocode.redis.PutMany")(&err)

	if c.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.Client.TxPipeline()
	for name, p := range results {
		if strings.TrimSpace(name) == "" {
			return errors.New("insert geocode cache: empty name key")
		}
		pipe.Set(ctx, redisKey(name), encodePoint(p), c.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: exec pipeline: %w", err)
	}
	return nil
}

func encodePoint(p domain.GeoPoint) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

func decodePoint(s string) (domain.GeoPoint, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("malformed value %q", s)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("malformed lat in %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("malformed lon in %q: %w", s, err)
	}
	return domain.NewGeoPoint(lat, lon), nil
}
