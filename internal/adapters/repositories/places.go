package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/ports"
	"os"
)

type PlaceSeed struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// LoadPlaces reads a JSON array of named coordinates. Names are normalized
// with domain.NormalizePlaceName; a repeated name keeps the last entry.
func LoadPlaces(jsonPath string) (map[string]domain.GeoPoint, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load places: parse json: %w", err)
	}

	out := make(map[string]domain.GeoPoint, len(data))
	for i, item := range data {
		name := domain.NormalizePlaceName(item.Name)
		if name == "" {
			return nil, fmt.Errorf("load places: item at index %d: name cannot be empty", i+1)
		}

		p := domain.NewGeoPoint(item.Lat, item.Lon)
		if !p.Valid() {
			return nil, fmt.Errorf("load places: item %q: coordinates out of range %s", item.Name, p)
		}
		out[name] = p
	}

	return out, nil
}

// SeedFromJSON preloads a geocode cache with the places in jsonPath.
func SeedFromJSON(ctx context.Context, cache ports.GeocodeCache, jsonPath string) (int, error) {
	places, err := LoadPlaces(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}

	if err := cache.PutMany(ctx, places); err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}

	return len(places), nil
}
