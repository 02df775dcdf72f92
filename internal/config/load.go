package config

import (
	"errors"
	"fmt"
	"heavy-route-service/internal/services"
	"time"
)

const (
	GeocoderORS       = "ors"
	GeocoderNominatim = "nominatim"
	// Resolves names from the PLACES_PATH seed file only.
	GeocoderStatic = "static"

	CacheNone     = "none"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

type Config struct {
	Port string

	Geocoder           string
	ORSAPIKey          string
	ORSBaseURL         string
	ORSBoundaryCountry string
	ORSMaxAttempts     int
	NominatimBaseURL   string
	NominatimUserAgent string
	PlacesPath         string

	OverpassURL         string
	OverpassMaxAttempts int

	GeocodeCache    string
	DatabaseURL     string
	RedisAddr       string
	RedisGeocodeTTL time.Duration

	Planner           services.PlannerConfig
	Filter            services.FilterPolicy
	CorridorRadiusDeg float64
}

// Load reads the service configuration from the environment and validates it.
// All problems are reported together.
func Load() (Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := Config{
		Port:               Get("PORT", "8080"),
		Geocoder:           Get("GEOCODER", GeocoderORS),
		ORSAPIKey:          Get("ORS_API_KEY", ""),
		ORSBaseURL:         Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSBoundaryCountry: Get("ORS_BOUNDARY_COUNTRY", ""),
		NominatimBaseURL:   Get("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: Get("NOMINATIM_USER_AGENT", "heavy-route-service/1.0"),
		PlacesPath:         Get("PLACES_PATH", "data/seeds/places.json"),
		OverpassURL:        Get("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		GeocodeCache:       Get("GEOCODE_CACHE", CacheNone),
		DatabaseURL:        Get("DATABASE_URL", ""),
		RedisAddr:          Get("REDIS_ADDR", "localhost:6379"),
		Planner:            services.DefaultPlannerConfig(),
		Filter:             services.DefaultFilterPolicy(),
	}

	var err error
	cfg.ORSMaxAttempts, err = GetInt("ORS_MAX_ATTEMPTS", 3)
	collect(err)
	cfg.OverpassMaxAttempts, err = GetInt("OVERPASS_MAX_ATTEMPTS", 1)
	collect(err)
	cfg.RedisGeocodeTTL, err = GetDuration("REDIS_GEOCODE_TTL", 720*time.Hour)
	collect(err)

	cfg.Planner.BBoxMarginDeg, err = GetFloat("ROUTE_BBOX_MARGIN_DEG", services.DefaultBBoxMarginDeg)
	collect(err)
	cfg.Planner.MaxSnapMeters, err = GetFloat("ROUTE_MAX_SNAP_METERS", 0)
	collect(err)
	cfg.Planner.GeocodeTimeout, err = GetDuration("GEOCODE_TIMEOUT", services.DefaultGeocodeTimeout)
	collect(err)
	cfg.Planner.GraphFetchTimeout, err = GetDuration("GRAPH_FETCH_TIMEOUT", services.DefaultGraphFetchTimeout)
	collect(err)
	cfg.Planner.DefaultAmenities = GetList("POI_DEFAULT_AMENITIES", cfg.Planner.DefaultAmenities)

	cfg.Filter.Disallowed = GetList("HV_DISALLOWED_HIGHWAYS", services.DefaultDisallowedHighways)
	cfg.Filter.MinWidth, err = GetFloat("HV_MIN_WIDTH_METERS", services.DefaultMinWidthMeters)
	collect(err)
	cfg.CorridorRadiusDeg, err = GetFloat("POI_CORRIDOR_RADIUS_DEG", services.DefaultCorridorRadiusDeg)
	collect(err)

	collect(cfg.validate())

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("load config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	switch c.Geocoder {
	case GeocoderORS:
		if c.ORSAPIKey == "" {
			errs = append(errs, errors.New("ORS_API_KEY is required when GEOCODER=ors"))
		}
	case GeocoderNominatim, GeocoderStatic:
	default:
		errs = append(errs, fmt.Errorf("GEOCODER=%q: want %s, %s or %s", c.Geocoder, GeocoderORS, GeocoderNominatim, GeocoderStatic))
	}

	switch c.GeocodeCache {
	case CacheNone, CacheRedis:
	case CachePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when GEOCODE_CACHE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("GEOCODE_CACHE=%q: want none, postgres or redis", c.GeocodeCache))
	}

	if c.Planner.BBoxMarginDeg <= 0 {
		errs = append(errs, fmt.Errorf("ROUTE_BBOX_MARGIN_DEG=%v: must be positive", c.Planner.BBoxMarginDeg))
	}
	if c.ORSMaxAttempts < 1 || c.OverpassMaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.CorridorRadiusDeg <= 0 {
		errs = append(errs, fmt.Errorf("POI_CORRIDOR_RADIUS_DEG=%v: must be positive", c.CorridorRadiusDeg))
	}

	return errors.Join(errs...)
}
