package main

import (
	"context"
	"database/sql"
	"fmt"
	"heavy-route-service/internal/adapters/cache"
	"heavy-route-service/internal/adapters/memory"
	"heavy-route-service/internal/adapters/nominatim"
	"heavy-route-service/internal/adapters/ors"
	"heavy-route-service/internal/adapters/overpass"
	"heavy-route-service/internal/adapters/repositories"
	"heavy-route-service/internal/api"
	"heavy-route-service/internal/config"
	"heavy-route-service/internal/platform/db"
	"heavy-route-service/internal/platform/obs"
	"heavy-route-service/internal/ports"
	"heavy-route-service/internal/services"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Overpass, geocoders, caches) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	geocoder, closeGeocoder, err := buildGeocoder(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeGeocoder()

	network := overpass.NewClient(cfg.OverpassURL, overpass.Options{
		MaxAttempts: cfg.OverpassMaxAttempts,
		Timeout:     cfg.Planner.GraphFetchTimeout,
	})

	planner := services.NewRoutePlanner(
		geocoder,
		network,
		services.NewHeavyVehicleFilter(cfg.Filter),
		services.NewCorridorPOIQuery(network, cfg.CorridorRadiusDeg),
		cfg.Planner,
		metrics,
	)

	router := api.NewRouter(planner, metrics, reg)

	// Timeouts are tuned for cold Overpass fetches of large bounding boxes.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Planner.GraphFetchTimeout + 2*cfg.Planner.GeocodeTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s geocoder=%s cache=%s", cfg.Port, cfg.Geocoder, cfg.GeocodeCache)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// buildGeocoder selects the geocoder and optional cache from cfg. The
// returned func releases cache connections.
func buildGeocoder(ctx context.Context, cfg config.Config) (ports.Geocoder, func(), error) {
	noop := func() {}

	var base ports.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderORS:
		g, err := ors.NewGeocoder(cfg.ORSAPIKey, ors.Options{
			BaseURL:         cfg.ORSBaseURL,
			BoundaryCountry: cfg.ORSBoundaryCountry,
			MaxAttempts:     cfg.ORSMaxAttempts,
			Timeout:         cfg.Planner.GeocodeTimeout,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("build geocoder: %w", err)
		}
		base = g
	case config.GeocoderNominatim:
		g, err := nominatim.NewGeocoder(cfg.NominatimUserAgent, nominatim.Options{
			BaseURL:     cfg.NominatimBaseURL,
			MaxAttempts: 1,
			Timeout:     cfg.Planner.GeocodeTimeout,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("build geocoder: %w", err)
		}
		base = g
	case config.GeocoderStatic:
		places, err := repositories.LoadPlaces(cfg.PlacesPath)
		if err != nil {
			return nil, noop, fmt.Errorf("build geocoder: %w", err)
		}
		return memory.NewStaticGeocoder(places), noop, nil
	default:
		return nil, noop, fmt.Errorf("build geocoder: unknown geocoder %q", cfg.Geocoder)
	}

	switch cfg.GeocodeCache {
	case config.CachePostgres:
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("build geocoder: %w", err)
		}
		if err := repositories.InitSchema(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, noop, fmt.Errorf("build geocoder: %w", err)
		}
		return cache.NewCachedGeocoder(base, cache.NewSQLGeocodeCache(sqlDB)), closer(sqlDB), nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis ping addr=%s failed, cache reads will be bypassed until it recovers: %v", cfg.RedisAddr, err)
		}
		return cache.NewCachedGeocoder(base, cache.NewRedisGeocodeCache(client, cfg.RedisGeocodeTTL)), func() { _ = client.Close() }, nil
	}

	return base, noop, nil
}

func closer(sqlDB *sql.DB) func() {
	return func() { _ = sqlDB.Close() }
}
