package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mission-circuit-service/internal/adapters/cache"
	"mission-circuit-service/internal/adapters/distance"
	"mission-circuit-service/internal/adapters/repositories"
	"mission-circuit-service/internal/api"
	"mission-circuit-service/internal/config"
	"mission-circuit-service/internal/platform/db"
	"mission-circuit-service/internal/platform/obs"
	"mission-circuit-service/internal/ports"
	"mission-circuit-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, ORS, Redis) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	obs.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		slog.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if cfg.SeedPath != "" {
		if err := repositories.SeedFromJSON(conn, dialect, cfg.SeedPath); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		slog.Info("database seeded", "path", cfg.SeedPath)
	}

	provider, closeCache, err := newProvider(ctx, cfg, conn, dialect)
	if err != nil {
		return err
	}
	defer closeCache()

	var store *repositories.SQLMissionRepository
	if dialect.Name == repositories.Postgres.Name {
		store = repositories.NewPostgresMissionRepository(conn)
	} else {
		store = repositories.NewSqliteMissionRepository(conn)
	}

	generator := services.NewCircuitGenerator(store, services.NewCircuitPlanner(provider, cfg.TwoOptPasses))
	router := api.NewRouter(generator, conn)

	// Timeouts are tuned for cold-cache circuit generation (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "db", dialect.Name, "distance_provider", cfg.DistanceProvider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Postgres when DATABASE_URL is set, a local SQLite file otherwise.
func openStore(cfg config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, repositories.Dialect{}, err
		}
		return conn, repositories.Postgres, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, repositories.Dialect{}, fmt.Errorf("create db dir: %w", err)
	}
	conn, err := db.OpenSqlite(cfg.DBPath)
	if err != nil {
		return nil, repositories.Dialect{}, err
	}
	return conn, repositories.Sqlite, nil
}

// newProvider builds the distance provider. The ORS provider caches matrices
// in Redis when REDIS_URL is set, and in the main database otherwise.
func newProvider(ctx context.Context, cfg config.Config, conn *sql.DB, dialect repositories.Dialect) (ports.DistanceProvider, func(), error) {
	noop := func() {}

	if cfg.DistanceProvider == config.ProviderHaversine {
		slog.Warn("using haversine distances; circuits are not based on road network data")
		return distance.NewHaversineProvider(), noop, nil
	}

	var matrixCache ports.MatrixCache
	closeCache := noop
	switch {
	case cfg.RedisURL != "":
		client, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		matrixCache = cache.NewRedisMatrixCache(client, cfg.MatrixCacheTTL)
		closeCache = func() { client.Close() }
	case dialect.Name == repositories.Postgres.Name:
		matrixCache = cache.NewSQLMatrixCache(conn, cfg.MatrixCacheTTL)
	default:
		matrixCache = cache.NewSqliteMatrixCache(conn, cfg.MatrixCacheTTL)
	}

	provider, err := distance.NewORSDistanceProvider(
		cfg.ORSAPIKey,
		matrixCache,
		distance.WithBaseURL(cfg.ORSBaseURL),
		distance.WithProfile(cfg.ORSProfile),
		distance.WithTimeout(cfg.ORSTimeout),
		distance.WithRetry(cfg.ORSMaxAttempts, cfg.ORSRetryBackoff),
	)
	if err != nil {
		closeCache()
		return nil, nil, err
	}

	return provider, closeCache, nil
}
