// Package main runs the chart server: it loads the series once from the
// configured data source and serves the chart page, its API and exports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timeframe-chart/internal/chartstate"
	"timeframe-chart/internal/config"
	"timeframe-chart/internal/render"
	"timeframe-chart/internal/source"
	"timeframe-chart/internal/storage"
	chstore "timeframe-chart/internal/storage/clickhouse"
	"timeframe-chart/internal/storage/memory"
	"timeframe-chart/internal/storage/migrations"
	pgstore "timeframe-chart/internal/storage/postgres"
	"timeframe-chart/internal/web"
)

const demoSamples = 180

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Load .env file if exists
	if err := config.LoadEnvFile(); err != nil {
		logger.Printf("Could not load .env file: %v", err)
	}

	// Parse flags (env vars as defaults)
	cfg := config.FromEnv()
	config.RegisterFlags(flag.CommandLine, &cfg)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("%v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, cleanup, err := createSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create data source: %v", err)
	}
	defer cleanup()

	store := chartstate.NewStore(chartstate.Reduce(chartstate.New(),
		chartstate.GranularitySelected{Granularity: cfg.Granularity()}))

	loader := source.NewLoader(source.LoaderOptions{
		Source:     src,
		Dispatcher: store,
		Logger:     log.New(os.Stdout, "[loader] ", log.LstdFlags|log.Lshortfile),
	})

	srv := web.New(web.Options{
		Addr:   cfg.HTTPAddr,
		Store:  store,
		Loader: loader,
		Renderer: render.Renderer{
			Width:  cfg.ChartWidth,
			Height: cfg.ChartHeight,
			Title:  cfg.ChartTitle,
		},
		Logger:          log.New(os.Stdout, "[web] ", log.LstdFlags|log.Lshortfile),
		ShutdownTimeout: cfg.ShutdownTimeout,
	})

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(cfg.ShutdownTimeout):
			logger.Printf("Graceful shutdown timed out after %v, forcing exit", cfg.ShutdownTimeout)
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	logger.Printf("Data source: %s, default granularity: %s", src.Name(), cfg.Granularity())

	// Fetch once in the background; the page renders whatever is loaded.
	loader.Start(ctx)

	err = srv.Run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createSource builds the data source selected by cfg.DataSource.
func createSource(ctx context.Context, cfg config.Config, logger *log.Logger) (source.Source, func(), error) {
	switch cfg.DataSource {
	case config.SourceFile:
		return source.NewFileSource(cfg.DataFile), func() {}, nil

	case config.SourceHTTP:
		src, err := source.NewHTTPSource(cfg.DataURL, cfg.DataPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Printf("Fetching series from %s", src.URL())
		return src, func() {}, nil

	case config.SourceMemory:
		store := memory.NewSeriesStore()
		seed, err := source.NewFileSource(cfg.DataFile).Fetch(ctx)
		if err != nil {
			logger.Printf("No seed data (%v), using demo series", err)
			seed = source.DemoSeries(time.Now().AddDate(0, 0, -demoSamples), demoSamples)
		}
		if err := store.Put(cfg.SeriesID, seed); err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		return storeSource(store, cfg, "memory"), func() {}, nil

	case config.SourcePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if cfg.RunMigrations {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
			}
			logger.Println("PostgreSQL migrations applied")
		}

		statsCtx, stop := context.WithCancel(ctx)
		go recordPoolStats(statsCtx, pool)

		return storeSource(pgstore.NewSeriesStore(pool), cfg, "postgres"), func() {
			stop()
			pool.Close()
		}, nil

	case config.SourceClickhouse:
		var (
			conn *chstore.Conn
			err  error
		)
		if cfg.RunMigrations {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
			if err == nil {
				logger.Println("ClickHouse migrations applied")
			}
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return storeSource(chstore.NewSeriesStore(conn), cfg, "clickhouse"), func() { conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

func storeSource(store storage.SeriesStore, cfg config.Config, name string) source.Source {
	return source.NewStoreSource(store, cfg.SeriesID, name).WithTimeRange(cfg.SeriesFrom, cfg.SeriesTo)
}

// recordPoolStats publishes pool gauges until ctx is done.
func recordPoolStats(ctx context.Context, pool *pgstore.Pool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		pool.RecordStats()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
