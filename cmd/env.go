package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ardhi-group/parcel-cli/internal/boundary"
	"github.com/ardhi-group/parcel-cli/internal/db"
	"github.com/ardhi-group/parcel-cli/internal/enrich"
	"github.com/ardhi-group/parcel-cli/internal/listing"
	"github.com/ardhi-group/parcel-cli/internal/proximity"
	"github.com/ardhi-group/parcel-cli/internal/resilience"
)

// readGeometry loads a GeoJSON document from a file path, or from stdin when
// the path is "-".
func readGeometry(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, eris.Wrap(err, "read geometry from stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read geometry file %s", path)
	}
	return data, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openCatalog opens the boundary catalog for the configured store driver.
// The returned close function releases the underlying connection.
func openCatalog(ctx context.Context) (boundary.Catalog, func(), error) {
	switch cfg.Store.Driver {
	case "sqlite":
		catalog, err := boundary.NewSQLiteCatalog(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return catalog, func() { _ = catalog.Close() }, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return boundary.NewPostgresCatalog(pool), pool.Close, nil
	default:
		return nil, nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// env bundles the Postgres-backed stores and the enrichment pipeline for
// commands that operate on listings. It requires the postgres driver.
type env struct {
	pool      db.Pool
	listings  *listing.Store
	catalog   *boundary.PostgresCatalog
	proximity *proximity.Store
	pipeline  *enrich.Pipeline
}

func (e *env) Close() {
	e.pool.Close()
}

// initEnv connects the stores and wires the pipeline from config.
func initEnv(ctx context.Context) (*env, error) {
	if cfg.Store.Driver != "postgres" {
		return nil, eris.Errorf("listing commands require the postgres store driver, got %q", cfg.Store.Driver)
	}

	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	listings := listing.NewStore(pool)
	catalog := boundary.NewPostgresCatalog(pool)
	records := proximity.NewStore(pool)

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Overpass.MaxRetries
	retry.OnRetry = resilience.RetryLogger("overpass", "nearby")
	client := proximity.NewClient(proximity.ClientOptions{
		Endpoint:          cfg.Overpass.Endpoint,
		UserAgent:         cfg.Overpass.UserAgent,
		Timeout:           time.Duration(cfg.Overpass.TimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.Overpass.RequestsPerSecond,
		Retry:             retry,
	})

	pipeline := enrich.NewPipeline(
		listings,
		boundary.NewResolver(catalog),
		proximity.NewAnalyzer(client),
		records,
		enrich.Options{
			SimilarityThreshold: cfg.Enrich.SimilarityThreshold,
			MaxConcurrency:      cfg.Enrich.MaxConcurrentListings,
		},
	)

	return &env{
		pool:      pool,
		listings:  listings,
		catalog:   catalog,
		proximity: records,
		pipeline:  pipeline,
	}, nil
}

// migrateEnv creates all listing-side tables.
func (e *env) migrate(ctx context.Context) error {
	if err := e.listings.Migrate(ctx); err != nil {
		return err
	}
	if err := e.catalog.Migrate(ctx); err != nil {
		return err
	}
	return e.proximity.Migrate(ctx)
}
