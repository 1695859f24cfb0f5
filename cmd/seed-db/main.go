// Command seed-db loads a perfume catalog into the database. Without flags it
// imports the embedded demo catalog; --products-file imports an external JSON
// catalog instead, transparently decompressing .gz files.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"github.com/imperialessence/essence-backend/internal/docstore"
	"github.com/imperialessence/essence-backend/internal/seed"
	"github.com/imperialessence/essence-backend/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		force        bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to a products JSON catalog (.json or .json.gz); empty uses the embedded demo catalog")
	flag.BoolVar(&force, "force", false, "insert even when the product collection is not empty")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		databaseURL = os.Getenv("ESSENCE_DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url, DATABASE_URL, or ESSENCE_DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, force); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, force bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products := postgres.NewProductRepository(docstore.New(pool))

	if productsFile == "" {
		inserted, err := seed.New(products).Run(ctx)
		if err != nil {
			return errors.Wrap(err, "seed embedded catalog")
		}
		if inserted == 0 {
			slog.Info("product collection already seeded, nothing to do")
		} else {
			slog.Info("seeded embedded catalog", slog.Int("inserted", inserted))
		}
		return nil
	}

	return seedFromFile(ctx, products, productsFile, force)
}

func seedFromFile(ctx context.Context, products *postgres.ProductRepository, path string, force bool) error {
	if !force {
		count, err := products.Count(ctx)
		if err != nil {
			return errors.Wrap(err, "count products")
		}
		if count > 0 {
			slog.Info("product collection already seeded, use --force to insert anyway", slog.Int64("count", count))
			return nil
		}
	}

	data, err := readCatalog(path)
	if err != nil {
		return err
	}

	catalog, err := seed.Parse(data)
	if err != nil {
		return errors.Wrap(err, "parse catalog")
	}

	slog.Info("inserting products", slog.Int("count", len(catalog)))

	for _, p := range catalog {
		created, err := products.Create(ctx, p)
		if err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}
		slog.Info("inserted product", slog.String("id", created.ID), slog.String("name", created.Name))
	}

	return nil
}

// readCatalog reads the catalog file, decompressing it when the path carries a
// .gz suffix.
func readCatalog(path string) ([]byte, error) {
	slog.Info("reading catalog file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog file")
	}
	return data, nil
}
