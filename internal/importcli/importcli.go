// Package importcli implements the catalog importer command: it loads seed
// categories and scraped scheme listings into the configured store.
package importcli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/schemes-portal/schemes_portal/internal/backend"
	"github.com/schemes-portal/schemes_portal/internal/catalog"
	"github.com/schemes-portal/schemes_portal/internal/config"
	"github.com/schemes-portal/schemes_portal/internal/infra"
)

// Options are the importer's command line flags.
type Options struct {
	ScrapedPath     string
	CategoriesPath  string
	DefaultCategory string
	Backend         string
	SQLitePath      string
	AccessToken     string
}

// ParseFlags validates the importer flags.
func ParseFlags(args []string) (Options, error) {
	var opts Options

	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	fs.StringVar(&opts.ScrapedPath, "scraped", "", "Scraped scheme listing (JSON array)")
	fs.StringVar(&opts.CategoriesPath, "categories", "", "Category seed file (JSON array of name, slug, description, icon)")
	fs.StringVar(&opts.DefaultCategory, "default-category", "", "Slug used for schemes whose tags match no category")
	fs.StringVar(&opts.Backend, "backend", "", "Storage driver, overrides DATA_BACKEND (remote, postgres, sqlite)")
	fs.StringVar(&opts.SQLitePath, "sqlite", "", "SQLite file, overrides SQLITE_PATH")
	fs.StringVar(&opts.AccessToken, "token", "", "Access token for writes to the hosted service (prefer IMPORT_ACCESS_TOKEN env)")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	if opts.ScrapedPath == "" && opts.CategoriesPath == "" {
		return Options{}, errors.New("nothing to import (use -scraped and/or -categories)")
	}
	if opts.AccessToken == "" {
		opts.AccessToken = os.Getenv("IMPORT_ACCESS_TOKEN")
	}
	return opts, nil
}

// Export publishes the flag overrides as environment variables so that
// config.Load validates the store the importer will actually use.
func (o Options) Export() error {
	if o.Backend != "" {
		if err := os.Setenv("DATA_BACKEND", o.Backend); err != nil {
			return err
		}
	}
	if o.SQLitePath != "" {
		if err := os.Setenv("SQLITE_PATH", o.SQLitePath); err != nil {
			return err
		}
	}
	return nil
}

// Run imports the files named by opts into the store selected by cfg.
func Run(ctx context.Context, cfg config.Config, opts Options, logger *slog.Logger) (catalog.ImportResult, error) {
	if cfg.DataBackend == config.DriverMemory {
		return catalog.ImportResult{}, errors.New("the memory driver keeps nothing; choose remote, postgres or sqlite")
	}

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return catalog.ImportResult{}, err
	}
	defer closeRepo()

	if cfg.DataBackend == config.DriverRemote {
		if opts.AccessToken == "" {
			return catalog.ImportResult{}, errors.New("writes to the hosted service need an access token (-token or IMPORT_ACCESS_TOKEN)")
		}
		ctx = backend.WithAccessToken(ctx, opts.AccessToken)
	}

	imp := catalog.NewImporter(repo, opts.DefaultCategory, logger)
	var res catalog.ImportResult

	if opts.CategoriesPath != "" {
		seeds, err := readSeeds(opts.CategoriesPath)
		if err != nil {
			return res, err
		}
		n, err := imp.ImportCategories(ctx, seeds)
		if err != nil {
			return res, err
		}
		res.Categories = n
	}

	if opts.ScrapedPath != "" {
		f, err := os.Open(opts.ScrapedPath)
		if err != nil {
			return res, fmt.Errorf("open scraped listing: %w", err)
		}
		defer f.Close()

		records, err := catalog.ParseScraped(f)
		if err != nil {
			return res, err
		}
		schemes, err := imp.ImportSchemes(ctx, records)
		res.Imported, res.Skipped = schemes.Imported, schemes.Skipped
		if err != nil {
			return res, err
		}
	}

	logger.Info("import finished",
		slog.Int("categories", res.Categories),
		slog.Int("imported", res.Imported),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

func openRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (catalog.Repository, func(), error) {
	if cfg.DataBackend == config.DriverRemote {
		client, err := backend.New(backend.Options{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.BackendAnonKey,
			Timeout: cfg.BackendTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewRemoteRepository(client), func() {}, nil
	}

	cfg.RedisURL = ""
	res, err := infra.Open(ctx, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	closeRes := func() {
		if err := res.Close(); err != nil {
			logger.Warn("close stores", slog.Any("error", err))
		}
	}

	switch {
	case res.Postgres != nil:
		return catalog.NewPostgresRepository(res.Postgres), closeRes, nil
	case res.SQLite != nil:
		return catalog.NewSQLiteRepository(res.SQLite), closeRes, nil
	}
	closeRes()
	return nil, nil, fmt.Errorf("unsupported DATA_BACKEND %q", cfg.DataBackend)
}

func readSeeds(path string) ([]catalog.CategorySeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category seeds: %w", err)
	}
	var seeds []catalog.CategorySeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("decode category seeds: %w", err)
	}
	return seeds, nil
}
