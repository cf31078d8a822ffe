package importcli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/schemes-portal/schemes_portal/internal/catalog"
	"github.com/schemes-portal/schemes_portal/internal/config"
	"github.com/schemes-portal/schemes_portal/internal/infra"
	"github.com/schemes-portal/schemes_portal/internal/logging"
)

func TestParseFlagsRequiresInput(t *testing.T) {
	if _, err := ParseFlags(nil); err == nil {
		t.Fatalf("expected error without input files")
	}
	opts, err := ParseFlags([]string{"-scraped", "schemes.json", "-backend", "sqlite", "-default-category", "welfare"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.DefaultCategory != "welfare" {
		t.Fatalf("unexpected options %+v", opts)
	}

	t.Setenv("DATA_BACKEND", config.DriverRemote)
	t.Setenv("BACKEND_URL", "")
	t.Setenv("SQLITE_PATH", "")
	opts.SQLitePath = "import.db"
	if err := opts.Export(); err != nil {
		t.Fatalf("export: %v", err)
	}
	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DataBackend != config.DriverSQLite || cfg.SQLitePath != "import.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CategoriesPath: writeFile(t, dir, "categories.json", `[
			{"name": "Agriculture", "slug": "agriculture", "icon": "Wheat"},
			{"name": "Health", "slug": "health", "icon": "HeartPulse"}
		]`),
		ScrapedPath: writeFile(t, dir, "schemes.json", `[
			{"title": "Crop Insurance", "key_0": "Ministry Of Agriculture", "key_1": "Insurance cover", "key_2": "Agriculture"},
			{"title": "Untagged", "key_0": "Somewhere", "key_1": "Nothing matches"}
		]`),
	}
	cfg := config.Config{DataBackend: config.DriverSQLite, SQLitePath: filepath.Join(dir, "portal.db")}

	ctx := context.Background()
	res, err := Run(ctx, cfg, opts, logging.Discard())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Categories != 2 || res.Imported != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	db, err := infra.NewSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	schemes, err := catalog.NewSQLiteRepository(db).ListSchemes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(schemes) != 1 || schemes[0].CategoryID != catalog.CategoryID("agriculture") {
		t.Fatalf("unexpected schemes %+v", schemes)
	}
}

func TestRunRejectsUnknownIcons(t *testing.T) {
	dir := t.TempDir()
	opts := Options{CategoriesPath: writeFile(t, dir, "categories.json", `[{"name": "Misc", "slug": "misc", "icon": "Rocket"}]`)}
	cfg := config.Config{DataBackend: config.DriverSQLite, SQLitePath: filepath.Join(dir, "portal.db")}

	if _, err := Run(context.Background(), cfg, opts, logging.Discard()); err == nil {
		t.Fatalf("expected unknown icon error")
	}
}

func TestRunRejectsMemoryAndTokenlessRemote(t *testing.T) {
	opts := Options{ScrapedPath: "unused.json"}
	if _, err := Run(context.Background(), config.Config{DataBackend: config.DriverMemory}, opts, logging.Discard()); err == nil {
		t.Fatalf("expected memory driver rejected")
	}
	remote := config.Config{DataBackend: config.DriverRemote, BackendURL: "http://127.0.0.1:1", BackendAnonKey: "anon"}
	if _, err := Run(context.Background(), remote, opts, logging.Discard()); err == nil {
		t.Fatalf("expected missing token rejected")
	}
}
