package migrate_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nnaudio/storefront-api/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file found for %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"price numeric(10,2) NOT NULL CHECK (price >= 0)",
		"stripe_sale_price_id text NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_slug",
		"DROP TABLE IF EXISTS products",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProfilesMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_profiles_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS profiles",
		"customer_id text NULL",
		"CREATE INDEX IF NOT EXISTS idx_profiles_customer_id",
		"DROP TABLE IF EXISTS profiles",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("expected shipped migrations to validate: %v", err)
	}
}

func TestCreateSQLMigrationThenValidate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Orders Table!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_orders_table.sql") {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("validate created migration: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename to fail validation")
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	embeddedFiles, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embeddedFiles) == 0 || len(embeddedFiles) != len(onDisk) {
		t.Fatalf("embedded %v does not match disk %v", embeddedFiles, onDisk)
	}
}

func TestMigrateToVersionRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	if err := migrate.MigrateToVersion(ctx, nil, "postgres", "migrations", ""); err == nil {
		t.Fatalf("expected missing version error")
	}
	if err := migrate.MigrateToVersion(ctx, nil, "postgres", "migrations", "latest"); err == nil {
		t.Fatalf("expected invalid version error")
	}
	if err := migrate.Run(ctx, nil, "postgres", "migrations", "up"); err == nil {
		t.Fatalf("expected missing db error")
	}
}
