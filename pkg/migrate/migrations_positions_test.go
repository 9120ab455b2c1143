package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elameta/quoteregistry/pkg/migrate"
)

func TestPositionsMigrationContainsSchemas(t *testing.T) {
	cases := map[string][]string{
		"*_create_positions_table.sql": {
			"CREATE TABLE IF NOT EXISTS positions",
			"ktl_thickness_txt VARCHAR(64)",
			"current_price NUMERIC(12,4)",
			"CREATE INDEX IF NOT EXISTS idx_positions_updated_at_id",
		},
		"*_create_position_children.sql": {
			"CREATE TABLE IF NOT EXISTS price_lines",
			"price NUMERIC(12,4)",
			"CREATE TABLE IF NOT EXISTS drawings",
			"CREATE TABLE IF NOT EXISTS masking_lines",
			"CREATE TABLE IF NOT EXISTS metal_thickness_lines",
			"CREATE INDEX IF NOT EXISTS idx_price_lines_position_status",
		},
	}

	for pattern, checks := range cases {
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
		content := string(data)
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s missing expected statement %q", pattern, sub)
			}
		}
	}
}

func TestValidateDirAcceptsMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Offer Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_offer_notes.sql") {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}
