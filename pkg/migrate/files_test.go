package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationSortsAfterNewest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20300101000000_future.sql"),
		[]byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	clock := func() time.Time { return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) }
	path, err := createSQLMigration(dir, "price notes", clock)
	require.NoError(t, err)
	assert.Equal(t, "20300101000001_price_notes.sql", filepath.Base(path))

	path, err = createSQLMigration(dir, "drawing titles", clock)
	require.NoError(t, err)
	assert.Equal(t, "20300101000002_drawing_titles.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRejectsEmptySlug(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), " !!! ")
	require.Error(t, err)
	_, err = CreateSQLMigration("", "x")
	require.Error(t, err)
}

func TestValidateDirChecksSections(t *testing.T) {
	cases := map[string]string{
		"missing down": "-- +goose Up\nSELECT 1;\n",
		"down first":   "-- +goose Down\nSELECT 1;\n-- +goose Up\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "20260302080000_bad.sql"), []byte(body), 0o644))
			require.Error(t, ValidateDir(dir))
		})
	}
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260302080000_a.sql"), body, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260302080000_b.sql"), body, 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate migration version")
}
