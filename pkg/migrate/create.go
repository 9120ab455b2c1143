package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

const sqlTemplate = `%s
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

%s
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration <dir>/<version>_<name>.sql.
// The version is the current UTC time, moved past the newest existing file
// so the new migration always sorts last.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now)
}

func createSQLMigration(dir, name string, now func() time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := migrationSlug(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	existing, err := listSQLMigrations(dir)
	if err != nil {
		return "", err
	}
	version := now().UTC()
	if n := len(existing); n > 0 {
		latest, err := time.Parse(versionLayout, strconv.FormatInt(existing[n-1].Version, 10))
		if err == nil && !version.After(latest) {
			version = latest.Add(time.Second)
		}
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), safe))
	body := fmt.Sprintf(sqlTemplate, upMarker, safe, downMarker, safe)
	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func migrationSlug(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(strings.ReplaceAll(safe, " ", "_"), "_")
	return strings.Trim(safe, "_")
}
