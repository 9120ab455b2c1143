package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

type sqlMigration struct {
	Version int64
	Name    string
}

// listSQLMigrations returns the .sql files of dir ordered by version. A
// badly named file or a repeated version is an error.
func listSQLMigrations(dir string) ([]sqlMigration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	byVersion := map[int64]string{}
	out := make([]sqlMigration, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		if prev, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d in %q and %q", version, prev, name)
		}
		byVersion[version] = name
		out = append(out, sqlMigration{Version: version, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// ValidateDir checks migration filenames and that each file declares an Up
// section followed by a Down section.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	files, err := listSQLMigrations(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		full := filepath.Join(dir, f.Name)
		b, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}
		if err := checkSections(string(b)); err != nil {
			return fmt.Errorf("migration %q: %w", f.Name, err)
		}
	}
	return nil
}

func checkSections(body string) error {
	up := strings.Index(body, upMarker)
	down := strings.Index(body, downMarker)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", upMarker)
	case down < 0:
		return fmt.Errorf("missing %q", downMarker)
	case down < up:
		return fmt.Errorf("%q must come before %q", upMarker, downMarker)
	}
	return nil
}
