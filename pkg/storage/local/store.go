package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/elameta/quoteregistry/pkg/logger"
)

// ErrOutsideRoot is returned for relative paths that escape the media root.
var ErrOutsideRoot = errors.New("path escapes media root")

// Store keeps uploaded media files under a single root directory. Callers
// address files by slash-separated paths relative to that root.
type Store struct {
	root string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New prepares the media root, creating it when missing.
func New(ctx context.Context, root string, logg *logger.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("media root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating media root: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "media_root", abs), "media store ready")
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute media root.
func (s *Store) Root() string {
	return s.root
}

// Path resolves rel to an absolute path inside the root.
func (s *Store) Path(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", errors.New("empty media path")
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if full != s.root && !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// Save writes body to rel, creating parent directories, and returns the byte count.
func (s *Store) Save(ctx context.Context, rel string, body io.Reader) (int64, error) {
	full, err := s.Path(rel)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("creating media dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("creating media file: %w", err)
	}
	n, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(full)
		return 0, fmt.Errorf("writing media file: %w", copyErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("closing media file: %w", closeErr)
	}
	return n, nil
}

// Exists reports whether rel names a regular file.
func (s *Store) Exists(rel string) (bool, error) {
	full, err := s.Path(rel)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Remove deletes rel. A file that is already gone is not an error.
func (s *Store) Remove(ctx context.Context, rel string) error {
	full, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing media file: %w", err)
	}
	return nil
}

// Ping checks that the root is still a writable directory.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("media root %s is not a directory", s.root)
	}
	return nil
}
