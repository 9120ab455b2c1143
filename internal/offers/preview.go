package offers

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/elameta/quoteregistry/pkg/db/models"
)

// PreviewSource finds an image file that can stand in for a drawing. A
// strategy returns ok=false when it has nothing to offer so the next one is
// tried; any error other than a missing file stops the chain.
type PreviewSource func(d models.Drawing) (string, bool, error)

var imageExts = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}}

// PreviewResolver walks the preview strategies for drawings stored under root.
type PreviewResolver struct {
	root       string
	strategies []PreviewSource
}

// NewPreviewResolver tries the generated preview first and then the original
// file when it is already an image.
func NewPreviewResolver(root string) *PreviewResolver {
	r := &PreviewResolver{root: root}
	r.strategies = []PreviewSource{r.fromPreview, r.fromOriginalImage}
	return r
}

// Resolve returns the absolute image path for d, or ok=false when none of the
// strategies found one.
func (r *PreviewResolver) Resolve(d models.Drawing) (string, bool, error) {
	for _, strategy := range r.strategies {
		p, ok, err := strategy(d)
		if err != nil {
			return "", false, err
		}
		if ok {
			return p, true, nil
		}
	}
	return "", false, nil
}

func (r *PreviewResolver) fromPreview(d models.Drawing) (string, bool, error) {
	return r.existingImage(d.PreviewPath)
}

func (r *PreviewResolver) fromOriginalImage(d models.Drawing) (string, bool, error) {
	return r.existingImage(d.FilePath)
}

func (r *PreviewResolver) existingImage(rel string) (string, bool, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || !IsImage(rel) {
		return "", false, nil
	}
	abs := filepath.Join(r.root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}
	return abs, true, nil
}

// IsImage reports whether name has an extension the PDF renderer can embed.
func IsImage(name string) bool {
	_, ok := imageExts[strings.ToLower(path.Ext(name))]
	return ok
}

// Placeholder is the text drawn instead of a missing preview.
func Placeholder(d models.Drawing) string {
	switch strings.ToLower(path.Ext(d.FilePath)) {
	case ".stp", ".step":
		return "3D"
	}
	return "N/A"
}
