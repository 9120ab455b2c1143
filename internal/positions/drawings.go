package positions

import (
	"context"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elameta/quoteregistry/pkg/db/models"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
)

type mediaStore interface {
	Save(ctx context.Context, rel string, body io.Reader) (int64, error)
	Remove(ctx context.Context, rel string) error
}

// DrawingUpload is one drawing file received from a client.
type DrawingUpload struct {
	Title    string
	Filename string
	Body     io.Reader
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// DrawingPath builds the media path of an uploaded drawing:
// positions/<id>/<slug>-<suffix><ext>.
func DrawingPath(positionID int64, filename, suffix string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	base := strings.TrimSuffix(name, path.Ext(name))
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if slug == "" {
		slug = "drawing"
	}
	if suffix != "" {
		slug += "-" + suffix
	}
	return path.Join("positions", strconv.FormatInt(positionID, 10), slug+ext)
}

func (s *service) AddDrawing(ctx context.Context, id int64, upload DrawingUpload) (*DrawingDTO, error) {
	if s.opts.Media == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "drawing storage is not configured")
	}
	if upload.Body == nil || strings.TrimSpace(upload.Filename) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a drawing file is required").
			WithDetails(map[string]string{"file": "a drawing file is required"})
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	rel := DrawingPath(id, upload.Filename, uuid.NewString()[:8])
	if _, err := s.opts.Media.Save(ctx, rel, upload.Body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "media: save drawing")
	}

	drawing := models.Drawing{
		PositionID: id,
		Title:      strings.TrimSpace(upload.Title),
		FilePath:   rel,
	}
	if err := s.repo.CreateDrawing(ctx, &drawing); err != nil {
		if rmErr := s.opts.Media.Remove(ctx, rel); rmErr != nil {
			s.logg.Error(ctx, "drawing.cleanup_failed", rmErr)
		}
		return nil, err
	}

	s.logg.Info(s.logg.WithField(s.logg.WithPositionID(ctx, id), "drawing_id", drawing.ID), "drawing.uploaded")
	return &DrawingDTO{
		ID:          drawing.ID,
		Title:       drawing.Title,
		FilePath:    drawing.FilePath,
		PreviewPath: drawing.PreviewPath,
		UploadedAt:  drawing.UploadedAt,
	}, nil
}

func (s *service) DeleteDrawing(ctx context.Context, id, drawingID int64) error {
	var drawing *models.Drawing
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if drawing, err = repo.FindDrawing(ctx, id, drawingID); err != nil {
			return err
		}
		return repo.DeleteDrawing(ctx, id, drawingID)
	})
	if err != nil {
		return err
	}
	s.removeDrawingFiles(s.logg.WithPositionID(ctx, id), *drawing)
	return nil
}

func (s *service) removeDrawingFiles(ctx context.Context, d models.Drawing) {
	if s.opts.Media == nil {
		return
	}
	for _, rel := range []string{d.FilePath, d.PreviewPath} {
		if rel == "" {
			continue
		}
		if err := s.opts.Media.Remove(ctx, rel); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "path", rel), "drawing.remove_failed", err)
		}
	}
}
