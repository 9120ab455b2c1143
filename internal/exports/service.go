package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/pkg/logger"
)

type listSource interface {
	ListAll(ctx context.Context, req listing.Request) (*positions.ListResult, error)
}

// File is a rendered export.
type File struct {
	Filename string
	Rows     int
	Body     []byte
}

// Service exports the filtered listing.
type Service struct {
	source listSource
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the listing exporter.
func NewService(source listSource, logg *logger.Logger) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("listing source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{source: source, logg: logg, now: time.Now}, nil
}

// Export renders every row matching req, in listing order, with the
// requested visible columns.
func (s *Service) Export(ctx context.Context, req listing.Request, lang string) (*File, error) {
	result, err := s.source.ListAll(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := ListingWorkbook(result.Rows, result.Columns, lang)
	if err != nil {
		s.logg.Error(ctx, "export.render_failed", err)
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"rows":    len(result.Rows),
		"columns": len(result.Columns),
	}), "export.completed")
	return &File{
		Filename: fmt.Sprintf("positions_%s.xlsx", s.now().Format("20060102_1504")),
		Rows:     len(result.Rows),
		Body:     body,
	}, nil
}
