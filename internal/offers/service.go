package offers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/metrics"
)

// Document is a rendered offer ready to be streamed.
type Document struct {
	Filename string
	Lang     Lang
	Body     []byte
}

type snapshotSource interface {
	OfferSnapshot(ctx context.Context, id int64, lineIDs []int64) (*positions.OfferSnapshot, error)
}

// Service renders offers for stored positions.
type Service interface {
	Generate(ctx context.Context, positionID int64, opts Options) (*Document, error)
}

type service struct {
	source   snapshotSource
	renderer *Renderer
	logg     *logger.Logger
	metrics  *metrics.RegistryMetrics
}

// NewService wires the offer generator.
func NewService(source snapshotSource, renderer *Renderer, logg *logger.Logger, m *metrics.RegistryMetrics) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("snapshot source required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{source: source, renderer: renderer, logg: logg, metrics: m}, nil
}

func (s *service) Generate(ctx context.Context, positionID int64, opts Options) (*Document, error) {
	ctx = s.logg.WithPositionID(ctx, positionID)
	snapshot, err := s.source.OfferSnapshot(ctx, positionID, opts.LineIDs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := s.renderer.Render(snapshot, opts)
	s.metrics.ObserveOffer(string(opts.Lang), err, time.Since(start))
	if err != nil {
		s.logg.Error(ctx, "offer.render_failed", err)
		return nil, err
	}

	doc := &Document{
		Filename: Filename(snapshot.Position.Code, snapshot.Position.ID, opts.Lang),
		Lang:     opts.Lang,
		Body:     body,
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"lang":        string(opts.Lang),
		"price_lines": len(snapshot.PriceLines),
		"drawings":    len(snapshot.Drawings),
		"bytes":       len(body),
	}), "offer.generated")
	return doc, nil
}

// Filename names the download: pasiulymas_<code>.pdf or offer_<code>.pdf.
// The position id stands in for a blank code.
func Filename(code string, id int64, lang Lang) string {
	code = sanitizeFilename(code)
	if code == "" {
		code = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s_%s.pdf", LabelsFor(lang).FilenamePrefix, code)
}

func sanitizeFilename(code string) string {
	code = strings.TrimSpace(code)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|', '\n', '\r', ' ':
			return '_'
		}
		return r
	}, code)
}
