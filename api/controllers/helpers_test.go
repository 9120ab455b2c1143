package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/internal/pricing"
	"github.com/elameta/quoteregistry/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

// stubPositionService records the last call and answers from its fields.
type stubPositionService struct {
	t *testing.T

	err       error
	position  *positions.PositionDTO
	list      *positions.ListResult
	stats     *positions.ClientStats
	lines     []positions.PriceLineDTO
	price     *positions.PriceResolution
	drawing   *positions.DrawingDTO
	suggested map[string][]string

	lastID      int64
	lastQty     int
	lastInput   positions.PositionInput
	lastLines   []pricing.LineInput
	lastRequest listing.Request
	lastUpload  positions.DrawingUpload
	uploadBody  string
	deleted     []int64
}

func (s *stubPositionService) Create(_ context.Context, in positions.PositionInput) (*positions.PositionDTO, error) {
	s.lastInput = in
	return s.position, s.err
}

func (s *stubPositionService) Update(_ context.Context, id int64, in positions.PositionInput) (*positions.PositionDTO, error) {
	s.lastID, s.lastInput = id, in
	return s.position, s.err
}

func (s *stubPositionService) Get(_ context.Context, id int64) (*positions.PositionDTO, error) {
	s.lastID = id
	return s.position, s.err
}

func (s *stubPositionService) Delete(_ context.Context, id int64) error {
	s.lastID = id
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubPositionService) List(_ context.Context, req listing.Request) (*positions.ListResult, error) {
	s.lastRequest = req
	return s.list, s.err
}

func (s *stubPositionService) ListAll(_ context.Context, req listing.Request) (*positions.ListResult, error) {
	s.lastRequest = req
	return s.list, s.err
}

func (s *stubPositionService) Stats(_ context.Context, req listing.Request) (*positions.ClientStats, error) {
	s.lastRequest = req
	return s.stats, s.err
}

func (s *stubPositionService) Suggestions(context.Context) (map[string][]string, error) {
	return s.suggested, s.err
}

func (s *stubPositionService) SavePriceLines(_ context.Context, id int64, lines []pricing.LineInput) ([]positions.PriceLineDTO, error) {
	s.lastID, s.lastLines = id, lines
	return s.lines, s.err
}

func (s *stubPositionService) ResolvePrice(_ context.Context, id int64, qty int) (*positions.PriceResolution, error) {
	s.lastID, s.lastQty = id, qty
	return s.price, s.err
}

func (s *stubPositionService) CheckOverlaps(_ context.Context, id int64) error {
	s.lastID = id
	return s.err
}

func (s *stubPositionService) OfferSnapshot(_ context.Context, id int64, _ []int64) (*positions.OfferSnapshot, error) {
	s.lastID = id
	return nil, s.err
}

func (s *stubPositionService) AddDrawing(_ context.Context, id int64, upload positions.DrawingUpload) (*positions.DrawingDTO, error) {
	s.lastID, s.lastUpload = id, upload
	if upload.Body != nil {
		body, err := io.ReadAll(upload.Body)
		if err != nil {
			s.t.Fatalf("read upload: %v", err)
		}
		s.uploadBody = string(body)
	}
	return s.drawing, s.err
}

func (s *stubPositionService) DeleteDrawing(_ context.Context, id, drawingID int64) error {
	s.lastID = id
	s.deleted = append(s.deleted, drawingID)
	return s.err
}
