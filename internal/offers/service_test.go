package offers

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/pkg/db/models"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/metrics"
)

type stubSource struct {
	snapshot *positions.OfferSnapshot
	err      error
	gotIDs   []int64
}

func (s *stubSource) OfferSnapshot(_ context.Context, _ int64, lineIDs []int64) (*positions.OfferSnapshot, error) {
	s.gotIDs = lineIDs
	return s.snapshot, s.err
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func sampleSnapshot() *positions.OfferSnapshot {
	days := 5
	return &positions.OfferSnapshot{
		Position: models.Position{
			ID:           3,
			Client:       "Acme",
			Project:      "Bracket",
			Code:         "BR-100",
			Name:         "bracket left",
			ServiceKTL:   true,
			Coating:      "KTL BASF CG 570",
			LeadTimeDays: &days,
			Notes:        "Deburr edges",
		},
		PriceLines: []models.PriceLine{activeLine(1, "1.20"), activeLine(2, "0.95")},
	}
}

func newRenderer(t *testing.T, root string) *Renderer {
	t.Helper()
	r, err := NewRenderer(Config{CompanyName: "Elameta", CompanyLine1: "Street 1", MediaRoot: root})
	require.NoError(t, err)
	return r.WithClock(fixedClock)
}

func TestRendererProducesPDF(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "positions", "3", "front.png"))
	snapshot := sampleSnapshot()
	snapshot.Drawings = []models.Drawing{
		{ID: 1, FilePath: "positions/3/front.png"},
		{ID: 2, Title: "model", FilePath: "positions/3/model.step"},
		{ID: 3, FilePath: "positions/3/missing.jpg"},
	}

	for _, opts := range []Options{
		DefaultOptions(LangEN),
		DefaultOptions(LangLT),
		{Lang: LangEN, ExtraNotes: "valid 30 days"},
	} {
		body, err := newRenderer(t, root).Render(snapshot, opts)
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(body, []byte("%PDF")), "expected pdf header")
	}
}

func TestRendererWithoutDrawingsOrPrices(t *testing.T) {
	snapshot := &positions.OfferSnapshot{Position: models.Position{ID: 9}}
	body, err := newRenderer(t, t.TempDir()).Render(snapshot, DefaultOptions(LangEN))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestNewRendererRejectsMissingFont(t *testing.T) {
	_, err := NewRenderer(Config{FontRegularPath: filepath.Join(t.TempDir(), "nope.ttf")})
	require.Error(t, err)
}

func TestServiceGenerate(t *testing.T) {
	logs := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: logs})
	source := &stubSource{snapshot: sampleSnapshot()}
	svc, err := NewService(source, newRenderer(t, t.TempDir()), logg, metrics.NewRegistryMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)

	opts := DefaultOptions(LangLT)
	opts.LineIDs = []int64{2}
	doc, err := svc.Generate(context.Background(), 3, opts)
	require.NoError(t, err)
	assert.Equal(t, "pasiulymas_BR-100.pdf", doc.Filename)
	assert.Equal(t, LangLT, doc.Lang)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))
	assert.Equal(t, []int64{2}, source.gotIDs)
	assert.Contains(t, logs.String(), "offer.generated")
	assert.Contains(t, logs.String(), `"position_id":3`)
}

func TestServiceGeneratePropagatesNotFound(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	source := &stubSource{err: pkgerrors.New(pkgerrors.CodeNotFound, "position not found")}
	svc, err := NewService(source, newRenderer(t, t.TempDir()), logg, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), 1, DefaultOptions(LangEN))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}
