package imports

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/elameta/quoteregistry/internal/positions"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/metrics"
)

type recordingCreator struct {
	created []positions.PositionInput
	err     error
}

func (c *recordingCreator) Create(_ context.Context, in positions.PositionInput) (*positions.PositionDTO, error) {
	if c.err != nil {
		return nil, c.err
	}
	if _, err := positions.BuildDraft(in); err != nil {
		return nil, err
	}
	c.created = append(c.created, in)
	return &positions.PositionDTO{}, nil
}

func newImporter(t *testing.T, creator positionCreator) (*Importer, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: logs})
	imp, err := NewImporter(creator, logg, metrics.NewRegistryMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)
	return imp, logs
}

func xlsxBody(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestImportCSVSemicolonWithLabels(t *testing.T) {
	csv := "\ufeffKlientas;code;KTL thickness, µm;Annual qty from;annual_qty_to;Area, m²;mystery\n" +
		"Acme;A-1;20-25;10;20;1,25;x\n" +
		"Beta;B-2;;30;5;;\n" +
		";;;;;;\n" +
		"Gamma;C-3;;;;abc;\n"

	creator := &recordingCreator{}
	imp, logs := newImporter(t, creator)
	res, err := imp.Import(context.Background(), "positions.csv", strings.NewReader(csv), Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []string{"mystery"}, res.Unrecognized)
	assert.Equal(t, []RowError{
		{Row: 3, Field: "annual_qty_from", Message: "annual_qty_from must not exceed annual_qty_to"},
		{Row: 3, Field: "annual_qty_to", Message: "annual_qty_to must not be below annual_qty_from"},
		{Row: 5, Field: "area", Message: "expected a number"},
	}, res.Errors)

	require.Len(t, creator.created, 1)
	got := creator.created[0]
	assert.Equal(t, "Acme", got.Client)
	assert.Equal(t, "A-1", got.Code)
	assert.Equal(t, "20-25", got.KTLThickness)
	require.NotNil(t, got.Area)
	assert.Equal(t, "1.25", got.Area.String())
	assert.Contains(t, logs.String(), "import.completed")
}

func TestImportXLSXWithPrice(t *testing.T) {
	body := xlsxBody(t, [][]any{
		{"Client", "Position code", "Price, EUR", "Matas", "KTL", "Metal thickness, mm"},
		{"Acme", "X-9", "2,50", "kg", "taip", "1,5; 2"},
	})
	creator := &recordingCreator{}
	imp, _ := newImporter(t, creator)

	res, err := imp.Import(context.Background(), "upload.XLSX", body, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Created, "errors: %+v", res.Errors)

	got := creator.created[0]
	assert.True(t, got.ServiceKTL)
	assert.Equal(t, []string{"1,5", "2"}, got.MetalThicknesses)
	require.Len(t, got.PriceLines, 1)
	require.NotNil(t, got.PriceLines[0].Price)
	assert.Equal(t, "2.5", got.PriceLines[0].Price.String())
	assert.Equal(t, "kg", got.PriceLines[0].Unit)
}

func TestImportDryRunCreatesNothing(t *testing.T) {
	csv := "client,annual_qty_from,annual_qty_to,price\nAcme,1,2,3\nBeta,5,1,\nGamma,,,-1\n"
	creator := &recordingCreator{}
	imp, _ := newImporter(t, creator)

	res, err := imp.Import(context.Background(), "p.csv", strings.NewReader(csv), Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 2, res.Failed)
	assert.Empty(t, creator.created)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, 4, res.Errors[2].Row)
	assert.True(t, strings.HasPrefix(res.Errors[2].Field, "price_lines[0]."), res.Errors[2].Field)
}

func TestImportRejectsBadFiles(t *testing.T) {
	imp, _ := newImporter(t, &recordingCreator{})

	_, err := imp.Import(context.Background(), "notes.pdf", strings.NewReader("x"), Options{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = imp.Import(context.Background(), "a.csv", strings.NewReader("foo,bar\n1,2\n"), Options{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = imp.Import(context.Background(), "a.csv", strings.NewReader(""), Options{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestImportAbortsOnStorageError(t *testing.T) {
	creator := &recordingCreator{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("conn reset"), "db: create position")}
	imp, _ := newImporter(t, creator)

	res, err := imp.Import(context.Background(), "a.csv", strings.NewReader("client\nAcme\nBeta\n"), Options{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	require.NotNil(t, res)
	assert.Equal(t, 1, res.TotalRows)
}

func TestErrorReport(t *testing.T) {
	body, err := ErrorReport([]RowError{{Row: 3, Field: "area", Message: "expected a number"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Errors")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Row #", "Field", "Error"}, {"3", "area", "expected a number"}}, rows)
}

func TestParsers(t *testing.T) {
	v, err := parseInt(" 12.0 ")
	require.NoError(t, err)
	assert.Equal(t, 12, v)
	_, err = parseInt("12.5")
	assert.Error(t, err)

	d, err := parseDecimal(" 1 250,5 ")
	require.NoError(t, err)
	assert.Equal(t, "1250.5", d.String())
	for _, raw := range []string{"1e999999999", "NaN", "1E+3"} {
		_, err = parseDecimal(raw)
		assert.Error(t, err, raw)
	}

	for _, raw := range []string{"Taip", "yes", "1", "x"} {
		b, err := parseBool(raw)
		require.NoError(t, err)
		assert.True(t, b, raw)
	}
	b, err := parseBool("Ne")
	require.NoError(t, err)
	assert.False(t, b)
	_, err = parseBool("maybe")
	assert.Error(t, err)
}

func TestMapHeadersPrefersKeysOverSharedLabels(t *testing.T) {
	mapped, unrecognized := mapHeaders([]string{"Preparation", "Paruošimas", "service_prep", "client", "Client"})
	require.NotNil(t, mapped[0])
	assert.Equal(t, "preparation", mapped[0].key)
	assert.Nil(t, mapped[1], "duplicate of preparation")
	require.NotNil(t, mapped[2])
	assert.Equal(t, "service_prep", mapped[2].key)
	assert.Nil(t, mapped[4])
	assert.Equal(t, []string{"Paruošimas", "Client"}, unrecognized)
}
