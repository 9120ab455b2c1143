package imports

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/internal/pricing"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/metrics"
)

// RowError is one problem found on one data row. Row numbers match the
// spreadsheet, so the first data row is 2.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result summarizes an import run.
type Result struct {
	DryRun       bool       `json:"dry_run"`
	TotalRows    int        `json:"total_rows"`
	Created      int        `json:"created"`
	Valid        int        `json:"valid"`
	Failed       int        `json:"failed"`
	Unrecognized []string   `json:"unrecognized_columns"`
	Errors       []RowError `json:"errors"`
}

// Options tune a single run.
type Options struct {
	// DryRun validates every row without writing anything.
	DryRun bool
}

type positionCreator interface {
	Create(ctx context.Context, in positions.PositionInput) (*positions.PositionDTO, error)
}

// Importer turns uploaded tables into positions.
type Importer struct {
	creator positionCreator
	logg    *logger.Logger
	metrics *metrics.RegistryMetrics
}

// NewImporter wires the importer.
func NewImporter(creator positionCreator, logg *logger.Logger, m *metrics.RegistryMetrics) (*Importer, error) {
	if creator == nil {
		return nil, fmt.Errorf("position creator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Importer{creator: creator, logg: logg, metrics: m}, nil
}

// Import reads filename's table from body and creates one position per valid
// data row. Invalid rows are reported and skipped; storage failures abort the
// run.
func (i *Importer) Import(ctx context.Context, filename string, body io.Reader, opts Options) (*Result, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	headers, rows, err := readTable(format, body)
	if err != nil {
		return nil, err
	}
	mapped, unrecognized := mapHeaders(headers)
	if !anyMapped(mapped) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no recognizable columns").
			WithDetails(map[string]string{"file": "header row does not name any position field"})
	}

	result := &Result{DryRun: opts.DryRun, Unrecognized: unrecognized, Errors: []RowError{}}
	for idx, cells := range rows {
		rowNum := idx + 2
		if blankRow(cells) {
			continue
		}
		result.TotalRows++

		in, rowErrs := buildInput(rowNum, mapped, cells)
		if len(rowErrs) == 0 {
			rowErrs, err = i.apply(ctx, rowNum, in, opts)
			if err != nil {
				i.finish(ctx, filename, result)
				return result, err
			}
		}
		if len(rowErrs) > 0 {
			result.Failed++
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		if opts.DryRun {
			result.Valid++
		} else {
			result.Created++
		}
	}

	i.finish(ctx, filename, result)
	return result, nil
}

func (i *Importer) apply(ctx context.Context, rowNum int, in positions.PositionInput, opts Options) ([]RowError, error) {
	if opts.DryRun {
		_, draftErr := positions.BuildDraft(in)
		_, linesErr := pricing.PlanBatch(0, in.PriceLines)
		var out []RowError
		for prefix, err := range map[string]error{"": draftErr, "price_": linesErr} {
			if err == nil {
				continue
			}
			rowErrs, ok := validationRowErrors(rowNum, err)
			if !ok {
				return nil, err
			}
			for _, re := range rowErrs {
				if re.Field != "" {
					re.Field = prefix + re.Field
				}
				out = append(out, re)
			}
		}
		sort.SliceStable(out, func(a, b int) bool { return out[a].Field < out[b].Field })
		return out, nil
	}

	if _, err := i.creator.Create(ctx, in); err != nil {
		rowErrs, ok := validationRowErrors(rowNum, err)
		if !ok {
			return nil, err
		}
		return rowErrs, nil
	}
	return nil, nil
}

func (i *Importer) finish(ctx context.Context, filename string, result *Result) {
	i.metrics.AddImportRows("created", result.Created)
	i.metrics.AddImportRows("valid", result.Valid)
	i.metrics.AddImportRows("failed", result.Failed)
	i.logg.Info(i.logg.WithFields(ctx, map[string]any{
		"file":    filename,
		"dry_run": result.DryRun,
		"rows":    result.TotalRows,
		"created": result.Created,
		"failed":  result.Failed,
	}), "import.completed")
}

func buildInput(rowNum int, mapped []*field, cells []string) (positions.PositionInput, []RowError) {
	var (
		in   positions.PositionInput
		errs []RowError
	)
	for col, f := range mapped {
		if f == nil || col >= len(cells) {
			continue
		}
		raw := strings.TrimSpace(cells[col])
		if raw == "" {
			continue
		}
		if err := f.set(&in, raw); err != nil {
			errs = append(errs, RowError{Row: rowNum, Field: f.key, Message: err.Error()})
		}
	}
	return in, errs
}

// validationRowErrors flattens a field-scoped validation error into row
// errors, sorted by field. ok is false for any other kind of error.
func validationRowErrors(rowNum int, err error) ([]RowError, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return nil, false
	}
	details, _ := typed.Details().(map[string]string)
	if len(details) == 0 {
		return []RowError{{Row: rowNum, Message: typed.Message()}}, true
	}
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	out := make([]RowError, 0, len(fields))
	for _, f := range fields {
		out = append(out, RowError{Row: rowNum, Field: f, Message: details[f]})
	}
	return out, true
}

func anyMapped(mapped []*field) bool {
	for _, f := range mapped {
		if f != nil {
			return true
		}
	}
	return false
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
