package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/elameta/quoteregistry/api/responses"
	"github.com/elameta/quoteregistry/internal/exports"
	"github.com/elameta/quoteregistry/internal/imports"
	"github.com/elameta/quoteregistry/internal/listing"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListingExporter renders the filtered listing as a workbook.
type ListingExporter interface {
	Export(ctx context.Context, req listing.Request, lang string) (*exports.File, error)
}

// PositionImporter creates positions from an uploaded table.
type PositionImporter interface {
	Import(ctx context.Context, filename string, body io.Reader, opts imports.Options) (*imports.Result, error)
}

// ExportPositions streams the listing (same q, f[key], sort, dir and cols as
// the list endpoint) as an XLSX workbook.
func ExportPositions(svc ListingExporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "export service")
			return
		}
		file, err := svc.Export(r.Context(), listing.ParseRequest(r.URL.RawQuery), r.URL.Query().Get("lang"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeAttachment(w, xlsxContentType, file.Filename, file.Body)
	}
}

// ImportPositions reads the multipart "file" part. ?dry_run=1 validates
// without writing; ?report=xlsx answers with the row error workbook.
func ImportPositions(svc PositionImporter, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "import service")
			return
		}

		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		if err := r.ParseMultipartForm(maxDrawingMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "import file too large"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required").WithDetails(map[string]string{"file": "is required"}))
			return
		}
		defer file.Close()

		result, err := svc.Import(r.Context(), header.Filename, file, imports.Options{DryRun: queryBool(r, "dry_run", false)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if strings.EqualFold(r.URL.Query().Get("report"), "xlsx") && len(result.Errors) > 0 {
			body, err := imports.ErrorReport(result.Errors)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render import report"))
				return
			}
			writeAttachment(w, xlsxContentType, "import_errors.xlsx", body)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
