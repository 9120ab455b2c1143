package controllers

import (
	"net/http"

	"github.com/elameta/quoteregistry/api/responses"
	"github.com/elameta/quoteregistry/api/validators"
	"github.com/elameta/quoteregistry/internal/positions"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
)

const (
	maxDrawingMemory = 32 << 20
	maxDrawingTitle  = 255
)

// UploadDrawing attaches the multipart "file" part to a position.
func UploadDrawing(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "position service")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxDrawingMemory); err != nil {
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

		drawing, err := svc.AddDrawing(r.Context(), id, positions.DrawingUpload{
			Title:    validators.SanitizeString(r.FormValue("title"), maxDrawingTitle),
			Filename: header.Filename,
			Body:     file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, drawing)
	}
}

func DeleteDrawing(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "position service")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		drawingID, err := pathID(r, "drawingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteDrawing(r.Context(), id, drawingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
