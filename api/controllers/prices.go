package controllers

import (
	"math"
	"net/http"
	"strings"

	"github.com/elameta/quoteregistry/api/responses"
	"github.com/elameta/quoteregistry/api/validators"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/internal/pricing"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
)

type savePriceLinesRequest struct {
	Lines []pricing.LineInput `json:"lines"`
}

// SavePriceLines applies a whole batch of price line edits. Any invalid line
// rejects the batch with per-line field errors.
func SavePriceLines(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload savePriceLinesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.SavePriceLines(r.Context(), id, payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"lines": lines})
	}
}

// ResolvePrice answers which line applies to ?qty=N today. A quantity no line
// covers yields a null line, not an error.
func ResolvePrice(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
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
		if strings.TrimSpace(r.URL.Query().Get("qty")) == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "qty is required").WithDetails(map[string]string{"qty": "is required"}))
			return
		}
		qty, err := validators.ParseQueryInt(r, "qty", 0, 0, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.ResolvePrice(r.Context(), id, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolution)
	}
}

// CheckPriceOverlaps reports a conflict when two active lines of the same
// unit overlap in quantity and validity.
func CheckPriceOverlaps(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
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
		if err := svc.CheckOverlaps(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"overlaps": false})
	}
}
