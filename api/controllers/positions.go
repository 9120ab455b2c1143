package controllers

import (
	"net/http"

	"github.com/elameta/quoteregistry/api/responses"
	"github.com/elameta/quoteregistry/api/validators"
	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/positions"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/pagination"
)

type listingRow struct {
	ID     int64             `json:"id"`
	Values map[string]string `json:"values"`
}

type listingMeta struct {
	InvalidFilter bool `json:"invalid_filter"`
	pagination.Page
}

type listingResponse struct {
	Columns []listing.Column `json:"columns"`
	Rows    []listingRow     `json:"rows"`
	Meta    listingMeta      `json:"meta"`
}

func newListingResponse(result *positions.ListResult) listingResponse {
	resp := listingResponse{
		Columns: result.Columns,
		Rows:    make([]listingRow, 0, len(result.Rows)),
		Meta:    listingMeta{InvalidFilter: result.InvalidFilter, Page: result.Page},
	}
	for _, row := range result.Rows {
		values := make(map[string]string, len(result.Columns))
		for _, col := range result.Columns {
			values[col.Key] = col.Value(row)
		}
		resp.Rows = append(resp.Rows, listingRow{ID: row.Position.ID, Values: values})
	}
	return resp
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, what string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, what+" unavailable"))
}

// ListPositions serves one page of the filtered, sorted listing.
func ListPositions(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "position service")
			return
		}
		result, err := svc.List(r.Context(), listing.ParseRequest(r.URL.RawQuery))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingResponse(result))
	}
}

// PositionColumns lists every column the listing can show.
func PositionColumns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"columns":  listing.Columns,
			"defaults": listing.DefaultColumns(),
		})
	}
}

func PositionStats(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "position service")
			return
		}
		stats, err := svc.Stats(r.Context(), listing.ParseRequest(r.URL.RawQuery))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func PositionSuggestions(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "position service")
			return
		}
		suggestions, err := svc.Suggestions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestions)
	}
}

func CreatePosition(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "position service")
			return
		}

		var payload positions.PositionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		position, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, position)
	}
}

func GetPosition(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
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
		position, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, position)
	}
}

// UpdatePosition replaces the editable fields. Price lines are ignored here
// and saved through SavePriceLines.
func UpdatePosition(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload positions.PositionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		position, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, position)
	}
}

func DeletePosition(svc positions.Service, logg *logger.Logger) http.HandlerFunc {
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
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
